package pixabay

import "github.com/yiblet/pix/internal/gallery"

// Hit is a single image in a search response
type Hit struct {
	ID            int64  `json:"id"`
	PageURL       string `json:"pageURL"`
	Type          string `json:"type"`
	Tags          string `json:"tags"`
	PreviewURL    string `json:"previewURL"`
	WebformatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	ImageWidth    int    `json:"imageWidth"`
	ImageHeight   int    `json:"imageHeight"`
	Views         int    `json:"views"`
	Downloads     int    `json:"downloads"`
	Likes         int    `json:"likes"`
	User          string `json:"user"`
}

// SearchResponse is the body of GET /api/
type SearchResponse struct {
	// Total is the number of matches in the whole index.
	Total int `json:"total"`
	// TotalHits is how many of them the API will actually page through.
	TotalHits int   `json:"totalHits"`
	Hits      []Hit `json:"hits"`
}

// ToItem converts a hit into a gallery item
func (h Hit) ToItem() gallery.Item {
	return gallery.Item{
		ID:            h.ID,
		ThumbnailURL:  h.WebformatURL,
		LargeImageURL: h.LargeImageURL,
		Tags:          h.Tags,
		PageURL:       h.PageURL,
		User:          h.User,
		Width:         h.ImageWidth,
		Height:        h.ImageHeight,
	}
}

// ToPage converts a response into a gallery page
func (r *SearchResponse) ToPage() gallery.Page {
	items := make([]gallery.Item, len(r.Hits))
	for i, hit := range r.Hits {
		items[i] = hit.ToItem()
	}
	return gallery.Page{
		Items:     items,
		TotalHits: r.TotalHits,
	}
}
