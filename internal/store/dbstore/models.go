package dbstore

import (
	"time"

	"github.com/yiblet/pix/internal/store"
)

// PageModel represents a cached result page in the database.
// Images are stored separately, one row per hit.
type PageModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Params    string    `gorm:"size:512;not null;default:'';uniqueIndex:idx_page_key"` // Request settings fingerprint
	Query     string    `gorm:"size:255;not null;uniqueIndex:idx_page_key"`
	Page      int       `gorm:"not null;uniqueIndex:idx_page_key"`
	TotalHits int       `gorm:"not null"`
	FetchedAt time.Time `gorm:"not null;index"` // Drives expiry
	CreatedAt time.Time `gorm:"autoCreateTime"`

	// One-to-many relationship with images
	Images []ImageModel `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for PageModel
func (PageModel) TableName() string {
	return "pages"
}

// ToCachedPage converts the GORM model to a store.CachedPage.
// Images must already be loaded in sequence order.
func (m *PageModel) ToCachedPage() *store.CachedPage {
	images := make([]store.Image, len(m.Images))
	for i, img := range m.Images {
		images[i] = img.ToImage()
	}
	return &store.CachedPage{
		ID:        m.ID,
		Params:    m.Params,
		Query:     m.Query,
		Page:      m.Page,
		TotalHits: m.TotalHits,
		Images:    images,
		FetchedAt: m.FetchedAt,
	}
}

// ImageModel represents a single hit on a cached page.
type ImageModel struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	PageID        uint   `gorm:"not null;index:idx_page_seq"` // Foreign key to page
	Sequence      int    `gorm:"not null;index:idx_page_seq"` // Arrival order (0, 1, 2, ...)
	ImageID       int64  `gorm:"not null"`                    // Backend identifier
	ThumbnailURL  string `gorm:"type:text"`
	LargeImageURL string `gorm:"type:text"`
	Tags          string `gorm:"type:text"`
	PageURL       string `gorm:"type:text"`
	User          string `gorm:"size:100"`
	Width         int
	Height        int
}

// TableName returns the table name for ImageModel
func (ImageModel) TableName() string {
	return "images"
}

// ToImage converts the GORM model to a store.Image
func (m *ImageModel) ToImage() store.Image {
	return store.Image{
		ID:            m.ImageID,
		ThumbnailURL:  m.ThumbnailURL,
		LargeImageURL: m.LargeImageURL,
		Tags:          m.Tags,
		PageURL:       m.PageURL,
		User:          m.User,
		Width:         m.Width,
		Height:        m.Height,
	}
}

func newImageModel(pageID uint, seq int, img store.Image) ImageModel {
	return ImageModel{
		PageID:        pageID,
		Sequence:      seq,
		ImageID:       img.ID,
		ThumbnailURL:  img.ThumbnailURL,
		LargeImageURL: img.LargeImageURL,
		Tags:          img.Tags,
		PageURL:       img.PageURL,
		User:          img.User,
		Width:         img.Width,
		Height:        img.Height,
	}
}

// QueryModel represents a submitted query in the history table
type QueryModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Query       string    `gorm:"size:100;not null;uniqueIndex"`
	SearchedAt  time.Time `gorm:"not null;index"` // Most recent submission, for LIFO ordering
	SearchCount int       `gorm:"not null;default:1"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for QueryModel
func (QueryModel) TableName() string {
	return "queries"
}

// ToQueryRecord converts the GORM model to a store.QueryRecord
func (m *QueryModel) ToQueryRecord() *store.QueryRecord {
	return &store.QueryRecord{
		ID:         m.ID,
		Query:      m.Query,
		SearchedAt: m.SearchedAt,
		Count:      m.SearchCount,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
