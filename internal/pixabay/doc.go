// Package pixabay provides a client for the Pixabay image search API.
//
// The client is the data source behind the gallery: it turns a query and a
// 1-indexed page number into a page of image hits plus the number of hits the
// API is willing to serve for that query.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := pixabay.NewClient(
//		os.Getenv("PIXABAY_API_KEY"),
//		logger,
//		pixabay.WithPerPage(12),
//		pixabay.WithTimeout(15*time.Second),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resp, err := client.Search(ctx, "red fox", 1)
//
// # Error Handling
//
// Non-200 responses are returned as *APIError, which carries the status code
// and the plain-text message Pixabay sends back:
//
//	var apiErr *pixabay.APIError
//	if errors.As(err, &apiErr) && apiErr.IsRateLimited() {
//		// back off
//	}
package pixabay
