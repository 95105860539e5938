package domain

import "github.com/shopspring/decimal"

// ProductMetadata is what the scraper hands back for a product page. It is
// never persisted here; wishlist storage belongs to the caller.
type ProductMetadata struct {
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Platform string          `json:"platform"`
	URL      string          `json:"url,omitempty"`
}
