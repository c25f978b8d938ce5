package models

import "time"

// ExtractionTier records which extraction path produced an article body
type ExtractionTier string

const (
	// ExtractionTierStatic means the body came from a plain HTTP fetch
	ExtractionTierStatic ExtractionTier = "static"
	// ExtractionTierRendered means a headless browser render was required
	ExtractionTierRendered ExtractionTier = "rendered"
	// ExtractionTierNone means no usable body could be extracted
	ExtractionTierNone ExtractionTier = "none"
)

// Article is an extracted web source. URLs are unique across the store;
// once written an article body is never updated in place, so messages
// that reference it always see the content used at response time.
type Article struct {
	ID        string         `json:"id" badgerhold:"key"`
	Title     string         `json:"title"`
	URL       string         `json:"url" badgerhold:"unique"`
	Content   string         `json:"content"`
	Tier      ExtractionTier `json:"tier"`
	CreatedAt time.Time      `json:"created_at"`
}

// HasContent reports whether extraction produced a usable body
func (a *Article) HasContent() bool {
	return a.Content != ""
}
