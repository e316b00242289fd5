package models

// AssetRef is a reference to an image or other media attached to an event.
// The binary itself lives in an external asset store; the core only copies
// references between events.
type AssetRef struct {
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	SortOrder int    `json:"sort_order"`
}
