package model

// Scheme is a government healthcare scheme page rendered from markdown.
type Scheme struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Order       int    `json:"order"`
	URL         string `json:"url,omitempty"`
	LinkLabel   string `json:"linkLabel,omitempty"`
	HTMLContent string `json:"html"`
}
