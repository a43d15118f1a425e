package models

// Feed is what a feed probe learned about a feed URL.
type Feed struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
	FeedType    string `json:"feed_type,omitempty"`
	Items       int    `json:"items"`
}

// Trigger is a page element that starts a subscription when activated.
type Trigger struct {
	Tag   string   `json:"tag"`
	Text  string   `json:"text"`
	Feeds []string `json:"feeds"`
}
