package model

import "time"

// Article is one news headline about a company.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`
	Polarity    float64   `json:"polarity"`
}

// NewsReport is the latest headlines for a symbol with their polarity in
// [-1, 1] and the mean over all headlines.
type NewsReport struct {
	Symbol    string    `json:"symbol"`
	Query     string    `json:"query"`
	Source    string    `json:"source"`
	Articles  []Article `json:"articles"`
	Polarity  float64   `json:"polarity"`
	Label     string    `json:"label"`
	FetchedAt time.Time `json:"fetched_at"`
}
