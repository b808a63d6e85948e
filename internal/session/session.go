package session

import (
	"fmt"
	"strings"
)

// Page identifies one view of the dashboard.
type Page string

const (
	PageMain         Page = "main"
	PageFundamentals Page = "fundamentals"
	PageTechnical    Page = "technical"
	PageNews         Page = "news"
	PageGlossary     Page = "glossary"
	PageAbout        Page = "about"
)

// Pages lists every page in menu order.
var Pages = []Page{PageMain, PageFundamentals, PageTechnical, PageNews, PageGlossary, PageAbout}

// ParsePage resolves a page name, case-insensitively.
func ParsePage(name string) (Page, error) {
	p := Page(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Pages {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", name)
}

// NeedsTicker reports whether the page shows data for the selected ticker.
func (p Page) NeedsTicker() bool {
	return p == PageMain || p == PageFundamentals || p == PageTechnical || p == PageNews
}

// Session is the navigation state of one user. Transitions return a new value.
type Session struct {
	Ticker string `json:"ticker"`
	Page   Page   `json:"page"`
}

// New returns the initial session: no ticker, on the main page.
func New() Session {
	return Session{Page: PageMain}
}

// HasTicker reports whether a ticker has been selected.
func (s Session) HasTicker() bool { return s.Ticker != "" }

// WithTicker selects a ticker and returns to the main page.
func (s Session) WithTicker(ticker string) Session {
	s.Ticker = strings.ToUpper(strings.TrimSpace(ticker))
	s.Page = PageMain
	return s
}

// Navigate moves to page, keeping the selected ticker.
func (s Session) Navigate(p Page) Session {
	s.Page = p
	return s
}
