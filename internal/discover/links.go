// Package discover finds school results pages by walking results index pages.
package discover

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Default patterns for the NECTA PSLE results site: school pages are named
// shl_<id>.htm, region and council index pages reg_*.htm and distr_*.htm.
const (
	DefaultDocumentPattern = `shl_[A-Za-z]+\d+\.htm$`
	DefaultIndexPattern    = `(reg|distr)_[^/]+\.htm$`
)

// Link is a resolved link to a school results page.
type Link struct {
	// ID is the page's file name, used as the document id.
	ID  string `json:"id" yaml:"id"`
	URL string `json:"url" yaml:"url"`
}

// LinkSelector sorts the links on an index page into school pages and further
// index pages.
type LinkSelector struct {
	Document *regexp.Regexp
	Index    *regexp.Regexp // nil follows no index pages
}

// NewLinkSelector compiles the document and index patterns. An empty index
// pattern disables following.
func NewLinkSelector(documentPattern, indexPattern string) (*LinkSelector, error) {
	doc, err := regexp.Compile(documentPattern)
	if err != nil {
		return nil, err
	}
	ls := &LinkSelector{Document: doc}
	if indexPattern != "" {
		ls.Index, err = regexp.Compile(indexPattern)
		if err != nil {
			return nil, err
		}
	}
	return ls, nil
}

// Extract returns the school page links and index page URLs on an HTML page,
// in document order without duplicates.
func (ls *LinkSelector) Extract(html, baseURL string) (docs []Link, index []string, err error) {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]bool)
	page.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}

		u, err := url.Parse(href)
		if err != nil {
			return
		}
		u = base.ResolveReference(u)
		u.Fragment = ""
		full := u.String()
		if seen[full] {
			return
		}
		seen[full] = true

		switch {
		case ls.Document.MatchString(u.Path):
			docs = append(docs, Link{ID: path.Base(u.Path), URL: full})
		case ls.Index != nil && ls.Index.MatchString(u.Path):
			index = append(index, full)
		}
	})

	return docs, index, nil
}
