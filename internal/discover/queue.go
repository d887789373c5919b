package discover

import (
	"net/url"
)

// pageQueue is a FIFO of index pages to visit. A page is queued at most once,
// which keeps the walk finite when index pages link back to each other.
type pageQueue struct {
	items   []queueItem
	visited map[string]bool
}

type queueItem struct {
	URL   string
	Depth int
}

func newPageQueue() *pageQueue {
	return &pageQueue{visited: make(map[string]bool)}
}

// Add queues rawURL unless it was queued before.
func (q *pageQueue) Add(rawURL string, depth int) bool {
	normalized := normalizeURL(rawURL)
	if normalized == "" || q.visited[normalized] {
		return false
	}
	q.visited[normalized] = true
	q.items = append(q.items, queueItem{URL: normalized, Depth: depth})
	return true
}

// Pop removes and returns the next page.
func (q *pageQueue) Pop() (queueItem, bool) {
	if len(q.items) == 0 {
		return queueItem{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// normalizeURL drops the fragment so anchors on one page compare equal.
func normalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	parsed.Fragment = ""
	return parsed.String()
}
