package scraper

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Kubambe/webscraper2/fetcher"
	"github.com/Kubambe/webscraper2/models"
	"github.com/Kubambe/webscraper2/parser"
)

// stubFetcher serves pages from a map and records every requested URL.
type stubFetcher struct {
	pages   map[string]string
	visited []string
}

func (s *stubFetcher) Fetch(ctx context.Context, url string, opts fetcher.Options) (string, error) {
	s.visited = append(s.visited, url)
	html, ok := s.pages[url]
	if !ok {
		return "", fmt.Errorf("%w: %s", fetcher.ErrFetchExhausted, url)
	}
	return html, nil
}

func newTestCrawler(pages map[string]string) (*Crawler, *stubFetcher) {
	f := &stubFetcher{pages: pages}
	return NewCrawler(f, parser.NewParser(), zerolog.Nop()), f
}

func chainedPages() map[string]string {
	return map[string]string{
		"http://example.com/1": `<h1 class="a">One</h1><a href="http://example.com/2">Next</a>`,
		"http://example.com/2": `<h1>Two</h1><a href="http://example.com/3">Next</a>`,
		"http://example.com/3": `<h1>Three</h1>`,
	}
}

func texts(records []models.Record) []string {
	out := []string{}
	for _, rec := range records {
		out = append(out, rec[models.TextKey])
	}
	return out
}

func TestCrawlFollowsNextLinksToExhaustion(t *testing.T) {
	c, f := newTestCrawler(chainedPages())

	got, err := c.Crawl(context.Background(), "http://example.com/1", models.Spec{"h1": {"class"}}, 10, fetcher.Options{})
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if want := []string{"One", "Two", "Three"}; !reflect.DeepEqual(texts(got["h1"]), want) {
		t.Errorf("h1 texts = %v, want %v", texts(got["h1"]), want)
	}
	if len(f.visited) != 3 {
		t.Errorf("visited %d pages, want 3: %v", len(f.visited), f.visited)
	}
	if got["h1"][0]["class"] != "a" {
		t.Errorf("first record class = %q, want %q", got["h1"][0]["class"], "a")
	}
}

func TestCrawlHonorsMaxPagesCap(t *testing.T) {
	c, f := newTestCrawler(chainedPages())

	got, err := c.Crawl(context.Background(), "http://example.com/1", models.Spec{"h1": nil}, 2, fetcher.Options{})
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	// Page 2 still has a Next link; the cap wins anyway.
	if want := []string{"One", "Two"}; !reflect.DeepEqual(texts(got["h1"]), want) {
		t.Errorf("h1 texts = %v, want %v", texts(got["h1"]), want)
	}
	if len(f.visited) != 2 {
		t.Errorf("visited %d pages, want 2: %v", len(f.visited), f.visited)
	}
}

func TestCrawlStopsWithoutNextLink(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"no link at all", `<h1>Only</h1>`},
		{"link text not exact", `<h1>Only</h1><a href="/2">NEXT</a>`},
		{"link text has suffix", `<h1>Only</h1><a href="/2">Next »</a>`},
		{"next link without href", `<h1>Only</h1><a>Next</a>`},
		{"next link with empty href", `<h1>Only</h1><a href="">Next</a>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, f := newTestCrawler(map[string]string{"http://example.com/1": tt.html})

			got, err := c.Crawl(context.Background(), "http://example.com/1", models.Spec{"h1": nil}, 5, fetcher.Options{})
			if err != nil {
				t.Fatalf("Crawl() error = %v", err)
			}
			if want := []string{"Only"}; !reflect.DeepEqual(texts(got["h1"]), want) {
				t.Errorf("h1 texts = %v, want %v", texts(got["h1"]), want)
			}
			if len(f.visited) != 1 {
				t.Errorf("visited %d pages, want 1", len(f.visited))
			}
		})
	}
}

func TestCrawlKeepsPartialResultsOnFetchFailure(t *testing.T) {
	pages := chainedPages()
	delete(pages, "http://example.com/2")
	c, _ := newTestCrawler(pages)

	got, err := c.Crawl(context.Background(), "http://example.com/1", models.Spec{"h1": nil}, 10, fetcher.Options{})
	if err != nil {
		t.Fatalf("Crawl() error = %v, fetch failure must not surface", err)
	}
	if want := []string{"One"}; !reflect.DeepEqual(texts(got["h1"]), want) {
		t.Errorf("h1 texts = %v, want %v", texts(got["h1"]), want)
	}
}

func TestCrawlUsesNextHrefVerbatim(t *testing.T) {
	// A relative Next target is not resolved against the current page;
	// the follow-up fetch fails and the crawl keeps page one's records.
	c, f := newTestCrawler(map[string]string{
		"http://example.com/1": `<h1>One</h1><a href="/page2">Next</a>`,
	})

	got, err := c.Crawl(context.Background(), "http://example.com/1", models.Spec{"h1": nil}, 5, fetcher.Options{})
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if len(f.visited) != 2 || f.visited[1] != "/page2" {
		t.Errorf("visited = %v, want relative href requested verbatim", f.visited)
	}
	if want := []string{"One"}; !reflect.DeepEqual(texts(got["h1"]), want) {
		t.Errorf("h1 texts = %v, want %v", texts(got["h1"]), want)
	}
}

func TestCrawlRejectsInvalidMaxPages(t *testing.T) {
	c, _ := newTestCrawler(nil)

	for _, maxPages := range []int{0, -1} {
		if _, err := c.Crawl(context.Background(), "http://example.com/1", models.Spec{"h1": nil}, maxPages, fetcher.Options{}); err == nil {
			t.Errorf("Crawl(maxPages=%d) error = nil, want contract violation", maxPages)
		}
	}
}

func TestCrawlReturnsPartialOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, f := newTestCrawler(chainedPages())
	got, err := c.Crawl(ctx, "http://example.com/1", models.Spec{"h1": nil}, 10, fetcher.Options{})
	if err != nil {
		t.Fatalf("Crawl() error = %v, cancellation must not surface", err)
	}
	if len(f.visited) != 0 {
		t.Errorf("visited = %v, want no fetches after cancellation", f.visited)
	}
	if len(got["h1"]) != 0 {
		t.Errorf("records = %v, want empty aggregate", got["h1"])
	}
}

func TestCrawlMergesMultipleSelectors(t *testing.T) {
	c, _ := newTestCrawler(map[string]string{
		"http://example.com/1": `<h1>A</h1><img src="a.png"><a href="http://example.com/2">Next</a>`,
		"http://example.com/2": `<h1>B</h1><img src="b.png">`,
	})

	got, err := c.Crawl(context.Background(), "http://example.com/1", models.Spec{"h1": nil, "img": {"src"}}, 10, fetcher.Options{})
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if want := []string{"A", "B"}; !reflect.DeepEqual(texts(got["h1"]), want) {
		t.Errorf("h1 texts = %v, want %v", texts(got["h1"]), want)
	}
	if got["img"][0]["src"] != "a.png" || got["img"][1]["src"] != "b.png" {
		t.Errorf("img records out of crawl order: %v", got["img"])
	}
}

func TestCrawlPicksFirstNextLink(t *testing.T) {
	c, f := newTestCrawler(map[string]string{
		"http://example.com/1":     `<a href="http://example.com/first">Next</a><a href="http://example.com/second">Next</a>`,
		"http://example.com/first": `<h1>First</h1>`,
	})

	if _, err := c.Crawl(context.Background(), "http://example.com/1", models.Spec{"h1": nil}, 5, fetcher.Options{}); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}
	if len(f.visited) != 2 || f.visited[1] != "http://example.com/first" {
		t.Errorf("visited = %v, want first Next link followed", f.visited)
	}
}
