package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/Kubambe/webscraper2/fetcher"
	"github.com/Kubambe/webscraper2/models"
	"github.com/Kubambe/webscraper2/parser"
)

// Crawler drives a Fetcher across a chain of "Next"-linked pages,
// merging the records extracted from each page. A Crawler is stateless;
// each Crawl call owns its own result and may run concurrently with
// other crawls.
type Crawler struct {
	fetcher fetcher.Fetcher
	parser  *parser.Parser
	log     zerolog.Logger
}

// NewCrawler creates a new Crawler instance.
func NewCrawler(f fetcher.Fetcher, p *parser.Parser, log zerolog.Logger) *Crawler {
	return &Crawler{
		fetcher: f,
		parser:  p,
		log:     log,
	}
}

// Crawl fetches up to maxPages pages starting at startURL, following
// "Next" links, and returns the records accumulated across all pages in
// crawl order. A page that cannot be fetched ends the crawl; the
// partial result gathered so far is returned, not discarded. The only
// error condition is a contract violation (maxPages < 1).
func (c *Crawler) Crawl(ctx context.Context, startURL string, spec models.Spec, maxPages int, opts fetcher.Options) (models.AggregateResult, error) {
	if maxPages < 1 {
		return nil, fmt.Errorf("maxPages must be >= 1, got %d", maxPages)
	}

	all := make(models.AggregateResult, len(spec))
	url := startURL

	for page := 0; page < maxPages; page++ {
		if ctx.Err() != nil {
			c.log.Warn().Str("url", url).Msg("crawl cancelled, returning partial results")
			return all, nil
		}

		c.log.Info().Str("url", url).Int("page", page+1).Msg("scraping page")

		htmlContent, err := c.fetcher.Fetch(ctx, url, opts)
		if err != nil {
			c.log.Warn().Str("url", url).Err(err).Msg("page unavailable, stopping crawl")
			return all, nil
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
		if err != nil {
			c.log.Warn().Str("url", url).Err(err).Msg("could not parse page, stopping crawl")
			return all, nil
		}

		for tag, records := range c.parser.ExtractFrom(doc, spec) {
			all[tag] = append(all[tag], records...)
		}

		next, ok := nextPageURL(doc)
		if !ok {
			break
		}
		url = next
	}

	return all, nil
}

// nextPageURL finds the first link whose visible text is exactly "Next"
// (case-sensitive) and returns its href. The href is used verbatim: a
// relative target is not resolved against the current page, so sites
// emitting relative "Next" links end the crawl at the next fetch.
func nextPageURL(doc *goquery.Document) (string, bool) {
	var href string

	doc.Find("a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Text() != "Next" {
			return true
		}
		href, _ = s.Attr("href")
		return false
	})

	if href == "" {
		return "", false
	}
	return href, true
}
