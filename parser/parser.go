package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Kubambe/webscraper2/models"
)

// Parser extracts records from HTML pages according to an element spec.
// Extraction is deterministic and side-effect free; malformed markup is
// parsed best-effort and degrades extraction rather than failing it.
type Parser struct{}

// NewParser creates a new Parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Extract parses htmlContent and pulls all records described by spec.
func (p *Parser) Extract(htmlContent string, spec models.Spec) models.PageResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		// html.Parse consumes arbitrary input without failing; an error
		// here means the reader itself broke, so there is nothing to scan.
		return models.PageResult{}
	}
	return p.ExtractFrom(doc, spec)
}

// ExtractFrom pulls records from an already-parsed document. For each
// tag in spec it captures, in document order, every listed attribute
// actually present on the element plus the element's normalized text.
func (p *Parser) ExtractFrom(doc *goquery.Document, spec models.Spec) models.PageResult {
	results := make(models.PageResult, len(spec))

	for tag, attrs := range spec {
		records := []models.Record{}
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			record := models.Record{}
			for _, attr := range attrs {
				if value, ok := s.Attr(attr); ok {
					record[attr] = value
				}
			}
			record[models.TextKey] = normalizeText(s.Text())
			records = append(records, record)
		})
		results[tag] = records
	}

	return results
}

// normalizeText flattens nested markup to plain text: leading and
// trailing whitespace trimmed, internal whitespace runs collapsed to
// single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
