package filter

import (
	"github.com/Kubambe/webscraper2/config"
	"github.com/Kubambe/webscraper2/models"
)

// Filter applies record-level filter criteria to crawl results.
type Filter struct {
	cfg config.FilterConfig
}

// NewFilter creates a new Filter instance.
func NewFilter(cfg config.FilterConfig) *Filter {
	return &Filter{
		cfg: cfg,
	}
}

// Apply drops records that do not meet the configured criteria. Record
// order within each tag is preserved.
func (f *Filter) Apply(results models.AggregateResult) models.AggregateResult {
	filtered := make(models.AggregateResult, len(results))

	for tag, records := range results {
		var kept []models.Record
		for _, record := range records {
			if f.matches(record) {
				kept = append(kept, record)
			}
		}
		filtered[tag] = kept
	}

	return filtered
}

// matches checks if a record meets all filter criteria.
func (f *Filter) matches(record models.Record) bool {
	if len(record[models.TextKey]) < f.cfg.MinTextLength {
		return false
	}

	for _, attr := range f.cfg.RequiredAttributes {
		if _, ok := record[attr]; !ok {
			return false
		}
	}

	return true
}
