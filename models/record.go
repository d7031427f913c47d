package models

import (
	"fmt"
	"sort"
	"strings"
)

// TextKey is the reserved record key holding an element's inner text.
const TextKey = "text"

// Spec maps an element tag to the attribute names to capture from each
// matching element. The element text is always captured under TextKey.
type Spec map[string][]string

// Record holds one matched element's captured attributes plus its text.
type Record map[string]string

// PageResult groups the records extracted from a single page by tag,
// in document order.
type PageResult map[string][]Record

// AggregateResult accumulates records across pages, in crawl order.
type AggregateResult map[string][]Record

// ParseSpec parses an element spec string like "h1:class,id a:href img"
// into a Spec. Pairs are space-separated; each pair is a tag name
// optionally followed by a colon and a comma-separated attribute list.
func ParseSpec(s string) (Spec, error) {
	spec := Spec{}
	for _, pair := range strings.Fields(s) {
		tag, attrList, _ := strings.Cut(pair, ":")
		if tag == "" {
			return nil, fmt.Errorf("invalid element spec %q: missing tag name", pair)
		}
		var attrs []string
		if attrList != "" {
			for _, attr := range strings.Split(attrList, ",") {
				attr = strings.TrimSpace(attr)
				if attr == "" {
					return nil, fmt.Errorf("invalid element spec %q: empty attribute name", pair)
				}
				attrs = append(attrs, attr)
			}
		}
		spec[tag] = attrs
	}
	if len(spec) == 0 {
		return nil, fmt.Errorf("element spec is empty")
	}
	return spec, nil
}

// Rows flattens the aggregate into (element, attribute, value) triples.
// Tags and attribute keys are emitted in sorted order so output is
// stable; records keep their crawl order.
func (r AggregateResult) Rows() [][]string {
	tags := make([]string, 0, len(r))
	for tag := range r {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	var rows [][]string
	for _, tag := range tags {
		for _, rec := range r[tag] {
			attrs := make([]string, 0, len(rec))
			for attr := range rec {
				attrs = append(attrs, attr)
			}
			sort.Strings(attrs)
			for _, attr := range attrs {
				rows = append(rows, []string{tag, attr, rec[attr]})
			}
		}
	}
	return rows
}
