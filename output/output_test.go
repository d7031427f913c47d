package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Kubambe/webscraper2/models"
)

func sampleResults() models.AggregateResult {
	return models.AggregateResult{
		"h1": {
			{"class": "a", "text": "Hi"},
			{"text": "Bye"},
		},
		"a": {
			{"href": "/next", "text": "Next"},
		},
	}
}

func TestSaveJSON(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")

	if err := Save(sampleResults(), "json", base, zerolog.Nop()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	var got models.AggregateResult
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(got, sampleResults()) {
		t.Errorf("round-tripped results = %v, want %v", got, sampleResults())
	}
}

func TestSaveCSV(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")

	if err := Save(sampleResults(), "csv", base, zerolog.Nop()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	f, err := os.Open(base + ".csv")
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	want := [][]string{
		{"Element", "Attribute", "Value"},
		{"a", "href", "/next"},
		{"a", "text", "Next"},
		{"h1", "class", "a"},
		{"h1", "text", "Hi"},
		{"h1", "text", "Bye"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("csv rows = %v, want %v", rows, want)
	}
}

func TestSaveUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "out")

	err := Save(sampleResults(), "xml", base, zerolog.Nop())
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("Save() error = %v, want ErrUnsupportedFormat", err)
	}

	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("reading temp dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("unsupported format wrote files: %v", entries)
	}
}

func TestSaveEmptyResults(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")

	if err := Save(models.AggregateResult{}, "csv", base, zerolog.Nop()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	f, err := os.Open(base + ".csv")
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("csv rows = %v, want header only", rows)
	}
}
