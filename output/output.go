// Package output serializes crawl results to files.
package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/Kubambe/webscraper2/models"
)

// ErrUnsupportedFormat is returned for output formats other than the
// supported "json" and "csv".
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Save writes results to <basename>.<format>. "json" preserves the full
// tag-to-records mapping; "csv" emits one Element/Attribute/Value row
// per captured value. An unsupported format is logged and reported
// without writing any file.
func Save(results models.AggregateResult, format, basename string, log zerolog.Logger) error {
	switch format {
	case "json":
		return saveJSON(results, basename+".json", log)
	case "csv":
		return saveCSV(results, basename+".csv", log)
	default:
		log.Error().Str("format", format).Msg("unsupported output format, use json or csv")
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func saveJSON(results models.AggregateResult, path string, log zerolog.Logger) error {
	data, err := json.MarshalIndent(results, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info().Str("file", path).Msg("results saved")
	return nil
}

func saveCSV(results models.AggregateResult, path string, log zerolog.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Element", "Attribute", "Value"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range results.Rows() {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}

	log.Info().Str("file", path).Msg("results saved")
	return nil
}
