package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Kubambe/webscraper2/models"
)

// Writer exports crawl results to a Google Sheets spreadsheet.
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// NewWriter creates a new Google Sheets writer. Credentials come from
// the given service-account JSON file, or from the
// GOOGLE_SHEETS_CREDENTIALS environment variable when the path is empty.
func NewWriter(spreadsheetID, credentialsPath string, log zerolog.Logger) (*Writer, error) {
	credsJSON, err := readCredentials(credentialsPath)
	if err != nil {
		return nil, err
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file, got type: %v", creds["type"])
	}

	service, err := sheets.NewService(context.Background(), option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

func readCredentials(credentialsPath string) ([]byte, error) {
	if credentialsPath != "" {
		credsJSON, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return credsJSON, nil
	}

	credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
	if credsEnv == "" {
		return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
	}
	return []byte(credsEnv), nil
}

// WriteResults writes the flattened Element/Attribute/Value rows to the
// first sheet, replacing whatever was there.
func (w *Writer) WriteResults(results models.AggregateResult) error {
	rows := results.Rows()
	if len(rows) == 0 {
		w.log.Info().Msg("no records to write to sheets")
		return nil
	}

	values := [][]interface{}{{"Element", "Attribute", "Value"}}
	for _, row := range rows {
		values = append(values, []interface{}{row[0], row[1], row[2]})
	}

	range_ := "Sheet1!A1"

	clearReq := &sheets.ClearValuesRequest{}
	if _, err := w.service.Spreadsheets.Values.Clear(w.spreadsheetID, range_, clearReq).Do(); err != nil {
		w.log.Warn().Err(err).Msg("failed to clear existing sheet data, continuing")
	}

	valueRange := &sheets.ValueRange{
		Values: values,
	}
	_, err := w.service.Spreadsheets.Values.Update(w.spreadsheetID, range_, valueRange).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return fmt.Errorf("failed to write to sheets: %w", err)
	}

	w.log.Info().Int("rows", len(rows)).Msg("results written to Google Sheets")
	return nil
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets
// URL like https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit.
func ExtractSpreadsheetID(url string) string {
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		return ""
	}

	idPart := parts[1]
	if idx := strings.Index(idPart, "/"); idx != -1 {
		idPart = idPart[:idx]
	}
	if idx := strings.Index(idPart, "?"); idx != -1 {
		idPart = idPart[:idx]
	}
	return idPart
}
