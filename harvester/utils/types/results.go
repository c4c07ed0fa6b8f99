package types

import "time"

// ExtractionResult is the outcome of one source extraction. Err is set when the
// whole page could not be fetched or parsed, in which case Records is empty.
type ExtractionResult struct {
	Source     string       `json:"source"`
	URL        string       `json:"url"`
	Records    []ToolRecord `json:"-"`
	Count      int          `json:"count"`
	Candidates int          `json:"candidates"`
	Skipped    int          `json:"skipped"`
	Err        error        `json:"-"`
	Reason     string       `json:"reason,omitempty"`
}

func (r ExtractionResult) OK() bool { return r.Err == nil }

type AggregateResult struct {
	Records []ToolRecord       `json:"-"`
	Sources []ExtractionResult `json:"sources"`
}

type BackupResult struct {
	CSVPath  string `json:"csv_path,omitempty"`
	JSONPath string `json:"json_path,omitempty"`
	CSVErr   error  `json:"-"`
	JSONErr  error  `json:"-"`
	Skipped  bool   `json:"skipped"`
}

// Files lists the artifacts that were actually written.
func (b BackupResult) Files() []string {
	var files []string
	if b.CSVPath != "" && b.CSVErr == nil {
		files = append(files, b.CSVPath)
	}
	if b.JSONPath != "" && b.JSONErr == nil {
		files = append(files, b.JSONPath)
	}
	return files
}

// SinkResult reports what the spreadsheet sink did. Written is true only when
// at least one new row was appended.
type SinkResult struct {
	Written        bool   `json:"written"`
	Appended       int    `json:"appended"`
	HeaderWritten  bool   `json:"header_written"`
	SpreadsheetURL string `json:"spreadsheet_url,omitempty"`
	Err            error  `json:"-"`
	Reason         string `json:"reason,omitempty"`
}

// Summary is everything a single pipeline run produced.
type Summary struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Total      int             `json:"total"`
	Aggregate  AggregateResult `json:"aggregate"`
	Backup     BackupResult    `json:"backup"`
	Mirrored   []string        `json:"mirrored,omitempty"`
	Archived   bool            `json:"archived"`
	Sink       SinkResult      `json:"sink"`
	Status     string          `json:"status"`
}

const (
	StatusSuccess    = "success"
	StatusSinkFailed = "completed_with_sheet_errors"
	StatusNoRecords  = "no_records"
)
