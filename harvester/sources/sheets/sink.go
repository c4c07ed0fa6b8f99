package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"harvester/harvester/utils/apperrors"
	"harvester/harvester/utils/logging"
	"harvester/harvester/utils/types"

	"go.uber.org/zap"
)

const (
	DefaultTabRows int64 = 1000
	DefaultTabCols int64 = 10
)

var (
	ErrSpreadsheetNotFound = errors.New("spreadsheet not found")
	ErrTabNotFound         = errors.New("tab not found")
)

type Spreadsheet struct {
	ID  string
	URL string
}

// Client is the subset of the spreadsheet service the sink needs.
type Client interface {
	OpenSpreadsheet(ctx context.Context, title string) (Spreadsheet, error)
	CreateSpreadsheet(ctx context.Context, title string) (Spreadsheet, error)
	ShareWithAnyone(ctx context.Context, spreadsheetID string) error
	OpenTab(ctx context.Context, spreadsheetID, tab string) error
	AddTab(ctx context.Context, spreadsheetID, tab string, rows, cols int64) error
	ReadRows(ctx context.Context, spreadsheetID, tab string) ([][]string, error)
	AppendRows(ctx context.Context, spreadsheetID, tab string, rows [][]string) error
}

// Dialer authenticates with a credentials file and returns a ready client.
type Dialer func(ctx context.Context, credentialsFile string) (Client, error)

type Sink struct {
	credentialsDir string
	dial           Dialer
}

func NewSink(credentialsDir string, dial Dialer) *Sink {
	return &Sink{credentialsDir: credentialsDir, dial: dial}
}

// Write appends the records whose names are not yet in the tab. It never
// returns an error: every failure ends up on the result with Written=false.
func (s *Sink) Write(ctx context.Context, records []types.ToolRecord, sheetName, tabName string) types.SinkResult {
	defer logging.LogDuration(ctx, "Sink.Write")()

	if len(records) == 0 {
		logging.AppLogger.Warn("no data to write to the spreadsheet")
		return types.SinkResult{Reason: "no records"}
	}

	res, err := s.write(ctx, records, sheetName, tabName)
	if err != nil {
		logging.AppLogger.Error(fmt.Sprintf("error writing to the spreadsheet: %v", err))
		logging.ErrorLogger.Error("spreadsheet sink failed", zap.String("sheet", sheetName), zap.String("tab", tabName), zap.Error(err))
		res.Written = false
		res.Err = err
		res.Reason = string(apperrors.KindOf(err))
	}
	return res
}

func (s *Sink) write(ctx context.Context, records []types.ToolRecord, sheetName, tabName string) (types.SinkResult, error) {
	var res types.SinkResult

	credentialsFile, err := LocateCredentials(s.credentialsDir)
	if err != nil {
		logging.AppLogger.Info("download a service-account key from Google Cloud Console and save it as credentials.json")
		return res, err
	}

	logging.AppLogger.Info("connecting to the spreadsheet service...")
	client, err := s.dial(ctx, credentialsFile)
	if err != nil {
		return res, apperrors.SheetAPI("authenticate", err)
	}

	sheet, err := openOrCreateSpreadsheet(ctx, client, sheetName)
	if err != nil {
		return res, err
	}
	res.SpreadsheetURL = sheet.URL

	if err := openOrCreateTab(ctx, client, sheet.ID, tabName); err != nil {
		return res, err
	}

	existing, hasRows := snapshotNames(ctx, client, sheet.ID, tabName)

	if !hasRows {
		logging.AppLogger.Info("adding header row...")
		if err := client.AppendRows(ctx, sheet.ID, tabName, [][]string{types.FieldNames}); err != nil {
			return res, apperrors.SheetAPI("write header", err)
		}
		res.HeaderWritten = true
	}

	var rows [][]string
	for _, r := range records {
		key := nameKey(r.Name)
		if key == "" {
			continue
		}
		if _, ok := existing[key]; ok {
			continue
		}
		existing[key] = struct{}{}
		rows = append(rows, r.Row())
	}

	if len(rows) == 0 {
		logging.AppLogger.Info("no new tools to add")
		res.Reason = "no new records"
		return res, nil
	}

	logging.AppLogger.Info(fmt.Sprintf("adding %d new tools...", len(rows)))
	if err := client.AppendRows(ctx, sheet.ID, tabName, rows); err != nil {
		return res, apperrors.SheetAPI("append rows", err)
	}
	res.Written = true
	res.Appended = len(rows)
	logging.AppLogger.Info(fmt.Sprintf("%d tools added", len(rows)))
	if sheet.URL != "" {
		logging.AppLogger.Info(fmt.Sprintf("spreadsheet URL: %s", sheet.URL))
	}
	return res, nil
}

func openOrCreateSpreadsheet(ctx context.Context, client Client, name string) (Spreadsheet, error) {
	sheet, err := client.OpenSpreadsheet(ctx, name)
	if err == nil {
		logging.AppLogger.Info(fmt.Sprintf("spreadsheet '%s' found", name))
		return sheet, nil
	}
	if !errors.Is(err, ErrSpreadsheetNotFound) {
		return Spreadsheet{}, apperrors.SheetAPI("open", err)
	}

	logging.AppLogger.Info(fmt.Sprintf("creating spreadsheet '%s'...", name))
	sheet, err = client.CreateSpreadsheet(ctx, name)
	if err != nil {
		return Spreadsheet{}, apperrors.SheetAPI("create", err)
	}
	if err := client.ShareWithAnyone(ctx, sheet.ID); err != nil {
		return Spreadsheet{}, apperrors.SheetAPI("share", err)
	}
	return sheet, nil
}

func openOrCreateTab(ctx context.Context, client Client, spreadsheetID, tab string) error {
	err := client.OpenTab(ctx, spreadsheetID, tab)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrTabNotFound) {
		return apperrors.SheetAPI("open tab", err)
	}
	logging.AppLogger.Info(fmt.Sprintf("creating tab '%s'...", tab))
	if err := client.AddTab(ctx, spreadsheetID, tab, DefaultTabRows, DefaultTabCols); err != nil {
		return apperrors.SheetAPI("create tab", err)
	}
	return nil
}

// snapshotNames reads the tab and returns the set of names already present and
// whether the tab had any row at all. A read failure counts as an empty tab.
func snapshotNames(ctx context.Context, client Client, spreadsheetID, tab string) (map[string]struct{}, bool) {
	names := make(map[string]struct{})
	rows, err := client.ReadRows(ctx, spreadsheetID, tab)
	if err != nil {
		logging.ErrorLogger.Warn("reading existing rows failed, treating tab as empty", zap.Error(err))
		return names, false
	}
	if len(rows) == 0 {
		return names, false
	}

	col := nameColumn(rows[0])
	for _, row := range rows[1:] {
		if col < len(row) {
			if key := nameKey(row[col]); key != "" {
				names[key] = struct{}{}
			}
		}
	}
	return names, true
}

func nameColumn(header []string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), types.FieldNames[0]) {
			return i
		}
	}
	return 0
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
