package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// GoogleClient talks to Google Sheets for cell data and Google Drive for
// lookup by title and sharing.
type GoogleClient struct {
	sheets *sheetsapi.Service
	drive  *drive.Service
}

// DialGoogle authenticates with a service-account key file.
func DialGoogle(ctx context.Context, credentialsFile string) (Client, error) {
	return NewGoogleClient(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsapi.SpreadsheetsScope, drive.DriveScope),
	)
}

func NewGoogleClient(ctx context.Context, opts ...option.ClientOption) (*GoogleClient, error) {
	s, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	d, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &GoogleClient{sheets: s, drive: d}, nil
}

func (g *GoogleClient) OpenSpreadsheet(ctx context.Context, title string) (Spreadsheet, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(title), spreadsheetMimeType)
	list, err := g.drive.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return Spreadsheet{}, err
	}
	if len(list.Files) == 0 {
		return Spreadsheet{}, ErrSpreadsheetNotFound
	}
	id := list.Files[0].Id
	return Spreadsheet{ID: id, URL: spreadsheetURL(id)}, nil
}

func (g *GoogleClient) CreateSpreadsheet(ctx context.Context, title string) (Spreadsheet, error) {
	ss, err := g.sheets.Spreadsheets.Create(&sheetsapi.Spreadsheet{
		Properties: &sheetsapi.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return Spreadsheet{}, err
	}
	url := ss.SpreadsheetUrl
	if url == "" {
		url = spreadsheetURL(ss.SpreadsheetId)
	}
	return Spreadsheet{ID: ss.SpreadsheetId, URL: url}, nil
}

func (g *GoogleClient) ShareWithAnyone(ctx context.Context, spreadsheetID string) error {
	_, err := g.drive.Permissions.Create(spreadsheetID, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	return err
}

func (g *GoogleClient) OpenTab(ctx context.Context, spreadsheetID, tab string) error {
	ss, err := g.sheets.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return err
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == tab {
			return nil
		}
	}
	return ErrTabNotFound
}

func (g *GoogleClient) AddTab(ctx context.Context, spreadsheetID, tab string, rows, cols int64) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{
				Properties: &sheetsapi.SheetProperties{
					Title:          tab,
					GridProperties: &sheetsapi.GridProperties{RowCount: rows, ColumnCount: cols},
				},
			},
		}},
	}
	_, err := g.sheets.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

func (g *GoogleClient) ReadRows(ctx context.Context, spreadsheetID, tab string) ([][]string, error) {
	vr, err := g.sheets.Spreadsheets.Values.Get(spreadsheetID, quoteTab(tab)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(vr.Values))
	for _, raw := range vr.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *GoogleClient) AppendRows(ctx context.Context, spreadsheetID, tab string, rows [][]string) error {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	_, err := g.sheets.Spreadsheets.Values.Append(spreadsheetID, quoteTab(tab)+"!A1", &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func spreadsheetURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id
}

// quoteTab renders a tab name as an A1 sheet reference.
func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
