package sheets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"harvester/harvester/utils/apperrors"
	"harvester/harvester/utils/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	sheets   map[string][][]string // "<sheet>/<tab>" -> rows
	known    map[string]bool       // spreadsheet titles
	shared   []string
	appends  [][][]string
	readErr  error
	openErr  error
	appendFn func(rows [][]string) error
}

func newFakeClient() *fakeClient {
	return &fakeClient{sheets: map[string][][]string{}, known: map[string]bool{}}
}

func (f *fakeClient) OpenSpreadsheet(_ context.Context, title string) (Spreadsheet, error) {
	if f.openErr != nil {
		return Spreadsheet{}, f.openErr
	}
	if !f.known[title] {
		return Spreadsheet{}, ErrSpreadsheetNotFound
	}
	return Spreadsheet{ID: title, URL: "https://sheet/" + title}, nil
}

func (f *fakeClient) CreateSpreadsheet(_ context.Context, title string) (Spreadsheet, error) {
	f.known[title] = true
	return Spreadsheet{ID: title, URL: "https://sheet/" + title}, nil
}

func (f *fakeClient) ShareWithAnyone(_ context.Context, id string) error {
	f.shared = append(f.shared, id)
	return nil
}

func (f *fakeClient) OpenTab(_ context.Context, id, tab string) error {
	if _, ok := f.sheets[id+"/"+tab]; !ok {
		return ErrTabNotFound
	}
	return nil
}

func (f *fakeClient) AddTab(_ context.Context, id, tab string, _, _ int64) error {
	f.sheets[id+"/"+tab] = [][]string{}
	return nil
}

func (f *fakeClient) ReadRows(_ context.Context, id, tab string) ([][]string, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.sheets[id+"/"+tab], nil
}

func (f *fakeClient) AppendRows(_ context.Context, id, tab string, rows [][]string) error {
	if f.appendFn != nil {
		if err := f.appendFn(rows); err != nil {
			return err
		}
	}
	f.appends = append(f.appends, rows)
	f.sheets[id+"/"+tab] = append(f.sheets[id+"/"+tab], rows...)
	return nil
}

func record(name string) types.ToolRecord {
	return types.ToolRecord{Name: name, Description: "d", URL: "https://x", Category: "IA General", Source: "FutureTools.io", Date: "2026-10-18"}
}

func credentialsDir(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "service_account.json"), []byte("{}"), 0o600))
	return dir
}

func sinkWith(t *testing.T, client *fakeClient) (*Sink, *int) {
	dials := 0
	return NewSink(credentialsDir(t), func(_ context.Context, file string) (Client, error) {
		dials++
		assert.Equal(t, "service_account.json", filepath.Base(file))
		return client, nil
	}), &dials
}

func TestWriteSkipsExistingNames(t *testing.T) {
	client := newFakeClient()
	client.known["Herramientas IA"] = true
	client.sheets["Herramientas IA/Datos"] = [][]string{types.FieldNames, {" tool a ", "old"}}
	sink, _ := sinkWith(t, client)

	res := sink.Write(context.Background(), []types.ToolRecord{record("Tool A"), record("Tool C")}, "Herramientas IA", "Datos")

	require.NoError(t, res.Err)
	assert.True(t, res.Written)
	assert.Equal(t, 1, res.Appended)
	assert.False(t, res.HeaderWritten)
	require.Len(t, client.appends, 1)
	assert.Equal(t, [][]string{record("Tool C").Row()}, client.appends[0])
	assert.Empty(t, client.shared)
}

func TestWriteCreatesSheetTabAndHeader(t *testing.T) {
	client := newFakeClient()
	sink, dials := sinkWith(t, client)

	res := sink.Write(context.Background(), []types.ToolRecord{record("Tool A"), record("TOOL A "), record("Tool B")}, "Herramientas IA", "Datos")

	require.NoError(t, res.Err)
	assert.Equal(t, 1, *dials)
	assert.True(t, res.Written)
	assert.True(t, res.HeaderWritten)
	assert.Equal(t, 2, res.Appended)
	assert.Equal(t, []string{"Herramientas IA"}, client.shared)
	assert.Equal(t, "https://sheet/Herramientas IA", res.SpreadsheetURL)
	require.Len(t, client.appends, 2)
	assert.Equal(t, [][]string{types.FieldNames}, client.appends[0])
	assert.Equal(t, "Tool A", client.appends[1][0][0])
	assert.Equal(t, "Tool B", client.appends[1][1][0])
}

func TestWriteNothingNew(t *testing.T) {
	client := newFakeClient()
	client.known["S"] = true
	client.sheets["S/T"] = [][]string{{"fecha", "nombre"}, {"2026-01-01", "Tool A"}}
	sink, _ := sinkWith(t, client)

	res := sink.Write(context.Background(), []types.ToolRecord{record("tool a")}, "S", "T")
	require.NoError(t, res.Err)
	assert.False(t, res.Written)
	assert.Empty(t, client.appends)
	assert.Equal(t, "no new records", res.Reason)
}

func TestWriteReadFailureTreatedAsEmpty(t *testing.T) {
	client := newFakeClient()
	client.known["S"] = true
	client.sheets["S/T"] = [][]string{}
	client.readErr = errors.New("quota")
	sink, _ := sinkWith(t, client)

	res := sink.Write(context.Background(), []types.ToolRecord{record("Tool A")}, "S", "T")
	require.NoError(t, res.Err)
	assert.True(t, res.Written)
	assert.True(t, res.HeaderWritten)
}

func TestWriteMissingCredentialsNoDial(t *testing.T) {
	dials := 0
	sink := NewSink(t.TempDir(), func(context.Context, string) (Client, error) {
		dials++
		return newFakeClient(), nil
	})

	res := sink.Write(context.Background(), []types.ToolRecord{record("Tool A")}, "S", "T")
	assert.False(t, res.Written)
	assert.Equal(t, 0, dials)
	assert.True(t, apperrors.IsKind(res.Err, apperrors.KindCredentialsMissing))
	assert.Equal(t, string(apperrors.KindCredentialsMissing), res.Reason)
}

func TestWriteAPIFailures(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		client := newFakeClient()
		client.openErr = errors.New("forbidden")
		sink, _ := sinkWith(t, client)
		res := sink.Write(context.Background(), []types.ToolRecord{record("Tool A")}, "S", "T")
		assert.False(t, res.Written)
		assert.True(t, apperrors.IsKind(res.Err, apperrors.KindSheetAPI))
	})
	t.Run("append", func(t *testing.T) {
		client := newFakeClient()
		client.known["S"] = true
		client.sheets["S/T"] = [][]string{types.FieldNames}
		client.appendFn = func([][]string) error { return errors.New("rate limited") }
		sink, _ := sinkWith(t, client)
		res := sink.Write(context.Background(), []types.ToolRecord{record("Tool A")}, "S", "T")
		assert.False(t, res.Written)
		assert.True(t, strings.Contains(res.Err.Error(), "rate limited"))
	})
	t.Run("dial", func(t *testing.T) {
		sink := NewSink(credentialsDir(t), func(context.Context, string) (Client, error) {
			return nil, errors.New("bad key")
		})
		res := sink.Write(context.Background(), []types.ToolRecord{record("Tool A")}, "S", "T")
		assert.False(t, res.Written)
		assert.True(t, apperrors.IsKind(res.Err, apperrors.KindSheetAPI))
	})
}

func TestWriteEmptyInput(t *testing.T) {
	sink, dials := sinkWith(t, newFakeClient())
	res := sink.Write(context.Background(), nil, "S", "T")
	assert.False(t, res.Written)
	assert.Equal(t, 0, *dials)
	assert.Equal(t, "no records", res.Reason)
}

func TestLocateCredentialsOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "google_credentials.json"), []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "service_account.json"), []byte("{}"), 0o600))

	got, err := LocateCredentials(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "service_account.json"), got)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "credentials.json"), 0o755))
	got, err = LocateCredentials(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "service_account.json"), got)
}
