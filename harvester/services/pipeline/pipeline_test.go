package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"harvester/harvester/config"
	"harvester/harvester/sources/backup"
	"harvester/harvester/sources/psql/models"
	"harvester/harvester/sources/sheets"
	httputils "harvester/harvester/utils/http"
	"harvester/harvester/utils/scraper"
	"harvester/harvester/utils/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const futurePage = `<div class="tool-card"><h3>Tool A</h3><p>first</p><a href="/t/a">a</a></div>
<div class="tool-card"><h3>tool a</h3></div>
<div class="tool-card"><h3>Tool B</h3></div>`

const toolifyPage = `<ul><li><a href="/tool/c">Tool C</a><p>third</p></li></ul>`

// newSources serves both directory pages from one test server. A nil page hangs until the client gives up.
func newSources(t *testing.T, pages map[string]*string) []scraper.Source {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if page == nil {
			<-r.Context().Done()
			return
		}
		w.Write([]byte(*page))
	}))
	t.Cleanup(srv.Close)

	return scraper.ApplyOverrides(scraper.DefaultSources(), map[string]config.SourceOverride{
		"futuretools": {URL: srv.URL + "/futuretools", Origin: "https://www.futuretools.io"},
		"toolify":     {URL: srv.URL + "/toolify", Origin: "https://www.toolify.ai"},
	})
}

func newAggregator(sources []scraper.Source, timeout time.Duration) *scraper.Aggregator {
	fetcher := httputils.NewFetcher(config.DefaultUserAgent, timeout)
	var extractors []*scraper.Extractor
	for _, s := range sources {
		extractors = append(extractors, scraper.NewExtractor(s, fetcher))
	}
	return scraper.NewAggregator(extractors, time.Millisecond)
}

type recordingSink struct {
	got    []types.ToolRecord
	result types.SinkResult
}

func (s *recordingSink) Write(_ context.Context, records []types.ToolRecord, _, _ string) types.SinkResult {
	s.got = records
	return s.result
}

type recordingMirror struct{ files []string }

func (m *recordingMirror) UploadFiles(_ context.Context, runID string, files []string) ([]string, error) {
	m.files = files
	return []string{"backups/" + runID}, nil
}

type failingArchive struct{ calls int }

func (a *failingArchive) SaveRun(context.Context, types.Summary, []types.ToolRecord) (*models.Run, error) {
	a.calls++
	return nil, errors.New("db down")
}

func collect(events *[]Event) Reporter {
	return ReporterFunc(func(e Event) { *events = append(*events, e) })
}

func TestRunSuccess(t *testing.T) {
	fp, tp := futurePage, toolifyPage
	sources := newSources(t, map[string]*string{"/futuretools": &fp, "/toolify": &tp})
	sink := &recordingSink{result: types.SinkResult{Written: true, Appended: 3}}
	mirror := &recordingMirror{}
	archive := &failingArchive{}

	p := New(newAggregator(sources, time.Second), backup.NewWriter(t.TempDir()), sink, Options{SheetName: "S", TabName: "T"}).
		WithMirror(mirror).
		WithArchive(archive)

	var events []Event
	summary := p.Run(context.Background(), collect(&events))

	assert.Equal(t, types.StatusSuccess, summary.Status)
	assert.Equal(t, 3, summary.Total)
	names := []string{}
	for _, r := range sink.got {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Tool A", "Tool B", "Tool C"}, names)
	assert.Equal(t, "https://www.futuretools.io/t/a", sink.got[0].URL)
	assert.Equal(t, "https://www.toolify.ai/tool/c", sink.got[2].URL)

	assert.Len(t, mirror.files, 2)
	assert.Equal(t, []string{"backups/" + summary.RunID}, summary.Mirrored)
	assert.Equal(t, 1, archive.calls)
	assert.False(t, summary.Archived)

	require.NotEmpty(t, events)
	assert.Equal(t, "extractor finished", events[len(events)-1].Message)
	for _, e := range events {
		assert.Equal(t, summary.RunID, e.RunID)
	}
}

func TestRunSourceTimeoutAndMissingCredentials(t *testing.T) {
	tp := toolifyPage
	sources := newSources(t, map[string]*string{"/futuretools": nil, "/toolify": &tp})
	backupDir := t.TempDir()

	sink := sheets.NewSink(t.TempDir(), func(context.Context, string) (sheets.Client, error) {
		t.Fatal("no credentials file, dial must not happen")
		return nil, nil
	})
	p := New(newAggregator(sources, 100*time.Millisecond), backup.NewWriter(backupDir), sink, Options{SheetName: "S", TabName: "T"})

	summary := p.Run(context.Background(), nil)

	require.Len(t, summary.Aggregate.Sources, 2)
	assert.False(t, summary.Aggregate.Sources[0].OK())
	assert.Empty(t, summary.Aggregate.Sources[0].Records)
	assert.True(t, summary.Aggregate.Sources[1].OK())
	assert.Equal(t, 1, summary.Total)

	assert.False(t, summary.Sink.Written)
	assert.Equal(t, types.StatusSinkFailed, summary.Status)

	assert.Len(t, summary.Backup.Files(), 2)
	for _, f := range summary.Backup.Files() {
		_, err := os.Stat(f)
		assert.NoError(t, err)
	}
}

func TestRunNoRecords(t *testing.T) {
	empty := "<html></html>"
	sources := newSources(t, map[string]*string{"/futuretools": &empty})
	sink := &recordingSink{}
	archive := &failingArchive{}
	backupDir := t.TempDir()

	p := New(newAggregator(sources, time.Second), backup.NewWriter(backupDir), sink, Options{}).WithArchive(archive)
	var events []Event
	summary := p.Run(context.Background(), collect(&events))

	assert.Equal(t, types.StatusNoRecords, summary.Status)
	assert.Nil(t, sink.got)
	assert.Equal(t, 0, archive.calls)
	assert.Empty(t, summary.Backup.Files())
	entries, _ := os.ReadDir(backupDir)
	assert.Empty(t, entries)
	assert.Equal(t, "extractor finished", events[len(events)-1].Message)
}

func TestMultiReporter(t *testing.T) {
	var a, b []Event
	Multi(collect(&a), nil, collect(&b)).Report(Event{Message: "x"})
	assert.Len(t, a, 1)
	assert.Len(t, b, 1)
}
