package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"harvester/harvester/sources/psql/models"
	"harvester/harvester/utils/logging"
	"harvester/harvester/utils/scraper"
	"harvester/harvester/utils/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Aggregator interface {
	Run(ctx context.Context, hooks scraper.Hooks) types.AggregateResult
}

type BackupWriter interface {
	Write(records []types.ToolRecord, ts time.Time) types.BackupResult
}

type Mirror interface {
	UploadFiles(ctx context.Context, runID string, files []string) ([]string, error)
}

type Archive interface {
	SaveRun(ctx context.Context, summary types.Summary, records []types.ToolRecord) (*models.Run, error)
}

type Sink interface {
	Write(ctx context.Context, records []types.ToolRecord, sheetName, tabName string) types.SinkResult
}

type Options struct {
	SheetName string
	TabName   string
}

// Pipeline runs aggregate -> local backup -> mirror -> spreadsheet -> archive.
// Mirror and Archive are optional.
type Pipeline struct {
	aggregator Aggregator
	backup     BackupWriter
	mirror     Mirror
	archive    Archive
	sink       Sink
	opts       Options
	now        func() time.Time
}

func New(aggregator Aggregator, backup BackupWriter, sink Sink, opts Options) *Pipeline {
	return &Pipeline{
		aggregator: aggregator,
		backup:     backup,
		sink:       sink,
		opts:       opts,
		now:        time.Now,
	}
}

func (p *Pipeline) WithMirror(m Mirror) *Pipeline {
	p.mirror = m
	return p
}

func (p *Pipeline) WithArchive(a Archive) *Pipeline {
	p.archive = a
	return p
}

const banner = "=================================================="

// Run executes one full pass. It never fails: every stage problem is reported
// and reflected in the returned summary.
func (p *Pipeline) Run(ctx context.Context, rep Reporter) types.Summary {
	if rep == nil {
		rep = LogReporter{}
	}
	summary := types.Summary{RunID: uuid.NewString(), StartedAt: p.now()}
	ctx = logging.WithRunID(ctx, summary.RunID)
	defer logging.LogDuration(ctx, "Pipeline.Run")()

	emit := func(stage string, level Level, format string, args ...any) {
		rep.Report(Event{
			Time:    p.now(),
			RunID:   summary.RunID,
			Stage:   stage,
			Level:   level,
			Message: fmt.Sprintf(format, args...),
		})
	}

	emit("start", LevelInfo, "STARTING AI TOOLS EXTRACTOR")
	emit("start", LevelInfo, banner)

	summary.Aggregate = p.aggregator.Run(ctx, scraper.Hooks{
		OnStart: func(src scraper.Source) {
			emit("extract", LevelInfo, "extracting tools from %s...", src.Label)
		},
		OnFinish: func(res types.ExtractionResult) {
			if res.Err != nil {
				emit("extract", LevelError, "error extracting from %s: %v", res.Source, res.Err)
				return
			}
			emit("extract", LevelInfo, "extracted %d tools from %s", res.Count, res.Source)
		},
	})
	records := summary.Aggregate.Records
	summary.Total = len(records)

	if len(records) == 0 {
		summary.Status = types.StatusNoRecords
		emit("extract", LevelError, "could not extract tools from any source")
		return p.finish(ctx, summary, emit)
	}
	emit("extract", LevelInfo, "total tools extracted: %d", len(records))

	summary.Backup = p.backup.Write(records, summary.StartedAt)
	for _, err := range []error{summary.Backup.CSVErr, summary.Backup.JSONErr} {
		if err != nil {
			emit("backup", LevelWarn, "%v", err)
		}
	}

	if p.mirror != nil {
		if files := summary.Backup.Files(); len(files) > 0 {
			keys, err := p.mirror.UploadFiles(ctx, summary.RunID, files)
			summary.Mirrored = keys
			if err != nil {
				emit("mirror", LevelWarn, "backup mirror failed: %v", err)
			} else {
				emit("mirror", LevelInfo, "backup mirrored: %s", strings.Join(keys, ", "))
			}
		}
	}

	summary.Sink = p.sink.Write(ctx, records, p.opts.SheetName, p.opts.TabName)
	if summary.Sink.Written {
		summary.Status = types.StatusSuccess
		emit("sheet", LevelInfo, "PROCESS COMPLETED SUCCESSFULLY")
	} else {
		summary.Status = types.StatusSinkFailed
		reason := summary.Sink.Reason
		if summary.Sink.Err != nil {
			reason = summary.Sink.Err.Error()
		}
		emit("sheet", LevelWarn, "process completed with spreadsheet errors (%s)", reason)
	}

	return p.finish(ctx, summary, emit)
}

func (p *Pipeline) finish(ctx context.Context, summary types.Summary, emit func(string, Level, string, ...any)) types.Summary {
	summary.FinishedAt = p.now()

	if p.archive != nil && summary.Total > 0 {
		if _, err := p.archive.SaveRun(ctx, summary, summary.Aggregate.Records); err != nil {
			logging.ErrorLogger.Error("archive run failed", zap.String("run_id", summary.RunID), zap.Error(err))
			emit("archive", LevelWarn, "run archive failed: %v", err)
		} else {
			summary.Archived = true
		}
	}

	emit("finish", LevelInfo, banner)
	emit("finish", LevelInfo, "extractor finished")
	return summary
}
