package pipeline

import (
	"context"

	"harvester/harvester/config"
	"harvester/harvester/sources/backup"
	"harvester/harvester/sources/psql"
	"harvester/harvester/sources/psql/dao"
	"harvester/harvester/sources/sheets"
	"harvester/harvester/sources/storage"
	httputils "harvester/harvester/utils/http"
	"harvester/harvester/utils/logging"
	"harvester/harvester/utils/scraper"

	"go.uber.org/zap"
)

// Deps are the optional collaborators Build managed to connect.
type Deps struct {
	Database *psql.Database
	Runs     *dao.RunDAO
	MinIO    *storage.MinIOClient
}

func (d *Deps) Close() {
	if d.Database != nil {
		d.Database.Close()
	}
}

// Build wires a pipeline from cfg. Optional stores that fail to connect are
// logged and left out; Build itself does not fail.
func Build(ctx context.Context, cfg config.Config) (*Pipeline, *Deps) {
	overrides, err := config.LoadSourceOverrides(cfg.SourcesFile)
	if err != nil {
		logging.AppLogger.Warn("ignoring sources file", zap.Error(err))
	}
	sources := scraper.ApplyOverrides(scraper.DefaultSources(), overrides)

	fetcher := httputils.NewFetcher(cfg.UserAgent, cfg.HTTPTimeout)
	extractors := make([]*scraper.Extractor, 0, len(sources))
	for _, src := range sources {
		extractors = append(extractors, scraper.NewExtractor(src, fetcher))
	}

	p := New(
		scraper.NewAggregator(extractors, cfg.SourcePause),
		backup.NewWriter(cfg.BackupDir),
		sheets.NewSink(cfg.CredentialsDir, sheets.DialGoogle),
		Options{SheetName: cfg.SheetName, TabName: cfg.SheetTab},
	)

	deps := &Deps{}
	if cfg.MinIOEnabled() {
		m, err := storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			logging.AppLogger.Warn("backup mirror disabled", zap.Error(err))
			logging.ErrorLogger.Error("minio connection error", zap.Error(err))
		} else {
			deps.MinIO = m
			p.WithMirror(m)
		}
	}
	if cfg.DatabaseEnabled() {
		db, err := psql.NewDatabase(ctx, cfg)
		if err != nil {
			logging.AppLogger.Warn("run archive disabled", zap.Error(err))
			logging.ErrorLogger.Error("database connection error", zap.Error(err))
		} else {
			deps.Database = db
			deps.Runs = dao.NewRunDAO(db.DB)
			p.WithArchive(deps.Runs)
		}
	}
	return p, deps
}
