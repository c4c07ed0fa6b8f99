package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"harvester/harvester/utils/apperrors"
	"harvester/harvester/utils/jsonutils"
	"harvester/harvester/utils/logging"
	"harvester/harvester/utils/types"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
)

const filePrefix = "herramientas_ia_"

// Writer dumps a run's records to timestamped CSV and JSON files in Dir.
type Writer struct {
	Dir string
}

func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{Dir: dir}
}

// Paths returns the CSV and JSON file names for a run started at ts.
func (w *Writer) Paths(ts time.Time) (string, string) {
	base := filepath.Join(w.Dir, filePrefix+ts.Format(types.TimestampLayout))
	return base + ".csv", base + ".json"
}

// Write attempts both files independently. Failures are logged and recorded on
// the result; neither one stops the other.
func (w *Writer) Write(records []types.ToolRecord, ts time.Time) types.BackupResult {
	if len(records) == 0 {
		return types.BackupResult{Skipped: true}
	}
	csvPath, jsonPath := w.Paths(ts)
	res := types.BackupResult{CSVPath: csvPath, JSONPath: jsonPath}

	if err := writeFile(csvPath, func(f *os.File) error { return gocsv.Marshal(records, f) }); err != nil {
		res.CSVErr = apperrors.LocalWrite(csvPath, err)
		logFailure("CSV", res.CSVErr)
	} else {
		logging.AppLogger.Info(fmt.Sprintf("CSV backup saved: %s", csvPath))
	}

	if err := writeFile(jsonPath, func(f *os.File) error { return jsonutils.Encode(f, records) }); err != nil {
		res.JSONErr = apperrors.LocalWrite(jsonPath, err)
		logFailure("JSON", res.JSONErr)
	} else {
		logging.AppLogger.Info(fmt.Sprintf("JSON backup saved: %s", jsonPath))
	}

	return res
}

func writeFile(path string, encode func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func logFailure(kind string, err error) {
	logging.ErrorLogger.Error("backup write failed", zap.String("format", kind), zap.Error(err))
}
