// Command-line entrypoint: one full extraction run, no arguments.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"harvester/harvester/config"
	"harvester/harvester/services/pipeline"
	"harvester/harvester/utils/color"
	"harvester/harvester/utils/logging"
	"harvester/harvester/utils/types"
)

func main() {
	cfg := config.LoadConfig()
	if err := logging.InitLogger(cfg.LogDir); err != nil {
		fmt.Fprintln(os.Stderr, "log files disabled:", err)
	}
	defer logging.Sync()

	ctx := context.Background()
	p, deps := pipeline.Build(ctx, cfg)
	defer deps.Close()

	summary := p.Run(ctx, pipeline.LogReporter{})
	printSummary(summary)
}

func printSummary(s types.Summary) {
	fmt.Println()
	fmt.Println(color.ColorHeader("Run " + s.RunID))
	for _, src := range s.Aggregate.Sources {
		if src.OK() {
			fmt.Printf("  %-16s %s\n", src.Source, color.ColorInfo(fmt.Sprintf("%d tools", src.Count)))
		} else {
			fmt.Printf("  %-16s %s\n", src.Source, color.ColorError("failed: "+src.Reason))
		}
	}
	if files := s.Backup.Files(); len(files) > 0 {
		fmt.Printf("  %-16s %s\n", "backup", strings.Join(files, ", "))
	}

	switch s.Status {
	case types.StatusSuccess:
		fmt.Println(color.ColorSuccess(fmt.Sprintf("  %d new rows in the spreadsheet", s.Sink.Appended)))
	case types.StatusSinkFailed:
		fmt.Println(color.ColorWarning("  spreadsheet not updated: " + s.Sink.Reason))
	default:
		fmt.Println(color.ColorError("  no tools extracted"))
	}
}
