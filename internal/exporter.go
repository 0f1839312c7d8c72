package internal

import (
	"context"
	"fmt"
	"io"
	"scoutd/internal/export"
	"scoutd/internal/models"
	"scoutd/internal/providers"
	"scoutd/internal/services"
	"scoutd/internal/snapshot/interfaces"
)

// Exporter renders CSV sheets straight from the store, without the HTTP
// server. It loads the last snapshot first so the memory driver has data.
type Exporter struct {
	aggregation services.AggregationServiceInterface
	scheduler   interfaces.SchedulerInterface
	logger      providers.Logger
}

func NewExporter(aggregation services.AggregationServiceInterface, scheduler interfaces.SchedulerInterface, logger providers.Logger) *Exporter {
	return &Exporter{
		aggregation: aggregation,
		scheduler:   scheduler,
		logger:      logger,
	}
}

// Export writes the sheet for kind to w and returns the number of rows.
func (e *Exporter) Export(ctx context.Context, kind string, w io.Writer) (int, error) {
	sheet, ok := export.SheetFor(kind)
	if !ok {
		return 0, fmt.Errorf("unknown export kind %q", kind)
	}

	if err := e.scheduler.Restore(); err != nil {
		return 0, fmt.Errorf("restore snapshot: %w", err)
	}

	var (
		records []models.ScoutRecord
		err     error
	)
	if kind == export.PitSheet.Kind {
		records, err = e.aggregation.PitRecords(ctx)
	} else {
		records, err = e.aggregation.MatchRecords(ctx)
	}
	if err != nil {
		return 0, err
	}

	if err = sheet.Write(w, records); err != nil {
		return 0, err
	}
	e.logger.Infof(providers.TypeApp, "Exported %d %s records", len(records), kind)
	return len(records), nil
}
