package app

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/turtacn/Resonance-Intelligence/internal/application/reporting"
	"github.com/turtacn/Resonance-Intelligence/internal/domain/event"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

// ReportGenerator renders and stores the report of an analysis.
type ReportGenerator interface {
	Generate(ctx context.Context, key string) (*reporting.ReportResult, error)
}

// NewReportHandler regenerates the campaign report for every completed
// analysis. The analysis is addressed by the event's aggregate id, or by the
// message key when the payload carries none.
func NewReportHandler(reports ReportGenerator, logger logging.Logger, metrics *prometheus.AppMetrics) kafka.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("report-worker")

	return func(ctx context.Context, msg *kafka.Message) (err error) {
		start := time.Now()
		if metrics != nil {
			defer func() { prometheus.RecordMessage(metrics, msg.Topic, err, time.Since(start)) }()
		}

		var e event.AnalysisCompleted
		if uerr := json.Unmarshal(msg.Value, &e); uerr != nil {
			return errors.Wrap(uerr, errors.ErrCodeSerialization, "failed to decode analysis event")
		}
		key := strings.TrimSpace(e.AggregateID())
		if key == "" {
			key = strings.TrimSpace(string(msg.Key))
		}
		if key == "" {
			return errors.New(errors.ErrCodeValidation, "analysis event carries no key")
		}

		res, err := reports.Generate(ctx, key)
		if err != nil {
			logger.Error("report generation failed", logging.AnalysisKey(key), logging.Err(err))
			return err
		}
		logger.Info("report generated",
			logging.AnalysisKey(key),
			logging.String("report", res.Filename),
			logging.String("version", res.Version),
			logging.Duration("elapsed", time.Since(start)))
		return nil
	}
}

//Personal.AI order the ending
