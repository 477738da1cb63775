package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pipeline runs Requester -> Parser for one request. It keeps no state
// between calls; the fields are shared, read-only collaborators.
type Pipeline struct {
	requester *Requester
	renderer  *Renderer
	metrics   *Metrics
	logger    *zap.Logger
}

// NewPipeline wires the pipeline stages. metrics and logger may be nil.
func NewPipeline(llm Completer, renderer *Renderer, metrics *Metrics, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = NewRenderer()
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Pipeline{
		requester: NewRequester(llm, logger),
		renderer:  renderer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Generate requests a schedule and parses it. On error the report is empty
// and err wraps ErrGeneration.
func (p *Pipeline) Generate(ctx context.Context, req ScheduleRequest) (ParseReport, error) {
	start := time.Now()
	text, err := p.requester.Request(ctx, req)
	p.metrics.generationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.generations.WithLabelValues(OutcomeError).Inc()
		return ParseReport{Records: []DayRecord{}}, err
	}
	p.metrics.generations.WithLabelValues(OutcomeOK).Inc()

	report := ParseScheduleReport(text)
	p.metrics.parsedRecords.Observe(float64(len(report.Records)))
	p.metrics.ignoredLines.Add(float64(len(report.Ignored)))

	for _, ign := range report.Ignored {
		p.logger.Debug("ignored schedule line",
			zap.Int("line", ign.Line),
			zap.String("reason", ign.Reason),
			zap.String("text", ign.Text))
	}
	if len(report.Records) == 0 {
		p.logger.Warn("generator reply contained no day records",
			zap.Int("chars", len(text)),
			zap.Int("ignored_lines", len(report.Ignored)))
	}

	p.logger.Info("schedule parsed",
		zap.Int("task_chars", len(req.Task)),
		zap.String("start_date", req.StartDate),
		zap.String("deadline", req.Deadline),
		zap.Int("records", len(report.Records)),
		zap.Int("ignored_lines", len(report.Ignored)),
		zap.Duration("duration", time.Since(start)))

	return report, nil
}

// Renderer returns the renderer used for PDF exports
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// RecordDownload counts a finished export
func (p *Pipeline) RecordDownload(format string) {
	p.metrics.downloads.WithLabelValues(format).Inc()
}
