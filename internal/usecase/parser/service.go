// Package parser resolves a free-text query into filters: cache first, then
// rule-based detection, then the language model.
package parser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/usersearch/internal/domain/query"
	"github.com/kailas-cloud/usersearch/internal/metrics"
	"github.com/kailas-cloud/usersearch/internal/normalize"
)

// Mode selects the parse discipline.
type Mode string

const (
	// ModeTiered is cache, then detectors, then the model.
	ModeTiered Mode = "tiered"
	// ModeModelOnly sends every query to the model with no cache and no detectors.
	ModeModelOnly Mode = "model_only"
)

// ParseMode validates a mode name. Empty means tiered.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeTiered, nil
	case ModeTiered, ModeModelOnly:
		return m, nil
	default:
		return "", fmt.Errorf("unknown parser mode %q", s)
	}
}

// Source tells which stage produced a parse.
type Source string

// Parse sources, also used as metric labels.
const (
	SourceCache    Source = "cache"
	SourcePattern  Source = "pattern"
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
	SourceEmpty    Source = "empty"
)

// User-facing warnings added by the orchestrator.
const (
	WarnEmptyQuery    = "Empty query - showing all users"
	WarnUninterpreted = "Query could not be interpreted - showing all users"
	WarnNoFilters     = "No filters recognized in query - showing all users"
)

// Outcome is the result of one parse.
type Outcome struct {
	Filters query.Filters
	Source  Source
}

// Service is the parse orchestrator. It never fails: model errors end in
// empty, not-understood filters with a warning.
type Service struct {
	mode     Mode
	cache    Cache
	detector Detector
	model    Model
	logger   *zap.Logger
}

// New creates the orchestrator. cache and model may be nil; in model-only mode
// cache and detector are ignored.
func New(mode Mode, cache Cache, detector Detector, model Model, logger *zap.Logger) *Service {
	if mode == "" {
		mode = ModeTiered
	}
	return &Service{mode: mode, cache: cache, detector: detector, model: model, logger: logger}
}

// Mode returns the configured discipline.
func (s *Service) Mode() Mode { return s.mode }

// Parse resolves raw query text into filters.
func (s *Service) Parse(ctx context.Context, raw string) Outcome {
	start := time.Now()
	out := s.parse(ctx, raw)

	metrics.ParseTotal.WithLabelValues(string(out.Source)).Inc()
	metrics.ParseDuration.WithLabelValues(string(out.Source)).Observe(time.Since(start).Seconds())
	s.logger.Debug("Query parsed",
		zap.String("query", raw),
		zap.String("source", string(out.Source)),
		zap.Bool("understood", out.Filters.Understood()),
		zap.Strings("warnings", out.Filters.Warnings()),
		zap.Duration("duration", time.Since(start)),
	)
	return out
}

func (s *Service) parse(ctx context.Context, raw string) Outcome {
	text := normalize.FirstLine(strings.TrimSpace(raw))
	if strings.TrimSpace(text) == "" {
		return Outcome{Filters: query.Empty(WarnEmptyQuery), Source: SourceEmpty}
	}

	if s.mode == ModeModelOnly {
		return s.fromModel(ctx, text, nil)
	}

	if s.cache != nil {
		if f, ok := s.cache.Get(ctx, text); ok {
			return Outcome{Filters: f, Source: SourceCache}
		}
	}

	det := s.detector.Detect(normalize.Normalize(text))
	if det.Found() {
		f := det.Filters()
		s.put(ctx, text, f)
		return Outcome{Filters: f, Source: SourcePattern}
	}

	out := s.fromModel(ctx, text, det.Warnings)
	if out.Source == SourceModel && out.Filters.Understood() {
		s.put(ctx, text, out.Filters)
	}
	return out
}

// fromModel asks the model and applies the failure fallback. Detector
// warnings from a miss are carried into the result. With no model configured
// every miss ends in the fallback.
func (s *Service) fromModel(ctx context.Context, text string, carried []string) Outcome {
	if s.model == nil {
		return Outcome{
			Filters: query.Empty(carried...).WithWarnings(WarnUninterpreted),
			Source:  SourceFallback,
		}
	}
	f, err := s.model.ParseFilters(ctx, text)
	if err != nil {
		s.logger.Warn("Model parse failed, showing all users", zap.String("query", text), zap.Error(err))
		return Outcome{
			Filters: query.Empty(carried...).WithWarnings(WarnUninterpreted),
			Source:  SourceFallback,
		}
	}

	f = f.WithWarnings(carried...)
	if !f.HasFilter() {
		f = query.New(f.Fields(), false, f.Warnings()).WithWarnings(WarnNoFilters)
	}
	return Outcome{Filters: f, Source: SourceModel}
}

func (s *Service) put(ctx context.Context, text string, f query.Filters) {
	if s.cache != nil {
		s.cache.Put(ctx, text, f)
	}
}
