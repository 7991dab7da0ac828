package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ticketdrift/backend/internal/anomaly"
	"github.com/ticketdrift/backend/internal/cache"
	"github.com/ticketdrift/backend/internal/models"
)

// TicketSource loads the ticket batch for one analysis run. *db.Store
// satisfies it; tests substitute an in-memory source.
type TicketSource interface {
	ListTicketsForAnalysis(ctx context.Context, source string) ([]models.Ticket, error)
}

// AnalysisResult bundles one full engine run.
type AnalysisResult struct {
	Stats  []models.WindowStats  `json:"windows"`
	Events []models.AnomalyEvent `json:"events"`
}

// AnalysisService runs the anomaly engine over stored tickets. Results are
// memoized in the injected TTL cache keyed by data source and window
// configuration; the engine itself stays cache-free and deterministic.
type AnalysisService struct {
	Source TicketSource
	Cache  *cache.TTLCache
	Logger zerolog.Logger
}

// Analyze loads the source's tickets and runs the engine with the given
// options. useCache=false forces a fresh run (admin re-analysis).
func (s *AnalysisService) Analyze(ctx context.Context, source string, opts anomaly.Options, useCache bool) (AnalysisResult, error) {
	key := cacheKey(source, opts)
	if useCache {
		if v, ok := s.Cache.Get(key); ok {
			s.Logger.Debug().Str("key", key).Msg("using cached anomaly results")
			return v.(AnalysisResult), nil
		}
	}

	tickets, err := s.Source.ListTicketsForAnalysis(ctx, source)
	if err != nil {
		return AnalysisResult{}, err
	}

	s.Logger.Info().
		Int("total_tickets", len(tickets)).
		Dur("window_size", opts.WindowSize).
		Str("strategy", string(opts.Strategy)).
		Msg("analyzing ticket stream")

	stats, events, err := anomaly.Analyze(tickets, opts)
	if err != nil {
		return AnalysisResult{}, err
	}

	result := AnalysisResult{Stats: stats, Events: events}
	s.Logger.Info().
		Int("total_windows", len(stats)).
		Int("anomaly_events", len(events)).
		Msg("anomaly analysis complete")

	if useCache {
		s.Cache.Set(key, result)
	}
	return result, nil
}

// InvalidateSource drops cached results for a source after re-import. The
// cache key embeds the full window configuration, so a flush is the only
// safe way to cover every variant.
func (s *AnalysisService) InvalidateSource(source string) {
	s.Cache.Flush()
}

func cacheKey(source string, opts anomaly.Options) string {
	return fmt.Sprintf("%s|%s|%d|%s", source, opts.WindowSize, opts.MinBaselineWindows, opts.Strategy)
}

// Summary aggregates windows for the stats endpoint.
type Summary struct {
	TotalWindows     int            `json:"total_windows"`
	TotalTickets     int            `json:"total_tickets"`
	AnomalousWindows int            `json:"anomalous_windows"`
	SeverityCounts   map[string]int `json:"severity_distribution"`
}

// Summarize computes the stats-endpoint summary for a result.
func Summarize(result AnalysisResult) Summary {
	s := Summary{SeverityCounts: map[string]int{}}
	for _, w := range result.Stats {
		s.TotalWindows++
		s.TotalTickets += w.TotalTickets
		s.SeverityCounts[w.Severity]++
		if w.Severity != models.SeverityNormal {
			s.AnomalousWindows++
		}
	}
	return s
}

// FilterEvents keeps events at or above the given minimum severity.
func FilterEvents(events []models.AnomalyEvent, minSeverity string) []models.AnomalyEvent {
	minRank := models.SeverityRank(minSeverity)
	out := make([]models.AnomalyEvent, 0, len(events))
	for _, e := range events {
		if models.SeverityRank(e.Severity) >= minRank {
			out = append(out, e)
		}
	}
	return out
}
