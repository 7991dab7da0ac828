package anomaly

import (
	"errors"
	"fmt"
	"time"

	"github.com/ticketdrift/backend/internal/models"
)

// Configuration errors are caller mistakes and fail fast at Analyze time.
// Statistical degeneracy (empty baselines, missing signals, zero variance)
// is never an error; it degrades to null scores.
var (
	ErrInvalidWindowSize  = errors.New("window size must be positive")
	ErrInvalidMinBaseline = errors.New("min baseline windows must be at least 1")
	ErrTooManyWindows     = errors.New("time span produces too many windows")
	ErrUnknownStrategy    = errors.New("unknown baseline strategy")
	ErrEmbeddingDimension = errors.New("embedding dimensionality mismatch")
)

// DefaultMaxWindows bounds the partitioner against pathological spans
// (years of data with a tiny window size).
const DefaultMaxWindows = 10000

// DefaultZeroVarianceZ is the sentinel z-score magnitude reported when the
// baseline counts have zero variance and the current count deviates from the
// mean. The magnitude is a reporting convention, not a derived statistic;
// tune it via Options rather than inferring intent from it.
const DefaultZeroVarianceZ = 5.0

// Options configure one analysis run.
type Options struct {
	WindowSize         time.Duration
	MinBaselineWindows int
	Weights            Weights
	SeverityThresholds SeverityThresholds
	ReasonThresholds   ReasonThresholds
	ZeroVarianceZ      float64
	Strategy           Strategy
	MaxWindows         int
}

// DefaultOptions returns the standard configuration: daily windows, causal
// expanding baseline with at least 3 history windows.
func DefaultOptions() Options {
	return Options{
		WindowSize:         24 * time.Hour,
		MinBaselineWindows: 3,
		Weights:            DefaultWeights(),
		SeverityThresholds: DefaultSeverityThresholds(),
		ReasonThresholds:   DefaultReasonThresholds(),
		ZeroVarianceZ:      DefaultZeroVarianceZ,
		Strategy:           StrategyExpanding,
		MaxWindows:         DefaultMaxWindows,
	}
}

func (o Options) validate() error {
	if o.WindowSize <= 0 {
		return ErrInvalidWindowSize
	}
	if o.MinBaselineWindows < 1 {
		return ErrInvalidMinBaseline
	}
	return nil
}

// Engine runs the full windowed drift analysis. It is stateless and
// side-effect-free: every call partitions its own input and returns fresh
// results, so concurrent callers need no coordination.
type Engine struct {
	opts Options
}

// NewEngine validates the options and returns an engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.ZeroVarianceZ == 0 {
		opts.ZeroVarianceZ = DefaultZeroVarianceZ
	}
	if opts.MaxWindows == 0 {
		opts.MaxWindows = DefaultMaxWindows
	}
	switch opts.Strategy {
	case "":
		opts.Strategy = StrategyExpanding
	case StrategyExpanding, StrategyFixed:
	default:
		return nil, ErrUnknownStrategy
	}
	return &Engine{opts: opts}, nil
}

// Analyze partitions the tickets into time windows, scores each window
// against its baseline, classifies severity and extracts anomaly events.
// Both result slices are in chronological order; events are produced 1:1
// from windows whose severity is not normal. An empty ticket stream yields
// empty output, not an error.
func (e *Engine) Analyze(tickets []models.Ticket) ([]models.WindowStats, []models.AnomalyEvent, error) {
	if err := validateEmbeddingDims(tickets); err != nil {
		return nil, nil, err
	}

	windows, err := BuildTimeWindows(tickets, e.opts.WindowSize, e.opts.MaxWindows)
	if err != nil {
		return nil, nil, err
	}
	if len(windows) == 0 {
		return nil, nil, nil
	}

	provider, err := newBaselineProvider(e.opts.Strategy, windows, e.opts.MinBaselineWindows)
	if err != nil {
		return nil, nil, err
	}

	stats := make([]models.WindowStats, 0, len(windows))
	var events []models.AnomalyEvent

	for i, w := range windows {
		ws := models.WindowStats{
			WindowStart:  w.Start,
			WindowEnd:    w.End,
			TotalTickets: len(w.Tickets),
			Severity:     models.SeverityNormal,
			Reasons:      []string{},
		}

		if baseline, ok := provider.For(i); ok {
			ws.VolumeZ = VolumeZScore(len(w.Tickets), baseline.Counts, e.opts.ZeroVarianceZ)
			ws.CategoryDivergence = e.categoryDivergence(w, baseline)
			ws.SemanticDrift = e.semanticDrift(w, baseline)

			ws.CombinedScore = CombineScores(ws.VolumeZ, ws.CategoryDivergence, ws.SemanticDrift, e.opts.Weights)
			ws.Severity = ClassifySeverity(ws.CombinedScore, e.opts.SeverityThresholds)
			ws.Reasons = GenerateReasons(ws.VolumeZ, ws.CategoryDivergence, ws.SemanticDrift, e.opts.ReasonThresholds)
			if ws.Reasons == nil {
				ws.Reasons = []string{}
			}
		}

		stats = append(stats, ws)

		if ws.Severity != models.SeverityNormal {
			events = append(events, models.AnomalyEvent{
				WindowStart: ws.WindowStart,
				WindowEnd:   ws.WindowEnd,
				Severity:    ws.Severity,
				Score:       ws.CombinedScore,
				Reasons:     ws.Reasons,
			})
		}
	}

	return stats, events, nil
}

// categoryDivergence requires at least one categorized ticket on each side;
// otherwise the signal is null.
func (e *Engine) categoryDivergence(w Window, baseline Baseline) *float64 {
	currentCounts := map[string]int{}
	for _, t := range w.Tickets {
		if t.Category != "" {
			currentCounts[t.Category]++
		}
	}
	if len(currentCounts) == 0 || len(baseline.CategoryCounts) == 0 {
		return nil
	}
	div := JensenShannonDivergence(
		CategoryDistribution(currentCounts),
		CategoryDistribution(baseline.CategoryCounts),
	)
	return &div
}

func (e *Engine) semanticDrift(w Window, baseline Baseline) *float64 {
	var current [][]float64
	for _, t := range w.Tickets {
		if t.Embedding != nil {
			current = append(current, t.Embedding)
		}
	}
	return SemanticDrift(current, baseline.Embeddings)
}

// validateEmbeddingDims rejects batches whose embeddings disagree on
// dimensionality: cosine distances across mismatched vectors would be
// meaningless, so this raises distinctly instead of degrading to null.
func validateEmbeddingDims(tickets []models.Ticket) error {
	dim := -1
	for _, t := range tickets {
		if t.Embedding == nil {
			continue
		}
		if dim == -1 {
			dim = len(t.Embedding)
			continue
		}
		if len(t.Embedding) != dim {
			return fmt.Errorf("%w: ticket %s has dimension %d, expected %d",
				ErrEmbeddingDimension, t.ID, len(t.Embedding), dim)
		}
	}
	return nil
}

// Analyze is a convenience wrapper running a one-off analysis with the given
// options.
func Analyze(tickets []models.Ticket, opts Options) ([]models.WindowStats, []models.AnomalyEvent, error) {
	engine, err := NewEngine(opts)
	if err != nil {
		return nil, nil, err
	}
	return engine.Analyze(tickets)
}
