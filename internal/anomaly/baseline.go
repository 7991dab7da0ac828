package anomaly

// Baseline is the raw causal history a window is compared against: per-window
// ticket counts, aggregated category counts over categorized tickets, and all
// embeddings present in the baseline windows.
type Baseline struct {
	Counts         []int
	CategoryCounts map[string]int
	Embeddings     [][]float64
}

// Windows reports the number of windows contributing to the baseline.
func (b Baseline) Windows() int {
	return len(b.Counts)
}

// BaselineProvider yields the baseline for a given window index. ok is false
// when the window must be gated (insufficient history): all drift scores for
// that window are null and its severity is forced to normal.
type BaselineProvider interface {
	For(index int) (Baseline, bool)
}

// Strategy selects how the baseline for each window is derived.
type Strategy string

const (
	// StrategyExpanding compares each window against all strictly earlier
	// windows (causal, default).
	StrategyExpanding Strategy = "expanding"
	// StrategyFixed fits the baseline once from the first MinBaselineWindows
	// windows and reuses it unchanged for every later window.
	StrategyFixed Strategy = "fixed"
)

func newBaselineProvider(strategy Strategy, windows []Window, minWindows int) (BaselineProvider, error) {
	switch strategy {
	case StrategyExpanding, "":
		return &expandingBaseline{windows: windows, minWindows: minWindows}, nil
	case StrategyFixed:
		return newFixedBaseline(windows, minWindows), nil
	default:
		return nil, ErrUnknownStrategy
	}
}

type expandingBaseline struct {
	windows    []Window
	minWindows int
}

func (e *expandingBaseline) For(index int) (Baseline, bool) {
	if index < e.minWindows {
		return Baseline{}, false
	}
	return aggregateBaseline(e.windows[:index]), true
}

// fixedBaseline freezes the first minWindows windows as the reference.
// Windows inside the reference prefix are gated, mirroring the expanding
// variant so swapping strategies never un-gates early windows.
type fixedBaseline struct {
	reference  Baseline
	minWindows int
}

func newFixedBaseline(windows []Window, minWindows int) *fixedBaseline {
	f := &fixedBaseline{minWindows: minWindows}
	if len(windows) >= minWindows {
		f.reference = aggregateBaseline(windows[:minWindows])
	}
	return f
}

func (f *fixedBaseline) For(index int) (Baseline, bool) {
	if index < f.minWindows {
		return Baseline{}, false
	}
	return f.reference, true
}

func aggregateBaseline(windows []Window) Baseline {
	b := Baseline{
		Counts:         make([]int, 0, len(windows)),
		CategoryCounts: map[string]int{},
	}
	for _, w := range windows {
		b.Counts = append(b.Counts, len(w.Tickets))
		for _, t := range w.Tickets {
			if t.Category != "" {
				b.CategoryCounts[t.Category]++
			}
			if t.Embedding != nil {
				b.Embeddings = append(b.Embeddings, t.Embedding)
			}
		}
	}
	return b
}
