package anomaly

// Weights control how the three drift signals are fused into the combined
// score. Only the weights of signals that are actually present are used;
// they are renormalized to sum to 1 before averaging.
type Weights struct {
	Volume   float64 `json:"volume"`
	Category float64 `json:"category"`
	Semantic float64 `json:"semantic"`
}

// DefaultWeights returns the default fusion weights.
func DefaultWeights() Weights {
	return Weights{Volume: 0.3, Category: 0.3, Semantic: 0.4}
}

// Per-signal normalization bounds: |z| of 3 and a cosine distance of 0.5 map
// to a full-scale component of 1.0.
const (
	volumeZFullScale       = 3.0
	semanticDriftFullScale = 0.5
)

// CombineScores fuses whichever drift signals are non-nil into one [0, 1]
// anomaly score. Each signal is normalized to [0, 1] first, then a weighted
// average is taken over the present signals with renormalized weights. All
// signals nil yields 0.0.
func CombineScores(volumeZ, categoryDivergence, semanticDrift *float64, w Weights) float64 {
	var scores, weights []float64

	if volumeZ != nil {
		z := *volumeZ
		if z < 0 {
			z = -z
		}
		scores = append(scores, minFloat(z/volumeZFullScale, 1.0))
		weights = append(weights, w.Volume)
	}
	if categoryDivergence != nil {
		scores = append(scores, *categoryDivergence)
		weights = append(weights, w.Category)
	}
	if semanticDrift != nil {
		scores = append(scores, minFloat(*semanticDrift/semanticDriftFullScale, 1.0))
		weights = append(weights, w.Semantic)
	}

	if len(scores) == 0 {
		return 0.0
	}

	totalWeight := 0.0
	for _, wt := range weights {
		totalWeight += wt
	}
	if totalWeight == 0 {
		return 0.0
	}

	combined := 0.0
	for i, s := range scores {
		combined += s * (weights[i] / totalWeight)
	}
	return clip01(combined)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
