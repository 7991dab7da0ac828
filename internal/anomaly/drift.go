package anomaly

import "math"

const jsdEpsilon = 1e-10

// VolumeZScore returns how many standard deviations currentCount sits from
// the mean of the baseline counts (population std, divide-by-N). Returns nil
// when there is no baseline. When the baseline has zero variance any
// deviation would be an infinite z-score, so a fixed sentinel magnitude is
// returned instead: +sentinel above the mean, -sentinel below, 0 on the mean.
func VolumeZScore(currentCount int, baselineCounts []int, sentinel float64) *float64 {
	if len(baselineCounts) == 0 {
		return nil
	}

	mean := 0.0
	for _, c := range baselineCounts {
		mean += float64(c)
	}
	mean /= float64(len(baselineCounts))

	variance := 0.0
	for _, c := range baselineCounts {
		d := float64(c) - mean
		variance += d * d
	}
	variance /= float64(len(baselineCounts))
	std := math.Sqrt(variance)

	if std == 0 {
		z := 0.0
		switch {
		case float64(currentCount) > mean:
			z = sentinel
		case float64(currentCount) < mean:
			z = -sentinel
		}
		return &z
	}

	z := (float64(currentCount) - mean) / std
	return &z
}

// JensenShannonDivergence computes the JS divergence between two category
// proportion distributions, normalized by ln(2) into [0, 1]. The support is
// the union of both key sets; a small epsilon avoids log(0).
func JensenShannonDivergence(dist1, dist2 map[string]float64) float64 {
	keys := map[string]struct{}{}
	for k := range dist1 {
		keys[k] = struct{}{}
	}
	for k := range dist2 {
		keys[k] = struct{}{}
	}
	if len(keys) == 0 {
		return 0.0
	}

	p := make([]float64, 0, len(keys))
	q := make([]float64, 0, len(keys))
	var pSum, qSum float64
	for k := range keys {
		pv := dist1[k] + jsdEpsilon
		qv := dist2[k] + jsdEpsilon
		p = append(p, pv)
		q = append(q, qv)
		pSum += pv
		qSum += qv
	}

	var js float64
	for i := range p {
		pi := p[i] / pSum
		qi := q[i] / qSum
		mi := (pi + qi) / 2.0
		js += pi*math.Log(pi/mi)/2.0 + qi*math.Log(qi/mi)/2.0
	}

	return clip01(js / math.Ln2)
}

// SemanticDrift is the cosine distance between the mean embedding of the
// current window and the mean embedding of the baseline. Returns nil when
// either side has no embeddings or a zero-norm mean vector.
func SemanticDrift(currentEmbeddings, baselineEmbeddings [][]float64) *float64 {
	if len(currentEmbeddings) == 0 || len(baselineEmbeddings) == 0 {
		return nil
	}

	currentMean := meanVector(currentEmbeddings)
	baselineMean := meanVector(baselineEmbeddings)

	var dot, normCur, normBase float64
	for i := range currentMean {
		dot += currentMean[i] * baselineMean[i]
		normCur += currentMean[i] * currentMean[i]
		normBase += baselineMean[i] * baselineMean[i]
	}
	normProduct := math.Sqrt(normCur) * math.Sqrt(normBase)
	if normProduct == 0 {
		return nil
	}

	dist := clip01(1.0 - dot/normProduct)
	return &dist
}

// CategoryDistribution converts category counts into proportions.
func CategoryDistribution(counts map[string]int) map[string]float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return nil
	}
	dist := make(map[string]float64, len(counts))
	for k, c := range counts {
		dist[k] = float64(c) / float64(total)
	}
	return dist
}

func meanVector(vectors [][]float64) []float64 {
	mean := make([]float64, len(vectors[0]))
	for _, v := range vectors {
		for i := range v {
			mean[i] += v[i]
		}
	}
	for i := range mean {
		mean[i] /= float64(len(vectors))
	}
	return mean
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
