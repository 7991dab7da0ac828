package anomaly

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestCombineScoresAllNull(t *testing.T) {
	if got := CombineScores(nil, nil, nil, DefaultWeights()); got != 0.0 {
		t.Fatalf("expected 0 for all-null signals, got %f", got)
	}
}

func TestCombineScoresRenormalizesSingleSignal(t *testing.T) {
	// Only volume present: combined must equal the volume component itself,
	// not the component scaled by its nominal 0.3 weight.
	got := CombineScores(fp(1.5), nil, nil, DefaultWeights())
	want := 1.5 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestCombineScoresVolumeUsesAbsoluteZ(t *testing.T) {
	up := CombineScores(fp(2.0), nil, nil, DefaultWeights())
	down := CombineScores(fp(-2.0), nil, nil, DefaultWeights())
	if up != down {
		t.Fatalf("expected |z| symmetry, got %f vs %f", up, down)
	}
}

func TestCombineScoresClampsComponents(t *testing.T) {
	got := CombineScores(fp(12.0), nil, fp(0.9), DefaultWeights())
	// volume clamps at 1.0, semantic clamps at 1.0; weighted average of 1s is 1.
	if got != 1.0 {
		t.Fatalf("expected clamped combined score 1.0, got %f", got)
	}
}

func TestCombineScoresTwoSignals(t *testing.T) {
	// volume component 0.5 (z=1.5), category 0.4; weights 0.3/0.3 renormalize
	// to 0.5/0.5.
	got := CombineScores(fp(1.5), fp(0.4), nil, DefaultWeights())
	want := 0.5*0.5 + 0.4*0.5
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestCombineScoresZeroWeights(t *testing.T) {
	got := CombineScores(fp(3.0), nil, nil, Weights{})
	if got != 0.0 {
		t.Fatalf("expected 0 with zero total weight, got %f", got)
	}
}
