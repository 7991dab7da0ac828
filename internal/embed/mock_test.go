package embed

import (
	"context"
	"math"
	"reflect"
	"testing"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	m := MockEmbedder{Dimension: 8}
	a, err := m.Embed(context.Background(), []string{"vpn is down", "vpn is down"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a[0], a[1]) {
		t.Fatalf("identical texts must produce identical vectors")
	}
}

func TestMockEmbedderUnitNorm(t *testing.T) {
	m := MockEmbedder{Dimension: 16}
	vs, err := m.Embed(context.Background(), []string{"outlook crash"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vs[0]) != 16 {
		t.Fatalf("expected dimension 16, got %d", len(vs[0]))
	}
	var norm float64
	for _, x := range vs[0] {
		norm += x * x
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Fatalf("expected unit norm, got %f", math.Sqrt(norm))
	}
}
