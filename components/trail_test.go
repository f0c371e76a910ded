package components

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestTrailNewestFirst(t *testing.T) {
	tr := NewTrail(4)
	for i := 0; i < 3; i++ {
		tr.PushFront(r2.Vec{X: float64(i)})
	}

	if tr.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", tr.Len())
	}
	for i, want := range []float64{2, 1, 0} {
		if got := tr.At(i).X; got != want {
			t.Errorf("At(%d): expected %.0f, got %.0f", i, want, got)
		}
	}
	front, ok := tr.Front()
	if !ok || front.X != 2 {
		t.Errorf("expected front 2, got %.0f (ok=%v)", front.X, ok)
	}
}

func TestTrailDropsOldestWhenFull(t *testing.T) {
	tr := NewTrail(3)
	for i := 0; i < 10; i++ {
		tr.PushFront(r2.Vec{X: float64(i)})
		if tr.Len() > tr.Cap() {
			t.Fatalf("length %d exceeds capacity %d", tr.Len(), tr.Cap())
		}
	}

	got := tr.AppendTo(nil)
	want := []float64{9, 8, 7}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].X != want[i] {
			t.Errorf("point %d: expected %.0f, got %.0f", i, want[i], got[i].X)
		}
	}
}

func TestTrailClear(t *testing.T) {
	tr := NewTrail(2)
	tr.PushFront(r2.Vec{X: 1})
	tr.Clear()

	if tr.Len() != 0 {
		t.Errorf("expected empty trail, got %d points", tr.Len())
	}
	if _, ok := tr.Front(); ok {
		t.Error("expected no front on empty trail")
	}
}

func TestBlackHoleContains(t *testing.T) {
	bh := BlackHole{Position: r2.Vec{X: 0.5}, Mass: 1, EventHorizon: 0.2}

	if !bh.Contains(r2.Vec{X: 0.6}) {
		t.Error("expected point inside horizon")
	}
	if bh.Contains(r2.Vec{X: 0.8}) {
		t.Error("expected point outside horizon")
	}
	if math.Abs(bh.PhotonRing()-0.3) > 1e-9 {
		t.Errorf("expected photon ring 0.3, got %f", bh.PhotonRing())
	}
}
