package workflow

import (
	"reflect"
	"testing"
)

func TestPeriodSet_InsertionOrder(t *testing.T) {
	ps := NewPeriodSet()
	ps.Add("N-1", []float64{1, 2})
	ps.Add("N", []float64{3, 4})
	ps.Add("N+1 canary", []float64{5})

	want := []string{"N-1", "N", "N+1 canary"}
	if got := ps.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if ps.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ps.Len())
	}
}

// TestPeriodSet_ReplaceKeepsPosition verifies re-adding a name overwrites
// its values without moving it.
func TestPeriodSet_ReplaceKeepsPosition(t *testing.T) {
	ps := NewPeriodSet()
	ps.Add("N-1", []float64{1})
	ps.Add("N", []float64{2})
	ps.Add("N-1", []float64{9, 9})

	if got := ps.Names(); !reflect.DeepEqual(got, []string{"N-1", "N"}) {
		t.Errorf("Names() = %v after replace", got)
	}
	values, ok := ps.Get("N-1")
	if !ok || !reflect.DeepEqual(values, []float64{9, 9}) {
		t.Errorf("Get(N-1) = %v, %v after replace", values, ok)
	}
}

func TestPeriodSet_Pooled(t *testing.T) {
	ps := NewPeriodSet()
	ps.Add("N-1", []float64{1, 2})
	ps.Add("N", []float64{3})

	if got := ps.Pooled(); !reflect.DeepEqual(got, []float64{1, 2, 3}) {
		t.Errorf("Pooled() = %v", got)
	}
}

func TestPeriodSet_GetMissing(t *testing.T) {
	ps := NewPeriodSet()
	if _, ok := ps.Get("absent"); ok {
		t.Error("Get on an empty set should report false")
	}
}

func TestNeutralAnomalyResult(t *testing.T) {
	res := NeutralAnomalyResult()
	if res.Score != 0.5 {
		t.Errorf("Neutral score = %f, want 0.5", res.Score)
	}
	if res.Anomalies == nil || len(res.Anomalies) != 0 {
		t.Errorf("Neutral anomalies should be empty, not nil: %v", res.Anomalies)
	}
}
