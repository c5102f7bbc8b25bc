package metrics

import "testing"

type countingBackend struct {
	counters   map[string]float64
	histograms int
	flushes    int
}

func (c *countingBackend) IncCounter(name string, delta float64, labels Labels) {
	c.counters[name] += delta
}

func (c *countingBackend) ObserveHistogram(name string, value float64, labels Labels) {
	c.histograms++
}

func (c *countingBackend) Flush() error {
	c.flushes++
	return nil
}

func (c *countingBackend) Close() error { return nil }

func TestSetBackend(t *testing.T) {
	defer SetBackend(nil)

	b := &countingBackend{counters: make(map[string]float64)}
	SetBackend(b)

	IncCounter(RowsTotal, 2, Labels{"table": "dim_sellers"})
	IncCounter(RowsTotal, 3, nil)
	ObserveHistogram(StepDurationSeconds, 0.5, nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if b.counters[RowsTotal] != 5 {
		t.Errorf("Expected 5, got %v", b.counters[RowsTotal])
	}
	if b.histograms != 1 || b.flushes != 1 {
		t.Errorf("Expected 1 histogram and 1 flush, got %d and %d", b.histograms, b.flushes)
	}

	SetBackend(nil)
	IncCounter(RowsTotal, 10, nil)
	if b.counters[RowsTotal] != 5 {
		t.Error("Detached backend still receives observations")
	}
	if _, ok := current().(nopBackend); !ok {
		t.Errorf("Expected the no-op backend, got %T", current())
	}
}
