package metrics

import "testing"

type recordingBackend struct {
	counters   map[string]float64
	histograms map[string][]float64
	flushed    int
	closed     int
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		counters:   map[string]float64{},
		histograms: map[string][]float64{},
	}
}

func (r *recordingBackend) IncCounter(name string, delta float64, _ Labels) {
	r.counters[name] += delta
}

func (r *recordingBackend) ObserveHistogram(name string, value float64, _ Labels) {
	r.histograms[name] = append(r.histograms[name], value)
}

func (r *recordingBackend) Flush() error { r.flushed++; return nil }
func (r *recordingBackend) Close() error { r.closed++; return nil }

// Not parallel: SetBackend mutates process-wide state.
func TestForwarding(t *testing.T) {
	rec := newRecordingBackend()
	SetBackend(rec)
	defer SetBackend(nil)

	IncCounter(MetricRowsTotal, 40, Labels{"kind": "raw"})
	IncCounter(MetricRowsTotal, 2, Labels{"kind": "clean"})
	ObserveHistogram(MetricRunDurationSeconds, 1.5, Labels{"dataset": "leads"})
	if err := Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if rec.counters[MetricRowsTotal] != 42 {
		t.Fatalf("counter = %v, want 42", rec.counters[MetricRowsTotal])
	}
	if len(rec.histograms[MetricRunDurationSeconds]) != 1 {
		t.Fatalf("histogram samples = %d, want 1", len(rec.histograms[MetricRunDurationSeconds]))
	}
	if rec.flushed != 1 || rec.closed != 1 {
		t.Fatalf("flushed=%d closed=%d, want 1 and 1", rec.flushed, rec.closed)
	}
}

// TestSetBackendNilResetsToNop: passing nil restores the nop backend instead
// of panicking on later calls.
func TestSetBackendNilResetsToNop(t *testing.T) {
	SetBackend(nil)
	IncCounter(MetricRowsTotal, 1, nil)
	if err := Flush(); err != nil {
		t.Fatalf("Flush on nop backend: %v", err)
	}
}
