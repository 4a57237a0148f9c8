package detect_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/orbitsim/internal/detect"
	"github.com/san-kum/orbitsim/internal/dynamo"
)

// feed replays a verdict sequence and records the counter of body 0 and
// whether it was confirmed on each frame.
func feed(d *detect.Debouncer, verdicts []dynamo.BodyIndex) (counts []int, confirmedAt int) {
	confirmedAt = -1
	for frame, hit := range verdicts {
		if idx, ok := d.Observe(hit); ok && idx == 0 && confirmedAt < 0 {
			confirmedAt = frame
		}
		counts = append(counts, d.Count(0))
	}
	return counts, confirmedAt
}

func repeat(idx dynamo.BodyIndex, n int) []dynamo.BodyIndex {
	out := make([]dynamo.BodyIndex, n)
	for i := range out {
		out[i] = idx
	}
	return out
}

func TestDebouncerSingleFrameSpike(t *testing.T) {
	d := detect.NewDebouncer(3, detect.DefaultEscapeThreshold)
	verdicts := append(append(repeat(detect.NoBody, 3), 0), repeat(detect.NoBody, 5)...)

	counts, confirmedAt := feed(d, verdicts)

	want := []int{0, 0, 0, 2, 1, 0, 0, 0, 0}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("counter trace mismatch (-want +got):\n%s", diff)
	}
	if confirmedAt >= 0 {
		t.Errorf("single-frame spike confirmed at frame %d", confirmedAt)
	}
	if d.Phase(0) != detect.Quiet {
		t.Errorf("phase = %v, want quiet", d.Phase(0))
	}
}

func TestDebouncerPersistentEscape(t *testing.T) {
	d := detect.NewDebouncer(3, detect.DefaultEscapeThreshold)

	counts, confirmedAt := feed(d, repeat(0, 4))

	if diff := cmp.Diff([]int{2, 4, 6, 8}, counts); diff != "" {
		t.Errorf("counter trace mismatch (-want +got):\n%s", diff)
	}
	if confirmedAt != 3 {
		t.Errorf("confirmed at frame %d, want 3", confirmedAt)
	}
	if d.Phase(0) != detect.Confirmed {
		t.Errorf("phase = %v, want confirmed", d.Phase(0))
	}
}

func TestDebouncerSparseHitsNeverConfirm(t *testing.T) {
	d := detect.NewDebouncer(2, detect.DefaultEscapeThreshold)
	var verdicts []dynamo.BodyIndex
	for i := 0; i < 20; i++ {
		verdicts = append(verdicts, 0, detect.NoBody, detect.NoBody)
	}

	counts, confirmedAt := feed(d, verdicts)
	if confirmedAt >= 0 {
		t.Fatalf("hit-miss-miss pattern confirmed at frame %d", confirmedAt)
	}
	for i, c := range counts {
		if c < 0 || c > detect.DefaultEscapeThreshold {
			t.Fatalf("counter out of range at frame %d: %d", i, c)
		}
	}
}

func TestDebouncerConfirmationIsStickyUntilReset(t *testing.T) {
	d := detect.NewDebouncer(2, 4)
	feed(d, repeat(1, 2))

	if d.Phase(1) != detect.Confirmed {
		t.Fatalf("phase = %v, want confirmed", d.Phase(1))
	}
	if _, ok := d.Observe(1); ok {
		t.Error("an already confirmed body was confirmed again")
	}
	feed(d, repeat(detect.NoBody, 10))
	if d.Phase(1) != detect.Confirmed {
		t.Errorf("confirmation decayed: phase = %v", d.Phase(1))
	}

	d.Reset(3)
	if d.Len() != 3 {
		t.Errorf("Len() = %d after Reset(3)", d.Len())
	}
	for i := 0; i < 3; i++ {
		if d.Phase(dynamo.BodyIndex(i)) != detect.Quiet || d.Count(dynamo.BodyIndex(i)) != 0 {
			t.Errorf("body %d not quiet after reset", i)
		}
	}
}

func TestDebouncerPhases(t *testing.T) {
	d := detect.NewDebouncer(1, detect.DefaultEscapeThreshold)
	var phases []detect.Phase
	for _, hit := range []dynamo.BodyIndex{0, detect.NoBody, detect.NoBody, 0, 0, 0, 0} {
		d.Observe(hit)
		phases = append(phases, d.Phase(0))
	}

	want := []detect.Phase{
		detect.Suspect, detect.Suspect, detect.Quiet,
		detect.Suspect, detect.Suspect, detect.Suspect, detect.Confirmed,
	}
	if diff := cmp.Diff(want, phases); diff != "" {
		t.Errorf("phase trace mismatch (-want +got):\n%s", diff)
	}
}

func TestNewDebouncerClampsThreshold(t *testing.T) {
	d := detect.NewDebouncer(1, 0)
	if d.Threshold() != 1 {
		t.Errorf("Threshold() = %d, want 1", d.Threshold())
	}
	if _, ok := d.Observe(0); !ok {
		t.Error("expected immediate confirmation with threshold 1")
	}
}
