package ml

import "testing"

func TestClassCounts(t *testing.T) {
	neg, pos := ClassCounts([]int{1, 0, 1, 1, 0})
	if neg != 2 || pos != 3 {
		t.Fatalf("expected 2 neg / 3 pos, got %d / %d", neg, pos)
	}
}

func TestInjectSyntheticNegatives(t *testing.T) {
	features := make([][]float64, 20)
	labels := make([]int, 20)
	for i := range features {
		features[i] = []float64{float64(i), float64(i) * 2}
		labels[i] = 1
	}

	outFeatures, outLabels := InjectSyntheticNegatives(features, labels, 42)
	if len(outFeatures) != 40 || len(outLabels) != 40 {
		t.Fatalf("expected 40 rows, got %d", len(outFeatures))
	}

	// Injected rows are labeled 0 and copied from distinct source rows.
	seen := make(map[float64]bool)
	for i := 20; i < 40; i++ {
		if outLabels[i] != 0 {
			t.Fatalf("row %d: injected label must be 0, got %d", i, outLabels[i])
		}
		if seen[outFeatures[i][0]] {
			t.Fatalf("row %d: source row reused", i)
		}
		seen[outFeatures[i][0]] = true
	}
}

func TestInjectSyntheticNegativesCapped(t *testing.T) {
	features := make([][]float64, 200)
	labels := make([]int, 200)
	for i := range features {
		features[i] = []float64{float64(i)}
		labels[i] = 1
	}

	outFeatures, _ := InjectSyntheticNegatives(features, labels, 1)
	if len(outFeatures) != 200+maxSyntheticNegatives {
		t.Fatalf("expected %d rows, got %d", 200+maxSyntheticNegatives, len(outFeatures))
	}
}

func TestOversampleBalances(t *testing.T) {
	features := [][]float64{
		{1, 10}, {2, 20}, {3, 30}, {4, 40}, {5, 50}, {6, 60},
		{100, 1000}, {110, 1100},
	}
	labels := []int{0, 0, 0, 0, 0, 0, 1, 1}

	outFeatures, outLabels := Oversample(features, labels, 42)
	neg, pos := ClassCounts(outLabels)
	if neg != pos {
		t.Fatalf("expected parity, got %d neg / %d pos", neg, pos)
	}
	if len(outFeatures) != len(outLabels) {
		t.Fatalf("features/labels size mismatch: %d vs %d", len(outFeatures), len(outLabels))
	}

	// Synthetic minority rows interpolate between existing minority
	// rows, so they stay inside the minority's bounding box.
	for i := len(features); i < len(outFeatures); i++ {
		if outLabels[i] != 1 {
			t.Fatalf("row %d: synthetic label must be minority class", i)
		}
		if outFeatures[i][0] < 100 || outFeatures[i][0] > 110 {
			t.Fatalf("row %d: interpolated value %v outside minority range", i, outFeatures[i][0])
		}
	}
}

func TestOversampleNoopWhenBalanced(t *testing.T) {
	features := [][]float64{{1}, {2}, {3}, {4}}
	labels := []int{0, 1, 0, 1}

	outFeatures, outLabels := Oversample(features, labels, 42)
	if len(outFeatures) != 4 || len(outLabels) != 4 {
		t.Fatal("balanced input must pass through unchanged")
	}
}

func TestOversampleSingleClassNoop(t *testing.T) {
	features := [][]float64{{1}, {2}}
	labels := []int{1, 1}

	_, outLabels := Oversample(features, labels, 42)
	if len(outLabels) != 2 {
		t.Fatal("single-class input cannot be oversampled")
	}
}
