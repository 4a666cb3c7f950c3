package ml

import "math/rand"

// maxSyntheticNegatives caps the rows injected when the target is
// degenerate.
const maxSyntheticNegatives = 50

// ClassCounts returns the negative and positive label counts.
func ClassCounts(labels []int) (neg, pos int) {
	for _, label := range labels {
		if label == 1 {
			pos++
		} else {
			neg++
		}
	}
	return neg, pos
}

// InjectSyntheticNegatives handles the degenerate case where the
// target has fewer than two distinct values: it appends up to 50
// negative-class rows copied from distinct existing rows (selection
// without replacement), so training can proceed instead of failing.
func InjectSyntheticNegatives(features [][]float64, labels []int, seed int64) ([][]float64, []int) {
	count := maxSyntheticNegatives
	if len(features) < count {
		count = len(features)
	}
	rnd := rand.New(rand.NewSource(seed))
	picks := rnd.Perm(len(features))[:count]

	outFeatures := append([][]float64(nil), features...)
	outLabels := append([]int(nil), labels...)
	for _, idx := range picks {
		row := append([]float64(nil), features[idx]...)
		outFeatures = append(outFeatures, row)
		outLabels = append(outLabels, 0)
	}
	return outFeatures, outLabels
}

// Oversample balances the classes by synthesizing minority rows as
// random interpolations between pairs of existing minority rows, until
// both classes have the same count.
func Oversample(features [][]float64, labels []int, seed int64) ([][]float64, []int) {
	neg, pos := ClassCounts(labels)
	if neg == pos || neg == 0 || pos == 0 {
		return features, labels
	}

	minorityLabel := 1
	deficit := neg - pos
	if pos > neg {
		minorityLabel = 0
		deficit = pos - neg
	}

	minority := make([]int, 0, len(labels))
	for i, label := range labels {
		if label == minorityLabel {
			minority = append(minority, i)
		}
	}

	rnd := rand.New(rand.NewSource(seed))
	outFeatures := append([][]float64(nil), features...)
	outLabels := append([]int(nil), labels...)
	for k := 0; k < deficit; k++ {
		a := features[minority[rnd.Intn(len(minority))]]
		b := features[minority[rnd.Intn(len(minority))]]
		t := rnd.Float64()
		row := make([]float64, len(a))
		for j := range a {
			row[j] = a[j] + t*(b[j]-a[j])
		}
		outFeatures = append(outFeatures, row)
		outLabels = append(outLabels, minorityLabel)
	}
	return outFeatures, outLabels
}
