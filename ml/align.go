package ml

// AlignFeatures reshapes an arbitrary input row to exactly the column
// set and order a trained model expects: required columns absent from
// the input are filled with 0.0, input columns the model never saw are
// dropped. This runs before every prediction; a probability computed
// from a misaligned vector is silently wrong, not merely sub-optimal.
func AlignFeatures(input map[string]float64, columns []string) []float64 {
	vector := make([]float64, len(columns))
	for i, name := range columns {
		if value, ok := input[name]; ok {
			vector[i] = value
		}
	}
	return vector
}
