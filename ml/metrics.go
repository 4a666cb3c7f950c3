package ml

import (
	"fmt"
	"strings"
)

// Evaluation holds the held-out diagnostics reported after training.
// Nothing here gates the run; the numbers are logged for whoever owns
// retraining cadence.
type Evaluation struct {
	Accuracy  float64   `json:"accuracy"`
	Precision float64   `json:"precision"`
	Recall    float64   `json:"recall"`
	F1        float64   `json:"f1"`
	Samples   int       `json:"samples"`
	Confusion [2][2]int `json:"confusion"` // [actual][predicted]
}

// Evaluate scores the model on a held-out set.
func Evaluate(model *GradientBoosting, testX [][]float64, testY []int) (Evaluation, error) {
	eval := Evaluation{Samples: len(testX)}
	if len(testX) == 0 {
		return eval, nil
	}

	correct := 0
	for i, features := range testX {
		predicted, _, err := model.Predict(features)
		if err != nil {
			return eval, err
		}
		eval.Confusion[testY[i]][predicted]++
		if predicted == testY[i] {
			correct++
		}
	}

	eval.Accuracy = float64(correct) / float64(len(testX))
	truePositive := eval.Confusion[1][1]
	falsePositive := eval.Confusion[0][1]
	falseNegative := eval.Confusion[1][0]

	if truePositive+falsePositive > 0 {
		eval.Precision = float64(truePositive) / float64(truePositive+falsePositive)
	}
	if truePositive+falseNegative > 0 {
		eval.Recall = float64(truePositive) / float64(truePositive+falseNegative)
	}
	if eval.Precision+eval.Recall > 0 {
		eval.F1 = 2 * eval.Precision * eval.Recall / (eval.Precision + eval.Recall)
	}
	return eval, nil
}

// Report renders a per-class classification report.
func (e Evaluation) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "accuracy: %.4f on %d samples\n", e.Accuracy, e.Samples)
	fmt.Fprintf(&b, "confusion matrix [actual][predicted]:\n")
	fmt.Fprintf(&b, "          pred=0  pred=1\n")
	fmt.Fprintf(&b, "actual=0  %6d  %6d\n", e.Confusion[0][0], e.Confusion[0][1])
	fmt.Fprintf(&b, "actual=1  %6d  %6d\n", e.Confusion[1][0], e.Confusion[1][1])
	fmt.Fprintf(&b, "class     precision  recall  f1      support\n")
	for _, class := range []int{0, 1} {
		precision, recall, f1, support := e.classMetrics(class)
		fmt.Fprintf(&b, "%d         %.4f     %.4f  %.4f  %d\n", class, precision, recall, f1, support)
	}
	return b.String()
}

func (e Evaluation) classMetrics(class int) (precision, recall, f1 float64, support int) {
	other := 1 - class
	truePositive := e.Confusion[class][class]
	falsePositive := e.Confusion[other][class]
	falseNegative := e.Confusion[class][other]
	support = truePositive + falseNegative

	if truePositive+falsePositive > 0 {
		precision = float64(truePositive) / float64(truePositive+falsePositive)
	}
	if support > 0 {
		recall = float64(truePositive) / float64(support)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1, support
}
