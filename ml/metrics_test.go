package ml

import (
	"math"
	"strings"
	"testing"
)

func TestEvaluate(t *testing.T) {
	features, labels := separableDataset(80)

	config := DefaultTrainConfig()
	config.Estimators = 30

	var model GradientBoosting
	if err := model.Train(features, labels, config); err != nil {
		t.Fatalf("Train: %v", err)
	}

	eval, err := Evaluate(&model, features, labels)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if eval.Samples != 80 {
		t.Fatalf("expected 80 samples, got %d", eval.Samples)
	}
	// The toy problem is linearly separable on the first feature, so a
	// 30-round ensemble classifies it perfectly.
	if eval.Accuracy != 1 {
		t.Fatalf("expected perfect accuracy, got %v\n%s", eval.Accuracy, eval.Report())
	}
	if eval.Precision != 1 || eval.Recall != 1 || eval.F1 != 1 {
		t.Fatalf("expected perfect metrics, got p=%v r=%v f1=%v", eval.Precision, eval.Recall, eval.F1)
	}
	if eval.Confusion[0][0]+eval.Confusion[1][1] != 80 {
		t.Fatalf("confusion matrix does not sum: %v", eval.Confusion)
	}
}

func TestEvaluateEmptyHoldout(t *testing.T) {
	var model GradientBoosting
	eval, err := Evaluate(&model, nil, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if eval.Samples != 0 || eval.Accuracy != 0 {
		t.Fatalf("expected zero evaluation, got %+v", eval)
	}
}

func TestEvaluationMetricsFinite(t *testing.T) {
	// All-negative holdout: precision and recall for the positive class
	// stay 0 instead of dividing by zero.
	eval := Evaluation{Samples: 4, Confusion: [2][2]int{{4, 0}, {0, 0}}}
	eval.Accuracy = 1
	precision, recall, f1, support := eval.classMetrics(1)
	if support != 0 {
		t.Fatalf("expected zero support, got %d", support)
	}
	for _, v := range []float64{precision, recall, f1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("metric not finite: p=%v r=%v f1=%v", precision, recall, f1)
		}
	}
}

func TestReport(t *testing.T) {
	eval := Evaluation{
		Accuracy:  0.9,
		Samples:   10,
		Confusion: [2][2]int{{7, 1}, {0, 2}},
	}
	report := eval.Report()
	for _, fragment := range []string{"accuracy: 0.9000", "confusion matrix", "precision", "support"} {
		if !strings.Contains(report, fragment) {
			t.Fatalf("report missing %q:\n%s", fragment, report)
		}
	}
}
