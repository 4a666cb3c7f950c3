// Package pipeline runs the offline training flow: fire dates in,
// fitted artifact out. One shot, single-threaded, no incremental
// updates.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"firewatch/dataset"
	"firewatch/db"
	"firewatch/fire"
	"firewatch/logger"
	"firewatch/ml"
	"firewatch/weather"
)

// WeatherFetcher is the slice of the weather client the pipeline uses.
type WeatherFetcher interface {
	FetchDailyRange(ctx context.Context, lat, lon float64, start, end time.Time) ([]weather.Observation, error)
}

// Config is one training run's setup.
type Config struct {
	FireDataDir string
	Latitude    float64
	Longitude   float64
	ModelPath   string
	TestRatio   float64
	Train       ml.TrainConfig

	// Fetcher defaults to the Open-Meteo archive client.
	Fetcher WeatherFetcher
}

// Result summarizes a completed run.
type Result struct {
	Rows           int
	FireDays       int
	PositiveRows   int
	FeatureColumns []string
	Eval           ml.Evaluation
}

// Run executes the full pipeline and persists the artifact. A missing
// fire-data directory or an empty weather response aborts the run with
// fire.ErrDataUnavailable: training on a fabricated table is worse
// than not training.
func Run(ctx context.Context, config Config) (*Result, error) {
	if config.ModelPath == "" {
		return nil, fmt.Errorf("model path is required")
	}
	fetcher := config.Fetcher
	if fetcher == nil {
		fetcher = weather.NewClient(10 * time.Second)
	}

	fireDates, err := fire.LoadDates(config.FireDataDir)
	if err != nil {
		return nil, err
	}
	start, end, err := fireDates.Range()
	if err != nil {
		return nil, err
	}
	logger.S().Infof("loaded %d fire days between %s and %s",
		len(fireDates), start.Format("2006-01-02"), end.Format("2006-01-02"))

	observations, err := fetcher.FetchDailyRange(ctx, config.Latitude, config.Longitude, start, end)
	if err != nil {
		logger.S().Warnf("weather fetch failed: %v", err)
		observations = nil
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("%w: weather archive returned no observations", fire.ErrDataUnavailable)
	}
	if expected := int(end.Sub(start).Hours()/24) + 1; len(observations) < expected {
		// The archive must cover the full fire-date range; gaps are a
		// data-quality defect worth surfacing, not silently training over.
		logger.S().Warnf("weather archive returned %d of %d expected days", len(observations), expected)
	}

	table := dataset.Label(observations, fireDates)
	dataset.AddFeatures(table)

	if rows, err := db.SaveLabeledTable(table); err != nil {
		logger.S().Warnf("labeled table not persisted: %v", err)
	} else {
		logger.S().Infof("persisted %d labeled rows", rows)
	}

	features, columns := table.Matrix(dataset.TargetColumn)
	labels := targetLabels(table)

	neg, pos := ml.ClassCounts(labels)
	logger.S().Infof("class counts before balancing: fire=%d none=%d", pos, neg)

	if neg == 0 || pos == 0 {
		logger.S().Warnf("single-class target, injecting synthetic non-fire samples")
		features, labels = ml.InjectSyntheticNegatives(features, labels, config.Train.Seed)
	} else {
		features, labels = ml.Oversample(features, labels, config.Train.Seed)
	}
	neg, pos = ml.ClassCounts(labels)
	logger.S().Infof("class counts after balancing: fire=%d none=%d", pos, neg)

	trainX, trainY, testX, testY := ml.StratifiedSplit(features, labels, config.TestRatio, config.Train.Seed)

	trainNeg, trainPos := ml.ClassCounts(trainY)
	trainConfig := config.Train
	trainConfig.ScalePosWeight = float64(trainNeg) / float64(max(trainPos, 1))
	logger.S().Infof("training on %d rows with scale_pos_weight=%.2f", len(trainX), trainConfig.ScalePosWeight)

	model := &ml.GradientBoosting{}
	if err := model.Train(trainX, trainY, trainConfig); err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	eval, err := ml.Evaluate(model, testX, testY)
	if err != nil {
		return nil, fmt.Errorf("evaluate model: %w", err)
	}
	logger.S().Infof("model evaluation:\n%s", eval.Report())

	artifact := ml.NewArtifact(model, columns)
	if err := os.MkdirAll(filepath.Dir(config.ModelPath), 0o755); err != nil {
		return nil, err
	}
	if err := artifact.Save(config.ModelPath); err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}
	logger.S().Infof("model saved to %s", config.ModelPath)

	if err := db.SaveTrainingRun(db.TrainingRun{
		ModelPath:  config.ModelPath,
		DataPoints: table.Len(),
		Accuracy:   eval.Accuracy,
		Precision:  eval.Precision,
		Recall:     eval.Recall,
		F1:         eval.F1,
		TrainedAt:  artifact.TrainedAt,
	}); err != nil {
		logger.S().Warnf("training run not logged: %v", err)
	}

	return &Result{
		Rows:           table.Len(),
		FireDays:       len(fireDates),
		PositiveRows:   countPositives(table),
		FeatureColumns: columns,
		Eval:           eval,
	}, nil
}

func targetLabels(table *dataset.Table) []int {
	values, _ := table.Numeric(dataset.TargetColumn)
	labels := make([]int, len(values))
	for i, v := range values {
		if v >= 0.5 {
			labels[i] = 1
		}
	}
	return labels
}

func countPositives(table *dataset.Table) int {
	values, _ := table.Numeric(dataset.TargetColumn)
	count := 0
	for _, v := range values {
		if v >= 0.5 {
			count++
		}
	}
	return count
}
