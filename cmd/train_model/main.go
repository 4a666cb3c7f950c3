package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"firewatch/db"
	"firewatch/logger"
	"firewatch/ml"
	"firewatch/pipeline"
)

func main() {
	dataDir := flag.String("data_dir", defaultDataDir(), "directory of fire-detection CSV files (or FIRE_DATA_DIR)")
	lat := flag.Float64("lat", 20.5937, "latitude of the weather point")
	lon := flag.Float64("lon", 78.9629, "longitude of the weather point")
	modelPath := flag.String("model_path", "./models/wildfire.model", "model artifact output path")
	dbPath := flag.String("db", "./data/firewatch.db", "sqlite database path")
	estimators := flag.Int("estimators", 200, "boosting rounds")
	maxDepth := flag.Int("max_depth", 5, "max tree depth")
	learningRate := flag.Float64("learning_rate", 0.1, "learning rate")
	subsample := flag.Float64("subsample", 0.8, "row subsample fraction per round")
	testRatio := flag.Float64("test_ratio", 0.2, "holdout fraction")
	seed := flag.Int64("seed", 42, "random seed")
	logLevel := flag.String("log_level", "info", "log level")
	flag.Parse()

	if err := logger.Init(logger.Config{Level: *logLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := db.InitDB(*dbPath); err != nil {
		logger.S().Warnf("sqlite unavailable, run will not be persisted: %v", err)
	} else {
		defer db.Close()
	}

	trainConfig := ml.DefaultTrainConfig()
	trainConfig.Estimators = *estimators
	trainConfig.MaxDepth = *maxDepth
	trainConfig.LearningRate = *learningRate
	trainConfig.Subsample = *subsample
	trainConfig.Seed = *seed

	result, err := pipeline.Run(context.Background(), pipeline.Config{
		FireDataDir: *dataDir,
		Latitude:    *lat,
		Longitude:   *lon,
		ModelPath:   *modelPath,
		TestRatio:   *testRatio,
		Train:       trainConfig,
	})
	if err != nil {
		logger.S().Errorf("training run failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("trained on %d rows (%d fire days, %d positive) -> %s\n",
		result.Rows, result.FireDays, result.PositiveRows, *modelPath)
	fmt.Printf("accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f\n",
		result.Eval.Accuracy, result.Eval.Precision, result.Eval.Recall, result.Eval.F1)
}

// defaultDataDir honors FIRE_DATA_DIR so the fire-data location is
// never baked into the binary.
func defaultDataDir() string {
	if dir := os.Getenv("FIRE_DATA_DIR"); dir != "" {
		return dir
	}
	return "./data/fire"
}
