// Package db persists the labeled training table, training-run
// metrics and served predictions in SQLite.
package db

import (
	"database/sql"
	"errors"
	"time"

	"firewatch/dataset"
	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB opens the SQLite database and creates the schema.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS labeled_days (
        id INTEGER PRIMARY KEY,
        date TEXT NOT NULL UNIQUE,
        temperature REAL,
        humidity REAL,
        wind_speed REAL,
        rainfall REAL,
        fire_occurred INTEGER NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS training_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_path TEXT NOT NULL,
        data_points INTEGER,
        accuracy REAL,
        precision REAL,
        recall REAL,
        f1 REAL,
        trained_at DATETIME NOT NULL
    );
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        latitude REAL,
        longitude REAL,
        land_cover TEXT,
        probability REAL NOT NULL,
        risk TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );`

	_, err = database.Exec(query)
	return err
}

// Close releases the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// SaveLabeledTable upserts one row per labeled day and returns the
// row count written.
func SaveLabeledTable(table *dataset.Table) (int, error) {
	if database == nil {
		return 0, errors.New("database not initialized")
	}

	tx, err := database.Begin()
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO labeled_days
        (date, temperature, humidity, wind_speed, rainfall, fire_occurred)
        VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	dates := table.Dates()
	temperature, _ := table.Numeric("temperature")
	humidity, _ := table.Numeric("humidity")
	windSpeed, _ := table.Numeric("wind_speed")
	rainfall, _ := table.Numeric("rainfall")
	occurred, _ := table.Numeric(dataset.TargetColumn)

	for i := range dates {
		_, err := stmt.Exec(
			dates[i].Format("2006-01-02"),
			columnValue(temperature, i),
			columnValue(humidity, i),
			columnValue(windSpeed, i),
			columnValue(rainfall, i),
			int(columnValue(occurred, i)),
		)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(dates), nil
}

func columnValue(values []float64, i int) float64 {
	if i >= len(values) {
		return 0
	}
	return values[i]
}

// TrainingRun is one row of the training log.
type TrainingRun struct {
	ModelPath  string
	DataPoints int
	Accuracy   float64
	Precision  float64
	Recall     float64
	F1         float64
	TrainedAt  time.Time
}

// SaveTrainingRun appends a training-run record.
func SaveTrainingRun(run TrainingRun) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(
		`INSERT INTO training_runs (model_path, data_points, accuracy, precision, recall, f1, trained_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ModelPath, run.DataPoints, run.Accuracy, run.Precision, run.Recall, run.F1, run.TrainedAt,
	)
	return err
}

// Prediction is one served risk score, kept for audit.
type Prediction struct {
	ID          int64     `json:"id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	LandCover   string    `json:"land_cover"`
	Probability float64   `json:"probability"`
	Risk        string    `json:"risk"`
	CreatedAt   time.Time `json:"created_at"`
}

// SavePrediction records a served prediction.
func SavePrediction(p Prediction) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(
		`INSERT INTO predictions (latitude, longitude, land_cover, probability, risk)
         VALUES (?, ?, ?, ?, ?)`,
		p.Latitude, p.Longitude, p.LandCover, p.Probability, p.Risk,
	)
	return err
}

// QueryPredictions returns the most recent served predictions.
func QueryPredictions(limit int) ([]Prediction, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := database.Query(
		`SELECT id, latitude, longitude, land_cover, probability, risk, created_at
         FROM predictions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []Prediction
	for rows.Next() {
		var p Prediction
		if err := rows.Scan(&p.ID, &p.Latitude, &p.Longitude, &p.LandCover, &p.Probability, &p.Risk, &p.CreatedAt); err != nil {
			return nil, err
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}
