// Package fire loads satellite fire-detection records and reduces them
// to the set of calendar dates on which at least one fire was detected.
package fire

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"firewatch/logger"
)

// ErrDataUnavailable is returned when no usable fire-detection data was
// found. Training cannot proceed without at least one fire date.
var ErrDataUnavailable = errors.New("no fire detection data available")

// DateSet holds distinct detection dates, normalized to UTC midnight.
type DateSet map[time.Time]struct{}

var dateLayouts = []string{"2006-01-02", "2006/01/02"}

// LoadDates reads every CSV file in dir and returns the distinct set of
// acquisition dates. Files are parsed independently: a malformed file
// is logged and skipped so one bad download does not block the rest.
func LoadDates(dir string) (DateSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.S().Warnf("fire data directory %s not readable: %v", dir, err)
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, dir)
	}

	dates := make(DateSet)
	files := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			continue
		}
		files++
		path := filepath.Join(dir, entry.Name())
		if err := loadFile(path, dates); err != nil {
			logger.S().Warnf("skipping fire file %s: %v", path, err)
		}
	}

	if files == 0 || len(dates) == 0 {
		return nil, fmt.Errorf("%w: no qualifying files in %s", ErrDataUnavailable, dir)
	}
	return dates, nil
}

func loadFile(path string, dates DateSet) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	dateCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "acq_date") {
			dateCol = i
			break
		}
	}
	if dateCol == -1 {
		return errors.New("no acq_date column")
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", rows+1, err)
		}
		rows++
		if dateCol >= len(record) {
			continue
		}
		day, err := parseDate(record[dateCol])
		if err != nil {
			// Malformed rows are tolerated the same way malformed
			// files are: log and move on.
			logger.S().Debugf("bad acq_date %q in %s: %v", record[dateCol], path, err)
			continue
		}
		dates[day] = struct{}{}
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// Contains reports whether the calendar day of t is in the set.
func (s DateSet) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	_, ok := s[day]
	return ok
}

// Range returns the earliest and latest detection dates.
func (s DateSet) Range() (start, end time.Time, err error) {
	if len(s) == 0 {
		return time.Time{}, time.Time{}, ErrDataUnavailable
	}
	days := make([]time.Time, 0, len(s))
	for day := range s {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days[0], days[len(days)-1], nil
}
