package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"sm-kiosk/internal/model"
)

const timeLayout = time.RFC3339

var csvHeaders = []string{
	"started_at",
	"finished_at",
	"command",
	"outcome",
	"duration_ms",
	"error",
}

// AppendRuns appends runs to a CSV history file (semicolon-separated),
// creating it with headers if it doesn't exist. Message text is not stored.
func AppendRuns(path string, runs ...model.Run) error {
	if err := EnsureDir(path); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	exists := fileExists(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'

	if !exists {
		if err := w.Write(csvHeaders); err != nil {
			return fmt.Errorf("write csv headers: %w", err)
		}
	}

	for _, r := range runs {
		finished := ""
		if !r.FinishedAt.IsZero() {
			finished = r.FinishedAt.Format(timeLayout)
		}
		row := []string{
			r.StartedAt.Format(timeLayout),
			finished,
			r.Command,
			r.Outcome.String(),
			strconv.FormatInt(r.Duration().Milliseconds(), 10),
			r.Error,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush history file: %w", err)
	}
	return nil
}

// ReadRuns loads every run from a history file. A missing file holds no
// runs. Messages of the returned runs are empty.
func ReadRuns(path string) ([]model.Run, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = len(csvHeaders)

	var runs []model.Run
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read history: %w", err)
		}
		if line == 1 && rec[0] == csvHeaders[0] {
			continue
		}
		run, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("history line %d: %w", line, err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func parseRow(rec []string) (model.Run, error) {
	var run model.Run
	started, err := time.Parse(timeLayout, rec[0])
	if err != nil {
		return run, fmt.Errorf("started_at: %w", err)
	}
	run.StartedAt = started
	if rec[1] != "" {
		if run.FinishedAt, err = time.Parse(timeLayout, rec[1]); err != nil {
			return run, fmt.Errorf("finished_at: %w", err)
		}
	}
	run.Command = rec[2]
	if run.Outcome, err = model.ParseOutcome(rec[3]); err != nil {
		return run, err
	}
	run.Error = rec[5]
	return run, nil
}
