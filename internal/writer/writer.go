// Package writer appends completed rows to the output CSV one at a time,
// durably, so every finished variable survives an interruption.
package writer

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/go-scripts/dictscrape/internal/types"
)

// Incremental is an append-only CSV writer. Each appended row is flushed
// and fsynced before the next variable starts; rows 1..k are recoverable
// after a crash during row k+1.
type Incremental struct {
	file *os.File
	csv  *csv.Writer
}

// Open opens path for appending, writing the header first if the file is
// being created.
func Open(path string) (*Incremental, error) {
	_, statErr := os.Stat(path)
	existed := statErr == nil

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening output file: %w", err)
	}

	w := &Incremental{file: f, csv: csv.NewWriter(f)}
	if !existed {
		if err := w.append(types.Fieldnames); err != nil {
			f.Close()
			return nil, fmt.Errorf("error writing header: %w", err)
		}
	}
	return w, nil
}

// Append writes one merged row and forces it to disk.
func (w *Incremental) Append(summary types.VariableSummary, detail types.VariableDetail) error {
	return w.append(types.OutputRow(summary, detail))
}

func (w *Incremental) append(record []string) error {
	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("error writing record: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("error flushing record: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("error syncing output file: %w", err)
	}
	return nil
}

// Close flushes any buffered data and closes the file.
func (w *Incremental) Close() error {
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
