// Package ledger recovers the set of variables already persisted by a
// previous run, so a resumed crawl can skip completed work.
package ledger

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// readProgressEvery is how many records pass between progress log lines
// when streaming a large existing output.
const readProgressEvery = 10000

// Read streams the CSV at path and collects every non-empty
// variable_name value into a set. A missing file yields an empty set. A
// read failure mid-stream returns whatever was collected so far; resume
// correctness is traded for availability, the run proceeds either way.
func Read(path string, logger *log.Logger) map[string]struct{} {
	done := make(map[string]struct{})

	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not open existing output, starting fresh", "path", path, "err", err)
		}
		return done
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		logger.Warn("could not read existing output header, starting fresh", "path", path, "err", err)
		return done
	}
	nameCol := -1
	for i, col := range header {
		if col == "variable_name" {
			nameCol = i
			break
		}
	}
	if nameCol < 0 {
		logger.Warn("existing output has no variable_name column, starting fresh", "path", path)
		return done
	}

	rows := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("stopped reading existing output early", "path", path, "rows", rows, "err", err)
			return done
		}
		rows++
		if nameCol < len(record) {
			if name := strings.TrimSpace(record[nameCol]); name != "" {
				done[name] = struct{}{}
			}
		}
		if rows%readProgressEvery == 0 {
			logger.Info("reading existing output", "rows", rows, "variables", len(done))
		}
	}

	logger.Info("read existing output", "rows", rows, "variables", len(done))
	return done
}
