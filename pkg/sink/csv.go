package sink

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"

	"github.com/logforge/logforge/internal/model"
	"github.com/logforge/logforge/pkg/errors"
)

// CSVWriter writes the dataset as headered CSV, one line per event.
type CSVWriter struct{}

// Format implements the Writer interface.
func (*CSVWriter) Format() Format { return FormatCSV }

// Write implements the Writer interface.
func (*CSVWriter) Write(ctx context.Context, ds *model.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to create csv file").
			WithContext("path", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(model.Columns); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to write csv header")
	}

	for i, row := range ds.Rows() {
		if ctx.Err() != nil {
			return errors.ContextCanceled("csv write")
		}
		if err := w.Write(encodeRow(row)); err != nil {
			return errors.Wrap(err, errors.CodeWriteFailed, "failed to write csv row").
				WithContext("row", i)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to flush csv").
			WithContext("path", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to close csv file").
			WithContext("path", path)
	}
	return nil
}

// encodeRow renders a row in canonical column order. Money columns keep
// two decimals so reruns diff cleanly.
func encodeRow(r model.Row) []string {
	return []string{
		r.CaseID,
		r.Activity,
		r.Timestamp.Format(model.TimestampLayout),
		r.CompleteTimestamp.Format(model.TimestampLayout),
		r.CustomerID,
		r.Priority,
		r.Channel,
		r.Department,
		r.ProductCategory,
		strconv.FormatFloat(r.Value, 'f', 2, 64),
		r.Resource,
		strconv.Itoa(r.DurationMinutes),
		strconv.FormatFloat(r.Cost, 'f', 2, 64),
		r.Status,
		r.System,
		strconv.FormatBool(r.Automated),
	}
}
