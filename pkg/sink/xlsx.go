package sink

import (
	"context"

	"github.com/xuri/excelize/v2"

	"github.com/logforge/logforge/internal/model"
	"github.com/logforge/logforge/pkg/errors"
)

// XLSXWriter writes the dataset as a single-sheet workbook. It uses the
// streaming writer, which keeps memory flat for large case counts.
type XLSXWriter struct{}

// Format implements the Writer interface.
func (*XLSXWriter) Format() Format { return FormatXLSX }

// Write implements the Writer interface.
func (*XLSXWriter) Write(ctx context.Context, ds *model.Dataset, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		return errors.Wrap(err, errors.CodeSinkInit, "failed to open stream writer")
	}

	header := make([]interface{}, len(model.Columns))
	for i, col := range model.Columns {
		header[i] = col
	}
	cell, _ := excelize.CoordinatesToCellName(1, 1)
	if err := sw.SetRow(cell, header); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to write header row")
	}

	for i, row := range ds.Rows() {
		if ctx.Err() != nil {
			return errors.ContextCanceled("xlsx write")
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.CaseID,
			row.Activity,
			row.Timestamp.Format(model.TimestampLayout),
			row.CompleteTimestamp.Format(model.TimestampLayout),
			row.CustomerID,
			row.Priority,
			row.Channel,
			row.Department,
			row.ProductCategory,
			row.Value,
			row.Resource,
			row.DurationMinutes,
			row.Cost,
			row.Status,
			row.System,
			row.Automated,
		}
		if err := sw.SetRow(cell, values); err != nil {
			return errors.Wrap(err, errors.CodeWriteFailed, "failed to write row").
				WithContext("row", i)
		}
	}

	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to flush stream writer")
	}
	if err := f.SaveAs(path); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to save workbook").
			WithContext("path", path)
	}
	return nil
}
