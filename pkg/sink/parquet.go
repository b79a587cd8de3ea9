package sink

import (
	"context"
	"os"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"github.com/logforge/logforge/internal/model"
	"github.com/logforge/logforge/pkg/errors"
)

// ParquetWriter writes the dataset to Parquet using Apache Arrow.
// Timestamps are stored as int64 epoch nanoseconds.
type ParquetWriter struct {
	cfg Config
}

// Format implements the Writer interface.
func (*ParquetWriter) Format() Format { return FormatParquet }

// datasetSchema returns the Arrow schema matching model.Columns.
func datasetSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "case_id", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "activity", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "timestamp", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "complete_timestamp", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "customer_id", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "priority", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "channel", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "department", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "product_category", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "value", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "resource", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "duration_minutes", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
		{Name: "cost", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "status", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "system", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "automated", Type: arrow.FixedWidthTypes.Boolean, Nullable: false},
	}, nil)
}

// codec maps the compression type to a Parquet codec.
func (c CompressionType) codec() compress.Compression {
	switch c {
	case CompressionSnappy:
		return compress.Codecs.Snappy
	case CompressionGzip:
		return compress.Codecs.Gzip
	case CompressionZstd:
		return compress.Codecs.Zstd
	case CompressionLZ4:
		return compress.Codecs.Lz4
	default:
		return compress.Codecs.Uncompressed
	}
}

// Write implements the Writer interface.
func (w *ParquetWriter) Write(ctx context.Context, ds *model.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to create parquet file").
			WithContext("path", path)
	}
	defer f.Close()

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(w.cfg.Compression.codec()),
		parquet.WithDictionaryDefault(true),
		parquet.WithDataPageSize(1024*1024), // 1MB
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithStoreSchema(),
	)

	schema := datasetSchema()
	fw, err := pqarrow.NewFileWriter(schema, f, writerProps, arrowProps)
	if err != nil {
		return errors.Wrap(err, errors.CodeSinkInit, "failed to create parquet writer")
	}

	cols := newColumnBuilders(memory.NewGoAllocator(), w.cfg.BatchSize)
	defer cols.release()

	pending := 0
	for _, row := range ds.Rows() {
		if ctx.Err() != nil {
			return errors.ContextCanceled("parquet write")
		}
		cols.append(row)
		pending++

		if pending >= w.cfg.BatchSize {
			if err := flushBatch(fw, schema, cols, pending); err != nil {
				return err
			}
			pending = 0
		}
	}
	if err := flushBatch(fw, schema, cols, pending); err != nil {
		return err
	}

	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to finalize parquet file").
			WithContext("path", path)
	}
	return nil
}

// flushBatch drains the builders into one record batch. Building arrays
// resets the builders for the next batch.
func flushBatch(fw *pqarrow.FileWriter, schema *arrow.Schema, cols *columnBuilders, rows int) error {
	if rows == 0 {
		return nil
	}

	arrays := cols.newArrays()
	defer func() {
		for _, a := range arrays {
			a.Release()
		}
	}()

	batch := array.NewRecord(schema, arrays, int64(rows))
	defer batch.Release()

	if err := fw.Write(batch); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to write record batch")
	}
	return nil
}

// columnBuilders holds one Arrow builder per dataset column.
type columnBuilders struct {
	caseID     *array.StringBuilder
	activity   *array.StringBuilder
	start      *array.Int64Builder
	complete   *array.Int64Builder
	customerID *array.StringBuilder
	priority   *array.StringBuilder
	channel    *array.StringBuilder
	department *array.StringBuilder
	category   *array.StringBuilder
	value      *array.Float64Builder
	resource   *array.StringBuilder
	duration   *array.Int32Builder
	cost       *array.Float64Builder
	status     *array.StringBuilder
	system     *array.StringBuilder
	automated  *array.BooleanBuilder
}

func newColumnBuilders(alloc memory.Allocator, capacity int) *columnBuilders {
	c := &columnBuilders{
		caseID:     array.NewStringBuilder(alloc),
		activity:   array.NewStringBuilder(alloc),
		start:      array.NewInt64Builder(alloc),
		complete:   array.NewInt64Builder(alloc),
		customerID: array.NewStringBuilder(alloc),
		priority:   array.NewStringBuilder(alloc),
		channel:    array.NewStringBuilder(alloc),
		department: array.NewStringBuilder(alloc),
		category:   array.NewStringBuilder(alloc),
		value:      array.NewFloat64Builder(alloc),
		resource:   array.NewStringBuilder(alloc),
		duration:   array.NewInt32Builder(alloc),
		cost:       array.NewFloat64Builder(alloc),
		status:     array.NewStringBuilder(alloc),
		system:     array.NewStringBuilder(alloc),
		automated:  array.NewBooleanBuilder(alloc),
	}
	for _, b := range c.all() {
		b.Reserve(capacity)
	}
	return c
}

func (c *columnBuilders) all() []array.Builder {
	return []array.Builder{
		c.caseID, c.activity, c.start, c.complete,
		c.customerID, c.priority, c.channel, c.department, c.category,
		c.value, c.resource, c.duration, c.cost,
		c.status, c.system, c.automated,
	}
}

func (c *columnBuilders) append(r model.Row) {
	c.caseID.Append(r.CaseID)
	c.activity.Append(r.Activity)
	c.start.Append(r.Timestamp.UnixNano())
	c.complete.Append(r.CompleteTimestamp.UnixNano())
	c.customerID.Append(r.CustomerID)
	c.priority.Append(r.Priority)
	c.channel.Append(r.Channel)
	c.department.Append(r.Department)
	c.category.Append(r.ProductCategory)
	c.value.Append(r.Value)
	c.resource.Append(r.Resource)
	c.duration.Append(int32(r.DurationMinutes))
	c.cost.Append(r.Cost)
	c.status.Append(r.Status)
	c.system.Append(r.System)
	c.automated.Append(r.Automated)
}

// newArrays builds the column arrays in schema order.
func (c *columnBuilders) newArrays() []arrow.Array {
	builders := c.all()
	arrays := make([]arrow.Array, len(builders))
	for i, b := range builders {
		arrays[i] = b.NewArray()
	}
	return arrays
}

func (c *columnBuilders) release() {
	for _, b := range c.all() {
		b.Release()
	}
}
