// Package sink writes generated datasets to their output formats.
package sink

import (
	"context"

	"github.com/logforge/logforge/internal/model"
	"github.com/logforge/logforge/pkg/errors"
)

// Format identifies an output format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatXLSX    Format = "xlsx"
	FormatParquet Format = "parquet"
	FormatDuckDB  Format = "duckdb"
)

// ParseFormat parses a format name as written in config files and flags.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX, FormatParquet, FormatDuckDB:
		return Format(s), nil
	default:
		return "", errors.New(errors.CodeInvalidParameter, "unknown output format").
			WithContext("format", s)
	}
}

// ParseFormats parses a list of format names, rejecting duplicates.
func ParseFormats(names []string) ([]Format, error) {
	formats := make([]Format, 0, len(names))
	seen := make(map[Format]bool, len(names))
	for _, name := range names {
		f, err := ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if seen[f] {
			return nil, errors.New(errors.CodeInvalidParameter, "duplicate output format").
				WithContext("format", name)
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatXLSX:
		return ".xlsx"
	case FormatParquet:
		return ".parquet"
	case FormatDuckDB:
		return ".duckdb"
	default:
		return ".csv"
	}
}

// Writer writes one dataset to one file.
type Writer interface {
	// Format identifies the format this writer produces.
	Format() Format

	// Write persists the dataset at path, replacing any previous file.
	Write(ctx context.Context, ds *model.Dataset, path string) error
}

// Config holds writer configuration shared across formats.
type Config struct {
	// BatchSize is the number of rows per record batch or insert
	// transaction, for the formats that batch.
	BatchSize int

	// Compression type for Parquet output.
	Compression CompressionType
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:   1024,
		Compression: CompressionSnappy,
	}
}

// For returns the writer for a format. Zero config fields are filled
// from DefaultConfig.
func For(f Format, cfg Config) (Writer, error) {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	switch f {
	case FormatCSV:
		return &CSVWriter{}, nil
	case FormatXLSX:
		return &XLSXWriter{}, nil
	case FormatParquet:
		return &ParquetWriter{cfg: cfg}, nil
	case FormatDuckDB:
		return &DuckDBWriter{cfg: cfg}, nil
	default:
		return nil, errors.New(errors.CodeInvalidParameter, "unknown output format").
			WithContext("format", string(f))
	}
}

// CompressionType represents Parquet compression options.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

// String returns the compression type name.
func (c CompressionType) String() string {
	switch c {
	case CompressionSnappy:
		return "snappy"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// ParseCompression parses a compression type string.
func ParseCompression(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "gzip":
		return CompressionGzip
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}
