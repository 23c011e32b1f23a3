package etl

import (
	"strings"
	"time"
)

// TermRecord represents a single vocabulary entry from an input dataset
type TermRecord struct {
	Term     string `csv:"term" parquet:"term" json:"term"`
	Category string `csv:"category" parquet:"category" json:"category"`
}

// Result represents the outcome of ingesting one dataset
type Result struct {
	TotalRecords int64         `json:"total_records"`
	Imported     int64         `json:"imported"`
	Duplicates   int64         `json:"duplicates"`
	Invalid      int64         `json:"invalid"`
	Categories   []string      `json:"categories"`
	Duration     time.Duration `json:"duration"`
	Errors       []string      `json:"errors,omitempty"`
}

// Config contains vocabulary ingestion configuration
type Config struct {
	OutputDir       string `yaml:"output_dir" mapstructure:"output_dir"`
	DefaultCategory string `yaml:"default_category" mapstructure:"default_category"`
	SkipDuplicates  bool   `yaml:"skip_duplicates" mapstructure:"skip_duplicates"`
	ValidateData    bool   `yaml:"validate_data" mapstructure:"validate_data"`
}

// FileFormat represents supported file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSON    FileFormat = "json"
)

// DetectFileFormat detects file format from extension
func DetectFileFormat(filename string) FileFormat {
	switch {
	case strings.HasSuffix(filename, ".parquet"):
		return FormatParquet
	case strings.HasSuffix(filename, ".json") || strings.HasSuffix(filename, ".jsonl"):
		return FormatJSON
	default:
		return FormatCSV
	}
}
