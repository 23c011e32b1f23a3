package etl

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/segmentio/parquet-go"
	"go.uber.org/zap"
)

// Pipeline ingests term datasets into the word-list directory the review
// service loads from. Each category becomes one .txt file; existing entries
// are preserved and duplicates skipped, so repeated imports are safe.
type Pipeline struct {
	config *Config
	logger *zap.Logger
}

// NewPipeline creates a vocabulary ingestion pipeline
func NewPipeline(config *Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{config: config, logger: logger}
}

// ProcessFile ingests one dataset file (CSV, Parquet, or JSON lines)
func (p *Pipeline) ProcessFile(ctx context.Context, filePath string) (*Result, error) {
	start := time.Now()
	format := DetectFileFormat(filePath)

	p.logger.Info("Starting vocabulary ingestion",
		zap.String("file", filePath),
		zap.String("format", string(format)),
		zap.String("output_dir", p.config.OutputDir))

	records, err := p.readRecords(ctx, filePath, format)
	if err != nil {
		return nil, err
	}

	result := &Result{TotalRecords: int64(len(records))}

	existing, err := p.existingTerms()
	if err != nil {
		return nil, err
	}

	// Bucket valid, new terms by category
	byCategory := make(map[string]map[string]struct{})
	for _, rec := range records {
		term := strings.TrimSpace(rec.Term)
		if p.config.ValidateData && term == "" {
			result.Invalid++
			continue
		}
		if p.config.SkipDuplicates {
			if _, dup := existing[term]; dup {
				result.Duplicates++
				continue
			}
		}
		existing[term] = struct{}{}

		category := strings.TrimSpace(rec.Category)
		if category == "" {
			category = p.config.DefaultCategory
		}
		if byCategory[category] == nil {
			byCategory[category] = make(map[string]struct{})
		}
		byCategory[category][term] = struct{}{}
		result.Imported++
	}

	for category, terms := range byCategory {
		if err := p.appendWordList(category, terms); err != nil {
			return nil, err
		}
		result.Categories = append(result.Categories, category)
	}
	sort.Strings(result.Categories)
	result.Duration = time.Since(start)

	p.logger.Info("Vocabulary ingestion completed",
		zap.Int64("total", result.TotalRecords),
		zap.Int64("imported", result.Imported),
		zap.Int64("duplicates", result.Duplicates),
		zap.Int64("invalid", result.Invalid),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// readRecords parses the dataset into term records
func (p *Pipeline) readRecords(ctx context.Context, filePath string, format FileFormat) ([]TermRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatCSV:
		return p.readCSV(ctx, file)
	case FormatParquet:
		return p.readParquet(ctx, file, filePath)
	case FormatJSON:
		return p.readJSON(ctx, file)
	default:
		return nil, fmt.Errorf("unsupported file format: %s", format)
	}
}

// readCSV expects a header row naming at least a "term" column
func (p *Pipeline) readCSV(ctx context.Context, r io.Reader) ([]TermRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	termIdx, categoryIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "term", "word", "text":
			termIdx = i
		case "category", "label":
			categoryIdx = i
		}
	}
	if termIdx < 0 {
		return nil, fmt.Errorf("CSV header has no term column: %v", header)
	}

	var records []TermRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.logger.Warn("Failed to read CSV row", zap.Error(err))
			continue
		}
		if termIdx >= len(row) {
			continue
		}
		rec := TermRecord{Term: row[termIdx]}
		if categoryIdx >= 0 && categoryIdx < len(row) {
			rec.Category = row[categoryIdx]
		}
		records = append(records, rec)
	}
	return records, nil
}

// readParquet reads records with term/category columns
func (p *Pipeline) readParquet(ctx context.Context, file *os.File, filePath string) ([]TermRecord, error) {
	reader := parquet.NewReader(file)
	defer reader.Close()

	var records []TermRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rec TermRecord
		err := reader.Read(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			p.logger.Warn("Failed to read Parquet record",
				zap.String("file", filePath), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// readJSON reads one JSON object per line
func (p *Pipeline) readJSON(ctx context.Context, r io.Reader) ([]TermRecord, error) {
	var records []TermRecord
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec TermRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			p.logger.Warn("Failed to parse JSON record", zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// existingTerms collects every term already present in the output directory
func (p *Pipeline) existingTerms() (map[string]struct{}, error) {
	terms := make(map[string]struct{})

	entries, err := os.ReadDir(p.config.OutputDir)
	if os.IsNotExist(err) {
		return terms, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(p.config.OutputDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read word list %s: %w", entry.Name(), err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				terms[line] = struct{}{}
			}
		}
	}
	return terms, nil
}

// appendWordList appends new terms, sorted, to the category's word list
func (p *Pipeline) appendWordList(category string, terms map[string]struct{}) error {
	if err := os.MkdirAll(p.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	sorted := make([]string, 0, len(terms))
	for term := range terms {
		sorted = append(sorted, term)
	}
	sort.Strings(sorted)

	path := filepath.Join(p.config.OutputDir, sanitizeCategory(category)+".txt")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open word list %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, term := range sorted {
		fmt.Fprintln(w, term)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write word list %s: %w", path, err)
	}

	p.logger.Debug("Word list updated",
		zap.String("file", path),
		zap.Int("new_terms", len(sorted)))
	return nil
}

// sanitizeCategory keeps category file names flat and predictable
func sanitizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	category = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, category)
	if category == "" {
		category = "imported"
	}
	return category
}
