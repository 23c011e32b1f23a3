package vocab

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yourusername/wordguard/internal/match"
	"go.uber.org/zap"
)

// entrySeparators splits word-list lines that pack several terms into one
// entry, as exported vocabulary sheets commonly do.
var entrySeparators = regexp.MustCompile(`[、,，;；/\s]+`)

// Loader reads word-list files and assembles PatternSets. It owns the
// deduplication policy and id assignment; the engine only ever sees the
// validated result.
type Loader struct {
	dir    string
	logger *zap.Logger
}

// NewLoader creates a loader for a directory of .txt word-list files.
func NewLoader(dir string, logger *zap.Logger) *Loader {
	return &Loader{dir: dir, logger: logger}
}

// Terms reads every .txt file in the directory and returns the deduplicated,
// sorted vocabulary. Sorting makes id assignment stable across reloads of an
// unchanged vocabulary and independent of file iteration order.
func (l *Loader) Terms() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary directory: %w", err)
	}

	seen := make(map[string]struct{})
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		path := filepath.Join(l.dir, entry.Name())
		count, err := l.readFile(path, seen)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Word list loaded",
			zap.String("file", entry.Name()),
			zap.Int("terms", count))
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms, nil
}

// Load assembles a PatternSet from the directory contents. An empty
// directory yields an empty set, which builds a valid automaton that
// matches nothing.
func (l *Loader) Load(caseInsensitive bool) (*match.PatternSet, error) {
	terms, err := l.Terms()
	if err != nil {
		return nil, err
	}

	ps := match.NewPatternSet(caseInsensitive)
	for id, term := range terms {
		if err := ps.Add(id, term); err != nil {
			return nil, fmt.Errorf("failed to add term %q: %w", term, err)
		}
	}

	l.logger.Info("Vocabulary loaded",
		zap.String("dir", l.dir),
		zap.Int("terms", ps.Len()),
		zap.Bool("case_insensitive", caseInsensitive))

	return ps, nil
}

// readFile parses one word-list file into seen. Lines may hold several terms
// separated by commas, enumeration commas, semicolons, slashes, or quoted
// groups.
func (l *Loader) readFile(path string, seen map[string]struct{}) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open word list %s: %w", path, err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		for _, term := range splitEntry(scanner.Text()) {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read word list %s: %w", path, err)
	}
	return count, nil
}

// splitEntry extracts the individual terms packed into a single line.
func splitEntry(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	if strings.HasPrefix(line, `"`) && strings.HasSuffix(line, `"`) && len(line) > 1 {
		line = line[1 : len(line)-1]
	}

	var terms []string
	for _, part := range strings.Split(line, `""`) {
		part = strings.Trim(part, `"`)
		for _, term := range entrySeparators.Split(part, -1) {
			term = strings.TrimSpace(term)
			if term != "" {
				terms = append(terms, term)
			}
		}
	}
	return terms
}
