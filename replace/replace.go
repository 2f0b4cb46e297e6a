// Package replace holds the ordered find/replace pairs applied to decoded HTML.
package replace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrFileNotFound is returned by LoadFile when the replacements file does not exist.
var ErrFileNotFound = errors.New("replacements file not found")

// Pair is a single literal substitution.
type Pair struct {
	Find    string
	Replace string
}

// Set is an ordered mapping from find-string to replace-string. Keys are unique;
// setting an existing key updates its value but keeps its position.
type Set struct {
	pairs []Pair
	index map[string]int
}

func New() *Set {
	return &Set{index: make(map[string]int)}
}

// Add stores a pair, overriding the value of an existing key.
func (s *Set) Add(find, replace string) {
	if i, ok := s.index[find]; ok {
		s.pairs[i].Replace = replace
		return
	}
	s.index[find] = len(s.pairs)
	s.pairs = append(s.pairs, Pair{Find: find, Replace: replace})
}

// Merge adds every pair of other to s, in other's order. Pairs from other win on collision.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	for _, p := range other.pairs {
		s.Add(p.Find, p.Replace)
	}
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.pairs)
}

// Pairs returns a copy of the pairs in application order.
func (s *Set) Pairs() []Pair {
	if s == nil {
		return nil
	}
	out := make([]Pair, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// Get returns the replacement stored for find.
func (s *Set) Get(find string) (string, bool) {
	if s == nil {
		return "", false
	}
	i, ok := s.index[find]
	if !ok {
		return "", false
	}
	return s.pairs[i].Replace, true
}

// Apply performs each substitution in order on the output of the previous one,
// so a later find-string can match text introduced by an earlier replacement.
func (s *Set) Apply(text string) string {
	if s == nil {
		return text
	}
	for _, p := range s.pairs {
		text = strings.ReplaceAll(text, p.Find, p.Replace)
	}
	return text
}

// LoadFile reads pairs from path. Files ending in .yaml or .yml are read as a single
// mapping; anything else is read as CSV with one find,replace pair per row.
func LoadFile(path string) (*Set, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("open replacements file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAML(file)
	default:
		return ReadCSV(file)
	}
}

// ReadCSV reads comma separated rows. Rows that do not have exactly two fields are skipped.
func ReadCSV(r io.Reader) (*Set, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	set := New()
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return set, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse replacements csv: %w", err)
		}
		if len(record) != 2 {
			continue
		}
		set.Add(record[0], record[1])
	}
}

// ReadYAML reads a top-level mapping of scalar keys to scalar values, keeping document order.
// Entries whose key or value is not a scalar are skipped.
func ReadYAML(r io.Reader) (*Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read replacements yaml: %w", err)
	}

	set := New()

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse replacements yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return set, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse replacements yaml: expected a mapping at the top level")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			continue
		}
		set.Add(key.Value, value.Value)
	}
	return set, nil
}
