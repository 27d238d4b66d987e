package evaluation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// Query is one labelled evaluation query.
type Query struct {
	ID          string  `yaml:"query_id"`
	Text        string  `yaml:"query_text"`
	RelevantIDs []int64 `yaml:"relevant_ids"`
}

// Dataset is a list of labelled queries plus the cut-offs to report.
type Dataset struct {
	KValues []int   `yaml:"k_values"`
	Queries []Query `yaml:"queries"`
}

// DefaultKValues are reported when a dataset names none.
var DefaultKValues = []int{1, 3, 5, 10}

// LoadDataset reads a YAML dataset file.
func LoadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Dataset{}, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	if len(ds.KValues) == 0 {
		ds.KValues = DefaultKValues
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// Validate checks that every query is usable.
func (d Dataset) Validate() error {
	if len(d.Queries) == 0 {
		return fmt.Errorf("%w: dataset has no queries", domain.ErrInvalidArgument)
	}
	for _, k := range d.KValues {
		if k <= 0 || k > domain.MaxTopK {
			return fmt.Errorf("%w: k value %d out of range", domain.ErrInvalidArgument, k)
		}
	}
	seen := make(map[string]bool, len(d.Queries))
	for i, q := range d.Queries {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("%w: query %d has no text", domain.ErrInvalidArgument, i)
		}
		if q.ID != "" && seen[q.ID] {
			return fmt.Errorf("%w: duplicate query_id %q", domain.ErrInvalidArgument, q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}
