package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest describes one published build.
type Manifest struct {
	BuildID       string    `yaml:"build_id"`
	Model         string    `yaml:"model"`
	Dimension     int       `yaml:"dimension"`
	Count         int       `yaml:"count"`
	PassagePrefix string    `yaml:"passage_prefix"`
	OverBudget    int       `yaml:"over_budget"`
	CreatedAt     time.Time `yaml:"created_at"`
}

func writeManifest(dir string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func readManifest(dir string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Clean(filepath.Join(dir, manifestFile)))
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}
