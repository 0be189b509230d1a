// Package report writes a YAML summary of a run for later inspection.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type Report struct {
	Started time.Time `yaml:"started"`
	Took    string    `yaml:"took"`
	DryRun  bool      `yaml:"dry_run,omitempty"`

	Extracted     []string  `yaml:"extracted,omitempty"`
	ExtractFailed []Failure `yaml:"extract_failed,omitempty"`
	Moved         []Move    `yaml:"moved,omitempty"`
	Unresolved    []Failure `yaml:"unresolved,omitempty"`
	MoveFailed    []Failure `yaml:"move_failed,omitempty"`
	CleanupFailed []Failure `yaml:"cleanup_failed,omitempty"`
}

type Failure struct {
	Name  string `yaml:"name"`
	Error string `yaml:"error"`
}

type Move struct {
	Entry     string   `yaml:"entry"`
	Dest      string   `yaml:"dest"`
	ReleaseID int      `yaml:"release_id"`
	Tags      []string `yaml:"tags,omitempty"`
}

func Write(path string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("make parents: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
