package jobs

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/campushq/naitei/internal/models"
)

type seedFile struct {
	Jobs []*models.Job `yaml:"jobs"`
}

// LoadJobsFile reads a YAML job dataset. Entries without an id get one
// assigned so re-seeding the same file stays idempotent only for entries that
// carry explicit ids.
func LoadJobsFile(path string) ([]*models.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jobs file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing jobs file %s: %w", path, err)
	}

	for i, job := range f.Jobs {
		if job.Title == "" {
			return nil, fmt.Errorf("jobs file %s: entry %d has no title", path, i)
		}
		if job.ID == "" {
			job.ID = uuid.New().String()
		}
		normalizeSkills(job)
	}
	return f.Jobs, nil
}

// normalizeSkills trims and lowercases skill names so fit scoring compares
// like with like.
func normalizeSkills(job *models.Job) {
	out := job.RequiredSkills[:0]
	for _, s := range job.RequiredSkills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	job.RequiredSkills = out
}
