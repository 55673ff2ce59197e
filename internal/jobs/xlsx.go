package jobs

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/campushq/naitei/internal/models"
)

// xlsx column order. The first row is a header and is skipped.
const (
	colID = iota
	colTitle
	colCompany
	colDescription
	colSkills
	colLocation
	colJobType
)

// LoadJobsXLSX reads jobs from the first sheet of an Excel workbook. Skills
// are comma-separated in a single cell. Blank rows and rows without a title
// are skipped.
func LoadJobsXLSX(path string) ([]*models.Job, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}

	var jobs []*models.Job
	for i, row := range rows {
		if i == 0 {
			continue
		}
		job := jobFromRow(row)
		if job == nil {
			continue
		}
		if job.ID == "" {
			job.ID = uuid.New().String()
		}
		normalizeSkills(job)
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func jobFromRow(row []string) *models.Job {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	title := cell(colTitle)
	if title == "" {
		return nil
	}
	job := &models.Job{
		ID:          cell(colID),
		Title:       title,
		Company:     cell(colCompany),
		Description: cell(colDescription),
		Location:    cell(colLocation),
		JobType:     cell(colJobType),
	}
	for _, s := range strings.Split(cell(colSkills), ",") {
		if s = strings.TrimSpace(s); s != "" {
			job.RequiredSkills = append(job.RequiredSkills, s)
		}
	}
	return job
}
