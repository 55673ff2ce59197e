package jobs

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "jobs.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestLoadJobsXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"id", "title", "company", "description", "skills", "location", "job_type"},
		{"j1", "Backend Developer", "Acme", "Build APIs", "Go, SQL", "Bangalore", "full-time"},
		{"", "Frontend Intern", "Globex", "React dashboards", "javascript,react", "Remote", "internship"},
		{"", "", "", "", "", "", ""},
	})

	jobs, err := LoadJobsXLSX(path)
	if err != nil {
		t.Fatalf("LoadJobsXLSX: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if jobs[0].ID != "j1" || jobs[0].Company != "Acme" {
		t.Errorf("first job = %+v", jobs[0])
	}
	if got := jobs[0].RequiredSkills; len(got) != 2 || got[0] != "go" || got[1] != "sql" {
		t.Errorf("skills = %v", got)
	}
	if jobs[1].ID == "" {
		t.Error("row without id got no generated id")
	}
	if jobs[1].JobType != "internship" {
		t.Errorf("jobType = %q", jobs[1].JobType)
	}
}

func TestLoadJobsXLSX_MissingFile(t *testing.T) {
	if _, err := LoadJobsXLSX(filepath.Join(t.TempDir(), "absent.xlsx")); err == nil {
		t.Fatal("expected error for missing workbook")
	}
}
