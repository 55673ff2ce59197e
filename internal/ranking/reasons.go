package ranking

import (
	"fmt"
	"strings"

	"github.com/campushq/naitei/internal/models"
)

// FitReason labels a 0-100 fit score the way the recommendation API reports
// it.
func FitReason(fitScore float64) string {
	switch {
	case fitScore >= 80:
		return "Excellent skill match"
	case fitScore >= 60:
		return "Good skill match"
	case fitScore >= 40:
		return "Partial skill match"
	default:
		return "Limited skill match"
	}
}

// SimilarityReason explains why a job is similar to the reference job: shared
// skills, same job type, common title words, and the similarity band.
func SimilarityReason(reference, job *models.Job, score float64) string {
	var reasons []string

	if n := overlap(reference.RequiredSkills, job.RequiredSkills); n > 0 {
		reasons = append(reasons, fmt.Sprintf("Shared %d skills", n))
	}
	if reference.JobType != "" && reference.JobType == job.JobType {
		reasons = append(reasons, "Same job type")
	}
	if n := overlap(strings.Fields(strings.ToLower(reference.Title)), strings.Fields(strings.ToLower(job.Title))); n > 0 {
		reasons = append(reasons, fmt.Sprintf("Similar title (%d common words)", n))
	}

	switch {
	case score >= 0.8:
		reasons = append(reasons, "Very high similarity")
	case score >= 0.6:
		reasons = append(reasons, "High similarity")
	case score >= 0.4:
		reasons = append(reasons, "Moderate similarity")
	default:
		reasons = append(reasons, "Low similarity")
	}
	return strings.Join(reasons, ", ")
}

// overlap counts distinct case-insensitive values present in both slices.
func overlap(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[strings.ToLower(s)] = true
	}
	n := 0
	seen := make(map[string]bool, len(b))
	for _, s := range b {
		key := strings.ToLower(s)
		if set[key] && !seen[key] {
			seen[key] = true
			n++
		}
	}
	return n
}
