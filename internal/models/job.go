// Package models defines the domain types shared across the service.
package models

import "time"

// Job is a posting in the placement catalog.
type Job struct {
	ID             string    `json:"id" yaml:"id"`
	Title          string    `json:"title" yaml:"title"`
	Company        string    `json:"company" yaml:"company"`
	Description    string    `json:"description" yaml:"description"`
	RequiredSkills []string  `json:"requiredSkills" yaml:"required_skills"`
	Location       string    `json:"location,omitempty" yaml:"location"`
	JobType        string    `json:"jobType,omitempty" yaml:"job_type"`
	CreatedAt      time.Time `json:"createdAt,omitempty" yaml:"-"`
}

// EmbeddingText returns the text a job is embedded under: title, description
// and skills concatenated, matching how similar-jobs queries are built.
func (j *Job) EmbeddingText() string {
	text := j.Title + " " + j.Description
	for _, s := range j.RequiredSkills {
		text += " " + s
	}
	return text
}

// JobRecommendation is a scored job for a student.
type JobRecommendation struct {
	JobID    string   `json:"jobId"`
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	FitScore float64  `json:"fitScore"`
	Reason   string   `json:"reason"`
	Location string   `json:"location,omitempty"`
	JobType  string   `json:"jobType,omitempty"`
	Skills   []string `json:"skills"`
}

// FilterJobType exposes the job type for recommendation filtering.
func (r *JobRecommendation) FilterJobType() string { return r.JobType }

// FilterLocation exposes the location for recommendation filtering.
func (r *JobRecommendation) FilterLocation() string { return r.Location }

// FilterScore exposes the fit score for recommendation filtering.
func (r *JobRecommendation) FilterScore() float64 { return r.FitScore }

// SimilarJob is a job ranked by embedding similarity to a reference job.
type SimilarJob struct {
	JobID           string  `json:"jobId"`
	Title           string  `json:"title"`
	Company         string  `json:"company"`
	SimilarityScore float64 `json:"similarityScore"`
	Reason          string  `json:"reason"`
	Location        string  `json:"location,omitempty"`
	JobType         string  `json:"jobType,omitempty"`
}

// StudentProfile is the subset of a student record used for recommendations
// and chat personalization.
type StudentProfile struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Skills     []string `json:"skills"`
	Department string   `json:"department,omitempty"`
	Year       string   `json:"year,omitempty"`
	GPA        float64  `json:"gpa,omitempty"`
}
