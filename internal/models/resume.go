package models

// ParsedResume is the structured output of resume parsing.
type ParsedResume struct {
	Skills     []string           `json:"skills"`
	Projects   []ResumeProject    `json:"projects"`
	Experience []ResumeExperience `json:"experience"`
	Education  []ResumeEducation  `json:"education"`
	Summary    string             `json:"summary"`
	Contact    map[string]string  `json:"contact,omitempty"`
}

// ResumeProject is a project extracted from a resume.
type ResumeProject struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Duration     string   `json:"duration,omitempty"`
	Link         string   `json:"link,omitempty"`
}

// ResumeExperience is a work entry extracted from a resume.
type ResumeExperience struct {
	Company     string   `json:"company"`
	Position    string   `json:"position"`
	Duration    string   `json:"duration,omitempty"`
	Description string   `json:"description,omitempty"`
	Skills      []string `json:"skills"`
}

// ResumeEducation is an education entry extracted from a resume.
type ResumeEducation struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Year        string `json:"year,omitempty"`
	GPA         string `json:"gpa,omitempty"`
}
