package resume

import (
	"regexp"
	"strings"

	"github.com/campushq/naitei/internal/models"
)

// Result caps mirror what the recommendation flow consumes downstream.
const (
	maxProjects   = 5
	maxExperience = 3
	maxEducation  = 2
)

// skillKeywords are the technical skills the parser recognizes.
var skillKeywords = []string{
	"JavaScript", "TypeScript", "Python", "Java", "C++", "Go",
	"React", "Angular", "Vue", "Node.js", "Express", "Django", "Flask", "Spring",
	"MongoDB", "PostgreSQL", "MySQL", "SQLite", "Redis",
	"AWS", "GCP", "Azure", "Docker", "Kubernetes", "Terraform",
	"Git", "Linux", "HTML", "CSS", "Bootstrap", "jQuery",
}

var (
	projectRe    = regexp.MustCompile(`(?im)^(?:Project:\s*|Developed\s+|Built\s+)(.+?)\s*$`)
	experienceRe = regexp.MustCompile(`(?im)^(?:Worked at|Intern at)\s+(.+?)\s*$`)
	tripletRe    = regexp.MustCompile(`(?m)^(.+?)\s+-\s+(.+?)\s+-\s+(.+?)\s*$`)
	degreeRe     = regexp.MustCompile(`(?i)^(?:B\.?\s?Tech|Bachelor|M\.?\s?Tech|Master|B\.?Sc|M\.?Sc|MBA|PhD)\b`)
	summaryRe    = regexp.MustCompile(`(?is)(?:Summary|Objective|About):\s*(.+?)(?:\n\s*\n|$)`)

	emailRe    = regexp.MustCompile(`[\w.+-]+@[\w.-]+\.\w+`)
	phoneRe    = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	linkedinRe = regexp.MustCompile(`(?i)linkedin\.com/in/[\w-]+`)
	githubRe   = regexp.MustCompile(`(?i)github\.com/[\w-]+`)
)

// Parse extracts structured resume data from plain text using keyword and
// pattern heuristics.
func Parse(text string) *models.ParsedResume {
	return &models.ParsedResume{
		Skills:     parseSkills(text),
		Projects:   parseProjects(text),
		Experience: parseExperience(text),
		Education:  parseEducation(text),
		Summary:    parseSummary(text),
		Contact:    parseContact(text),
	}
}

func parseSkills(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0, 8)
	for _, skill := range skillKeywords {
		if strings.Contains(lower, strings.ToLower(skill)) {
			found = append(found, skill)
		}
	}
	return found
}

func parseProjects(text string) []models.ResumeProject {
	var projects []models.ResumeProject
	for _, m := range projectRe.FindAllStringSubmatch(text, -1) {
		title := strings.TrimSpace(m[1])
		if title == "" {
			continue
		}
		projects = append(projects, models.ResumeProject{
			Title:        title,
			Description:  title,
			Technologies: parseSkills(title),
		})
		if len(projects) == maxProjects {
			break
		}
	}
	return projects
}

// parseExperience matches "Company - Position - Duration" triplets plus
// "Worked at"/"Intern at" lines.
func parseExperience(text string) []models.ResumeExperience {
	var experience []models.ResumeExperience
	for _, m := range tripletRe.FindAllStringSubmatch(text, -1) {
		// Triplets that start with a degree are education lines.
		if degreeRe.MatchString(strings.TrimSpace(m[2])) {
			continue
		}
		experience = append(experience, models.ResumeExperience{
			Company:  strings.TrimSpace(m[1]),
			Position: strings.TrimSpace(m[2]),
			Duration: strings.TrimSpace(m[3]),
			Skills:   []string{},
		})
		if len(experience) == maxExperience {
			return experience
		}
	}
	for _, m := range experienceRe.FindAllStringSubmatch(text, -1) {
		experience = append(experience, models.ResumeExperience{
			Company: strings.TrimSpace(m[1]),
			Skills:  []string{},
		})
		if len(experience) == maxExperience {
			break
		}
	}
	return experience
}

func parseEducation(text string) []models.ResumeEducation {
	var education []models.ResumeEducation
	for _, m := range tripletRe.FindAllStringSubmatch(text, -1) {
		if !degreeRe.MatchString(strings.TrimSpace(m[2])) {
			continue
		}
		education = append(education, models.ResumeEducation{
			Institution: strings.TrimSpace(m[1]),
			Degree:      strings.TrimSpace(m[2]),
			Field:       strings.TrimSpace(m[3]),
		})
		if len(education) == maxEducation {
			break
		}
	}
	return education
}

func parseSummary(text string) string {
	if m := summaryRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func parseContact(text string) map[string]string {
	contact := make(map[string]string)
	if m := emailRe.FindString(text); m != "" {
		contact["email"] = m
	}
	if m := phoneRe.FindString(text); m != "" {
		contact["phone"] = strings.TrimSpace(m)
	}
	if m := linkedinRe.FindString(text); m != "" {
		contact["linkedin"] = "https://" + m
	}
	if m := githubRe.FindString(text); m != "" {
		contact["github"] = "https://" + m
	}
	if len(contact) == 0 {
		return nil
	}
	return contact
}
