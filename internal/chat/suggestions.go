package chat

import "strings"

// Suggestions returns up to three follow-up prompts keyed off the message
// topic.
func Suggestions(message string) []string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "resume"):
		return []string{
			"How to format my resume?",
			"What skills should I highlight?",
			"Resume length guidelines",
		}
	case strings.Contains(lower, "interview"):
		return []string{
			"Common interview questions",
			"How to prepare for technical interviews?",
			"Interview etiquette tips",
		}
	case strings.Contains(lower, "skill"):
		return []string{
			"In-demand technical skills",
			"How to develop soft skills?",
			"Skill assessment tools",
		}
	default:
		return []string{
			"Resume writing tips",
			"Interview preparation",
			"Career guidance",
		}
	}
}
