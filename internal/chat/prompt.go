package chat

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a career guidance assistant for a campus placement portal.
Answer the student's question using the provided context. Be concrete and
actionable. If the context does not cover the question, say so briefly and
give general advice.`

// BuildMessages renders the prompt into a system message and a user message.
func BuildMessages(p Prompt) (system, user string) {
	var b strings.Builder
	b.WriteString(systemPrompt)

	if p.Profile != nil {
		b.WriteString("\n\nStudent profile:\n")
		if p.Profile.Name != "" {
			fmt.Fprintf(&b, "- Name: %s\n", p.Profile.Name)
		}
		if p.Profile.Department != "" {
			fmt.Fprintf(&b, "- Department: %s\n", p.Profile.Department)
		}
		if p.Profile.Year != "" {
			fmt.Fprintf(&b, "- Year: %s\n", p.Profile.Year)
		}
		if len(p.Profile.Skills) > 0 {
			fmt.Fprintf(&b, "- Skills: %s\n", strings.Join(p.Profile.Skills, ", "))
		}
	}

	if len(p.Sources) > 0 {
		b.WriteString("\nContext:\n")
		for i, s := range p.Sources {
			fmt.Fprintf(&b, "[%d] %s: %s\n", i+1, s.Title, s.Content)
		}
	}

	return b.String(), p.Message
}
