package chat

import (
	"context"
	"fmt"
	"strings"
)

// TemplateGenerator produces deterministic responses from the retrieved
// context without calling any external API. It is the default provider, and
// the fallback when no API key is configured.
type TemplateGenerator struct{}

// NewTemplateGenerator creates an offline generator.
func NewTemplateGenerator() *TemplateGenerator { return &TemplateGenerator{} }

// Generate composes a response out of the retrieved sources. With no sources
// it returns general guidance addressed to the student.
func (g *TemplateGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	var b strings.Builder

	if prompt.Profile != nil && prompt.Profile.Name != "" {
		fmt.Fprintf(&b, "Hi %s! ", prompt.Profile.Name)
	}

	if len(prompt.Sources) == 0 {
		b.WriteString("I can help with career guidance, resume tips, interview preparation, and job search advice. Could you tell me a bit more about what you are looking for?")
		return b.String(), nil
	}

	fmt.Fprintf(&b, "Here is what I found about %q:\n\n", strings.TrimSpace(prompt.Message))
	for _, s := range prompt.Sources {
		fmt.Fprintf(&b, "%s: %s\n\n", s.Title, s.Content)
	}
	b.WriteString("Would you like more detail on any of these?")
	return b.String(), nil
}

// Name identifies the provider in status output.
func (g *TemplateGenerator) Name() string { return "template" }
