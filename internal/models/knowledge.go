package models

// KnowledgeEntry is a career-guidance snippet used as retrieval context for
// chat responses.
type KnowledgeEntry struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Type    string `json:"type" yaml:"type"`
}

// Source is a knowledge entry attached to a chat response with its retrieval
// relevance.
type Source struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	Type           string  `json:"type"`
	RelevanceScore float64 `json:"relevance_score"`
}
