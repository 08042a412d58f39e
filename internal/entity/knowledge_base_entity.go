package entity

import "time"

type KnowledgeBase struct {
	Username         string           `json:"username"`
	GeneratedAt      time.Time        `json:"generated_at"`
	ProfileScrapedAt time.Time        `json:"profile_scraped_at"` // must equal Profile.CachedAt
	ProjectSummaries []ProjectSummary `json:"project_summaries"`
	TokensUsed       TokenUsage       `json:"tokens_used"`
}

type ProjectSummary struct {
	RepositoryName string `json:"repository_name"`
	AiSummary      string `json:"ai_summary"`
}

// FindSummary returns the summary generated for the named repository.
func (kb *KnowledgeBase) FindSummary(repositoryName string) (*ProjectSummary, bool) {
	for i := range kb.ProjectSummaries {
		if kb.ProjectSummaries[i].RepositoryName == repositoryName {
			return &kb.ProjectSummaries[i], true
		}
	}
	return nil, false
}

// IsBoundTo reports whether the knowledge base was derived from exactly this
// profile snapshot.
func (kb *KnowledgeBase) IsBoundTo(profile *Profile) bool {
	return kb.ProfileScrapedAt.Equal(profile.CachedAt)
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewTokenUsage keeps Total equal to the sum of its parts.
func NewTokenUsage(prompt, completion int) TokenUsage {
	return TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

// Add returns the element-wise sum of two usages.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return NewTokenUsage(u.PromptTokens+other.PromptTokens, u.CompletionTokens+other.CompletionTokens)
}
