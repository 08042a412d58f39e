// Package knowledge derives a knowledge base of per-project summaries from a
// scraped profile, one language model call per documented repository.
package knowledge

import (
	"context"
	"fmt"
	"sync"

	"openbook-be/internal/entity"
	"openbook-be/internal/pkg/logger"
	"openbook-be/pkg/clock"
	"openbook-be/pkg/llm"
	"openbook-be/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxConcurrency = 5

	analystInstruction = "You are a technical analyst specializing in extracting key information from project documentation."
)

type Generator struct {
	llm            llm.LLMProvider
	clock          clock.Clock
	logger         logger.ILogger
	maxConcurrency int
}

func NewGenerator(provider llm.LLMProvider, clk clock.Clock, log logger.ILogger, maxConcurrency int) *Generator {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Generator{
		llm:            provider,
		clock:          clk,
		logger:         log,
		maxConcurrency: maxConcurrency,
	}
}

// Generate summarizes every repository that has readme text. At most
// maxConcurrency calls are in flight; a failed call drops that repository
// and never cancels the others. Summaries are in completion order.
func (g *Generator) Generate(ctx context.Context, profile *entity.Profile) (*entity.KnowledgeBase, error) {
	documented := make([]entity.Repository, 0, len(profile.Repositories))
	for _, repo := range profile.Repositories {
		if repo.ReadmeContent != "" {
			documented = append(documented, repo)
		}
	}

	g.logger.Info("KNOWLEDGE", "Generating knowledge base", map[string]interface{}{
		"username":     profile.Username,
		"repositories": len(documented),
	})

	var (
		mu        sync.Mutex
		summaries = make([]entity.ProjectSummary, 0, len(documented))
		usage     entity.TokenUsage
		failures  int
	)

	var group errgroup.Group
	group.SetLimit(g.maxConcurrency)

	for _, repo := range documented {
		repo := repo
		group.Go(func() error {
			completion, err := g.llm.Complete(ctx, []llm.Message{
				llm.System(analystInstruction),
				llm.User(BuildReadmePrompt(&repo)),
			})
			if err != nil {
				metrics.SummaryCalls.WithLabelValues("failure").Inc()
				g.logger.Warn("KNOWLEDGE", "Summarization failed, skipping repository", map[string]interface{}{
					"username":   profile.Username,
					"repository": repo.Name,
					"error":      err.Error(),
				})
				mu.Lock()
				failures++
				mu.Unlock()
				return nil
			}

			metrics.SummaryCalls.WithLabelValues("success").Inc()
			metrics.ObserveTokens("summary", completion.Usage.PromptTokens, completion.Usage.CompletionTokens)

			mu.Lock()
			summaries = append(summaries, entity.ProjectSummary{
				RepositoryName: repo.Name,
				AiSummary:      completion.Content,
			})
			usage = usage.Add(entity.NewTokenUsage(completion.Usage.PromptTokens, completion.Usage.CompletionTokens))
			mu.Unlock()
			return nil
		})
	}

	// tasks never return an error
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("knowledge base generation for %s aborted: %w", profile.Username, err)
	}

	kb := &entity.KnowledgeBase{
		Username:         profile.Username,
		GeneratedAt:      g.clock.Now(),
		ProfileScrapedAt: profile.CachedAt,
		ProjectSummaries: summaries,
		TokensUsed:       usage,
	}

	g.logger.Info("KNOWLEDGE", "Generated knowledge base", map[string]interface{}{
		"username":     profile.Username,
		"summaries":    len(summaries),
		"failures":     failures,
		"total_tokens": usage.TotalTokens,
	})
	return kb, nil
}

// BuildReadmePrompt asks for a technical summary of one repository.
func BuildReadmePrompt(repo *entity.Repository) string {
	return fmt.Sprintf(`Analyze this project's README and extract key technical information.

PROJECT: %s
DESCRIPTION: %s
PRIMARY LANGUAGE: %s

README CONTENT:
%s

Extract and summarize in 3-5 concise paragraphs:

1. PROJECT PURPOSE: What problem does this solve? What does it do?
2. TECHNICAL IMPLEMENTATION: Key technologies, frameworks, libraries, architecture used. Be specific.
3. KEY FEATURES: Main functionality, what makes it notable.
4. USAGE/DEPLOYMENT: Installation, commands, configuration mentioned.
5. TECHNICAL INSIGHTS: Interesting implementation details, challenges solved.

Be specific and technical. Include actual technology names from the README. Keep it concise.`,
		repo.Name, orNA(repo.Description), orNA(repo.PrimaryLanguage), repo.ReadmeContent)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
