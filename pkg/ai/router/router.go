package router

import (
	"context"
	"fmt"
	"strings"

	"openbook-be/internal/pkg/logger"
	"openbook-be/pkg/llm"
	"openbook-be/pkg/metrics"
)

const classifierInstruction = "You are a classifier. Respond with only GENERAL or DETAILED:repo-name. Nothing else."

// Intent is the routing decision for one user message.
type Intent struct {
	Mode       Mode
	EntityName string // canonical repository name, only set in ModeDetailed
}

func General() Intent {
	return Intent{Mode: ModeGeneral}
}

// Router decides whether a question targets one specific repository.
type Router struct {
	llm    llm.LLMProvider
	logger logger.ILogger
}

func NewRouter(provider llm.LLMProvider, log logger.ILogger) *Router {
	return &Router{
		llm:    provider,
		logger: log,
	}
}

// Classify never fails: a blank utterance, no known names, a model error,
// an unparseable reply or an unknown repository all yield General.
func (r *Router) Classify(ctx context.Context, utterance string, knownNames []string) Intent {
	if strings.TrimSpace(utterance) == "" || len(knownNames) == 0 {
		return r.record(General())
	}

	completion, err := r.llm.Complete(ctx, []llm.Message{
		llm.System(classifierInstruction),
		llm.User(BuildClassifierPrompt(utterance, knownNames)),
	})
	if err != nil {
		r.logger.Warn("ROUTER", "Intent detection failed, defaulting to General", map[string]interface{}{
			"error": err.Error(),
		})
		return r.record(General())
	}
	metrics.ObserveTokens("intent", completion.Usage.PromptTokens, completion.Usage.CompletionTokens)

	parsed := Parse(completion.Content)
	r.logger.Info("ROUTER", "Intent classification", map[string]interface{}{
		"reply": strings.TrimSpace(parsed.Raw),
		"kind":  parsed.Kind.String(),
	})

	if parsed.Kind != KindDetailed {
		return r.record(General())
	}

	name, ok := matchName(parsed.Name, knownNames)
	if !ok {
		r.logger.Debug("ROUTER", "Classifier named an unknown repository", map[string]interface{}{
			"name": parsed.Name,
		})
		return r.record(General())
	}

	return r.record(Intent{Mode: ModeDetailed, EntityName: name})
}

func (r *Router) record(intent Intent) Intent {
	metrics.Intents.WithLabelValues(string(intent.Mode)).Inc()
	return intent
}

// BuildClassifierPrompt lists the candidate repositories and the question.
func BuildClassifierPrompt(utterance string, knownNames []string) string {
	return fmt.Sprintf(`Classify this user question into one of two categories:

GENERAL - Questions about:
- Skills, languages, experience (e.g., "Do you know Python?")
- Overall background, bio, who they are
- General work history or interests
- Anything NOT about a specific project

DETAILED - Questions about a SPECIFIC project from this list:
%s

User question: "%s"

Respond with ONLY one of:
- GENERAL
- DETAILED:project-name

Examples:
"Are you good at C#?" → GENERAL
"Tell me about poly-ratings-llm" → DETAILED:poly-ratings-llm
"What's your experience?" → GENERAL
"How does the poly ratings project work?" → DETAILED:poly-ratings-llm`, strings.Join(knownNames, ", "), utterance)
}
