package service

import (
	"context"
	"sort"
	"strings"

	"openbook-be/internal/entity"
	"openbook-be/internal/pkg/apperror"
	"openbook-be/internal/pkg/logger"
	"openbook-be/internal/repository/contract"
	"openbook-be/pkg/ai/router"
	"openbook-be/pkg/clock"
	"openbook-be/pkg/events"
	"openbook-be/pkg/llm"
	"openbook-be/pkg/metrics"
	"openbook-be/pkg/prompt"

	"github.com/google/uuid"
)

const DefaultHistoryWindow = 5

// IChatService runs persona chat sessions over a cached profile.
type IChatService interface {
	StartSession(ctx context.Context, username string) (*entity.ChatSession, error)
	SendMessage(ctx context.Context, sessionId, message string) (*entity.ChatResponse, error)
	GetSession(ctx context.Context, sessionId string) (*entity.ChatSession, error)
	ListSessions(ctx context.Context, username string) ([]*entity.ChatSession, error)
	DeleteSession(ctx context.Context, sessionId string) error
}

// ProfileCache yields a consistent profile and knowledge base pair.
type ProfileCache interface {
	Ensure(ctx context.Context, username string) (*entity.Profile, *entity.KnowledgeBase, error)
}

// IntentClassifier picks between whole-profile and single-repository context.
type IntentClassifier interface {
	Classify(ctx context.Context, utterance string, knownNames []string) router.Intent
}

type chatService struct {
	sessions      contract.ChatSessionRepository
	cache         ProfileCache
	classifier    IntentClassifier
	llmProvider   llm.LLMProvider
	publisher     events.Publisher
	clock         clock.Clock
	logger        logger.ILogger
	llmLogger     logger.ILogger
	historyWindow int
	locks         *sessionLocks
}

func NewChatService(
	sessions contract.ChatSessionRepository,
	cache ProfileCache,
	classifier IntentClassifier,
	llmProvider llm.LLMProvider,
	publisher events.Publisher,
	clk clock.Clock,
	logger logger.ILogger,
	llmLogger logger.ILogger,
	historyWindow int,
) IChatService {
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &chatService{
		sessions:      sessions,
		cache:         cache,
		classifier:    classifier,
		llmProvider:   llmProvider,
		publisher:     publisher,
		clock:         clk,
		logger:        logger,
		llmLogger:     llmLogger,
		historyWindow: historyWindow,
		locks:         newSessionLocks(),
	}
}

func (cs *chatService) StartSession(ctx context.Context, username string) (*entity.ChatSession, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.Invalid("username is required")
	}

	// cache is warmed before the session exists
	if _, _, err := cs.cache.Ensure(ctx, username); err != nil {
		return nil, err
	}

	now := cs.clock.Now()
	session := &entity.ChatSession{
		SessionId:     uuid.NewString(),
		Username:      username,
		CreatedAt:     now,
		LastMessageAt: now,
		Messages:      make([]entity.ChatMessage, 0),
		TokenHistory:  make([]entity.TokenUsage, 0),
	}

	if err := cs.sessions.Put(ctx, session); err != nil {
		return nil, apperror.Upstream("save chat session", err)
	}

	cs.logger.Info("CHAT", "Started session", map[string]interface{}{
		"session_id": session.SessionId,
		"username":   username,
	})
	cs.publish(ctx, events.ChatSessionStarted(session.SessionId, username, now))

	return session, nil
}

// SendMessage answers one user turn and persists the grown transcript.
// Turns on the same session are serialized.
func (cs *chatService) SendMessage(ctx context.Context, sessionId, message string) (*entity.ChatResponse, error) {
	unlock := cs.locks.Lock(sessionId)
	defer unlock()

	// 1. Load session
	session, err := cs.sessions.Get(ctx, sessionId)
	if err != nil {
		return nil, apperror.Upstream("load chat session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session %s", sessionId)
	}

	// 2. Ensure fresh profile and knowledge base
	profile, kb, err := cs.cache.Ensure(ctx, session.Username)
	if err != nil {
		return nil, err
	}

	// 3. Route and build context
	intent := cs.classifier.Classify(ctx, message, profile.RepositoryNames())
	mode := router.ModeGeneral
	contextPrompt := ""
	if repo, ok := profile.FindRepository(intent.EntityName); intent.Mode == router.ModeDetailed && ok {
		mode = router.ModeDetailed
		contextPrompt = prompt.BuildDetailedContext(profile, repo, kb)
	} else {
		contextPrompt = prompt.BuildGeneralContext(profile, kb)
	}

	cs.logger.Info("CHAT", "Intent resolved", map[string]interface{}{
		"session_id": sessionId,
		"mode":       mode,
		"repository": intent.EntityName,
	})

	// 4. Persona, context, recent history, then the new turn
	history := session.RecentMessages(cs.historyWindow)
	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages,
		llm.System(prompt.BuildPersona(profile)),
		llm.System(contextPrompt),
	)
	for _, m := range history {
		if m.Role == entity.ChatRoleUser {
			messages = append(messages, llm.User(m.Content))
		} else {
			messages = append(messages, llm.Assistant(m.Content))
		}
	}
	messages = append(messages, llm.User(message))

	// 5. One model round trip
	completion, err := cs.llmProvider.Complete(ctx, messages)
	if err != nil {
		return nil, apperror.Upstream("chat completion", err)
	}
	metrics.ObserveTokens("chat", completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	cs.llmLogger.Info("LLM", "Chat completion", map[string]interface{}{
		"session_id": sessionId,
		"messages":   len(messages),
		"context":    contextPrompt,
		"question":   message,
		"reply":      completion.Content,
	})

	// 6. Append both turns and persist the full snapshot
	usage := entity.NewTokenUsage(completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
	session.AppendExchange(message, completion.Content, usage, cs.clock.Now())

	if err := cs.sessions.Put(ctx, session); err != nil {
		return nil, apperror.Upstream("save chat session", err)
	}

	cs.logger.Info("CHAT", "Message processed", map[string]interface{}{
		"session_id": sessionId,
		"tokens":     usage.TotalTokens,
	})

	response := &entity.ChatResponse{
		Message:     completion.Content,
		TokensUsed:  usage.TotalTokens,
		ContextMode: string(mode),
	}
	if mode == router.ModeDetailed {
		response.MatchedRepository = intent.EntityName
	}
	return response, nil
}

func (cs *chatService) GetSession(ctx context.Context, sessionId string) (*entity.ChatSession, error) {
	session, err := cs.sessions.Get(ctx, sessionId)
	if err != nil {
		return nil, apperror.Upstream("load chat session", err)
	}
	if session == nil {
		return nil, apperror.NotFound("session %s", sessionId)
	}
	return session, nil
}

// ListSessions scans every stored session; the newest conversation comes first.
func (cs *chatService) ListSessions(ctx context.Context, username string) ([]*entity.ChatSession, error) {
	sessions, err := cs.sessions.ListByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Upstream("list chat sessions", err)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].LastMessageAt.Equal(sessions[j].LastMessageAt) {
			return sessions[i].LastMessageAt.After(sessions[j].LastMessageAt)
		}
		return sessions[i].SessionId < sessions[j].SessionId
	})
	return sessions, nil
}

// DeleteSession is idempotent; the event is only emitted when a session existed.
func (cs *chatService) DeleteSession(ctx context.Context, sessionId string) error {
	unlock := cs.locks.Lock(sessionId)
	defer unlock()

	session, err := cs.sessions.Get(ctx, sessionId)
	if err != nil {
		return apperror.Upstream("load chat session", err)
	}
	if session == nil {
		return nil
	}

	if err := cs.sessions.Delete(ctx, sessionId); err != nil {
		return apperror.Upstream("delete chat session", err)
	}

	cs.logger.Info("CHAT", "Deleted session", map[string]interface{}{"session_id": sessionId})
	cs.publish(ctx, events.ChatSessionDeleted(sessionId, session.Username, cs.clock.Now()))
	return nil
}

func (cs *chatService) publish(ctx context.Context, event events.Event) {
	if cs.publisher == nil {
		return
	}
	if err := cs.publisher.Publish(ctx, event); err != nil {
		cs.logger.Error("CHAT", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
