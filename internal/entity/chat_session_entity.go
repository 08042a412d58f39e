package entity

import "time"

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatSession struct {
	SessionId       string        `json:"session_id"`
	Username        string        `json:"username"`
	CreatedAt       time.Time     `json:"created_at"`
	LastMessageAt   time.Time     `json:"last_message_at"`
	Messages        []ChatMessage `json:"messages"`
	TokenHistory    []TokenUsage  `json:"token_history"`
	TotalTokensUsed int           `json:"total_tokens_used"`
}

type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AppendExchange records one completed user/assistant exchange.
func (s *ChatSession) AppendExchange(userText, reply string, usage TokenUsage, now time.Time) {
	s.Messages = append(s.Messages,
		ChatMessage{Role: ChatRoleUser, Content: userText, Timestamp: now},
		ChatMessage{Role: ChatRoleAssistant, Content: reply, Timestamp: now},
	)
	s.TokenHistory = append(s.TokenHistory, usage)
	s.TotalTokensUsed += usage.TotalTokens
	s.LastMessageAt = now
}

// RecentMessages returns at most n of the latest messages in chronological order.
func (s *ChatSession) RecentMessages(n int) []ChatMessage {
	if n <= 0 || len(s.Messages) == 0 {
		return nil
	}
	if len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

type ChatResponse struct {
	Message           string `json:"message"`
	TokensUsed        int    `json:"tokens_used"`
	ContextMode       string `json:"context_mode"`
	MatchedRepository string `json:"matched_repository,omitempty"`
}
