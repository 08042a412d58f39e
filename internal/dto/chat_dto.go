package dto

import "time"

type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// SessionSummaryResponse is one row of a user's session list.
type SessionSummaryResponse struct {
	SessionId       string    `json:"session_id"`
	Username        string    `json:"username"`
	CreatedAt       time.Time `json:"created_at"`
	LastMessageAt   time.Time `json:"last_message_at"`
	MessageCount    int       `json:"message_count"`
	TotalTokensUsed int       `json:"total_tokens_used"`
}
