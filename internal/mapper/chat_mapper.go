package mapper

import (
	"openbook-be/internal/dto"
	"openbook-be/internal/entity"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) SessionToSummary(s *entity.ChatSession) *dto.SessionSummaryResponse {
	if s == nil {
		return nil
	}
	return &dto.SessionSummaryResponse{
		SessionId:       s.SessionId,
		Username:        s.Username,
		CreatedAt:       s.CreatedAt,
		LastMessageAt:   s.LastMessageAt,
		MessageCount:    len(s.Messages),
		TotalTokensUsed: s.TotalTokensUsed,
	}
}

func (m *ChatMapper) SessionsToSummaries(sessions []*entity.ChatSession) []*dto.SessionSummaryResponse {
	out := make([]*dto.SessionSummaryResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, m.SessionToSummary(s))
	}
	return out
}
