package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("PROFILE_MAX_AGE_HOURS", "")
	t.Setenv("KB_MAX_CONCURRENCY", "not-a-number")

	cfg := Load()

	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 24, cfg.Cache.ProfileMaxAgeHours)
	assert.Equal(t, 5, cfg.Cache.KnowledgeConcurrency)
	assert.Equal(t, "github-profiles", cfg.Storage.ProfilesPrefix)
	assert.Equal(t, "knowledge-bases", cfg.Storage.KnowledgeBasePrefix)
	assert.Equal(t, "chat-sessions", cfg.Storage.ChatSessionsPrefix)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("PROFILE_MAX_AGE_HOURS", "6")
	t.Setenv("LLM_PROVIDER", "ollama")

	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 6, cfg.Cache.ProfileMaxAgeHours)
	assert.Equal(t, "ollama", cfg.Ai.LLMProvider)
}
