package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := Encode(ChatSessionStarted("s-1", "octocat", at))
	require.NoError(t, err)

	evt, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypeChatSessionStarted, evt.EventType())
	assert.Equal(t, "octocat", evt.Payload()["username"])
	assert.True(t, evt.Timestamp().Equal(at))
}

func TestDecodeRejectsUntyped(t *testing.T) {
	_, err := Decode([]byte(`{"data":{}}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
