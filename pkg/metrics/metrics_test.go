package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveTokens(t *testing.T) {
	before := testutil.ToFloat64(LLMTokens.WithLabelValues("test", "prompt"))

	ObserveTokens("test", 10, 4)

	assert.Equal(t, before+10, testutil.ToFloat64(LLMTokens.WithLabelValues("test", "prompt")))
	assert.Equal(t, float64(4), testutil.ToFloat64(LLMTokens.WithLabelValues("test", "completion")))
}
