package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
)

func testFactory() *ProviderFactory {
	cfg := common.NewDefaultConfig()
	cfg.LLM.DefaultProvider = "gemini"
	return NewProviderFactory(cfg, arbor.NewLogger())
}

func TestDetectProvider(t *testing.T) {
	factory := testFactory()

	tests := []struct {
		model string
		want  ProviderType
	}{
		{"claude-sonnet-4-20250514", ProviderClaude},
		{"claude/claude-sonnet-4-20250514", ProviderClaude},
		{"anthropic/claude-haiku-3-5", ProviderClaude},
		{"gemini-2.5-flash", ProviderGemini},
		{"gemini/gemini-2.5-flash", ProviderGemini},
		{"google/gemini-2.5-pro", ProviderGemini},
		{"", ProviderGemini},
		{"unknown-model", ProviderGemini},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, factory.DetectProvider(tt.model), "model %q", tt.model)
	}
}

func TestNormalizeModel(t *testing.T) {
	factory := testFactory()

	assert.Equal(t, "claude-sonnet-4-20250514", factory.NormalizeModel("claude/claude-sonnet-4-20250514"))
	assert.Equal(t, "gemini-2.5-flash", factory.NormalizeModel("gemini/gemini-2.5-flash"))
	assert.Equal(t, "claude-haiku-3-5", factory.NormalizeModel("claude-haiku-3-5"))
}

func TestFrame(t *testing.T) {
	assert.Equal(t, "passage: net revenue grew", Frame("net revenue grew", interfaces.RolePassage))
	assert.Equal(t, "query: what was revenue", Frame("what was revenue", interfaces.RoleQuery))
}

func TestIsRateLimitError(t *testing.T) {
	assert.False(t, IsRateLimitError(nil))
	assert.False(t, IsRateLimitError(assert.AnError))
	assert.True(t, IsRateLimitError(&delayError{msg: "got 429 from upstream"}))
	assert.True(t, IsRateLimitError(&delayError{msg: "RESOURCE_EXHAUSTED"}))
}

func TestExtractRetryDelay(t *testing.T) {
	err := &delayError{msg: "Error 429, Message: quota exceeded. Please retry in 45.5s., Status: RESOURCE_EXHAUSTED"}
	assert.Equal(t, time.Duration(45.5*float64(time.Second)), ExtractRetryDelay(err))

	none := &delayError{msg: "Error 500, internal"}
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(none))
}

func TestCalculateBackoffCapped(t *testing.T) {
	cfg := NewDefaultRetryConfig()
	assert.Equal(t, cfg.InitialBackoff, cfg.CalculateBackoff(0, 0))
	assert.Equal(t, cfg.MaxBackoff, cfg.CalculateBackoff(10, 0))
}

type delayError struct{ msg string }

func (e *delayError) Error() string { return e.msg }
