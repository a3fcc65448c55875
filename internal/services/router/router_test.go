package router

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/services/llm"
)

// fakeProvider returns canned text per model and records the calls it saw.
type fakeProvider struct {
	responses map[string]string
	calls     []string
}

func (f *fakeProvider) GenerateText(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	f.calls = append(f.calls, req.Model)
	return &llm.GenerateResponse{Text: f.responses[req.Model], Model: req.Model}, nil
}

func (f *fakeProvider) Close() error { return nil }

func newTestRouter(provider llm.Provider) *Router {
	cfg := common.NewDefaultConfig()
	cfg.LLM.SmallModel = "small"
	cfg.LLM.BaseModel = "base"
	return NewRouter(cfg, provider, arbor.NewLogger())
}

func TestRouteDirectAnswer(t *testing.T) {
	provider := &fakeProvider{responses: map[string]string{
		"small": `{"mode":"answer","answer":"42","facts":[]}`,
	}}
	router := newTestRouter(provider)

	result, err := router.Route(context.Background(), "what is the answer", "context")
	require.NoError(t, err)
	assert.Equal(t, DecisionDirect, result.Decision)
	assert.Equal(t, "42", result.Answer)
	assert.Equal(t, []string{"small"}, provider.calls)
}

func TestRouteFactsModeGoesToBase(t *testing.T) {
	provider := &fakeProvider{responses: map[string]string{
		"small": `{"mode":"facts","answer":"","facts":["revenue grew 12%","margin fell"]}`,
		"base":  "Revenue grew 12% while margins contracted.",
	}}
	router := newTestRouter(provider)

	result, err := router.Route(context.Background(), "how did the company do", "context")
	require.NoError(t, err)
	assert.Equal(t, DecisionBase, result.Decision)
	assert.Equal(t, "Revenue grew 12% while margins contracted.", result.Answer)
	assert.Equal(t, []string{"small", "base"}, provider.calls)
}

func TestRouteOverlongAnswerGoesToBase(t *testing.T) {
	long := strings.Repeat("x", 481)
	provider := &fakeProvider{responses: map[string]string{
		"small": `{"mode":"answer","answer":"` + long + `","facts":[]}`,
		"base":  "condensed answer",
	}}
	router := newTestRouter(provider)

	result, err := router.Route(context.Background(), "q", "ctx")
	require.NoError(t, err)
	assert.Equal(t, DecisionBase, result.Decision)
	assert.Equal(t, "condensed answer", result.Answer)
}

func TestRouteAnswerAtLimitStaysDirect(t *testing.T) {
	exact := strings.Repeat("x", 480)
	provider := &fakeProvider{responses: map[string]string{
		"small": `{"mode":"answer","answer":"` + exact + `","facts":[]}`,
	}}
	router := newTestRouter(provider)

	result, err := router.Route(context.Background(), "q", "ctx")
	require.NoError(t, err)
	assert.Equal(t, DecisionDirect, result.Decision)
}

func TestRouteWhitespaceOnlyAnswerGoesToBase(t *testing.T) {
	provider := &fakeProvider{responses: map[string]string{
		"small": `{"mode":"answer","answer":"   ","facts":[]}`,
		"base":  "real answer",
	}}
	router := newTestRouter(provider)

	result, err := router.Route(context.Background(), "q", "ctx")
	require.NoError(t, err)
	assert.Equal(t, DecisionBase, result.Decision)
	assert.Equal(t, "real answer", result.Answer)
}

func TestRouteTrimsAnswerBeforeLimitCheck(t *testing.T) {
	exact := strings.Repeat("x", 480)
	provider := &fakeProvider{responses: map[string]string{
		"small": `{"mode":"answer","answer":"` + exact + `  ","facts":[]}`,
	}}
	router := newTestRouter(provider)

	result, err := router.Route(context.Background(), "q", "ctx")
	require.NoError(t, err)
	assert.Equal(t, DecisionDirect, result.Decision)
	assert.Equal(t, exact, result.Answer)
}

func TestIsDirectCountsRunes(t *testing.T) {
	router := newTestRouter(&fakeProvider{})

	// 480 multi-byte runes fit the budget even though the byte length does not
	answer := strings.Repeat("₹", 480)
	assert.True(t, router.IsDirect(&SmallResponse{Mode: ModeAnswer, Answer: answer}))
	assert.False(t, router.IsDirect(&SmallResponse{Mode: ModeAnswer, Answer: answer + "₹"}))
}

func TestParseSmallResponseFallbacks(t *testing.T) {
	router := newTestRouter(&fakeProvider{})
	fallback := &SmallResponse{Mode: ModeFacts, Facts: []string{}, Answer: ""}

	tests := []struct {
		name string
		text string
	}{
		{"no json at all", "I think the answer is 42"},
		{"invalid mode", `{"mode":"essay","answer":"","facts":[]}`},
		{"missing mode", `{"answer":"42","facts":[]}`},
		{"wrong types", `{"mode":"answer","answer":42,"facts":"none"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, fallback, router.ParseSmallResponse(tt.text))
		})
	}
}

func TestParseSmallResponseExtractsFromNoise(t *testing.T) {
	router := newTestRouter(&fakeProvider{})

	got := router.ParseSmallResponse("Sure, here is the JSON:\n```json\n{\"mode\":\"answer\",\"answer\":\"yes\",\"facts\":[]}\n```")
	assert.Equal(t, ModeAnswer, got.Mode)
	assert.Equal(t, "yes", got.Answer)
}

func TestParseSmallResponseNormalizesNilFacts(t *testing.T) {
	router := newTestRouter(&fakeProvider{})

	got := router.ParseSmallResponse(`{"mode":"answer","answer":"yes"}`)
	assert.NotNil(t, got.Facts)
	assert.Empty(t, got.Facts)
}
