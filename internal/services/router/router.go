// Package router implements the two-stage answer path: a small expert
// model proposes either a direct answer or a list of facts, and the large
// model is consulted only when the small model's output does not qualify
// as a direct answer.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/services/extract"
	"github.com/ternarybob/colligo/internal/services/llm"
	"github.com/ternarybob/colligo/internal/services/prompts"
)

// Mode values for the small model response.
const (
	ModeAnswer = "answer"
	ModeFacts  = "facts"
)

// SmallResponse is the schema the small expert model must produce.
type SmallResponse struct {
	Mode   string   `json:"mode" validate:"required,oneof=answer facts"`
	Answer string   `json:"answer"`
	Facts  []string `json:"facts"`
}

// Decision records which path produced the final answer.
type Decision string

const (
	// DecisionDirect means the small model's answer was returned as-is.
	DecisionDirect Decision = "direct"
	// DecisionBase means the large model composed the final answer.
	DecisionBase Decision = "base"
)

// Result is the outcome of routing one query.
type Result struct {
	Answer   string
	Decision Decision
	Small    *SmallResponse
}

// Router drives the small and base models for one query.
type Router struct {
	provider   llm.Provider
	smallModel string
	baseModel  string
	maxDirect  int
	validate   *validator.Validate
	logger     arbor.ILogger
}

// NewRouter creates a router from the configured model pair.
func NewRouter(cfg *common.Config, provider llm.Provider, logger arbor.ILogger) *Router {
	return &Router{
		provider:   provider,
		smallModel: cfg.LLM.SmallModel,
		baseModel:  cfg.LLM.BaseModel,
		maxDirect:  cfg.DirectAnswerLimit(),
		validate:   validator.New(),
		logger:     logger,
	}
}

// ParseSmallResponse recovers a SmallResponse from raw model output. Any
// output that cannot be extracted, decoded or validated collapses to the
// canonical facts-mode fallback, so the caller always gets a usable value.
func (r *Router) ParseSmallResponse(text string) *SmallResponse {
	fallback := &SmallResponse{Mode: ModeFacts, Facts: []string{}, Answer: ""}

	extracted, err := extract.Extract(text)
	if err != nil || extracted.Raw == nil {
		r.logger.Warn().Err(err).Msg("Small model output had no usable JSON")
		return fallback
	}

	var response SmallResponse
	if err := json.Unmarshal(extracted.Raw, &response); err != nil {
		r.logger.Warn().Err(err).Msg("Small model output did not match schema")
		return fallback
	}
	if err := r.validate.Struct(&response); err != nil {
		r.logger.Warn().Err(err).Msg("Small model output failed validation")
		return fallback
	}
	if response.Facts == nil {
		response.Facts = []string{}
	}
	return &response
}

// Route answers a query. The small model runs first with the retrieval
// context; its answer is returned directly when it fits the direct-answer
// budget, otherwise the base model composes the final text from the small
// model's JSON.
func (r *Router) Route(ctx context.Context, query, contextText string) (*Result, error) {
	smallResp, err := r.provider.GenerateText(ctx, &llm.GenerateRequest{
		Prompt:            prompts.SmallExpert(query, contextText),
		Model:             r.smallModel,
		SystemInstruction: prompts.SmallExpertSystem,
	})
	if err != nil {
		return nil, fmt.Errorf("small model call failed: %w", err)
	}

	small := r.ParseSmallResponse(smallResp.Text)

	if r.IsDirect(small) {
		answer := strings.TrimSpace(small.Answer)
		r.logger.Debug().
			Int("answer_chars", utf8.RuneCountInString(answer)).
			Msg("Routing decision: direct answer")
		return &Result{Answer: answer, Decision: DecisionDirect, Small: small}, nil
	}

	smallJSON, err := json.Marshal(small)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal small response: %w", err)
	}

	baseResp, err := r.provider.GenerateText(ctx, &llm.GenerateRequest{
		Prompt:            prompts.BaseModel(query, string(smallJSON)),
		Model:             r.baseModel,
		SystemInstruction: prompts.BaseModelSystem,
	})
	if err != nil {
		return nil, fmt.Errorf("base model call failed: %w", err)
	}

	r.logger.Debug().
		Str("mode", small.Mode).
		Int("facts", len(small.Facts)).
		Msg("Routing decision: base model")
	return &Result{Answer: baseResp.Text, Decision: DecisionBase, Small: small}, nil
}

// IsDirect reports whether a small response qualifies as a direct answer.
// Answer mode with a non-empty trimmed answer within the character budget
// goes direct; everything else escalates to the base model. The budget
// counts runes, and surrounding whitespace never counts toward it.
func (r *Router) IsDirect(small *SmallResponse) bool {
	answer := strings.TrimSpace(small.Answer)
	return small.Mode == ModeAnswer && answer != "" && utf8.RuneCountInString(answer) <= r.maxDirect
}
