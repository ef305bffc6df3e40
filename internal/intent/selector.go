// Package intent extracts a structured user intent and a metric selection
// from free-text profile descriptions using the language model.
package intent

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/locality-lens/internal/catalog"
	"github.com/sells-group/locality-lens/internal/model"
	"github.com/sells-group/locality-lens/pkg/anthropic"
)

const defaultMaxTokens = 1024

// Selector extracts intent via the language model. Failures are recoverable:
// callers fall back to Fallback.
type Selector struct {
	llm       anthropic.Client
	cat       *catalog.Catalog
	modelName string
}

// NewSelector creates a selector bound to a catalog.
func NewSelector(llm anthropic.Client, cat *catalog.Catalog, modelName string) *Selector {
	return &Selector{llm: llm, cat: cat, modelName: modelName}
}

// llmReply is the JSON shape the prompt demands.
type llmReply struct {
	ProfileType     string   `json:"profile_type"`
	Priorities      []string `json:"priorities"`
	Concerns        []string `json:"concerns"`
	Lifestyle       string   `json:"lifestyle"`
	Reasoning       string   `json:"reasoning"`
	SelectedMetrics []string `json:"selected_metrics"`
}

// Extract asks the model for a structured intent and metric selection.
// Unknown metric ids in the reply are discarded with a warning; a reply
// whose ids are all unknown is an error so the caller can fall back.
func (s *Selector) Extract(ctx context.Context, profile string) (*model.UserIntent, []string, error) {
	temp := 0.0
	resp, err := s.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       s.modelName,
		MaxTokens:   defaultMaxTokens,
		System:      systemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: userPrompt(profile, s.cat.PromptCatalog())},
		},
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "intent: create message")
	}
	resp.Usage.LogCost(s.modelName, "intent")

	var reply llmReply
	if err := json.Unmarshal([]byte(stripFences(resp.Text())), &reply); err != nil {
		return nil, nil, eris.Wrap(err, "intent: parse model reply")
	}

	known, unknown := s.cat.Validate(reply.SelectedMetrics)
	if len(unknown) > 0 {
		zap.L().Warn("intent: model selected unknown metrics",
			zap.Strings("unknown", unknown),
		)
	}
	if len(known) == 0 {
		return nil, nil, eris.New("intent: model selected no known metrics")
	}

	intent := &model.UserIntent{
		ProfileType: reply.ProfileType,
		Priorities:  reply.Priorities,
		Concerns:    reply.Concerns,
		Lifestyle:   reply.Lifestyle,
		Reasoning:   reply.Reasoning,
	}
	return intent, known, nil
}

// Fallback builds a deterministic intent from the profile keyword matching
// alone, used when the model is unavailable or replies garbage.
func Fallback(cat *catalog.Catalog, profile string) (*model.UserIntent, []string) {
	ids := cat.DefaultsForProfile(profile)
	intent := &model.UserIntent{
		ProfileType: strings.TrimSpace(profile),
		Lifestyle:   "unknown",
		Reasoning:   "defaults selected without model assistance",
	}
	return intent, ids
}

// stripFences removes a markdown code fence wrapper, with or without a
// language tag, and tolerates prose before the fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	s = s[start+3:]
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the language tag line if present.
		first := strings.TrimSpace(s[:nl])
		if first == "json" || first == "" {
			s = s[nl+1:]
		}
	}
	if end := strings.Index(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}
