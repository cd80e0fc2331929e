// Package analysis asks a language model to narrate an aggregated table and
// splits the reply into the report's fixed sections.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/ai-reporter/internal/ai"
	"github.com/KaramelBytes/ai-reporter/internal/logger"
	"github.com/KaramelBytes/ai-reporter/internal/table"
	"github.com/KaramelBytes/ai-reporter/internal/utils"
)

// Section headers the prompt asks for, in reply order.
const (
	HeaderExecutiveSummary    = "EXECUTIVE SUMMARY"
	HeaderKeyFindings         = "KEY FINDINGS"
	HeaderStatisticalOverview = "STATISTICAL OVERVIEW"
	HeaderRiskFactors         = "RISK FACTORS IDENTIFIED"
	HeaderRecommendations     = "CLINICAL RECOMMENDATIONS"
)

// Headers lists the section headers in reply order.
var Headers = []string{
	HeaderExecutiveSummary,
	HeaderKeyFindings,
	HeaderStatisticalOverview,
	HeaderRiskFactors,
	HeaderRecommendations,
}

// MissingKeySummary is the summary used when no credential is configured.
const MissingKeySummary = "AI Insights unavailable (Missing API Key)."

// Defaults for narrative requests.
const (
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1500
)

// Sections holds the five narrative blocks. Any of them may be empty.
type Sections struct {
	ExecutiveSummary    string `json:"executive_summary"`
	KeyFindings         string `json:"key_findings"`
	StatisticalOverview string `json:"statistical_overview"`
	RiskFactors         string `json:"risk_factors"`
	Recommendations     string `json:"recommendations"`
}

// Status tells how a Narrative was produced.
type Status int

const (
	// StatusGenerated means the model replied and the reply was parsed.
	StatusGenerated Status = iota
	// StatusNoCredential means no runtime was configured; nothing was sent.
	StatusNoCredential
	// StatusFailed means the model call failed; Err holds the cause.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusGenerated:
		return "generated"
	case StatusNoCredential:
		return "no_credential"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Narrative is the result of one narration attempt. Degraded results still
// carry renderable Sections.
type Narrative struct {
	Sections Sections
	Status   Status
	Err      error
}

// Degraded reports whether the narrative is a placeholder.
func (n Narrative) Degraded() bool { return n.Status != StatusGenerated }

// Failed is the placeholder narrative for a runtime error.
func Failed(err error) Narrative {
	return Narrative{
		Sections: Sections{ExecutiveSummary: fmt.Sprintf("Error generating insights: %v", err)},
		Status:   StatusFailed,
		Err:      err,
	}
}

// Narrator sends tables to a runtime. A nil Runtime means no credential.
type Narrator struct {
	Runtime     ai.Runtime
	Model       string
	Temperature float64
	MaxTokens   int
}

// NewNarrator returns a narrator with the default model settings.
func NewNarrator(rt ai.Runtime) *Narrator {
	return &Narrator{
		Runtime:     rt,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Generate narrates t with a single model call. It never returns an error;
// failures are reported through the Narrative status.
func (n *Narrator) Generate(ctx context.Context, t *table.Table) Narrative {
	if n.Runtime == nil {
		logger.Log.Warn("no API key configured; AI insights disabled")
		return Narrative{
			Sections: Sections{ExecutiveSummary: MissingKeySummary},
			Status:   StatusNoCredential,
		}
	}

	prompt := BuildPrompt(t.CSV())
	n.logEstimate(prompt)

	resp, err := n.Runtime.Generate(ctx, ai.GenerateRequest{
		Model: n.Model,
		Messages: []ai.Message{
			{Role: "system", Content: SystemRole},
			{Role: "user", Content: prompt},
		},
		Temperature: n.Temperature,
		MaxTokens:   n.MaxTokens,
	})
	if err != nil {
		logger.Log.WithError(err).Error("narrative generation failed")
		return Failed(err)
	}
	logger.Log.WithFields(logrus.Fields{
		"model":             n.Model,
		"request_id":        resp.RequestID,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Info("narrative generated")
	return Narrative{Sections: ParseSections(resp.Text()), Status: StatusGenerated}
}

func (n *Narrator) logEstimate(prompt string) {
	breakdown := utils.TokenBreakdown(map[string]string{"system": SystemRole, "prompt": prompt})
	promptTokens := breakdown["system"] + breakdown["prompt"]
	fields := logrus.Fields{"model": n.Model, "prompt_tokens_est": promptTokens}
	if cost, ok := ai.EstimateCostUSD(n.Model, promptTokens, n.MaxTokens); ok {
		fields["max_cost_usd"] = fmt.Sprintf("%.4f", cost)
	}
	logger.Log.WithFields(fields).Debug("narrative request")
	if err := ai.CheckContext(n.Model, promptTokens, n.MaxTokens); err != nil {
		logger.Log.WithError(err).Warn("prompt may not fit the model context")
	}
}

// ParseSections splits a model reply into the five sections.
func ParseSections(text string) Sections {
	return Sections{
		ExecutiveSummary:    ExtractSection(text, HeaderExecutiveSummary, Headers[1:]...),
		KeyFindings:         ExtractSection(text, HeaderKeyFindings, Headers[2:]...),
		StatisticalOverview: ExtractSection(text, HeaderStatisticalOverview, Headers[3:]...),
		RiskFactors:         ExtractSection(text, HeaderRiskFactors, Headers[4:]...),
		Recommendations:     ExtractSection(text, HeaderRecommendations),
	}
}

// ExtractSection returns the text after the line holding header, up to the
// earliest of next found after it. When that header only follows markdown
// marks such as "## " on its line, the cut moves back to the line start. Without a
// later header the section runs to the end of text. The result is trimmed; a
// missing header yields "".
func ExtractSection(text, header string, next ...string) string {
	idx := strings.Index(text, header)
	if idx < 0 {
		return ""
	}
	start := len(text)
	if nl := strings.IndexByte(text[idx:], '\n'); nl >= 0 {
		start = idx + nl + 1
	}
	end := len(text)
	for _, h := range next {
		if j := strings.Index(text[start:], h); j >= 0 && start+j < end {
			end = start + j
		}
	}
	// a header preceded only by markdown decoration cuts at its line start;
	// one mentioned inside a sentence cuts at the mention
	if end < len(text) {
		lineStart := strings.LastIndexByte(text[:end], '\n') + 1
		if lineStart >= start && strings.Trim(text[lineStart:end], "#* \t") == "" {
			end = lineStart
		}
	}
	return strings.TrimSpace(text[start:end])
}
