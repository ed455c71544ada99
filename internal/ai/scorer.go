// Package ai scores application fit with a language model.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/careerlens/apiserver/config"
	"github.com/careerlens/apiserver/types"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultGoogleModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"

	// Resume text beyond this many bytes is cut from the prompt.
	maxResumeChars = 20000
)

// ErrNotConfigured is returned by NewScorer when no provider is selected.
var ErrNotConfigured = errors.New("ai provider not configured")

// Scorer asks a model to compare an application with its job.
type Scorer struct {
	model     llms.Model
	modelName string
}

// NewScorer connects the provider selected by cfg.
func NewScorer(ctx context.Context, cfg config.AIConfig) (*Scorer, error) {
	switch cfg.Provider {
	case "":
		return nil, ErrNotConfigured
	case config.AIProviderGoogleAI:
		name := modelOrDefault(cfg.Model, defaultGoogleModel)
		llm, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.GeminiAPIKey),
			googleai.WithDefaultModel(name),
		)
		if err != nil {
			return nil, fmt.Errorf("create googleai client: %w", err)
		}
		return NewScorerWithModel(llm, name), nil
	case config.AIProviderOpenAI:
		name := modelOrDefault(cfg.Model, defaultOpenAIModel)
		llm, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(name),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai client: %w", err)
		}
		return NewScorerWithModel(llm, name), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}

// NewScorerWithModel wraps an existing model. name is recorded on results.
func NewScorerWithModel(model llms.Model, name string) *Scorer {
	return &Scorer{model: model, modelName: name}
}

// Score runs one prompt and parses the model's JSON answer.
func (s *Scorer) Score(ctx context.Context, job types.Job, app types.Application) (types.MatchResult, error) {
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.model, BuildPrompt(job, app), llms.WithTemperature(0))
	if err != nil {
		return types.MatchResult{}, fmt.Errorf("generate: %w", err)
	}
	result, err := ParseResult(resp)
	if err != nil {
		return types.MatchResult{}, err
	}
	result.Model = s.modelName
	return result, nil
}

const matchPrompt = `Compare this candidate's application against the job posting.

Job Title: %s
Job Description: %s
Job Requirements: %s
Required Skills: %s

Candidate Skills: %s
Candidate Experience: %s
Candidate Resume:
%s

Return ONLY a JSON object with exactly these keys:
- match_percentage (integer 0-100)
- matched_skills (array of strings, required skills the candidate has)
- missing_skills (array of strings, required skills the candidate lacks)
- fit_level (one of "Excellent Fit", "Good Fit", "Partial Fit", "Not a Fit")
- summary (one or two sentences)
Do not wrap the JSON in markdown.`

// BuildPrompt renders the scoring prompt for one application.
func BuildPrompt(job types.Job, app types.Application) string {
	resume := strings.TrimSpace(app.ResumeURL)
	if len(resume) > maxResumeChars {
		cut := maxResumeChars
		for cut > 0 && !utf8.RuneStart(resume[cut]) {
			cut--
		}
		resume = resume[:cut]
	}
	return fmt.Sprintf(matchPrompt,
		orNone(job.Title),
		orNone(job.Description),
		orNone(job.Requirements),
		orNone(strings.Join(job.SkillsRequired, ", ")),
		orNone(app.Skills),
		orNone(app.Experience),
		orNone(resume),
	)
}

type modelAnswer struct {
	MatchPercentage float64  `json:"match_percentage"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	FitLevel        string   `json:"fit_level"`
	Summary         string   `json:"summary"`
}

// ParseResult decodes a model answer, tolerating markdown fences and
// surrounding prose.
func ParseResult(raw string) (types.MatchResult, error) {
	var answer modelAnswer
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &answer); err != nil {
		return types.MatchResult{}, fmt.Errorf("parse model answer: %w", err)
	}

	pct := int(math.Round(min(max(answer.MatchPercentage, 0), 100)))

	return types.MatchResult{
		MatchPercentage: pct,
		MatchedSkills:   nonNil(answer.MatchedSkills),
		MissingSkills:   nonNil(answer.MissingSkills),
		FitLevel:        types.NormalizeFitLevel(answer.FitLevel, pct),
		Summary:         strings.TrimSpace(answer.Summary),
	}, nil
}

func cleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		content = content[start : end+1]
	}
	return content
}

func modelOrDefault(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
