package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// FailureMarker prefixes every generation error shown to a user
const FailureMarker = "Failed to generate schedule"

// ErrGeneration wraps every failure of the remote generation call
var ErrGeneration = errors.New("schedule generation failed")

// systemPrompt keeps the model from adding prose around the schedule
const systemPrompt = `You are a planning assistant that writes day-by-day schedules.
Reply with the schedule only. Do not add an introduction, a summary, markdown or closing remarks.`

const userPromptTemplate = `Create a day-by-day schedule for the following task: %s
The schedule starts on %s and the task must be finished by %s.
For every day, give the date, the goal for that day and a milestone to check progress.
Use exactly this format, one block per day:

Day 1: <date> - <goal>
Milestone: <milestone>

Day 2: <date> - <goal>
Milestone: <milestone>`

// Completer sends a system and a user message to a chat model and returns
// the reply text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Requester turns a ScheduleRequest into raw schedule text
type Requester struct {
	llm    Completer
	logger *zap.Logger
}

// NewRequester creates a Requester on top of any Completer
func NewRequester(llm Completer, logger *zap.Logger) *Requester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Requester{llm: llm, logger: logger}
}

// BuildPrompt renders the user instruction for one schedule
func BuildPrompt(req ScheduleRequest) string {
	return fmt.Sprintf(userPromptTemplate,
		strings.TrimSpace(req.Task), strings.TrimSpace(req.StartDate), strings.TrimSpace(req.Deadline))
}

// Request performs exactly one generation call. Any failure is returned
// wrapped in ErrGeneration; the text is only meaningful when err is nil.
func (r *Requester) Request(ctx context.Context, req ScheduleRequest) (string, error) {
	start := time.Now()
	text, err := r.llm.Complete(ctx, systemPrompt, BuildPrompt(req))
	if err != nil {
		r.logger.Warn("schedule generation failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	r.logger.Debug("schedule generated",
		zap.Duration("duration", time.Since(start)),
		zap.Int("chars", len(text)))
	return strings.TrimSpace(text), nil
}

// FailureMessage is the human-readable form of a Request error
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	return FailureMarker + ": " + err.Error()
}

// OpenAICompleter calls an OpenAI-compatible chat completion endpoint
type OpenAICompleter struct {
	llm       *openai.LLM
	maxTokens int
}

// NewOpenAICompleter creates a client for cfg.BaseURL/chat/completions
func NewOpenAICompleter(cfg GeneratorConfig) (*OpenAICompleter, error) {
	token := cfg.APIKey
	if token == "" {
		// local OpenAI-compatible servers ignore the key, but the client requires one
		token = "unset"
	}

	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithToken(token),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI client: %w", err)
	}
	return &OpenAICompleter{llm: llm, maxTokens: cfg.MaxTokens}, nil
}

// Complete sends the two-message exchange and returns the first choice
func (c *OpenAICompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, userPrompt),
	}

	var opts []llms.CallOption
	if c.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.maxTokens))
	}

	resp, err := c.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("response contains no choices")
	}
	return resp.Choices[0].Content, nil
}
