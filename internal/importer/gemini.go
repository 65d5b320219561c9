package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiExtractor calls the Gemini API with a JSON response schema.
type GeminiExtractor struct {
	apiKey string
	model  string

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiExtractor(apiKey, model string) *GeminiExtractor {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiExtractor{apiKey: strings.TrimSpace(apiKey), model: model}
}

func (g *GeminiExtractor) getClient(ctx context.Context) (*genai.Client, error) {
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}
	g.client = c
	return c, nil
}

// taskSchema mirrors RawTask.
var taskSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"subject":  {Type: genai.TypeString},
			"topic":    {Type: genai.TypeString},
			"dueDate":  {Type: genai.TypeString},
			"week":     {Type: genai.TypeInteger},
			"day":      {Type: genai.TypeInteger},
			"priority": {Type: genai.TypeString, Enum: []string{"low", "medium", "high"}},
			"duration": {Type: genai.TypeNumber},
		},
		Required: []string{"subject", "topic", "dueDate", "priority"},
	},
}

func (g *GeminiExtractor) Extract(ctx context.Context, req Request) ([]RawTask, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{genai.NewPartFromText(userPrompt(req.Input))}
	if req.Input.IsFile() {
		parts = append(parts, genai.NewPartFromBytes(req.Input.Data, req.Input.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(req.Settings), genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    taskSchema,
	})
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	return DecodeRawTasks(resp.Text())
}

// Motivate asks for a two-sentence encouragement given current progress.
func (g *GeminiExtractor) Motivate(ctx context.Context, completed, total int) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, g.model, genai.Text(motivationPrompt(completed, total)), nil)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return FallbackMotivation, nil
	}
	return text, nil
}

// classifyGeminiError maps rejected credentials onto ErrNotConfigured.
func classifyGeminiError(err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %v", ErrNotConfigured, err)
	case http.StatusBadRequest:
		if strings.Contains(strings.ToLower(err.Error()), "api key") {
			return fmt.Errorf("%w: %v", ErrNotConfigured, err)
		}
	}
	return fmt.Errorf("gemini: %w", err)
}
