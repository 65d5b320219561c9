package importer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
)

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2-vision"
)

// OllamaExtractor calls a local Ollama server's generate endpoint in JSON
// mode.
type OllamaExtractor struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaExtractor(baseURL, model string) *OllamaExtractor {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaExtractor{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

type generateRequest struct {
	Model  string   `json:"model"`
	System string   `json:"system,omitempty"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Format string   `json:"format,omitempty"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (o *OllamaExtractor) generate(ctx context.Context, body generateRequest) (string, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return "", fmt.Errorf("%w: no Ollama server at %s", ErrNotConfigured, o.baseURL)
		}
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: %s", ErrNotConfigured, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return result.Response, nil
}

func (o *OllamaExtractor) Extract(ctx context.Context, req Request) ([]RawTask, error) {
	body := generateRequest{
		Model:  o.model,
		System: SystemPrompt(req.Settings) + "\nRespond with a JSON object of the form {\"tasks\": [...]}.",
		Prompt: userPrompt(req.Input),
		Format: "json",
	}
	if req.Input.IsFile() {
		if !strings.HasPrefix(req.Input.MIMEType, "image/") {
			return nil, fmt.Errorf("ollama cannot read %s input", req.Input.MIMEType)
		}
		body.Images = []string{base64.StdEncoding.EncodeToString(req.Input.Data)}
	}

	text, err := o.generate(ctx, body)
	if err != nil {
		return nil, err
	}
	return DecodeRawTasks(text)
}

func (o *OllamaExtractor) Motivate(ctx context.Context, completed, total int) (string, error) {
	text, err := o.generate(ctx, generateRequest{Model: o.model, Prompt: motivationPrompt(completed, total)})
	if err != nil {
		return "", err
	}
	if text = strings.TrimSpace(text); text == "" {
		return FallbackMotivation, nil
	}
	return text, nil
}
