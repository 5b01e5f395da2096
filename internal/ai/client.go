package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Definition es la salida estructurada de una consulta de vocabulario.
type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

// Client define el proveedor de definiciones y embeddings.
type Client interface {
	Define(ctx context.Context, term string) (Definition, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HTTPClient implementa Client contra una API OpenAI-compatible.
type HTTPClient struct {
	baseURL        string
	apiKey         string
	model          string
	embeddingModel string
	client         *http.Client
	logger         *zap.Logger
}

// NewHTTPClient construye un cliente apuntando a la API de completions/embeddings.
func NewHTTPClient(baseURL, apiKey, model, embeddingModel string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &HTTPClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		model:          model,
		embeddingModel: embeddingModel,
		client:         &http.Client{Timeout: 30 * time.Second},
		logger:         logger,
	}
}

const definePrompt = `Define the English word %q for a language learner. ` +
	`Respond with JSON only: {"definition": "...", "example": "..."} ` +
	`where definition is one short sentence and example is one usage sentence.`

func (c *HTTPClient) Define(ctx context.Context, term string) (Definition, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: fmt.Sprintf(definePrompt, term)},
		},
	}

	respBody, err := c.post(ctx, "/chat/completions", reqBody)
	if err != nil {
		return Definition{}, err
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return Definition{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if cr.Error != nil {
		return Definition{}, fmt.Errorf("ai api error: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 || cr.Choices[0].Message.Content == "" {
		return Definition{}, fmt.Errorf("ai empty response")
	}

	content := strings.TrimSpace(cr.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var def Definition
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &def); err != nil || def.Definition == "" {
		// El modelo a veces responde texto plano; se usa tal cual.
		return Definition{Definition: strings.TrimSpace(cr.Choices[0].Message.Content)}, nil
	}
	return def, nil
}

func (c *HTTPClient) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embeddingRequest{
		Model: c.embeddingModel,
		Input: text,
	}

	respBody, err := c.post(ctx, "/embeddings", reqBody)
	if err != nil {
		return nil, err
	}

	var er embeddingResponse
	if err := json.Unmarshal(respBody, &er); err != nil {
		return nil, fmt.Errorf("unmarshal embedding response: %w", err)
	}
	if er.Error != nil {
		return nil, fmt.Errorf("ai api error: %s", er.Error.Message)
	}
	if len(er.Data) == 0 || len(er.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("ai empty embedding")
	}
	return er.Data[0].Embedding, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if c.logger != nil {
			c.logger.Warn("ai api error",
				zap.Int("status", resp.StatusCode),
				zap.ByteString("body", respBody),
			)
		}
		return nil, fmt.Errorf("ai http error: status=%d", resp.StatusCode)
	}
	return respBody, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
