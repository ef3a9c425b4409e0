// Package analysis calls the external vision model and persists its output.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avdeevm/ai-gallery/internal/model"
)

const prompt = `Analyze this image and return STRICT JSON only (no surrounding text or markdown):
{
  "description": "...",
  "tags": ["tag1","tag2"],
  "colors": ["#hex1","#hex2"]
}
description: 2-3 sentence detailed description. tags: 5-10 relevant tags.
colors: dominant colors as hex strings. Respond only with the JSON object in the exact shape above.`

// ParseError reports a model response that did not contain a well-formed
// analysis object. Raw carries the full response content for diagnostics.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// repository defines the persistence operations the client needs.
type repository interface {
	GetAsset(ctx context.Context, id uuid.UUID) (model.ImageAsset, error)
	ApplyAnalysis(ctx context.Context, id uuid.UUID, analysis model.Analysis, at time.Time) (model.ImageAsset, error)
	UpsertMetadata(ctx context.Context, meta model.ImageMetadata) (model.ImageMetadata, error)
}

// Client sends images to a chat-completions style vision endpoint and writes
// the normalized result back to the repository.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	maxTokens  int
	repo       repository
}

// NewClient creates a Client. No timeout is imposed beyond the transport
// defaults of the supplied http.Client.
func NewClient(httpClient *http.Client, endpoint, apiKey, modelName string, maxTokens int, repo repository) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      modelName,
		maxTokens:  maxTokens,
		repo:       repo,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatContent struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze sends exactly one request to the model endpoint and normalizes the
// response into an Analysis. A malformed response yields a *ParseError.
func (c *Client) Analyze(ctx context.Context, imageBase64 string) (model.Analysis, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContent{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &chatImageURL{URL: "data:image/jpeg;base64," + imageBase64}},
			},
		}},
		MaxTokens:   c.maxTokens,
		Temperature: 0,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return model.Analysis{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.Analysis{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return model.Analysis{}, fmt.Errorf("model request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return model.Analysis{}, fmt.Errorf("failed to read model response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return model.Analysis{}, fmt.Errorf("model error: %d %s", res.StatusCode, string(body))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return model.Analysis{}, fmt.Errorf("failed to decode model response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return model.Analysis{}, &ParseError{Raw: string(body), Err: fmt.Errorf("response has no choices")}
	}

	return parseAnalysis(chat.Choices[0].Message.Content)
}

// AnalyzeAndPersist analyzes the image and writes the result to the asset row
// and its metadata record. The metadata upsert is keyed on the image id, so
// re-analyzing the same asset replaces rather than duplicates.
func (c *Client) AnalyzeAndPersist(ctx context.Context, imageBase64 string, imageID uuid.UUID) (model.AnalysisOutcome, error) {
	analysis, err := c.Analyze(ctx, imageBase64)
	if err != nil {
		return model.AnalysisOutcome{}, err
	}

	asset, err := c.repo.GetAsset(ctx, imageID)
	if err != nil {
		return model.AnalysisOutcome{}, fmt.Errorf("failed to load image %s: %w", imageID, err)
	}

	now := time.Now().UTC()

	updated, err := c.repo.ApplyAnalysis(ctx, imageID, analysis, now)
	if err != nil {
		return model.AnalysisOutcome{}, fmt.Errorf("failed to update image record: %w", err)
	}

	meta, err := c.repo.UpsertMetadata(ctx, model.ImageMetadata{
		ImageID:            imageID,
		UserID:             asset.OwnerID,
		Description:        analysis.Description,
		Tags:               analysis.Tags,
		Colors:             analysis.Colors,
		AIProcessingStatus: "completed",
		CreatedAt:          now,
	})
	if err != nil {
		return model.AnalysisOutcome{}, fmt.Errorf("failed to save metadata: %w", err)
	}

	return model.AnalysisOutcome{
		Asset:    updated,
		Metadata: meta,
		Analysis: analysis,
	}, nil
}
