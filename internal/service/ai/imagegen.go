package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/playbuni/backend/internal/config"
	"github.com/playbuni/backend/internal/model/persona"
)

// ImageClient calls the provider's image-generation endpoint for persona
// portraits. The base URL is injectable so tests can point it at a stub
// server instead of patching anything global.
type ImageClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *zap.Logger
}

// NewImageClient builds an image client, or ErrUnavailable without a
// credential.
func NewImageClient(cfg config.AIConfig, logger *zap.Logger) (*ImageClient, error) {
	if !cfg.ImageEnabled() {
		return nil, ErrUnavailable
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &ImageClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.ImageModel,
		logger:     logger.Named("image"),
	}, nil
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// GeneratePortrait renders a persona portrait and returns the provider URL.
func (c *ImageClient) GeneratePortrait(ctx context.Context, p persona.AIPersona) (string, error) {
	payload, err := json.Marshal(imageRequest{
		Model:  c.model,
		Prompt: buildPortraitPrompt(p),
		N:      1,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRemote, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: image api status %d: %s", ErrRemote, resp.StatusCode, body)
	}

	var parsed imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRemote, err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", fmt.Errorf("%w: no image url in response", ErrRemote)
	}

	c.logger.Debug("portrait generated", zap.String("agent", p.AgentName))
	return parsed.Data[0].URL, nil
}

// FetchImage downloads generated image bytes for re-upload to durable
// storage.
func (c *ImageClient) FetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: image fetch status %d", ErrRemote, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// WithBaseURL overrides the endpoint, for tests.
func (c *ImageClient) WithBaseURL(url string) *ImageClient {
	c.baseURL = url
	return c
}
