package diffusion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client is the interface for image rendering
type Client interface {
	// Render generates an image from the request and returns the raw image bytes
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

// RenderRequest describes one image generation call
type RenderRequest struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	GuidanceScale  float64
}

// inferenceRequest is the Hugging Face Inference API wire format
type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	NegativePrompt    string  `json:"negative_prompt,omitempty"`
	Width             int     `json:"width,omitempty"`
	Height            int     `json:"height,omitempty"`
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
	GuidanceScale     float64 `json:"guidance_scale,omitempty"`
}

// diffusionClient implements Client against the Hugging Face Inference API
type diffusionClient struct {
	endpoint   string
	model      string
	apiToken   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new diffusion client. endpoint is the inference base
// URL, e.g. https://api-inference.huggingface.co/models
func NewClient(endpoint, model, apiToken string, timeout time.Duration, logger *slog.Logger) Client {
	return &diffusionClient{
		endpoint: endpoint,
		model:    model,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: timeout, // Image generation is slow
		},
		logger: logger,
	}
}

// Render sends the prompt to the diffusion model and returns the image bytes
func (c *diffusionClient) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	startTime := time.Now()

	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	reqBody, err := json.Marshal(inferenceRequest{
		Inputs: req.Prompt,
		Parameters: inferenceParameters{
			NegativePrompt:    req.NegativePrompt,
			Width:             req.Width,
			Height:            req.Height,
			NumInferenceSteps: req.Steps,
			GuidanceScale:     req.GuidanceScale,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	c.logger.Debug("Diffusion request",
		"model", c.model,
		"prompt_length", len(req.Prompt),
		"size", fmt.Sprintf("%dx%d", req.Width, req.Height))

	url := fmt.Sprintf("%s/%s", c.endpoint, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("diffusion API returned status %d: %s", resp.StatusCode, string(body))
	}

	image, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image bytes: %w", err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("diffusion API returned an empty image")
	}

	c.logger.Info("Image rendered",
		"model", c.model,
		"duration_ms", time.Since(startTime).Milliseconds(),
		"image_bytes", len(image))

	return image, nil
}
