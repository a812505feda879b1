package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"renovision/config"
)

// ImageTransformer turns an input photo plus a renovation prompt into a
// generated "after" image. Exactly one concrete provider is active at a
// time, selected by IMAGE_PROVIDER.
type ImageTransformer interface {
	Transform(ctx context.Context, image []byte, mimeType, prompt string) ([]byte, error)
	Name() string
}

// NewImageTransformer builds the provider adapter selected by configuration.
func NewImageTransformer(cfg config.Config) (ImageTransformer, error) {
	switch cfg.ImageProvider {
	case "gemini":
		return NewGeminiTransformer(cfg.GeminiAPIKey), nil
	case "runway":
		return NewRunwayTransformer(cfg.RunwayAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown image provider %q", cfg.ImageProvider)
	}
}

// ---------------------------------------------------------------------------
// Gemini

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiTransformer struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	log     *logrus.Logger
}

func NewGeminiTransformer(apiKey string) *GeminiTransformer {
	return &GeminiTransformer{
		baseURL: geminiBaseURL,
		apiKey:  apiKey,
		model:   "gemini-2.0-flash-exp-image-generation",
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     logrus.New(),
	}
}

func (g *GeminiTransformer) Name() string { return "gemini" }

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *GeminiTransformer) Transform(ctx context.Context, image []byte, mimeType, prompt string) ([]byte, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)

	payload := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: prompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
		GenerationConfig: geminiGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		g.log.WithField("status", resp.StatusCode).Error("gemini returned error response")
		return nil, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}

	var response geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("gemini error: %s", response.Error.Message)
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil {
				return base64.StdEncoding.DecodeString(part.InlineData.Data)
			}
		}
	}

	return nil, fmt.Errorf("gemini response contained no image")
}

// ---------------------------------------------------------------------------
// RunwayML

const runwayBaseURL = "https://api.dev.runwayml.com/v1"

type RunwayTransformer struct {
	baseURL      string
	apiKey       string
	http         *http.Client
	log          *logrus.Logger
	pollInterval time.Duration
	pollTimeout  time.Duration
}

func NewRunwayTransformer(apiKey string) *RunwayTransformer {
	return &RunwayTransformer{
		baseURL:      runwayBaseURL,
		apiKey:       apiKey,
		http:         &http.Client{Timeout: 30 * time.Second},
		log:          logrus.New(),
		pollInterval: 2 * time.Second,
		pollTimeout:  90 * time.Second,
	}
}

func (r *RunwayTransformer) Name() string { return "runway" }

type runwayTaskRequest struct {
	Model      string   `json:"model"`
	PromptText string   `json:"promptText"`
	Ratio      string   `json:"ratio"`
	Reference  []string `json:"referenceImages"`
}

type runwayTask struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"` // PENDING, RUNNING, SUCCEEDED, FAILED
	Output    []string `json:"output"`
	FailureTx string   `json:"failure"`
}

func (r *RunwayTransformer) Transform(ctx context.Context, image []byte, mimeType, prompt string) ([]byte, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	payload := runwayTaskRequest{
		Model:      "gen4_image",
		PromptText: prompt,
		Ratio:      "1360:768",
		Reference:  []string{dataURI},
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal runway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/text_to_image", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	r.setHeaders(req)

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("runway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("runway error (status %d): %s", resp.StatusCode, string(body))
	}

	var task runwayTask
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return nil, fmt.Errorf("failed to decode runway response: %w", err)
	}

	outputURL, err := r.waitForTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}

	return r.download(ctx, outputURL)
}

// waitForTask polls the task endpoint until the generation succeeds, fails
// or the poll timeout elapses.
func (r *RunwayTransformer) waitForTask(ctx context.Context, taskID string) (string, error) {
	deadline := time.Now().Add(r.pollTimeout)

	for {
		if time.Now().After(deadline) {
			return "", fmt.Errorf("runway task %s timed out", taskID)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(r.pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, "GET", r.baseURL+"/tasks/"+taskID, nil)
		if err != nil {
			return "", err
		}
		r.setHeaders(req)

		resp, err := r.http.Do(req)
		if err != nil {
			return "", fmt.Errorf("runway poll failed: %w", err)
		}

		var task runwayTask
		err = json.NewDecoder(resp.Body).Decode(&task)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("failed to decode runway task: %w", err)
		}

		switch task.Status {
		case "SUCCEEDED":
			if len(task.Output) == 0 {
				return "", fmt.Errorf("runway task %s succeeded with no output", taskID)
			}
			return task.Output[0], nil
		case "FAILED":
			return "", fmt.Errorf("runway task %s failed: %s", taskID, task.FailureTx)
		default:
			r.log.WithFields(logrus.Fields{"task": taskID, "status": task.Status}).Debug("runway task pending")
		}
	}
}

func (r *RunwayTransformer) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download generated image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download generated image (status %d)", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (r *RunwayTransformer) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("X-Runway-Version", "2024-11-06")
}
