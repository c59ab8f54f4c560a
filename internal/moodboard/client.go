package moodboard

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	// The image API streams results; generation of a full batch can take a
	// while.
	requestTimeout = 120 * time.Second

	// maxImages caps the batch collected from one generation run.
	maxImages = 4

	promptTemplate = "A high-resolution, photorealistic product render of a %s, " +
		"modern design, various options, clean background, " +
		"professional studio lighting, 8k, photorealism"
)

// translator converts free-form user text into English keywords for the
// image prompt.
type translator interface {
	TranslateToEnglish(ctx context.Context, text string) (string, error)
}

// Client generates mood-board image batches through a streaming image API.
type Client struct {
	baseURL    string
	model      string
	translator translator
	httpClient *http.Client
}

// NewClient creates a mood-board generator.
func NewClient(baseURL, model string, tr translator) *Client {
	return &Client{
		baseURL:    baseURL,
		model:      model,
		translator: tr,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type streamEvent struct {
	Status   string `json:"status"`
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message"`
}

// Generate produces up to four image URLs illustrating the description.
// Returns an error on any transport or upstream failure; the caller surfaces
// a "could not generate" notice and moves on.
func (c *Client) Generate(ctx context.Context, description string) ([]string, error) {
	keywords := description
	if c.translator != nil {
		translated, err := c.translator.TranslateToEnglish(ctx, description)
		if err != nil {
			// A failed translation is not fatal; the raw description still
			// produces usable images for English input.
			log.Printf("[warn] operation=moodboard_translate error=%v", err)
		} else {
			keywords = translated
		}
	}

	payload, err := json.Marshal(generateRequest{
		Prompt: fmt.Sprintf(promptTemplate, keywords),
		Model:  c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moodboard request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("moodboard returned status %d", resp.StatusCode)
	}

	urls, err := collectImageURLs(resp)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("moodboard produced no images")
	}
	return urls, nil
}

// collectImageURLs reads the server-sent event stream and gathers completed
// image URLs. Malformed events are skipped; an explicit error event aborts.
func collectImageURLs(resp *http.Response) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
			log.Printf("[warn] operation=moodboard_stream error=%v", err)
			continue
		}

		switch event.Status {
		case "complete":
			if event.ImageURL != "" {
				urls = append(urls, event.ImageURL)
				if len(urls) >= maxImages {
					return urls, nil
				}
			}
		case "error":
			return nil, fmt.Errorf("moodboard error: %s", event.Message)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	return urls, nil
}
