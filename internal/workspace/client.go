package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"
	defaultTimeout = 30 * time.Second
)

// Client talks to the document workspace REST API. Pages in one workspace
// database mirror the bot's projects for human browsing.
type Client struct {
	baseURL    string
	apiKey     string
	databaseID string
	titleProp  string
	statusProp string
	httpClient *http.Client
}

// NewClient creates a workspace client for one database.
func NewClient(apiKey, databaseID, titleProp, statusProp string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		databaseID: databaseID,
		titleProp:  titleProp,
		statusProp: statusProp,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (map[string]any, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workspace request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("workspace returned status %d: %s", resp.StatusCode, raw)
	}

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

func paragraphBlock(text string) map[string]any {
	return map[string]any{
		"object": "block",
		"type":   "paragraph",
		"paragraph": map[string]any{
			"rich_text": []map[string]any{
				{"type": "text", "text": map[string]any{"content": text}},
			},
		},
	}
}

func (c *Client) titleProperty(name string) map[string]any {
	return map[string]any{
		"title": []map[string]any{
			{"text": map[string]any{"content": name}},
		},
	}
}

func (c *Client) statusProperty(status string) map[string]any {
	return map[string]any{
		"select": map[string]any{"name": status},
	}
}

// CreatePage creates a new page for a project and returns its ID and URL.
func (c *Client) CreatePage(ctx context.Context, name, status, description string) (pageID, pageURL string, err error) {
	payload := map[string]any{
		"parent": map[string]any{"database_id": c.databaseID},
		"properties": map[string]any{
			c.titleProp:  c.titleProperty(name),
			c.statusProp: c.statusProperty(status),
		},
	}
	if description != "" {
		payload["children"] = []map[string]any{paragraphBlock(description)}
	}

	page, err := c.do(ctx, http.MethodPost, "/pages", payload)
	if err != nil {
		return "", "", fmt.Errorf("create page: %w", err)
	}

	pageID, _ = page["id"].(string)
	pageURL, _ = page["url"].(string)
	if pageID == "" {
		return "", "", fmt.Errorf("create page: response had no id")
	}
	return pageID, pageURL, nil
}

// UpdateStatus changes the status select on a page.
func (c *Client) UpdateStatus(ctx context.Context, pageID, status string) error {
	payload := map[string]any{
		"properties": map[string]any{
			c.statusProp: c.statusProperty(status),
		},
	}
	if _, err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// UpdateProperties changes the page title and/or its body text. The workspace
// API has no in-place paragraph edit, so a description update deletes the
// existing paragraph blocks and appends a fresh one.
func (c *Client) UpdateProperties(ctx context.Context, pageID string, name, description *string) error {
	if name != nil {
		payload := map[string]any{
			"properties": map[string]any{
				c.titleProp: c.titleProperty(*name),
			},
		}
		if _, err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload); err != nil {
			return fmt.Errorf("update title: %w", err)
		}
	}

	if description == nil {
		return nil
	}

	blocks, err := c.do(ctx, http.MethodGet, "/blocks/"+pageID+"/children", nil)
	if err != nil {
		return fmt.Errorf("list blocks: %w", err)
	}

	if results, ok := blocks["results"].([]any); ok {
		for _, raw := range results {
			block, ok := raw.(map[string]any)
			if !ok || block["type"] != "paragraph" {
				continue
			}
			blockID, _ := block["id"].(string)
			if blockID == "" {
				continue
			}
			if _, err := c.do(ctx, http.MethodDelete, "/blocks/"+blockID, nil); err != nil {
				return fmt.Errorf("delete block: %w", err)
			}
		}
	}

	payload := map[string]any{
		"children": []map[string]any{paragraphBlock(*description)},
	}
	if _, err := c.do(ctx, http.MethodPatch, "/blocks/"+pageID+"/children", payload); err != nil {
		return fmt.Errorf("append description: %w", err)
	}
	return nil
}

// ArchivePage archives (removes) a page.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	payload := map[string]any{"archived": true}
	if _, err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload); err != nil {
		return fmt.Errorf("archive page: %w", err)
	}
	return nil
}
