package moodboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranslator struct {
	out string
	err error
}

func (s *stubTranslator) TranslateToEnglish(ctx context.Context, text string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func sseServer(t *testing.T, lines []string, onRequest func(r *http.Request)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if onRequest != nil {
			onRequest(r)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}))
}

func TestGenerate_CollectsCompletedImages(t *testing.T) {
	var req generateRequest
	srv := sseServer(t, []string{
		`data: {"status":"processing"}`,
		`data: {"status":"complete","imageUrl":"https://img/1.jpg"}`,
		"",
		"not an event line",
		`data: {"status":"complete","imageUrl":"https://img/2.jpg"}`,
	}, func(r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	})
	defer srv.Close()

	c := NewClient(srv.URL, "turbo", &stubTranslator{out: "desk lamp"})
	urls, err := c.Generate(context.Background(), "настольная лампа")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/1.jpg", "https://img/2.jpg"}, urls)

	// Translated keywords land inside the fixed prompt scaffold.
	assert.Contains(t, req.Prompt, "desk lamp")
	assert.Contains(t, req.Prompt, "photorealistic product render")
	assert.Equal(t, "turbo", req.Model)
}

func TestGenerate_StopsAtFourImages(t *testing.T) {
	var lines []string
	for i := 1; i <= 6; i++ {
		lines = append(lines, fmt.Sprintf(`data: {"status":"complete","imageUrl":"https://img/%d.jpg"}`, i))
	}
	srv := sseServer(t, lines, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "turbo", nil)
	urls, err := c.Generate(context.Background(), "desk lamp")
	require.NoError(t, err)
	assert.Len(t, urls, 4)
}

func TestGenerate_ErrorEventAborts(t *testing.T) {
	srv := sseServer(t, []string{
		`data: {"status":"complete","imageUrl":"https://img/1.jpg"}`,
		`data: {"status":"error","message":"model unavailable"}`,
	}, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "turbo", nil)
	_, err := c.Generate(context.Background(), "desk lamp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestGenerate_MalformedEventsAreSkipped(t *testing.T) {
	srv := sseServer(t, []string{
		`data: {broken json`,
		`data: {"status":"complete","imageUrl":"https://img/1.jpg"}`,
	}, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "turbo", nil)
	urls, err := c.Generate(context.Background(), "desk lamp")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/1.jpg"}, urls)
}

func TestGenerate_NoImagesIsAnError(t *testing.T) {
	srv := sseServer(t, []string{`data: {"status":"processing"}`}, nil)
	defer srv.Close()

	c := NewClient(srv.URL, "turbo", nil)
	_, err := c.Generate(context.Background(), "desk lamp")
	require.Error(t, err)
}

func TestGenerate_TranslationFailureFallsBackToRawText(t *testing.T) {
	var req generateRequest
	srv := sseServer(t, []string{
		`data: {"status":"complete","imageUrl":"https://img/1.jpg"}`,
	}, func(r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	})
	defer srv.Close()

	c := NewClient(srv.URL, "turbo", &stubTranslator{err: fmt.Errorf("llm down")})
	_, err := c.Generate(context.Background(), "desk lamp")
	require.NoError(t, err)
	assert.Contains(t, req.Prompt, "desk lamp")
}

func TestGenerate_UpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "turbo", nil)
	_, err := c.Generate(context.Background(), "desk lamp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
