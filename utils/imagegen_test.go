package utils

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renovision/config"
)

func TestNewImageTransformerSelectsProvider(t *testing.T) {
	tr, err := NewImageTransformer(config.Config{ImageProvider: "gemini"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", tr.Name())

	tr, err = NewImageTransformer(config.Config{ImageProvider: "runway"})
	require.NoError(t, err)
	assert.Equal(t, "runway", tr.Name())

	_, err = NewImageTransformer(config.Config{ImageProvider: "dalle"})
	assert.Error(t, err)
}

func TestGeminiTransform(t *testing.T) {
	want := []byte{0x89, 'P', 'N', 'G'}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, ":generateContent")
		assert.Equal(t, "key-123", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "modern kitchen", req.Contents[0].Parts[0].Text)

		json.NewEncoder(w).Encode(geminiResponse{
			Candidates: []struct {
				Content struct {
					Parts []geminiPart `json:"parts"`
				} `json:"content"`
			}{{Content: struct {
				Parts []geminiPart `json:"parts"`
			}{Parts: []geminiPart{
				{Text: "Here is your renovation"},
				{InlineData: &geminiInlineData{
					MimeType: "image/png",
					Data:     base64.StdEncoding.EncodeToString(want),
				}},
			}}}},
		})
	}))
	defer srv.Close()

	g := NewGeminiTransformer("key-123")
	g.baseURL = srv.URL

	got, err := g.Transform(context.Background(), []byte("photo"), "image/jpeg", "modern kitchen")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGeminiTransformNoImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(geminiResponse{})
	}))
	defer srv.Close()

	g := NewGeminiTransformer("key-123")
	g.baseURL = srv.URL

	_, err := g.Transform(context.Background(), []byte("photo"), "image/jpeg", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image")
}

func TestGeminiTransformServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGeminiTransformer("key-123")
	g.baseURL = srv.URL
	g.log.SetLevel(logrus.FatalLevel)

	_, err := g.Transform(context.Background(), []byte("photo"), "image/jpeg", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestRunwayTransform(t *testing.T) {
	want := []byte("generated-image-bytes")
	polls := 0

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "POST" && r.URL.Path == "/text_to_image":
			assert.Equal(t, "Bearer rw-key", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(runwayTask{ID: "task-1", Status: "PENDING"})
		case r.Method == "GET" && r.URL.Path == "/tasks/task-1":
			polls++
			if polls < 2 {
				json.NewEncoder(w).Encode(runwayTask{ID: "task-1", Status: "RUNNING"})
				return
			}
			json.NewEncoder(w).Encode(runwayTask{
				ID:     "task-1",
				Status: "SUCCEEDED",
				Output: []string{srv.URL + "/outputs/task-1.png"},
			})
		case r.Method == "GET" && r.URL.Path == "/outputs/task-1.png":
			w.Write(want)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	rw := NewRunwayTransformer("rw-key")
	rw.baseURL = srv.URL
	rw.pollInterval = time.Millisecond
	rw.pollTimeout = time.Second

	got, err := rw.Transform(context.Background(), []byte("photo"), "image/jpeg", "modern kitchen")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.GreaterOrEqual(t, polls, 2)
}

func TestRunwayTransformTaskFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			json.NewEncoder(w).Encode(runwayTask{ID: "task-2", Status: "PENDING"})
			return
		}
		json.NewEncoder(w).Encode(runwayTask{ID: "task-2", Status: "FAILED", FailureTx: "content moderation"})
	}))
	defer srv.Close()

	rw := NewRunwayTransformer("rw-key")
	rw.baseURL = srv.URL
	rw.pollInterval = time.Millisecond
	rw.pollTimeout = time.Second

	_, err := rw.Transform(context.Background(), []byte("photo"), "image/jpeg", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content moderation")
}

func TestRunwayTransformTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			json.NewEncoder(w).Encode(runwayTask{ID: "task-3", Status: "PENDING"})
			return
		}
		json.NewEncoder(w).Encode(runwayTask{ID: "task-3", Status: "RUNNING"})
	}))
	defer srv.Close()

	rw := NewRunwayTransformer("rw-key")
	rw.baseURL = srv.URL
	rw.pollInterval = time.Millisecond
	rw.pollTimeout = 50 * time.Millisecond
	rw.log.SetLevel(logrus.FatalLevel)

	_, err := rw.Transform(context.Background(), []byte("photo"), "image/jpeg", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestRunwayTransformCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			json.NewEncoder(w).Encode(runwayTask{ID: "task-4", Status: "PENDING"})
			return
		}
		json.NewEncoder(w).Encode(runwayTask{ID: "task-4", Status: "RUNNING"})
	}))
	defer srv.Close()

	rw := NewRunwayTransformer("rw-key")
	rw.baseURL = srv.URL
	rw.pollInterval = 10 * time.Millisecond
	rw.pollTimeout = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := rw.Transform(ctx, []byte("photo"), "image/jpeg", "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
