package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/enlogic/internal/core/ports/driven"
)

func TestNewLLMService_Defaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})

	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestNewLLMService_TrimsSlash(t *testing.T) {
	svc := NewLLMService(LLMConfig{BaseURL: "http://gpu-box:11434/"})
	assert.Equal(t, "http://gpu-box:11434", svc.baseURL)
}

func chatServer(t *testing.T, reply string, got *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestChat_JSONModeAndTemperature(t *testing.T) {
	var got map[string]any
	server := chatServer(t, `{"message": {"role": "assistant", "content": "{}"}, "done": true}`, &got)

	svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "qwen3:8b"})
	reply, err := driven.Invoke(context.Background(), svc, "sys", "usr", driven.ChatOptions{JSONMode: true})

	require.NoError(t, err)
	assert.Equal(t, "{}", reply)
	assert.Equal(t, "json", got["format"])
	assert.Equal(t, false, got["stream"])
	opts := got["options"].(map[string]any)
	assert.Equal(t, float64(0), opts["temperature"])
	assert.Len(t, got["messages"], 2)
}

func TestChat_PlainHasNoFormat(t *testing.T) {
	var got map[string]any
	server := chatServer(t, `{"message": {"content": "answer"}}`, &got)

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	reply, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "q"}}, driven.ChatOptions{Temperature: 0.2})

	require.NoError(t, err)
	assert.Equal(t, "answer", reply)
	assert.NotContains(t, got, "format")
}

func TestChat_StripsThinking(t *testing.T) {
	server := chatServer(t, `{"message": {"content": "<think>\nweigh the clauses\n</think>\n\n{\"summary\":\"ok\"}"}}`, nil)

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	reply, err := svc.Chat(context.Background(), []driven.ChatMessage{{Role: "user", Content: "q"}}, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, reply)
}

func TestGenerate_UsesChat(t *testing.T) {
	var got map[string]any
	server := chatServer(t, `{"message": {"content": "done"}}`, &got)

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})
	reply, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{MaxTokens: 10, StopWords: []string{"END"}})

	require.NoError(t, err)
	assert.Equal(t, "done", reply)
	opts := got["options"].(map[string]any)
	assert.Equal(t, float64(10), opts["num_predict"])
	assert.Equal(t, []any{"END"}, opts["stop"])
}

func TestChat_StatusError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "error field", body: `{"error": "model \"nope\" not found"}`, want: `ollama error (status 404): model "nope" not found`},
		{name: "plain body", body: "gone", want: "ollama error (status 404): gone"},
		{name: "empty body", body: "", want: "ollama error (status 404): Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "nope"})
			_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})

			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models": [{"name": "qwen3:8b"}, {"name": "nomic-embed-text:latest"}]}`))
	}))
	defer server.Close()

	t.Run("installed", func(t *testing.T) {
		svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "qwen3:8b"})
		assert.NoError(t, svc.Ping(context.Background()))
	})

	t.Run("implicit latest tag", func(t *testing.T) {
		svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "nomic-embed-text"})
		assert.NoError(t, svc.Ping(context.Background()))
	})

	t.Run("not pulled", func(t *testing.T) {
		svc := NewLLMService(LLMConfig{BaseURL: server.URL, Model: "llama3.2"})
		assert.ErrorIs(t, svc.Ping(context.Background()), ErrModelMissing)
	})
}
