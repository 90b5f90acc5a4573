package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config, err := NewConfig()
	require.NoError(t, err)
	config.Endpoint = server.URL
	config.Token = "hf_test_token"

	client, err := NewClient(config)
	require.NoError(t, err)
	return client
}

func TestResolveModel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models/cardiffnlp/twitter-roberta-base", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hf_test_token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id": "cardiffnlp/twitter-roberta-base", "sha": "abc123"}`))
	})
	mux.HandleFunc("/cardiffnlp/twitter-roberta-base/resolve/main/config.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"model_type": "roberta",
			"architectures": ["RobertaForSequenceClassification"],
			"vocab_size": 50265,
			"hidden_size": 768,
			"max_position_embeddings": 514
		}`))
	})

	client := newTestClient(t, mux)

	config, err := client.ResolveModel(context.Background(), "cardiffnlp/twitter-roberta-base")
	require.NoError(t, err)
	assert.Equal(t, "roberta", config.ModelType)
	assert.Equal(t, []string{"RobertaForSequenceClassification"}, config.Architectures)
	assert.Equal(t, 50265, config.VocabSize)
}

func TestResolveModelNotFound(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	_, err := client.ResolveModel(context.Background(), "no/such-model")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestCreateRepo(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/repos/create", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			_, _ = w.Write([]byte(`{"url": "https://hub.example/org/my-model"}`))
		})

		client := newTestClient(t, mux)
		url, err := client.CreateRepo(context.Background(), "org", "my-model")
		require.NoError(t, err)
		assert.Equal(t, "https://hub.example/org/my-model", url)
	})

	t.Run("already exists", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/repos/create", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		})

		client := newTestClient(t, mux)
		url, err := client.CreateRepo(context.Background(), "org", "my-model")
		require.NoError(t, err)
		assert.Equal(t, client.Endpoint()+"/org/my-model", url)
	})

	t.Run("server error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/repos/create", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})

		client := newTestClient(t, mux)
		_, err := client.CreateRepo(context.Background(), "org", "my-model")
		require.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	config := &Config{}
	require.Error(t, config.Validate())

	config, err := NewConfig()
	require.NoError(t, err)
	require.NoError(t, config.Validate())
	assert.Equal(t, DefaultEndpoint, config.Endpoint)
}
