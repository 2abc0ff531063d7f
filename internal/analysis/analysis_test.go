package analysis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nutrilog/internal/meal"
)

const photo = "data:image/jpeg;base64,/9j/4AAQ"

// newServer answers every request with status and body, recording the last
// request's auth header and image.
func newServer(t *testing.T, status int, body string) (*httptest.Server, *string, *string) {
	t.Helper()
	var auth, image string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		var req analyzeRequest
		_ = json.Unmarshal(raw, &req)
		image = req.Image

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &auth, &image
}

func TestAnalyze_Success(t *testing.T) {
	srv, auth, image := newServer(t, http.StatusOK, `{"foods":[
		{"name":"apple","calories":95,"carbs":25,"protein":0.5,"fat":0.3,"sugar":19,"sodium":2,"cholesterol":0},
		{"name":"  toast ","calories":80}
	]}`)
	c := NewClient(Config{Endpoint: srv.URL, APIKey: "k3y"})

	guesses, err := c.Analyze(context.Background(), photo)
	require.NoError(t, err)

	assert.Equal(t, "Bearer k3y", *auth)
	assert.Equal(t, photo, *image)
	assert.Equal(t, []FoodGuess{
		{Name: "apple", Calories: 95, Carbs: 25, Protein: 0.5, Fat: 0.3, Sugar: 19, Sodium: 2},
		{Name: "toast", Calories: 80},
	}, guesses)
}

func TestAnalyze_NothingRecognized(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusOK, `{"foods":[]}`)

	guesses, err := NewClient(Config{Endpoint: srv.URL}).Analyze(context.Background(), photo)
	require.NoError(t, err)
	assert.Empty(t, guesses)
}

func TestAnalyze_DropsInvalidGuesses(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusOK, `{"foods":[
		{"name":"","calories":10},
		{"name":"ghost","calories":-5},
		{"name":"pear","calories":57}
	]}`)

	guesses, err := NewClient(Config{Endpoint: srv.URL}).Analyze(context.Background(), photo)
	require.NoError(t, err)
	assert.Equal(t, []FoodGuess{{Name: "pear", Calories: 57}}, guesses)
}

func TestAnalyze_Malformed(t *testing.T) {
	bodies := map[string]string{
		"not json":      `<html>oops</html>`,
		"missing foods": `{"items":[]}`,
		"null foods":    `{"foods":null}`,
		"wrong type":    `{"foods":"apple"}`,
		"all invalid":   `{"foods":[{"name":" "},{"name":"x","fat":-1}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv, _, _ := newServer(t, http.StatusOK, body)
			_, err := NewClient(Config{Endpoint: srv.URL}).Analyze(context.Background(), photo)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestAnalyze_Unavailable(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv, _, _ := newServer(t, http.StatusBadGateway, `{"error":"upstream"}`)
		_, err := NewClient(Config{Endpoint: srv.URL}).Analyze(context.Background(), photo)
		require.ErrorIs(t, err, ErrUnavailable)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("unauthorized", func(t *testing.T) {
		srv, _, _ := newServer(t, http.StatusUnauthorized, ``)
		_, err := NewClient(Config{Endpoint: srv.URL}).Analyze(context.Background(), photo)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(Config{Endpoint: url}).Analyze(context.Background(), photo)
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("timeout", func(t *testing.T) {
		block := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-block:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(block)

		_, err := NewClient(Config{Endpoint: srv.URL, Timeout: 50 * time.Millisecond}).Analyze(context.Background(), photo)
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestToFoodItems(t *testing.T) {
	guesses := []FoodGuess{
		{Name: "apple", Calories: 95, Sugar: 19},
		{Name: "rice", Calories: 205, Carbs: 45},
	}

	items := ToFoodItems(guesses, meal.NewFixedIDGenerator("a", "b"))

	assert.Equal(t, []meal.FoodItem{
		{ID: "a", Name: "apple", Calories: 95, Sugar: 19},
		{ID: "b", Name: "rice", Calories: 205, Carbs: 45},
	}, items)
	assert.NotNil(t, ToFoodItems(nil, meal.UUIDGenerator{}))
}

func TestEncodePhoto(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AQID", EncodePhoto("image/png", []byte{1, 2, 3}))
	assert.Equal(t, "data:application/octet-stream;base64,", EncodePhoto("", nil))
}
