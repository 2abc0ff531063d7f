// Package analysis talks to the photo analysis service that turns a meal
// photo into candidate food entries.
package analysis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/roach88/nutrilog/internal/meal"
)

// DefaultTimeout bounds a single analysis request.
const DefaultTimeout = 30 * time.Second

var (
	// ErrUnavailable means the service could not be reached or answered
	// with a non-2xx status.
	ErrUnavailable = errors.New("analysis service unavailable")

	// ErrMalformed means the service answered with a body that does not
	// describe any usable food.
	ErrMalformed = errors.New("malformed analysis response")
)

// FoodGuess is one candidate food recognized in a photo.
type FoodGuess struct {
	Name        string  `json:"name"`
	Calories    float64 `json:"calories"`
	Carbs       float64 `json:"carbs"`
	Protein     float64 `json:"protein"`
	Fat         float64 `json:"fat"`
	Sugar       float64 `json:"sugar"`
	Sodium      float64 `json:"sodium"`
	Cholesterol float64 `json:"cholesterol"`
}

// Valid reports whether the guess can become a FoodItem.
func (g FoodGuess) Valid() bool {
	if strings.TrimSpace(g.Name) == "" {
		return false
	}
	for _, v := range []float64{g.Calories, g.Carbs, g.Protein, g.Fat, g.Sugar, g.Sodium, g.Cholesterol} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Analyzer defines the interface for photo analysis.
type Analyzer interface {
	Analyze(ctx context.Context, photo string) ([]FoodGuess, error)
}

// Config holds the service location and credentials.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client is a resty-backed implementation of Analyzer.
type Client struct {
	httpClient *resty.Client
	endpoint   string
}

// NewClient creates a configured analysis client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &Client{httpClient: client, endpoint: cfg.Endpoint}
}

type analyzeRequest struct {
	Image string `json:"image"`
}

type analyzeResponse struct {
	Foods []FoodGuess `json:"foods"`
}

// Analyze sends the encoded photo and returns the valid guesses. Invalid
// guesses are dropped; a response whose guesses are all invalid is
// ErrMalformed. An empty list means nothing was recognized.
func (c *Client) Analyze(ctx context.Context, photo string) ([]FoodGuess, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(analyzeRequest{Image: photo}).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	var body analyzeResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if body.Foods == nil {
		return nil, fmt.Errorf("%w: missing foods", ErrMalformed)
	}

	guesses := make([]FoodGuess, 0, len(body.Foods))
	for _, g := range body.Foods {
		if g.Valid() {
			g.Name = strings.TrimSpace(g.Name)
			guesses = append(guesses, g)
		}
	}
	if len(guesses) == 0 && len(body.Foods) > 0 {
		return nil, fmt.Errorf("%w: no usable foods among %d", ErrMalformed, len(body.Foods))
	}
	return guesses, nil
}

// ToFoodItems turns guesses into FoodItems with fresh ids.
func ToFoodItems(guesses []FoodGuess, ids meal.IDGenerator) []meal.FoodItem {
	items := make([]meal.FoodItem, 0, len(guesses))
	for _, g := range guesses {
		items = append(items, meal.FoodItem{
			ID:          ids.Generate(),
			Name:        g.Name,
			Calories:    g.Calories,
			Carbs:       g.Carbs,
			Protein:     g.Protein,
			Fat:         g.Fat,
			Sugar:       g.Sugar,
			Sodium:      g.Sodium,
			Cholesterol: g.Cholesterol,
		})
	}
	return items
}

// EncodePhoto builds the data URI stored in a meal slot and sent for
// analysis.
func EncodePhoto(contentType string, data []byte) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Compile-time assertion
var _ Analyzer = (*Client)(nil)
