// Package genai is a small client for the Gemini generateContent REST API.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrNotConfigured is returned by every call when no API key is set.
var ErrNotConfigured = errors.New("genai: api key not configured")

// Schema is an OpenAPI-style response schema as accepted by the API.
type Schema map[string]interface{}

// Config holds the client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Source is a web page a grounded answer was built from.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// GroundedAnswer is a search-grounded text answer.
type GroundedAnswer struct {
	Text    string
	Sources []Source
}

// Client calls the API through a circuit breaker so that an unavailable
// upstream fails fast.
type Client struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker[*response]
}

// New creates a new Client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg: cfg,
		breaker: gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
			Name:        "genai",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

// Enabled reports whether the client has credentials.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// State exposes the breaker state for health reporting.
func (c *Client) State() string {
	return c.breaker.State().String()
}

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
	ResponseSchema   Schema `json:"responseSchema,omitempty"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type request struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
	Tools            []tool            `json:"tools,omitempty"`
}

type response struct {
	Candidates []struct {
		Content           content `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *Source `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
}

func (r *response) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func (r *response) sources() []Source {
	out := make([]Source, 0)
	if len(r.Candidates) == 0 || r.Candidates[0].GroundingMetadata == nil {
		return out
	}
	for _, chunk := range r.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web != nil && chunk.Web.URI != "" {
			out = append(out, *chunk.Web)
		}
	}
	return out
}

func (c *Client) generate(ctx context.Context, req request) (*response, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := c.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok && time.Until(dl) < timeout {
		timeout = time.Until(dl)
	}

	return c.breaker.Execute(func() (*response, error) {
		url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
		agent := fiber.Post(url).
			JSONEncoder(json.Marshal).
			JSONDecoder(json.Unmarshal).
			Timeout(timeout).
			Set("x-goog-api-key", c.cfg.APIKey).
			JSON(req)

		var res response
		code, body, errs := agent.Struct(&res)
		if len(errs) > 0 {
			return nil, fmt.Errorf("genai request failed: %w", errors.Join(errs...))
		}
		if code != fiber.StatusOK {
			return nil, fmt.Errorf("genai returned status %d: %s", code, truncate(string(body), 200))
		}
		return &res, nil
	})
}

// GenerateJSON asks for a JSON answer matching schema and decodes it into out.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema Schema, out interface{}) error {
	res, err := c.generate(ctx, request{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	})
	if err != nil {
		return err
	}
	text := res.text()
	if text == "" {
		return errors.New("genai returned an empty answer")
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("failed to decode genai answer: %w", err)
	}
	return nil
}

// GenerateGrounded asks for a free-text answer grounded with web search.
func (c *Client) GenerateGrounded(ctx context.Context, prompt string) (*GroundedAnswer, error) {
	res, err := c.generate(ctx, request{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		Tools:    []tool{{GoogleSearch: &struct{}{}}},
	})
	if err != nil {
		return nil, err
	}
	return &GroundedAnswer{Text: res.text(), Sources: res.sources()}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
