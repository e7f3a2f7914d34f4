package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/longkey1/gemchat/internal/logger"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"
)

// ModelInfo represents information about an available model
type ModelInfo struct {
	ID          string // Model identifier (e.g., "gemini-2.0-flash")
	Description string // Human-readable description of the model
	IsDefault   bool   // Whether this is the configured model
}

// ModelsAPIResponse represents the response from Gemini's models endpoint
type ModelsAPIResponse struct {
	Models []ModelData `json:"models"`
}

// ModelData represents a single model in the API response
type ModelData struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	Description                string   `json:"description"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// Request represents the request body for Gemini's generate content API
type Request struct {
	Contents []Content `json:"contents"`
}

// Content represents a content item in the request
type Content struct {
	Parts []Part `json:"parts"`
}

// Part represents a part of the content
type Part struct {
	Text string `json:"text"`
}

// Response represents the response from the generate content API
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate represents a candidate response
type Candidate struct {
	Content ResponseContent `json:"content"`
}

// ResponseContent represents the content of a candidate
type ResponseContent struct {
	Parts []Part `json:"parts"`
}

// Text returns the text of the first part of the first candidate.
// ok is false when the response carries no such text.
func (r *Response) Text() (text string, ok bool) {
	if r == nil || len(r.Candidates) == 0 {
		return "", false
	}
	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 || parts[0].Text == "" {
		return "", false
	}
	return parts[0].Text, true
}

// APIError is returned when the API answers with a non-2xx status
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Body)
}

// HTTPStatusCode returns the HTTP status of the failed call
func (e *APIError) HTTPStatusCode() int {
	return e.StatusCode
}

// ErrInvalidJSON is returned when the response body is not JSON
var ErrInvalidJSON = errors.New("response body is not valid JSON")

// Config defines the configuration interface for the Gemini client
type Config interface {
	GetModel() string
	GetBaseURL() (string, error)
	GetToken() (string, error)
}

// Client talks to the Gemini REST API
type Client struct {
	config     Config
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithLogger sets the logger for request diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.log = l
	}
}

// NewClient creates a new Gemini client.
// No request timeout is applied; a call runs until the server answers or the
// context ends.
func NewClient(config Config, opts ...Option) *Client {
	c := &Client{
		config:     config,
		httpClient: &http.Client{},
		log:        logger.L,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateContent sends text as the only content part and decodes the answer.
//
// A body that is not JSON returns ErrInvalidJSON. Fields with an unexpected
// type are skipped and the rest of the body is kept; Text reports whether an
// answer survived.
func (c *Client) GenerateContent(ctx context.Context, text string) (*Response, error) {
	reqBody := Request{
		Contents: []Content{
			{
				Parts: []Part{
					{
						Text: text,
					},
				},
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	endpoint, err := c.endpoint(":generateContent")
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	c.log.Debug("raw API response", "body", string(body))

	if !json.Valid(body) {
		return nil, fmt.Errorf("error parsing response: %w", ErrInvalidJSON)
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			c.log.Debug("unexpected response shape", "error", err)
			return &result, nil
		}
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	c.log.Debug("parsed API response", "candidates", len(result.Candidates))
	return &result, nil
}

// ListModels returns the models that support generateContent, sorted by ID
// in descending order.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	token, err := c.config.GetToken()
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	baseURL, err := c.baseURL()
	if err != nil {
		return nil, err
	}

	endpoint := baseURL + "/models?key=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var result ModelsAPIResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	current := strings.TrimPrefix(c.config.GetModel(), "models/")
	models := make([]ModelInfo, 0, len(result.Models))
	for _, model := range result.Models {
		if !contains(model.SupportedGenerationMethods, "generateContent") {
			continue
		}

		id := strings.TrimPrefix(model.Name, "models/")
		description := model.Description
		if description == "" {
			description = model.DisplayName
		}

		models = append(models, ModelInfo{
			ID:          id,
			Description: description,
			IsDefault:   id == current,
		})
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].ID > models[j].ID
	})

	return models, nil
}

func (c *Client) endpoint(method string) (string, error) {
	token, err := c.config.GetToken()
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	baseURL, err := c.baseURL()
	if err != nil {
		return "", err
	}

	model := strings.TrimPrefix(c.config.GetModel(), "models/")
	if model == "" {
		model = DefaultModel
	}

	return fmt.Sprintf("%s/models/%s%s?key=%s", baseURL, url.PathEscape(model), method, url.QueryEscape(token)), nil
}

func (c *Client) baseURL() (string, error) {
	baseURL, err := c.config.GetBaseURL()
	if err != nil {
		return "", fmt.Errorf("failed to get base URL: %w", err)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/"), nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactKey(urlErr.URL)
		}
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return body, nil
}

// redactKey hides the API key in a request URL
func redactKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// contains checks if a string slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
