package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gisard/deepresearch/logging"
	"github.com/gisard/deepresearch/retry"
)

const defaultTavilyBaseURL = "https://api.tavily.com"

// searchHTTPError carries the status and headers of a failed Tavily call so
// the retry classifier can inspect them.
type searchHTTPError struct {
	StatusCode int
	RetryAfter string
	Body       string
}

func (e *searchHTTPError) Error() string {
	return fmt.Sprintf("tavily search failed with status %d: %s", e.StatusCode, e.Body)
}

// SearchClassifier reports which Tavily failures are worth retrying.
// 429 responses are rate limits, 503 means the service is overloaded.
func SearchClassifier() retry.Classifier {
	return retry.ClassifierFunc(func(err error) (retry.Transient, bool) {
		var httpErr *searchHTTPError
		if !errors.As(err, &httpErr) {
			return retry.Transient{}, false
		}

		var tr retry.Transient
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests:
			tr.Reason = retry.ReasonRateLimited
		case http.StatusServiceUnavailable:
			tr.Reason = retry.ReasonOverloaded
		default:
			return retry.Transient{}, false
		}

		if d, ok := retry.ParseRetryAfter(httpErr.RetryAfter); ok {
			tr.RetryAfter = d
			tr.HasHint = true
		}

		return tr, true
	})
}

// SearchResult is a single web search hit.
type SearchResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content,omitempty"`
	Score      float64 `json:"score"`
}

// SearchResponse is the trimmed Tavily response surfaced to the model.
type SearchResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []SearchResult `json:"results"`
}

// SearchOptions configures the internet search tool.
type SearchOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Retry      retry.Policy
	Logger     logging.Logger
}

// SearchTool performs web searches through the Tavily REST API.
// Transient upstream failures are retried according to the configured policy.
type SearchTool struct {
	apiKey  string
	baseURL string
	client  *http.Client
	policy  retry.Policy
}

// NewSearchTool builds an internet_search tool bound to the given API key.
func NewSearchTool(apiKey string, optFns ...func(o *SearchOptions)) *SearchTool {
	opts := SearchOptions{
		BaseURL:    defaultTavilyBaseURL,
		HTTPClient: http.DefaultClient,
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	policy := opts.Retry
	policy.Classifier = SearchClassifier()
	policy.Logger = opts.Logger

	return &SearchTool{
		apiKey:  apiKey,
		baseURL: opts.BaseURL,
		client:  opts.HTTPClient,
		policy:  policy,
	}
}

// Name returns the tool identifier exposed to the model.
func (t *SearchTool) Name() string { return "internet_search" }

// Description returns the usage guidance surfaced to the model.
func (t *SearchTool) Description() string {
	return "Search the internet for up-to-date information. Returns a list of relevant results with title, url, content snippet and relevance score."
}

// Parameters returns the JSON schema for search arguments.
func (t *SearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The search query",
			},
			"max_results": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of results (1-20, default 5)",
			},
			"topic": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"general", "news", "finance"},
				"description": "Search category",
			},
			"include_raw_content": map[string]interface{}{
				"type":        "boolean",
				"description": "Include full page content in results",
			},
		},
		"required": []string{"query"},
	}
}

// Call executes the search and returns the trimmed response as JSON.
func (t *SearchTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	query, ok := stringArg(args, "query")
	if !ok || query == "" {
		return "", NewToolError(t.Name(), "missing required argument: query", "invalid_arguments")
	}

	maxResults := 5
	if v, ok := args["max_results"].(float64); ok && v >= 1 && v <= 20 {
		maxResults = int(v)
	}
	topic := "general"
	if v, ok := stringArg(args, "topic"); ok && v != "" {
		topic = v
	}
	includeRaw, _ := args["include_raw_content"].(bool)

	resp, err := retry.Do(ctx, t.policy, func(ctx context.Context) (*SearchResponse, error) {
		return t.search(ctx, query, maxResults, topic, includeRaw)
	})
	if err != nil {
		return "", NewToolError(t.Name(), fmt.Sprintf("search failed for query %q: %v", query, err), "search_failed")
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("encode search response: %w", err)
	}
	return string(out), nil
}

// search performs a single Tavily request.
func (t *SearchTool) search(ctx context.Context, query string, maxResults int, topic string, includeRaw bool) (*SearchResponse, error) {
	payload := map[string]interface{}{
		"query":               query,
		"max_results":         maxResults,
		"topic":               topic,
		"include_raw_content": includeRaw,
		"include_answer":      true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	httpResp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read tavily response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &searchHTTPError{
			StatusCode: httpResp.StatusCode,
			RetryAfter: httpResp.Header.Get("Retry-After"),
			Body:       string(raw),
		}
	}

	var out SearchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode tavily response: %w", err)
	}
	out.Query = query
	return &out, nil
}
