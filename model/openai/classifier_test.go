package openai

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisard/deepresearch/retry"
)

func apiError(status int, retryAfter string) error {
	resp := &http.Response{Header: http.Header{}}
	if retryAfter != "" {
		resp.Header.Set("Retry-After", retryAfter)
	}
	return &openaisdk.Error{StatusCode: status, Response: resp}
}

func TestClassifier_RateLimited(t *testing.T) {
	tr, ok := Classifier().Transient(apiError(429, ""))
	require.True(t, ok)
	assert.Equal(t, retry.ReasonRateLimited, tr.Reason)
}

func TestClassifier_Overloaded(t *testing.T) {
	tr, ok := Classifier().Transient(apiError(503, "12"))
	require.True(t, ok)
	assert.Equal(t, retry.ReasonOverloaded, tr.Reason)
	require.True(t, tr.HasHint)
	assert.Equal(t, 12*time.Second, tr.RetryAfter)
}

func TestClassifier_FatalStatuses(t *testing.T) {
	for _, status := range []int{400, 401, 404, 500} {
		_, ok := Classifier().Transient(apiError(status, ""))
		assert.False(t, ok, "status %d must not be retryable", status)
	}
}

func TestClassifier_WrappedError(t *testing.T) {
	_, ok := Classifier().Transient(fmt.Errorf("openai api error: %w", apiError(429, "")))
	assert.True(t, ok)
}

func TestClassifier_UnrelatedError(t *testing.T) {
	_, ok := Classifier().Transient(fmt.Errorf("timeout"))
	assert.False(t, ok)
}
