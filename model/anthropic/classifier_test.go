package anthropic

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gisard/deepresearch/retry"
)

func apiError(status int, retryAfter string) error {
	resp := &http.Response{Header: http.Header{}}
	if retryAfter != "" {
		resp.Header.Set("Retry-After", retryAfter)
	}
	return &anthropicsdk.Error{StatusCode: status, Response: resp}
}

func TestClassifier_RateLimited(t *testing.T) {
	tr, ok := Classifier().Transient(apiError(429, ""))
	require.True(t, ok)
	assert.Equal(t, retry.ReasonRateLimited, tr.Reason)
	assert.False(t, tr.HasHint)
}

func TestClassifier_Overloaded(t *testing.T) {
	tr, ok := Classifier().Transient(apiError(529, ""))
	require.True(t, ok)
	assert.Equal(t, retry.ReasonOverloaded, tr.Reason)
}

func TestClassifier_RetryAfterHint(t *testing.T) {
	tr, ok := Classifier().Transient(apiError(429, "30"))
	require.True(t, ok)
	require.True(t, tr.HasHint)
	assert.Equal(t, 30*time.Second, tr.RetryAfter)
}

func TestClassifier_MalformedRetryAfterIgnored(t *testing.T) {
	tr, ok := Classifier().Transient(apiError(429, "Wed, 21 Oct 2026 07:28:00 GMT"))
	require.True(t, ok)
	assert.False(t, tr.HasHint)
}

func TestClassifier_FatalStatuses(t *testing.T) {
	for _, status := range []int{400, 401, 404, 500} {
		_, ok := Classifier().Transient(apiError(status, ""))
		assert.False(t, ok, "status %d must not be retryable", status)
	}
}

func TestClassifier_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("anthropic api error: %w", apiError(429, "5"))
	tr, ok := Classifier().Transient(wrapped)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, tr.RetryAfter)
}

func TestClassifier_UnrelatedError(t *testing.T) {
	_, ok := Classifier().Transient(fmt.Errorf("connection refused"))
	assert.False(t, ok)
}
