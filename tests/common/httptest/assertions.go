//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ErrorBody is the decoded error envelope written by the API.
type ErrorBody struct {
	Error struct {
		Message   string `json:"message"`
		Category  string `json:"category"`
		Retryable bool   `json:"retryable"`
	} `json:"error"`
	Detail map[string]any `json:"detail"`
}

func DecodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body),
		fmt.Sprintf("Failed to decode error response JSON: %s", w.Body.String()))
	return body
}

func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, targetStruct any) {
	t.Helper()

	if !assert.Equal(t, expectedStatus, w.Code,
		fmt.Sprintf("Expected status %d, got %d. Response: %s", expectedStatus, w.Code, w.Body.String())) {
		return
	}

	if expectedStatus >= 200 && expectedStatus < 300 && targetStruct != nil {
		err := json.Unmarshal(w.Body.Bytes(), targetStruct)
		assert.NoError(t, err, fmt.Sprintf("Failed to decode response JSON: %s", w.Body.String()))
	}
}

func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedErrorMsg string) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code,
		fmt.Sprintf("Expected status %d, got %d. Response: %s", expectedStatus, w.Code, w.Body.String()))

	body := DecodeError(t, w)
	if expectedErrorMsg != "" {
		assert.Contains(t, body.Error.Message, expectedErrorMsg,
			"Response error message doesn't contain expected text")
	}
}

// AssertCategoryResponse checks the status together with the failure category and retry hint.
func AssertCategoryResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, category string, retryable bool) ErrorBody {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code,
		fmt.Sprintf("Expected status %d, got %d. Response: %s", expectedStatus, w.Code, w.Body.String()))

	body := DecodeError(t, w)
	assert.Equal(t, category, body.Error.Category)
	assert.Equal(t, retryable, body.Error.Retryable)
	return body
}

// AssertRedirect checks for a 303 to exactly location.
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()

	assert.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, location, w.Header().Get("Location"))
}
