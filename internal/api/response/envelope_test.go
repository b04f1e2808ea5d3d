package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/api/response"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()

	response.Success(w, http.StatusOK, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"key": "value"}, body["data"])
	assert.NotContains(t, body, "message")
}

func TestSuccessMessage(t *testing.T) {
	w := httptest.NewRecorder()

	response.SuccessMessage(w, http.StatusOK, "Logged out successfully")

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Logged out successfully", body["message"])
	assert.NotContains(t, body, "data")
}

func TestErr(t *testing.T) {
	w := httptest.NewRecorder()

	response.Err(w, http.StatusNotFound, "User not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User not found", body["message"])
	assert.NotContains(t, body, "data")
}
