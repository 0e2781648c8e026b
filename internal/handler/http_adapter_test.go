package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triggerRequest(t *testing.T, method, url, body string, base64Flag bool, headers map[string][]string) *http.Request {
	t.Helper()
	var payload HTTPTriggerRequest
	payload.Data.Req.Method = method
	payload.Data.Req.URL = url
	payload.Data.Req.Body = body
	payload.Data.Req.IsBase64Encoded = base64Flag
	payload.Data.Req.Headers = headers
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/HttpTrigger", bytes.NewReader(raw))
}

func TestHandleHttpTrigger_RoutesWrappedRequest(t *testing.T) {
	deps := &Dependencies{Profiles: &MockProfileService{}, Auth: newTestAuth()}

	w := httptest.NewRecorder()
	deps.Routes().ServeHTTP(w, triggerRequest(t, http.MethodGet, "http://localhost:7071/api/profile", "", false,
		map[string][]string{"Authorization": {"Bearer user-token"}}))

	require.Equal(t, http.StatusOK, w.Code)
	var resp HTTPTriggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, resp.Outputs.Res.StatusCode)
	assert.Equal(t, "application/json", resp.Outputs.Res.Headers["Content-Type"])
	assert.Contains(t, resp.Outputs.Res.Body, `"profile":"Default"`)
}

func TestHandleHttpTrigger_PropagatesStatus(t *testing.T) {
	deps := &Dependencies{Auth: newTestAuth()}

	w := httptest.NewRecorder()
	deps.Routes().ServeHTTP(w, triggerRequest(t, http.MethodGet, "http://localhost:7071/api/profile", "", false, nil))

	var resp HTTPTriggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusUnauthorized, resp.Outputs.Res.StatusCode)
}

func TestHandleHttpTrigger_InvalidPayload(t *testing.T) {
	deps := &Dependencies{}
	w := httptest.NewRecorder()

	deps.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/HttpTrigger", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTriggerBody(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(`{"a":1}`))

	assert.Nil(t, triggerBody("", false))
	assert.Equal(t, `{"a":1}`, string(triggerBody(`{"a":1}`, false)))
	assert.Equal(t, `{"a":1}`, string(triggerBody(encoded, false)))
	assert.Equal(t, `{"a":1}`, string(triggerBody(encoded, true)))
	assert.Equal(t, "not base64!", string(triggerBody("not base64!", true)))
}
