package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
)

// HTTPTriggerRequest represents the structure of the JSON payload for HTTP triggers.
type HTTPTriggerRequest struct {
	Data struct {
		Req struct {
			URL             string              `json:"Url"`
			Method          string              `json:"Method"`
			Query           map[string]string   `json:"Query"`
			Headers         map[string][]string `json:"Headers"`
			Params          map[string]string   `json:"Params"`
			Body            string              `json:"Body"`
			IsBase64Encoded bool                `json:"isBase64Encoded"`
		} `json:"req"`
	} `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// HTTPTriggerResponse represents the structure of the JSON response for HTTP triggers.
type HTTPTriggerResponse struct {
	Outputs struct {
		Res struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       string            `json:"body"`
		} `json:"res"`
	} `json:"Outputs"`
	Logs        []string `json:"Logs,omitempty"`
	ReturnValue any      `json:"ReturnValue,omitempty"`
}

// triggerBody returns the wrapped request body. Hosts do not always set
// isBase64Encoded, so bodies that are not JSON are decoded when they are
// valid base64.
func triggerBody(body string, isBase64 bool) []byte {
	if body == "" {
		return nil
	}
	trimmed := strings.TrimSpace(body)
	looksJSON := strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
	if isBase64 || !looksJSON {
		if decoded, err := base64.StdEncoding.DecodeString(body); err == nil {
			return decoded
		}
	}
	return []byte(body)
}

// HandleHttpTrigger adapts the Azure Functions JSON POST request to a standard
// HTTP request and routes it through next.
func (d *Dependencies) HandleHttpTrigger(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var invokeReq HTTPTriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&invokeReq); err != nil {
			slog.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}

		reqData := invokeReq.Data.Req
		var bodyReader io.Reader = http.NoBody
		if body := triggerBody(reqData.Body, reqData.IsBase64Encoded); body != nil {
			bodyReader = bytes.NewReader(body)
		}

		inner, err := http.NewRequestWithContext(r.Context(), reqData.Method, reqData.URL, bodyReader)
		if err != nil {
			slog.Error("failed to create internal request", "error", err)
			http.Error(w, "Failed to create internal request", http.StatusInternalServerError)
			return
		}
		for k, v := range reqData.Headers {
			for _, val := range v {
				inner.Header.Add(k, val)
			}
		}
		slog.Info("processing wrapped HTTP request", "method", inner.Method, "path", inner.URL.Path)

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, inner)

		result := recorder.Result()
		respBody, _ := io.ReadAll(result.Body)
		result.Body.Close()

		headers := make(map[string]string, len(result.Header))
		for k, v := range result.Header {
			headers[k] = strings.Join(v, ", ")
		}

		var resp HTTPTriggerResponse
		resp.Outputs.Res.StatusCode = result.StatusCode
		resp.Outputs.Res.Headers = headers
		resp.Outputs.Res.Body = string(respBody)

		WriteJSON(w, http.StatusOK, resp)
	}
}
