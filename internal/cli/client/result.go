package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// AppError is an application error reported by the backend, either as an
// {"error": "..."} payload (with any status) or as a bare non-2xx status.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

type errorPayload struct {
	Error string `json:"error"`
}

// ReadResult drains and closes resp. It returns the body, plus an *AppError
// when the backend reported a failure. Read failures wrap ErrNetwork.
func ReadResult(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrNetwork, err)
	}

	if msg := errorMessage(body); msg != "" {
		return body, &AppError{Status: resp.StatusCode, Message: msg}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, &AppError{Status: resp.StatusCode}
	}

	return body, nil
}

// errorMessage extracts the error field; plain-text bodies have none
func errorMessage(body []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}
