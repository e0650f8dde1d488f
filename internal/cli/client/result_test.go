package client

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestReadResult(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    string
		wantStatus int
	}{
		{name: "success json", status: 200, body: `{"login":"octocat"}`},
		{name: "success plain text", status: 200, body: `Login successful`},
		{name: "error payload with 200", status: 200, body: `{"error":"Not authenticated"}`, wantErr: "Not authenticated", wantStatus: 200},
		{name: "error payload with 401", status: 401, body: `{"error":"invalid credentials"}`, wantErr: "invalid credentials", wantStatus: 401},
		{name: "bare 500", status: 500, body: `oops`, wantErr: "request failed with status 500", wantStatus: 500},
		{name: "non-string error field", status: 400, body: `{"error":{"code":1}}`, wantErr: "request failed with status 400", wantStatus: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := ReadResult(response(tt.status, tt.body))
			assert.Equal(t, tt.body, string(body))

			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			var appErr *AppError
			require.True(t, errors.As(err, &appErr), "got %v", err)
			assert.Equal(t, tt.wantErr, appErr.Error())
			assert.Equal(t, tt.wantStatus, appErr.Status)
		})
	}
}
