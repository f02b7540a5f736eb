package pkg

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteResponse(t *testing.T) {
	testCases := []struct {
		name            string
		write           func(w http.ResponseWriter)
		wantStatus      int
		wantContentType string
		wantBody        string
	}{
		{
			name: "bytes with explicit status",
			write: func(w http.ResponseWriter) {
				WriteResponseBytes(w, ContentType.JSON, []byte(`{"error":"no such workout"}`), http.StatusNotFound)
			},
			wantStatus:      http.StatusNotFound,
			wantContentType: ContentType.JSON,
			wantBody:        `{"error":"no such workout"}`,
		},
		{
			name: "string with explicit status",
			write: func(w http.ResponseWriter) {
				WriteResponse(w, ContentType.Text, "rate limited", http.StatusTooManyRequests)
			},
			wantStatus:      http.StatusTooManyRequests,
			wantContentType: ContentType.Text,
			wantBody:        "rate limited",
		},
		{
			name: "bytes ok",
			write: func(w http.ResponseWriter) {
				WriteResponseBytesOK(w, ContentType.JSON, []byte(`{"coins":12}`))
			},
			wantStatus:      http.StatusOK,
			wantContentType: ContentType.JSON,
			wantBody:        `{"coins":12}`,
		},
		{
			name: "text ok",
			write: func(w http.ResponseWriter) {
				WriteTextResponseOK(w, "synced")
			},
			wantStatus:      http.StatusOK,
			wantContentType: ContentType.Text,
			wantBody:        "synced",
		},
		{
			name: "json ok",
			write: func(w http.ResponseWriter) {
				WriteJSONResponseOK(w, `{"streak":3}`)
			},
			wantStatus:      http.StatusOK,
			wantContentType: ContentType.JSON,
			wantBody:        `{"streak":3}`,
		},
		{
			name: "empty content type leaves header unset",
			write: func(w http.ResponseWriter) {
				WriteResponseBytes(w, "", []byte("raw"), http.StatusOK)
			},
			wantStatus:      http.StatusOK,
			wantContentType: "",
			wantBody:        "raw",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tc.write(rr)
			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantContentType, rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.wantBody, rr.Body.String())
		})
	}
}
