package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authProbe(t *testing.T) (*JobSecretMiddleware, http.Handler, *string) {
	t.Helper()
	var seenBody string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seenBody = string(raw)
		w.WriteHeader(http.StatusOK)
	})
	return NewJobSecretMiddleware("mf-job-secret-key"), inner, &seenBody
}

func TestJobSecretHeader(t *testing.T) {
	t.Parallel()

	mw, inner, _ := authProbe(t)

	r := httptest.NewRequest(http.MethodPost, "/api/jobs/trust", nil)
	r.Header.Set("X-Job-Secret", "mf-job-secret-key")
	w := httptest.NewRecorder()

	mw.Authenticate(inner).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJobSecretInBody(t *testing.T) {
	t.Parallel()

	mw, inner, seenBody := authProbe(t)

	payload := `{"secret":"mf-job-secret-key","founder_id":"abc"}`
	r := httptest.NewRequest(http.MethodPost, "/api/jobs/matches", strings.NewReader(payload))
	w := httptest.NewRecorder()

	mw.Authenticate(inner).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, *seenBody, "body must be restored for the handler")
}

func TestJobSecretMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		body   string
		method string
	}{
		{
			name:  "wrong header",
			setup: func(r *http.Request) { r.Header.Set("X-Job-Secret", "guess") },
		},
		{
			name: "wrong body secret",
			body: `{"secret":"guess"}`,
		},
		{
			name: "missing entirely",
		},
		{
			name: "malformed body",
			body: `{`,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			r := httptest.NewRequest(http.MethodPost, "/api/jobs/circles", body)
			if tc.setup != nil {
				tc.setup(r)
			}
			w := httptest.NewRecorder()

			mw, inner, _ := authProbe(t)
			mw.Authenticate(inner).ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "unauthorized")
		})
	}
}

func TestNewJobSecretMiddlewareEmptySecretPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewJobSecretMiddleware("") })
}
