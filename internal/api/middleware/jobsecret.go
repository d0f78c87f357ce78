package middleware

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	"github.com/metalmindtech/mfn-api/internal/api/shared"
)

// maxSecretBodyBytes bounds how much of a request body the middleware will
// read while looking for the secret field.
const maxSecretBodyBytes = 1 << 20

// JobSecretMiddleware guards the job trigger endpoints with a shared secret.
// The secret travels in the X-Job-Secret header or in a "secret" field of the
// JSON body; a mismatch gets a 401 before any data access. The body is
// restored for the handler after inspection.
type JobSecretMiddleware struct {
	secret string
}

// NewJobSecretMiddleware creates the middleware. Panics on an empty secret:
// running the trigger surface unguarded is never intended.
func NewJobSecretMiddleware(secret string) *JobSecretMiddleware {
	if secret == "" {
		panic("middleware: job secret cannot be empty")
	}
	return &JobSecretMiddleware{secret: secret}
}

// Authenticate wraps a handler with the shared-secret check.
func (m *JobSecretMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get("X-Job-Secret")
		if presented == "" {
			presented = m.secretFromBody(r)
		}

		if subtle.ConstantTimeCompare([]byte(presented), []byte(m.secret)) != 1 {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// secretFromBody reads the "secret" field out of a JSON body, leaving the
// body readable for the handler.
func (m *JobSecretMiddleware) secretFromBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxSecretBodyBytes))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var body struct {
		Secret string `json:"secret"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.Secret
}
