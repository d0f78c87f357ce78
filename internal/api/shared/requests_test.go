package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type triggerRequest struct {
	Secret string `json:"secret" validate:"required"`
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/jobs/trust", strings.NewReader(`{"secret":"s3cret"}`))

	var req triggerRequest
	require.NoError(t, DecodeJSON(r, &req))
	assert.Equal(t, "s3cret", req.Secret)

	bad := httptest.NewRequest(http.MethodPost, "/api/jobs/trust", strings.NewReader(`{`))
	assert.Error(t, DecodeJSON(bad, &req))
}

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	assert.Error(t, ValidateRequest(&triggerRequest{}))
	assert.NoError(t, ValidateRequest(&triggerRequest{Secret: "s3cret"}))
}
