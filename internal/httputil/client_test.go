package httputil

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, DecodeJSON(response(http.StatusOK, `{"name":"rar"}`), &out))
	assert.Equal(t, "rar", out.Name)
}

func TestDecodeJSON_StatusError(t *testing.T) {
	var out map[string]any
	err := DecodeJSON(response(http.StatusTooManyRequests, "slow down"), &out)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, "slow down", se.Body)
}

func TestDecodeJSON_Malformed(t *testing.T) {
	var out map[string]any
	err := DecodeJSON(response(http.StatusOK, `{"broken"`), &out)
	assert.ErrorContains(t, err, "decode response")
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, NewClient(0).Timeout)
}
