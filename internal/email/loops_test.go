package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopsSenderPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer loops-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	s := NewLoopsSender("loops-key", "tmpl-123")
	s.url = srv.URL

	require.NoError(t, s.SendOTP(context.Background(), "kid@example.com", "123456"))

	assert.Equal(t, "tmpl-123", got["transactionalId"])
	assert.Equal(t, "kid@example.com", got["email"])
	vars, ok := got["dataVariables"].(map[string]any)
	require.True(t, ok, "dataVariables missing")
	for _, key := range []string{"otp", "OTP", "code"} {
		assert.Equal(t, "123456", vars[key], "dataVariables[%s]", key)
	}
}

func TestLoopsSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"unknown template"}`))
	}))
	defer srv.Close()

	s := NewLoopsSender("loops-key", "tmpl-123")
	s.url = srv.URL

	err := s.SendOTP(context.Background(), "kid@example.com", "123456")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
