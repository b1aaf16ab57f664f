package facematch

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmgate/internal/verification/providers"
)

func newFacePPServer(t *testing.T, status int, body string) *FacePPClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, comparePath, r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "key", r.PostForm.Get("api_key"))
		assert.Equal(t, "secret", r.PostForm.Get("api_secret"))
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("id")), r.PostForm.Get("image_base64_1"))
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("selfie")), r.PostForm.Get("image_base64_2"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewFacePPClient(srv.URL, "key", "secret")
	require.NoError(t, err)
	return c
}

func TestFacePPClient_Compare(t *testing.T) {
	ctx := context.Background()

	t.Run("returns vendor confidence", func(t *testing.T) {
		c := newFacePPServer(t, http.StatusOK, `{"request_id":"r1","confidence":92.013,"faces1":[{}],"faces2":[{}]}`)
		score, msg, err := c.Compare(ctx, []byte("id"), []byte("selfie"))
		require.NoError(t, err)
		assert.Empty(t, msg)
		assert.InDelta(t, 92.013, score, 1e-9)
	})

	t.Run("no face is a vendor message", func(t *testing.T) {
		c := newFacePPServer(t, http.StatusOK, `{"request_id":"r2","faces1":[],"faces2":[{}]}`)
		_, msg, err := c.Compare(ctx, []byte("id"), []byte("selfie"))
		require.NoError(t, err)
		assert.Contains(t, msg, "No face detected")
	})

	t.Run("image rejection is a vendor message", func(t *testing.T) {
		c := newFacePPServer(t, http.StatusBadRequest, `{"error_message":"IMAGE_ERROR_UNSUPPORTED_FORMAT: image_base64_1"}`)
		_, msg, err := c.Compare(ctx, []byte("id"), []byte("selfie"))
		require.NoError(t, err)
		assert.Contains(t, msg, "could not be processed")
	})

	t.Run("bad credentials", func(t *testing.T) {
		c := newFacePPServer(t, http.StatusUnauthorized, `{"error_message":"AUTHENTICATION_ERROR"}`)
		_, _, err := c.Compare(ctx, []byte("id"), []byte("selfie"))
		assert.Equal(t, providers.ErrorAuthentication, providers.GetCategory(err))
	})

	t.Run("vendor throttling", func(t *testing.T) {
		c := newFacePPServer(t, http.StatusForbidden, `{"error_message":"CONCURRENCY_LIMIT_EXCEEDED"}`)
		_, _, err := c.Compare(ctx, []byte("id"), []byte("selfie"))
		assert.Equal(t, providers.ErrorRateLimited, providers.GetCategory(err))
	})

	t.Run("server error without json", func(t *testing.T) {
		c := newFacePPServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)
		_, _, err := c.Compare(ctx, []byte("id"), []byte("selfie"))
		assert.Equal(t, providers.ErrorProviderOutage, providers.GetCategory(err))
	})
}

func TestNewFacePPClient(t *testing.T) {
	_, err := NewFacePPClient("", "", "")
	assert.Error(t, err)

	c, err := NewFacePPClient("", "k", "s")
	require.NoError(t, err)
	assert.Equal(t, DefaultFacePPBaseURL, c.baseURL.String())
}
