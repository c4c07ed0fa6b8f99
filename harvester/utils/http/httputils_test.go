package httputils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"harvester/harvester/utils/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := NewFetcher("Mozilla/5.0 test", time.Second)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", string(body))
	assert.Equal(t, "Mozilla/5.0 test", gotUA)
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewFetcher("ua", time.Second).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTransport))
	assert.Contains(t, err.Error(), "bad status: 403")
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewFetcher("ua", 50*time.Millisecond).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindTransport))
}

func TestNewFetcherDefaultTimeout(t *testing.T) {
	f := NewFetcher("ua", 0)
	assert.Equal(t, DefaultTimeout, f.client.Timeout)
}
