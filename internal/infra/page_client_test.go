package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageClient_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("<html><title>ok</title></html>"))
		case "/slow":
			time.Sleep(300 * time.Millisecond)
			w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewPageClient(100 * time.Millisecond)

	page, err := client.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, string(page.Body), "<title>ok</title>")
	assert.Equal(t, DefaultUserAgent, gotUA)

	_, err = client.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrUpstreamStatus)

	_, err = client.Fetch(context.Background(), srv.URL+"/slow")
	assert.Error(t, err)
}
