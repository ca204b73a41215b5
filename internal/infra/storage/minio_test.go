package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPut(t *testing.T) {
	var (
		gotPath, gotType string
		gotBody          []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusOK)
			return
		}
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	cli, err := newClient(Options{Endpoint: u.Host, Region: "us-east-1", AccessKey: "ak", SecretKey: "sk"})
	require.NoError(t, err)
	s := &Store{client: cli, bucketName: "reports", region: "us-east-1"}

	link, err := s.Put(context.Background(), "acme/analyses/a-1.json", []byte(`{"report":"ok"}`), "application/json")
	require.NoError(t, err)
	assert.Equal(t, "http://"+u.Host+"/reports/acme/analyses/a-1.json", link)
	assert.Equal(t, "/reports/acme/analyses/a-1.json", gotPath)
	assert.Equal(t, "application/json", gotType)
	// plain-http uploads may use aws-chunked framing around the payload
	assert.Contains(t, string(gotBody), `{"report":"ok"}`)
}

func TestObjectURL_TLS(t *testing.T) {
	cli, err := newClient(Options{Endpoint: "objects.example.com", UseSSL: true, Region: "eu-west-1"})
	require.NoError(t, err)
	s := &Store{client: cli, bucketName: "b"}
	assert.Equal(t, "https://objects.example.com/b/k.json", s.objectURL("k.json"))
}
