// internal/services/storage_service_test.go
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kivoa/catalog-backend/internal/config"
)

func newTestStorage(t *testing.T) *StorageService {
	t.Helper()

	svc, err := NewStorageService(&config.Config{
		Server: config.ServerConfig{Port: "8080"},
		AWS: config.AWSConfig{
			Region:    "ap-south-1",
			S3Bucket:  "kivoa-catalog",
			CDNDomain: "cdn.kivoa.test",
		},
	})
	require.NoError(t, err)
	return svc
}

func TestObjectURLPrefersCDN(t *testing.T) {
	svc := newTestStorage(t)
	assert.Equal(t, "https://cdn.kivoa.test/product-images/NECK-0001-0124-01.jpg",
		svc.ObjectURL("product-images/NECK-0001-0124-01.jpg"))
}

func TestKeyFromURL(t *testing.T) {
	svc := newTestStorage(t)

	assert.Equal(t, "raw-images/a.jpg", svc.keyFromURL("https://cdn.kivoa.test/raw-images/a.jpg"))
	assert.Equal(t, "raw-images/a.jpg", svc.keyFromURL("raw-images/a.jpg"))
}

func TestFetchOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.jpg":
			w.Write([]byte("image bytes"))
		case "/gone.jpg":
			w.WriteHeader(http.StatusGone)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)

	svc := newTestStorage(t)

	data, err := svc.Fetch(context.Background(), srv.URL+"/ok.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), data)

	_, err = svc.Fetch(context.Background(), srv.URL+"/gone.jpg")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	_, err = svc.Fetch(context.Background(), srv.URL+"/flaky.jpg")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrObjectNotFound)
}
