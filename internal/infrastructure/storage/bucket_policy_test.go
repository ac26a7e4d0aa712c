package storage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gustavo-Marin05/media-service/internal/config"
)

const accessDenied = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>AccessDenied</Code><Message>Access Denied</Message><BucketName>media</BucketName></Error>`

// policyRejectingServer answers like an object store where the bucket exists but bucket
// policies are not allowed.
func policyRejectingServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var policyCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		switch {
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet && query.Has("location"):
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`))
		case r.Method == http.MethodPut && query.Has("policy"):
			policyCalls.Add(1)
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(accessDenied))
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &policyCalls
}

func TestS3EnsureBucketToleratesRejectedPolicy(t *testing.T) {
	srv, policyCalls := policyRejectingServer(t)
	logs := &bytes.Buffer{}

	cfg := &config.Config{
		StorageBackend: config.StorageBackendS3,
		Bucket:         "media",
		S3Endpoint:     srv.URL,
		S3Region:       "us-east-1",
		S3AccessKeyID:  "test",
		S3SecretKey:    "test",
		S3UsePathStyle: true,
		URLPolicy:      config.URLPolicyPublic,
	}
	store, err := NewS3Storage(context.Background(), cfg, zerolog.New(logs))
	require.NoError(t, err)

	require.NoError(t, store.EnsureBucket(context.Background()))
	assert.GreaterOrEqual(t, policyCalls.Load(), int32(1))
	assert.Contains(t, logs.String(), "could not set public read policy")
}

func TestMinioEnsureBucketToleratesRejectedPolicy(t *testing.T) {
	srv, policyCalls := policyRejectingServer(t)
	logs := &bytes.Buffer{}

	cfg := &config.Config{
		StorageBackend: config.StorageBackendMinio,
		Bucket:         "media",
		MinioEndpoint:  strings.TrimPrefix(srv.URL, "http://"),
		MinioAccessKey: "test",
		MinioSecretKey: "test",
		URLPolicy:      config.URLPolicyPublic,
	}
	store, err := NewMinioStorage(cfg, zerolog.New(logs))
	require.NoError(t, err)

	require.NoError(t, store.EnsureBucket(context.Background()))
	assert.GreaterOrEqual(t, policyCalls.Load(), int32(1))
	assert.Contains(t, logs.String(), "could not set public read policy")
}

func TestEnsureBucketSkipsPolicyForPresignedURLs(t *testing.T) {
	srv, policyCalls := policyRejectingServer(t)

	cfg := &config.Config{
		StorageBackend: config.StorageBackendS3,
		Bucket:         "media",
		S3Endpoint:     srv.URL,
		S3Region:       "us-east-1",
		S3AccessKeyID:  "test",
		S3SecretKey:    "test",
		S3UsePathStyle: true,
		URLPolicy:      config.URLPolicyPresigned,
	}
	store, err := NewS3Storage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, store.EnsureBucket(context.Background()))
	assert.Zero(t, policyCalls.Load())
}
