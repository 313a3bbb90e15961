package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yqhp/hookserver/common/config"
	"yqhp/hookserver/internal/hook"
)

// fakeS3 answers HeadBucket for one bucket in path style.
func fakeS3(t *testing.T, bucket string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var heads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			heads.Add(1)
		}
		if r.Method == http.MethodHead && r.URL.Path == "/"+bucket {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	return srv, &heads
}

func storageConfig(endpoint, bucket string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Storage = config.StorageConfig{
		Enabled:        true,
		Bucket:         bucket,
		Region:         "us-east-1",
		Endpoint:       endpoint,
		AccessKey:      "test",
		SecretKey:      "test",
		ForcePathStyle: true,
		CheckBucket:    true,
	}
	return cfg
}

func TestHook_Lifecycle(t *testing.T) {
	srv, heads := fakeS3(t, "artifacts")
	o := hook.New(storageConfig(srv.URL, "artifacts"))
	ctx := context.Background()

	require.NoError(t, o.InitHooks(ctx, hook.Candidates{Name: hook.Factory(Factory)}))
	assert.Equal(t, int32(1), heads.Load())

	client, err := hook.Lookup[*s3.Client](o, ResourceKey)
	require.NoError(t, err)
	assert.NotNil(t, client)

	info, err := o.PublicInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"bucket":    "artifacts",
		"endpoint":  srv.URL,
		"region":    "us-east-1",
		"connected": true,
	}, info["storage"])

	require.NoError(t, o.ResetHooks(ctx))
	assert.Equal(t, int32(2), heads.Load())

	require.NoError(t, o.KillHooks(ctx))
	_, ok := o.Resource(ResourceKey)
	assert.False(t, ok)
}

func TestHook_MissingBucket(t *testing.T) {
	srv, _ := fakeS3(t, "artifacts")
	o := hook.New(storageConfig(srv.URL, "other"))

	err := o.InitHooks(context.Background(), hook.Candidates{Name: hook.Factory(Factory)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check bucket other")
	assert.Equal(t, hook.StateFailed, o.State())
}

func TestHook_NoCheck(t *testing.T) {
	cfg := storageConfig("http://127.0.0.1:1", "artifacts")
	cfg.Storage.CheckBucket = false

	h := New(cfg.Storage)
	require.NoError(t, h.Init(context.Background(), hook.New(cfg)))
	assert.NotNil(t, h.Client())
}

func TestFactory_RequiresBucket(t *testing.T) {
	cfg := config.DefaultConfig()
	_, err := Factory(cfg)
	require.NoError(t, err, "disabled storage needs no bucket")

	cfg.Storage.Enabled = true
	_, err = Factory(cfg)
	assert.Error(t, err)
}
