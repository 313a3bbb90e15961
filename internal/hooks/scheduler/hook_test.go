package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"yqhp/hookserver/common/config"
	"yqhp/hookserver/internal/hook"
)

func TestHook_Heartbeat(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Heartbeat = 10 * time.Millisecond

	core, logs := observer.New(zap.InfoLevel)
	o := hook.New(cfg, hook.WithLogger(zap.New(core)))
	ctx := context.Background()

	require.NoError(t, o.InitHooks(ctx, hook.Candidates{Name: hook.Factory(Factory)}))

	assert.Eventually(t, func() bool {
		for _, e := range logs.FilterMessage("scheduler heartbeat").All() {
			if e.ContextMap()["state"] == "ready" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	info, err := o.PublicInfo(ctx)
	require.NoError(t, err)
	section := info["scheduler"].(map[string]any)
	assert.Equal(t, 1, section["jobs"])
	assert.Equal(t, []string{"heartbeat"}, section["names"])

	require.NoError(t, o.KillHooks(ctx))
	_, ok := o.Resource(ResourceKey)
	assert.False(t, ok)
}

func TestHook_ResourceAcceptsJobs(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Heartbeat = 0

	o := hook.New(cfg)
	ctx := context.Background()
	require.NoError(t, o.InitHooks(ctx, hook.Candidates{Name: hook.Factory(Factory)}))
	defer func() { _ = o.KillHooks(ctx) }()

	s, err := hook.Lookup[gocron.Scheduler](o, ResourceKey)
	require.NoError(t, err)
	assert.Empty(t, s.Jobs())

	ran := make(chan struct{}, 1)
	_, err = s.NewJob(gocron.DurationJob(time.Hour), gocron.NewTask(func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}), gocron.WithStartAt(gocron.WithStartImmediately()))
	require.NoError(t, err)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
}

func TestHook_ResetReplacesScheduler(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scheduler.Enabled = true

	h := New(cfg.Scheduler)
	o := hook.New(cfg)
	ctx := context.Background()
	require.NoError(t, o.InitHooks(ctx, hook.Candidates{Name: h}))

	before := h.Scheduler()
	require.NoError(t, o.ResetHooks(ctx))
	after := h.Scheduler()
	assert.NotNil(t, after)
	assert.NotSame(t, before, after)

	require.NoError(t, o.KillHooks(ctx))
	assert.Nil(t, h.Scheduler())
}

func TestHook_InfoNotRunning(t *testing.T) {
	_, err := New(config.SchedulerConfig{}).Info(context.Background(), hook.New(nil))
	assert.Error(t, err)
}
