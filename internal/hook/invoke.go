package hook

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// call is one hook method bound to its receiver.
type call func(ctx context.Context, o *Orchestrator) error

// runGroups visits the registry group by group. pick selects the method to call
// for an entry, or nil to skip it; done runs after a successful call. All calls
// of a group run concurrently and the group is awaited in full before the next
// one starts. The first error of a group stops the walk and is returned as is.
func (o *Orchestrator) runGroups(ctx context.Context, log *zap.Logger, order Order, phase Phase, pick func(*entry) call, done func(*entry)) error {
	reg := o.registry.Load()
	for _, g := range reg.Groups(order) {
		var eg errgroup.Group
		started := 0
		for _, name := range g.Names {
			e := reg.entry(name)
			fn := pick(e)
			if fn == nil {
				continue
			}
			started++
			eg.Go(func() error {
				if err := o.invoke(ctx, log, e.name, phase, fn); err != nil {
					return err
				}
				done(e)
				return nil
			})
		}
		if started == 0 {
			continue
		}
		log.Debug("running hook group", zap.String("group", g.Key), zap.Int("hooks", started))
		if err := eg.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// invoke calls fn with panic recovery and, when configured, a deadline.
// When the deadline passes the hook goroutine is abandoned.
func (o *Orchestrator) invoke(ctx context.Context, log *zap.Logger, name string, phase Phase, fn call) error {
	start := time.Now()
	var err error
	if o.timeout > 0 {
		err = o.invokeWithTimeout(ctx, name, phase, fn)
	} else {
		err = o.safeCall(ctx, name, phase, fn)
	}

	took := time.Since(start)
	o.metrics.observeCall(name, phase, took, err)
	if err != nil {
		log.Error("hook call failed", zap.String("hook", name), zap.String("phase", string(phase)),
			zap.Duration("took", took), zap.Error(err))
		return err
	}
	log.Debug("hook call done", zap.String("hook", name), zap.String("phase", string(phase)),
		zap.Duration("took", took))
	return nil
}

func (o *Orchestrator) invokeWithTimeout(ctx context.Context, name string, phase Phase, fn call) error {
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- o.safeCall(cctx, name, phase, fn)
	}()

	select {
	case err := <-result:
		return err
	case <-cctx.Done():
		select {
		case err := <-result:
			return err
		default:
		}
		if errors.Is(cctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return NewTimeoutError(name, phase, o.timeout, cctx.Err())
		}
		return ctx.Err()
	}
}

func (o *Orchestrator) safeCall(ctx context.Context, name string, phase Phase, fn call) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewPanicError(name, phase, r)
		}
	}()
	return fn(ctx, o)
}
