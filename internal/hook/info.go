package hook

import (
	"context"
	"sort"

	"github.com/duke-git/lancet/v2/maputil"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PublicInfo 汇总所有钩子的公开信息。
//
// Info is gathered concurrently from every registered InfoProvider, then the
// results are shallow-merged in sorted hook-name order: on overlapping keys the
// hook whose name sorts last wins. The first Info error is returned unchanged.
func (o *Orchestrator) PublicInfo(ctx context.Context) (map[string]any, error) {
	if s := o.State(); s != StateReady {
		return nil, NewStateError(PhaseInfo, s, ErrNotInitialized)
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if s := o.State(); s != StateReady {
		return nil, NewStateError(PhaseInfo, s, ErrNotInitialized)
	}

	log := o.log.With(zap.String("run_id", uuid.NewString()), zap.String("transition", string(PhaseInfo)))

	reg := o.registry.Load()
	var names []string
	for _, name := range reg.names {
		if reg.entry(name).info != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]map[string]any, len(names))
	var eg errgroup.Group
	for i, name := range names {
		i, name := i, name
		e := reg.entry(name)
		eg.Go(func() error {
			var got map[string]any
			err := o.invoke(ctx, log, name, PhaseInfo, func(ctx context.Context, o *Orchestrator) error {
				var err error
				got, err = e.info.Info(ctx, o)
				return err
			})
			if err != nil {
				return err
			}
			parts[i] = got
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := maputil.Merge(parts...)
	if merged == nil {
		merged = map[string]any{}
	}
	return merged, nil
}
