package fibersched

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Schedulers on different goroutines share no state, and tags of one are
// invisible to another.
func TestSchedulers_Independent(t *testing.T) {
	const (
		schedulers = 16
		tasks      = 8
	)

	var woken atomic.Int64
	var g errgroup.Group
	for i := 0; i < schedulers; i++ {
		i := i
		g.Go(func() error {
			s, err := New()
			if err != nil {
				return err
			}
			if err := SetScheduler(s); err != nil {
				return err
			}
			for j := 0; j < tasks; j++ {
				j := j
				if _, err := s.Spawn(context.Background(), func(ctx context.Context) error {
					ok, err := s.Block(ctx, j, time.Second)
					if err != nil {
						return err
					}
					if !ok {
						return fmt.Errorf("scheduler %d: tag %d timed out", i, j)
					}
					woken.Add(1)
					return nil
				}); err != nil {
					return err
				}
			}
			if _, err := s.Spawn(context.Background(), func(ctx context.Context) error {
				if CurrentScheduler() != s {
					return fmt.Errorf("scheduler %d: wrong current scheduler", i)
				}
				if _, err := s.Sleep(ctx, time.Millisecond); err != nil {
					return err
				}
				for j := 0; j < tasks; j++ {
					s.Unblock(j, nil)
				}
				return nil
			}); err != nil {
				return err
			}
			return s.Close()
		})
	}

	require.NoError(t, g.Wait())
	assert.EqualValues(t, schedulers*tasks, woken.Load())
}
