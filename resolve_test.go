package fibersched

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressResolve_Literal(t *testing.T) {
	s := newTestScheduler(t)

	var addrs []string
	spawn(t, s, func(ctx context.Context) error {
		var err error
		addrs, err = s.AddressResolve(ctx, "127.0.0.1")
		return err
	})
	assert.Equal(t, 1, s.Pending())

	require.NoError(t, s.Close())
	assert.Equal(t, []string{"127.0.0.1"}, addrs)
}

func TestAddressResolve_Cancelled(t *testing.T) {
	s := newTestScheduler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var err error
	spawn(t, s, func(context.Context) error {
		_, err = s.AddressResolve(ctx, "localhost")
		return nil
	})

	require.NoError(t, s.Close())
	assert.ErrorIs(t, err, ErrCancelled)
}
