package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func TestStoreCheckerHealthy(t *testing.T) {
	c := &StoreChecker{store: fakePinger{}, timeout: time.Second}
	res := c.Check(context.Background())
	require.True(t, res.Healthy)
	require.Equal(t, "ok", res.Message)
	require.Equal(t, CheckTypeStore, c.Type())
}

func TestStoreCheckerUnhealthy(t *testing.T) {
	c := &StoreChecker{store: fakePinger{err: errors.New("disk i/o error")}, timeout: time.Second}
	res := c.Check(context.Background())
	require.False(t, res.Healthy)
	require.Contains(t, res.Message, "disk i/o error")
}

func TestNewStoreCheckerDefaultsTimeout(t *testing.T) {
	c := NewStoreChecker(nil, 0)
	require.Equal(t, 2*time.Second, c.timeout)
}
