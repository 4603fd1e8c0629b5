package coordinator

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatorRefresh(t *testing.T) {
	calls := 0
	c := New("test", 0, nil, func(context.Context) (int, error) {
		calls++
		return calls, nil
	})

	assert.Zero(t, c.LastSuccess())

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 1, c.Data())
	assert.False(t, c.LastSuccess().IsZero())
	assert.NoError(t, c.LastError())

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 2, c.Data())
}

func TestCoordinatorRefreshErrorKeepsData(t *testing.T) {
	fail := false
	c := New("test", 0, nil, func(context.Context) (string, error) {
		if fail {
			return "", fmt.Errorf("boom")
		}
		return "ok", nil
	})

	require.NoError(t, c.Refresh(context.Background()))
	require.Equal(t, "ok", c.Data())
	lastOK := c.LastSuccess()

	fail = true
	require.Error(t, c.Refresh(context.Background()))
	assert.Equal(t, "ok", c.Data(), "failed refresh keeps last good data")
	assert.Equal(t, lastOK, c.LastSuccess())
	assert.EqualError(t, c.LastError(), "boom")
}

func TestCoordinatorListeners(t *testing.T) {
	c := New("test", 0, nil, func(context.Context) (struct{}, error) {
		return struct{}{}, nil
	})

	notified := 0
	remove := c.AddListener(func() { notified++ })

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 1, notified)

	remove()
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, 1, notified, "removed listener stays silent")
}

func TestCoordinatorListenerSkippedOnError(t *testing.T) {
	c := New("test", 0, nil, func(context.Context) (struct{}, error) {
		return struct{}{}, fmt.Errorf("boom")
	})

	notified := 0
	c.AddListener(func() { notified++ })

	require.Error(t, c.Refresh(context.Background()))
	assert.Zero(t, notified)
}

func TestRegistrySubscribe(t *testing.T) {
	r := NewRegistry(nil)

	// nothing subscribed yet, every API counts as active
	assert.True(t, r.Active("SYNO.Storage.CGI.Storage"))
	assert.True(t, r.Active("SYNO.Backup.Task"))

	unsubscribe := r.Subscribe("SYNO.Storage.CGI.Storage", "ABC123_storage:disk_temp_disk1")
	assert.True(t, r.Active("SYNO.Storage.CGI.Storage"))
	assert.False(t, r.Active("SYNO.Backup.Task"))
	assert.Equal(t, 1, r.Count("SYNO.Storage.CGI.Storage"))

	other := r.Subscribe("SYNO.Storage.CGI.Storage", "ABC123_storage:volume_status_volume_1")
	assert.Equal(t, 2, r.Count("SYNO.Storage.CGI.Storage"))

	unsubscribe()
	assert.True(t, r.Active("SYNO.Storage.CGI.Storage"))

	other()
	assert.Equal(t, 0, r.Count("SYNO.Storage.CGI.Storage"))

	// back to the empty registry, everything active again
	assert.True(t, r.Active("SYNO.Backup.Task"))
}
