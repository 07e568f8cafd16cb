package cron

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	registry := NewRegistry()
	purge := &testJob{name: "cart_snapshot_purge"}
	other := &testJob{name: "other"}
	require.NoError(t, registry.Register(purge))
	require.NoError(t, registry.Register(other))
	require.NoError(t, registry.Register(nil))

	jobs := registry.Jobs()
	require.Equal(t, []Job{purge, other}, jobs)

	jobs[0] = nil
	require.NotNil(t, registry.Jobs()[0])
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry(&testJob{name: "cart_snapshot_purge"})
	require.Error(t, registry.Register(&testJob{name: "cart_snapshot_purge"}))
	require.Len(t, registry.Jobs(), 1)

	require.Panics(t, func() {
		NewRegistry(&testJob{name: "a"}, &testJob{name: "a"})
	})
}
