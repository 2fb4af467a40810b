package memvfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedMemoryMapRegionExtend(t *testing.T) {
	m := newSharedMemory()

	region, mapped, err := m.mapRegion(0, 32768, true)
	require.NoError(t, err)
	assert.True(t, mapped)
	assert.Len(t, region, 32768)

	// Same index returns the same region without extend.
	again, mapped, err := m.mapRegion(0, 32768, false)
	require.NoError(t, err)
	assert.True(t, mapped)
	assert.Same(t, &region[0], &again[0])
}

func TestSharedMemoryMapRegionMissingWithoutExtend(t *testing.T) {
	m := newSharedMemory()
	region, mapped, err := m.mapRegion(0, 32768, false)
	require.NoError(t, err)
	assert.False(t, mapped)
	assert.Nil(t, region)
}

func TestSharedMemoryMapRegionRejectsSkippedIndex(t *testing.T) {
	m := newSharedMemory()
	_, _, err := m.mapRegion(1, 32768, true)
	assert.Error(t, err)
}

func TestSharedMemoryResetClearsRegionsAndLocks(t *testing.T) {
	m := newSharedMemory()
	_, _, err := m.mapRegion(0, 32768, true)
	require.NoError(t, err)
	require.NoError(t, m.locks.Acquire(0, 1, LockShared))

	m.reset()

	assert.Empty(t, m.regions)
	assert.Equal(t, 0, m.locks.shared[0])
}
