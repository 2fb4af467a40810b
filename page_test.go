package memvfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageStoreEnsurePageGrowsOneAtATime(t *testing.T) {
	s := newPageStore(false)
	s.setPageSize(512)

	p1, err := s.ensurePage(1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.count())
	assert.Len(t, p1.body, 512)

	p2, err := s.ensurePage(2)
	require.NoError(t, err)
	assert.Equal(t, 2, s.count())
	assert.NotSame(t, p1, p2)

	// Re-requesting an existing page returns the same instance.
	again, err := s.ensurePage(1)
	require.NoError(t, err)
	assert.Same(t, p1, again)
}

func TestPageStoreEnsurePageRejectsSkips(t *testing.T) {
	s := newPageStore(false)
	s.setPageSize(512)

	_, err := s.ensurePage(2)
	require.Error(t, err)
	code, ok := CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, CodeIOErr, code)
}

func TestPageStoreEnsurePageRejectsZero(t *testing.T) {
	s := newPageStore(false)
	s.setPageSize(512)
	_, err := s.ensurePage(0)
	assert.Error(t, err)
}

func TestPageStoreLookupPageNeverAllocates(t *testing.T) {
	s := newPageStore(false)
	s.setPageSize(512)
	assert.Nil(t, s.lookupPage(1))
	assert.Equal(t, 0, s.count())
}

func TestPageStoreTruncate(t *testing.T) {
	s := newPageStore(false)
	s.setPageSize(512)
	_, _ = s.ensurePage(1)
	_, _ = s.ensurePage(2)
	_, _ = s.ensurePage(3)

	require.NoError(t, s.truncate(1))
	assert.Equal(t, 1, s.count())

	assert.Error(t, s.truncate(5))
}

func TestWalPageCarriesFrameHeader(t *testing.T) {
	s := newPageStore(true)
	s.setPageSize(4096)
	p, err := s.ensurePage(1)
	require.NoError(t, err)
	assert.Len(t, p.frame, walFrameHeaderSize)
	assert.Len(t, p.body, 4096)
}
