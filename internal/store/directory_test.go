package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_OpenCreatesNamedDatabase(t *testing.T) {
	d := NewDirectory(t.TempDir())

	s, err := d.Open("app-123")
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, d.Path("app-123"), s.Path())
	assert.Contains(t, s.Path(), "app-123-CommandTracker.db")
	_, err = os.Stat(s.Path())
	assert.NoError(t, err)
	assert.Equal(t, 1, d.OpenCount("app-123"))
}

func TestDirectory_OpenRejectsBadIDs(t *testing.T) {
	d := NewDirectory(t.TempDir())

	for _, id := range []string{"", "  ", "a/b", `a\b`, ".."} {
		_, err := d.Open(id)
		assert.Error(t, err, "id %q", id)
	}
}

func TestDirectory_HandlesShareData(t *testing.T) {
	d := NewDirectory(t.TempDir())
	ctx := context.Background()

	writer, err := d.Open("app")
	require.NoError(t, err)
	defer writer.Close()
	reader, err := d.Open("app")
	require.NoError(t, err)
	defer reader.Close()

	_, err = writer.Insert(ctx, createTestRecord("foo", 20240101, 1, 0))
	require.NoError(t, err)

	records, err := reader.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 2, d.OpenCount("app"))
}

func TestDirectory_CloseReleasesHandle(t *testing.T) {
	d := NewDirectory(t.TempDir())

	s, err := d.Open("app")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Equal(t, 0, d.OpenCount("app"))

	require.NoError(t, s.Reopen())
	assert.Equal(t, 1, d.OpenCount("app"))
	require.NoError(t, s.Close())
}

func TestDirectory_DestroyForceClosesOtherHandles(t *testing.T) {
	d := NewDirectory(t.TempDir())
	ctx := context.Background()

	owner, err := d.Open("app")
	require.NoError(t, err)
	view, err := d.Open("app")
	require.NoError(t, err)

	var notified bool
	settings, err := d.Open("app", WithOnBlocked(func(s *Store) {
		notified = true
		_ = s.Close()
	}))
	require.NoError(t, err)

	require.NoError(t, owner.Destroy(ctx))

	assert.True(t, notified, "blocking-close callback not invoked")
	assert.Equal(t, StateDestroyed, owner.State())
	assert.Equal(t, StateDestroyed, view.State())
	assert.Equal(t, StateDestroyed, settings.State())
	assert.Equal(t, 0, d.OpenCount("app"))

	_, err = os.Stat(d.Path("app"))
	assert.True(t, os.IsNotExist(err), "database file should be removed")

	_, err = view.GetAll(ctx)
	assert.True(t, IsUnavailable(err))
}

func TestDirectory_DestroyBlockedByStubbornHandle(t *testing.T) {
	d := NewDirectory(t.TempDir())
	ctx := context.Background()

	stubborn, err := d.Open("app", WithOnBlocked(func(*Store) {}))
	require.NoError(t, err)
	defer stubborn.Close()

	err = d.Destroy(ctx, "app")
	require.Error(t, err)
	assert.True(t, IsBlockingOpenConflict(err))
	assert.Equal(t, StateOpen, stubborn.State())

	_, err = os.Stat(d.Path("app"))
	assert.NoError(t, err, "database must survive a refused destroy")

	// Once the owner closes, the destroy goes through.
	require.NoError(t, stubborn.Close())
	require.NoError(t, d.Destroy(ctx, "app"))
	_, err = os.Stat(d.Path("app"))
	assert.True(t, os.IsNotExist(err))
}

func TestDirectory_DestroyWithoutHandles(t *testing.T) {
	d := NewDirectory(t.TempDir())

	s, err := d.Open("app")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	require.NoError(t, d.Destroy(context.Background(), "app"))
	_, err = os.Stat(d.Path("app"))
	assert.True(t, os.IsNotExist(err))
}

func TestError_Format(t *testing.T) {
	err := &Error{Code: ErrCodeUnavailable, Op: "get all", Message: "store is closed"}
	assert.Equal(t, "get all: STORE_UNAVAILABLE: store is closed", err.Error())
	assert.False(t, IsBlockingOpenConflict(err))
	assert.False(t, IsUnavailable(nil))
}
