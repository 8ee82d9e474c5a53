package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_ExclusivePerKey(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release, err := l.TryLock(ctx, "filings:ingestion:500294", time.Minute)
	require.NoError(t, err)

	_, err = l.TryLock(ctx, "filings:ingestion:500294", time.Minute)
	assert.ErrorIs(t, err, ErrLockHeld)

	other, err := l.TryLock(ctx, "filings:ingestion:532926", time.Minute)
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := l.TryLock(ctx, "filings:ingestion:500294", time.Minute)
	require.NoError(t, err)
	again()
}
