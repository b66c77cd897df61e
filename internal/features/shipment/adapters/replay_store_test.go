package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeReplay(t *testing.T, dir, trackingNumber, body string) {
	t.Helper()
	path := filepath.Join(dir, trackingNumber+".json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestReplayStore_Fetch(t *testing.T) {
	dir := t.TempDir()
	writeReplay(t, dir, "111111111111", `{"code":"DL","statusByLocale":"Delivered"}`)

	store := NewReplayStore(dir)

	payload, err := store.Fetch(context.Background(), "111111111111", "FDXE")
	require.NoError(t, err)
	assert.Equal(t, "DL", payload["code"])
	assert.Equal(t, "Delivered", payload["statusByLocale"])
}

func TestReplayStore_MissingRecordingIsNotAnError(t *testing.T) {
	store := NewReplayStore(t.TempDir())

	payload, err := store.Fetch(context.Background(), "999999999999", "")
	require.NoError(t, err)
	assert.Empty(t, payload)
	assert.NotNil(t, payload)
}

func TestReplayStore_UnparseableRecordingDegrades(t *testing.T) {
	dir := t.TempDir()
	writeReplay(t, dir, "222222222222", `{not json`)

	store := NewReplayStore(dir)

	payload, err := store.Fetch(context.Background(), "222222222222", "")
	require.NoError(t, err)
	assert.Empty(t, payload)
}

func TestReplayStore_CancelledContext(t *testing.T) {
	store := NewReplayStore(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Fetch(ctx, "111111111111", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReplayStore_Source(t *testing.T) {
	assert.Equal(t, "replay", NewReplayStore(t.TempDir()).Source())
}
