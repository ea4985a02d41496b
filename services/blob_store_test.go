package services

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBlobStoreRoundTrip(t *testing.T) {
	store := &LocalBlobStore{Root: t.TempDir()}

	locator := BuildStorageLocator(42, 1, "pan_card", time.Now(), ".pdf")
	require.NoError(t, store.Put(locator, strings.NewReader("%PDF-1.7 test")))

	rc, err := store.Open(locator)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "%PDF-1.7 test", string(data))

	require.NoError(t, store.Delete(locator))
	_, err = store.Open(locator)
	assert.Error(t, err)
}

func TestLocalBlobStoreRejectsTraversal(t *testing.T) {
	store := &LocalBlobStore{Root: t.TempDir()}

	err := store.Put("../outside.txt", strings.NewReader("nope"))
	assert.Error(t, err)

	_, err = store.Open("/etc/passwd")
	assert.Error(t, err)
}

func TestBuildStorageLocatorShape(t *testing.T) {
	ts := time.Unix(1700000000, 123)
	locator := BuildStorageLocator(42, 7, "national_id", ts, ".png")
	assert.Equal(t, "42/7/national_id/1700000000000000123.png", locator)
}
