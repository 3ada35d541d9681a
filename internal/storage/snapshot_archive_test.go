package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printhub/console/internal/config"
	"printhub/console/internal/fleet"
	"printhub/console/internal/models"
)

func TestObjectKey(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 5, 0, time.FixedZone("CET", 3600))
	assert.Equal(t, "snapshots/alice/20240301T083005Z.json", ObjectKey("alice", at))
	assert.Equal(t, "snapshots/a_b/20240301T083005Z.json", ObjectKey("a/b", at))
	assert.Equal(t, "snapshots/anonymous/20240301T083005Z.json", ObjectKey("", at))
}

func TestNewSnapshotCarriesStatus(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	entries := []fleet.Entry{
		{Printer: models.Printer{ID: 1, IP: "10.0.0.5", TonerLevels: map[string]int{"black": 15}}},
		{Printer: models.Printer{ID: 2, IP: "10.0.0.6"}, Status: fleet.StatusResult{Err: errors.New("timeout")}},
	}

	snap := NewSnapshot(models.Owner{Username: "alice"}, entries, at)
	require.Len(t, snap.Printers, 2)
	assert.True(t, snap.Printers[0].StatusOK)
	assert.False(t, snap.Printers[1].StatusOK)
	assert.Equal(t, "Status unavailable", snap.Printers[1].StatusReason)
	assert.Equal(t, 15, snap.Printers[0].TonerLevels["black"])
}

func TestNewSnapshotArchiveParsesEndpoint(t *testing.T) {
	archive, err := NewSnapshotArchive(config.ArchiveConfig{
		Endpoint:  "https://minio.internal:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "snapshots",
	})
	require.NoError(t, err)
	assert.Equal(t, "minio.internal:9000", archive.client.EndpointURL().Host)
	assert.Equal(t, "https", archive.client.EndpointURL().Scheme)
}
