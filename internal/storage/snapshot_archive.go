// Package storage archives merged fleet snapshots to an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"printhub/console/internal/config"
	"printhub/console/internal/fleet"
	"printhub/console/internal/models"
)

const snapshotTimeLayout = "20060102T150405Z"

type SnapshotPrinter struct {
	models.Printer
	StatusOK     bool   `json:"status_ok"`
	StatusReason string `json:"status_reason,omitempty"`
}

type Snapshot struct {
	Username string            `json:"username"`
	TakenAt  time.Time         `json:"taken_at"`
	Printers []SnapshotPrinter `json:"printers"`
}

func NewSnapshot(owner models.Owner, entries []fleet.Entry, at time.Time) Snapshot {
	snap := Snapshot{
		Username: owner.Username,
		TakenAt:  at.UTC(),
		Printers: make([]SnapshotPrinter, 0, len(entries)),
	}
	for _, e := range entries {
		snap.Printers = append(snap.Printers, SnapshotPrinter{
			Printer:      e.Printer,
			StatusOK:     e.Status.OK(),
			StatusReason: e.Status.Reason(),
		})
	}
	return snap
}

// ObjectKey is snapshots/<username>/<UTC timestamp>.json.
func ObjectKey(username string, at time.Time) string {
	user := strings.Trim(strings.ReplaceAll(username, "/", "_"), ".")
	if user == "" {
		user = "anonymous"
	}
	return path.Join("snapshots", user, at.UTC().Format(snapshotTimeLayout)+".json")
}

type SnapshotArchive struct {
	client *minio.Client
	cfg    config.ArchiveConfig
}

func NewSnapshotArchive(cfg config.ArchiveConfig) (*SnapshotArchive, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &SnapshotArchive{client: client, cfg: cfg}, nil
}

func (a *SnapshotArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", a.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.cfg.Bucket, minio.MakeBucketOptions{Region: a.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.cfg.Bucket, err)
	}
	return nil
}

func (a *SnapshotArchive) Archive(ctx context.Context, owner models.Owner, entries []fleet.Entry, at time.Time) error {
	body, err := json.Marshal(NewSnapshot(owner, entries, at))
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	key := ObjectKey(owner.Username, at)
	_, err = a.client.PutObject(ctx, a.cfg.Bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
