package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ObjectStore persists an uploaded blob under a folder tag and returns a
// durable URL. Production deployments back this with a cloud bucket; the
// interface is the whole contract.
type ObjectStore interface {
	Upload(ctx context.Context, folder string, data []byte, ext string) (string, error)
}

// DiskStore keeps uploads on the local filesystem and serves them under
// BaseURL. Good enough for development and tests.
type DiskStore struct {
	BaseDir string
	BaseURL string
}

func (s *DiskStore) Upload(_ context.Context, folder string, data []byte, ext string) (string, error) {
	dir := filepath.Join(s.BaseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return "", err
	}
	url := strings.TrimRight(s.BaseURL, "/") + "/" + folder + "/" + name
	logrus.WithFields(logrus.Fields{"folder": folder, "url": url, "bytes": len(data)}).
		Info("Object stored")
	return url, nil
}
