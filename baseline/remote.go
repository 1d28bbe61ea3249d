package baseline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/hairizuan-noorazman/visual-regression/logger"
	"github.com/hairizuan-noorazman/visual-regression/storage"
)

const remotePrefix = "baselines"

// Push uploads the current baseline set, metadata included, to blob storage
// under a shared prefix so other machines can pull it.
func (s *Store) Push(ctx context.Context, blob storage.BlobStorage) (int, error) {
	files, err := baselineFiles(s.baselineDir)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, ErrNoBaselines
	}
	metaPath := filepath.Join(s.baselineDir, metadataFileName)
	if _, err := os.Stat(metaPath); err == nil {
		files = append(files, metaPath)
	}
	uploaded := 0
	for _, f := range files {
		if err := uploadFile(ctx, blob, f); err != nil {
			return uploaded, err
		}
		uploaded++
	}
	s.logger.Info(ctx, "baselines pushed to remote", logger.Fields{"files": uploaded})
	return uploaded, nil
}

// Pull replaces the current baseline set with the remote one. The existing
// set is backed up first so a bad pull can be undone with Restore.
func (s *Store) Pull(ctx context.Context, blob storage.BlobStorage) (int, error) {
	keys, err := blob.List(ctx, remotePrefix)
	if err != nil {
		return 0, fmt.Errorf("unable to list remote baselines: %w", err)
	}
	if len(keys) == 0 {
		return 0, fmt.Errorf("%w in remote storage", ErrNoBaselines)
	}

	if current, err := baselineFiles(s.baselineDir); err == nil && len(current) > 0 {
		if _, err := s.Backup(""); err != nil {
			return 0, fmt.Errorf("unable to back up before pull: %w", err)
		}
	}

	downloaded := 0
	for _, key := range keys {
		if err := s.downloadFile(ctx, blob, key); err != nil {
			return downloaded, err
		}
		downloaded++
	}
	s.logger.Info(ctx, "baselines pulled from remote", logger.Fields{"files": downloaded})
	return downloaded, nil
}

func uploadFile(ctx context.Context, blob storage.BlobStorage, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", localPath, err)
	}
	defer f.Close()
	key := path.Join(remotePrefix, filepath.Base(localPath))
	if err := blob.Upload(ctx, key, f); err != nil {
		return fmt.Errorf("unable to upload %s: %w", key, err)
	}
	return nil
}

func (s *Store) downloadFile(ctx context.Context, blob storage.BlobStorage, key string) error {
	rc, err := blob.Download(ctx, key)
	if err != nil {
		return fmt.Errorf("unable to download %s: %w", key, err)
	}
	defer rc.Close()
	dst := filepath.Join(s.baselineDir, path.Base(key))
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", dst, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("unable to write %s: %w", dst, err)
	}
	return nil
}
