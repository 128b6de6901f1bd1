// Package backup archives the gateway state directory and prunes old
// archives by age. Offsite upload is optional and lives in s3.go.
package backup

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const archivePrefix = "openclaw-state-"

// Create writes a tar.gz of stateDir into backupDir and returns the archive
// path. Archives carry a timestamped name so pruning can go by age alone.
func Create(stateDir, backupDir string) (string, error) {
	if _, err := os.Stat(stateDir); err != nil {
		return "", fmt.Errorf("state dir: %w", err)
	}
	if err := os.MkdirAll(backupDir, 0o700); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := archivePrefix + time.Now().Format("20060102-150405") + ".tar.gz"
	path := filepath.Join(backupDir, name)

	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	err = filepath.Walk(stateDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		// Never archive previous backups into a backup.
		if info.IsDir() && p == backupDir {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(stateDir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", stateDir, err)
	}

	if err := tw.Close(); err != nil {
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// Prune removes archives older than maxAge and returns how many went away.
// Only files matching the archive naming scheme are touched.
func Prune(backupDir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(backupDir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), archivePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(backupDir, e.Name())); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
