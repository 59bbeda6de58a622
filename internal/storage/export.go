// Package storage writes catalog exports to a local directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bobmcallan/lexicon/internal/common"
)

// WriteFile writes data to path through a temp file in the same directory
// and a rename, so a reader never sees a partial file.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// SafeName replaces path separators and ".." so a key cannot escape its
// directory.
func SafeName(key string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	return r.Replace(key)
}

// ExportDir is a directory of exported files sharing one extension.
type ExportDir struct {
	dir    string
	ext    string
	logger *common.Logger
}

// NewExportDir opens (creating if needed) dir for files ending in ext.
func NewExportDir(logger *common.Logger, dir, ext string) (*ExportDir, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("export directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return &ExportDir{dir: dir, ext: ext, logger: logger}, nil
}

// Path returns the directory.
func (d *ExportDir) Path() string {
	return d.dir
}

// Write stores data under key and returns the file path.
func (d *ExportDir) Write(key string, data []byte) (string, error) {
	path := filepath.Join(d.dir, SafeName(key)+d.ext)
	if err := WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}
	d.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("Export written")
	return path, nil
}

// Keys lists the keys of files with the directory's extension, sorted.
// Temp files are ignored.
func (d *ExportDir) Keys() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", d.dir, err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".tmp-") || !strings.HasSuffix(name, d.ext) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, d.ext))
	}
	sort.Strings(keys)
	return keys, nil
}

// Prune removes files whose key is not in keep and returns how many went.
// Keys in keep are compared after SafeName.
func (d *ExportDir) Prune(keep []string) (int, error) {
	wanted := make(map[string]bool, len(keep))
	for _, k := range keep {
		wanted[SafeName(k)] = true
	}

	keys, err := d.Keys()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, k := range keys {
		if wanted[k] {
			continue
		}
		if err := os.Remove(filepath.Join(d.dir, k+d.ext)); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove %s: %w", k, err)
		}
		removed++
	}
	if removed > 0 {
		d.logger.Info().Str("path", d.dir).Int("removed", removed).Msg("Pruned stale exports")
	}
	return removed, nil
}
