// Package baseline manages the reference screenshots that visual comparisons
// run against: the current set, timestamped backups under baseline_versions/,
// and a remote copy shared through blob storage.
package baseline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hairizuan-noorazman/visual-regression/logger"
)

var (
	// ErrVersionNotFound is returned when a named baseline version does
	// not exist.
	ErrVersionNotFound = errors.New("baseline version not found")

	// ErrNoBaselines is returned when an operation needs baseline files
	// and none exist.
	ErrNoBaselines = errors.New("no baseline files found")
)

const metadataFileName = "baseline_metadata.json"

// Metadata describes how the current baseline set was produced.
type Metadata struct {
	CreatedAt         time.Time                 `json:"created_at"`
	ServerURL         string                    `json:"server_url"`
	Modules           map[string]ModuleOutcome  `json:"modules"`
	Viewports         map[string]ViewportSize   `json:"viewports"`
	TotalBaselines    int                       `json:"total_baselines"`
	SuccessfulModules int                       `json:"successful_modules"`
	TotalModules      int                       `json:"total_modules"`
}

// ModuleOutcome records whether baseline generation succeeded for one page
// module.
type ModuleOutcome struct {
	Name             string    `json:"name"`
	Success          bool      `json:"success"`
	BaselinesCreated int       `json:"baselines_created,omitempty"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ViewportSize is a browser window size baselines are captured at.
type ViewportSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Viewports returns the window sizes every page is captured at.
func Viewports() map[string]ViewportSize {
	return map[string]ViewportSize{
		"desktop": {Width: 1920, Height: 1080},
		"laptop":  {Width: 1366, Height: 768},
		"tablet":  {Width: 768, Height: 1024},
		"mobile":  {Width: 375, Height: 667},
	}
}

// FileInfo describes one baseline image on disk.
type FileInfo struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Info summarises the baseline directory for the CLI.
type Info struct {
	BaselineDirectory string     `json:"baseline_directory"`
	BaselineFiles     []FileInfo `json:"baseline_files"`
	TotalBaselines    int        `json:"total_baselines"`
	VersionsDirectory string     `json:"versions_directory"`
	AvailableVersions []string   `json:"available_versions"`
	Metadata          *Metadata  `json:"metadata,omitempty"`
}

// Store owns the baseline directory and its version history.
type Store struct {
	baselineDir string
	versionsDir string
	logger      logger.Logger
}

// NewStore creates the baseline and version directories if needed.
func NewStore(baselineDir, versionsDir string, log logger.Logger) (*Store, error) {
	for _, dir := range []string{baselineDir, versionsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("unable to create baseline directory: %w", err)
		}
	}
	return &Store{baselineDir: baselineDir, versionsDir: versionsDir, logger: log}, nil
}

// Dir returns the current baseline directory.
func (s *Store) Dir() string { return s.baselineDir }

// PathFor returns the on-disk path of the baseline for a page at a device
// viewport, e.g. expected_login_desktop.png.
func (s *Store) PathFor(page, device string) string {
	return filepath.Join(s.baselineDir, fmt.Sprintf("expected_%s_%s.png", page, device))
}

// baselineFiles lists the expected_*.png images in dir.
func baselineFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "expected_*.png"))
	if err != nil {
		return nil, fmt.Errorf("unable to list baseline files: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// LoadMetadata reads the metadata file for the current set. A missing or
// unreadable file yields nil, matching a set captured before metadata existed.
func (s *Store) LoadMetadata() *Metadata {
	raw, err := os.ReadFile(filepath.Join(s.baselineDir, metadataFileName))
	if err != nil {
		return nil
	}
	var m Metadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return &m
}

// SaveMetadata writes the metadata file for the current set.
func (s *Store) SaveMetadata(m Metadata) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to encode baseline metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.baselineDir, metadataFileName), raw, 0644); err != nil {
		return fmt.Errorf("unable to write baseline metadata: %w", err)
	}
	return nil
}

// Backup copies the current baseline set, metadata included, into a version
// directory. An empty name becomes backup_<timestamp>. The version name is
// returned so callers can report what the set was saved as.
func (s *Store) Backup(name string) (string, error) {
	if name == "" {
		name = "backup_" + time.Now().Format("20060102_150405")
	}
	files, err := baselineFiles(s.baselineDir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoBaselines
	}
	versionDir := filepath.Join(s.versionsDir, name)
	if err := os.MkdirAll(versionDir, 0755); err != nil {
		return "", fmt.Errorf("unable to create version directory: %w", err)
	}
	for _, f := range files {
		if err := copyFile(f, filepath.Join(versionDir, filepath.Base(f))); err != nil {
			return "", err
		}
	}
	metaPath := filepath.Join(s.baselineDir, metadataFileName)
	if _, err := os.Stat(metaPath); err == nil {
		if err := copyFile(metaPath, filepath.Join(versionDir, metadataFileName)); err != nil {
			return "", err
		}
	}
	s.logger.Info(context.Background(), "baselines backed up", logger.Fields{
		"version": name,
		"files":   len(files),
	})
	return name, nil
}

// Restore replaces the current baseline set with the named version. The
// current set is cleared first so deleted baselines do not linger.
func (s *Store) Restore(name string) error {
	versionDir := filepath.Join(s.versionsDir, name)
	if _, err := os.Stat(versionDir); err != nil {
		return fmt.Errorf("%w: %s", ErrVersionNotFound, name)
	}
	files, err := baselineFiles(versionDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in version %s", ErrNoBaselines, name)
	}
	current, err := baselineFiles(s.baselineDir)
	if err != nil {
		return err
	}
	for _, f := range current {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("unable to clear baseline: %w", err)
		}
	}
	for _, f := range files {
		if err := copyFile(f, filepath.Join(s.baselineDir, filepath.Base(f))); err != nil {
			return err
		}
	}
	metaPath := filepath.Join(versionDir, metadataFileName)
	if _, err := os.Stat(metaPath); err == nil {
		if err := copyFile(metaPath, filepath.Join(s.baselineDir, metadataFileName)); err != nil {
			return err
		}
	}
	s.logger.Info(context.Background(), "baselines restored", logger.Fields{
		"version": name,
		"files":   len(files),
	})
	return nil
}

// ListVersions returns all version names in lexical order. Timestamped backup
// names sort chronologically.
func (s *Store) ListVersions() ([]string, error) {
	entries, err := os.ReadDir(s.versionsDir)
	if err != nil {
		return nil, fmt.Errorf("unable to read versions directory: %w", err)
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// CleanOldVersions deletes all but the most recent keep versions and returns
// how many were removed.
func (s *Store) CleanOldVersions(keep int) (int, error) {
	versions, err := s.ListVersions()
	if err != nil {
		return 0, err
	}
	if len(versions) <= keep {
		return 0, nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(versions)))
	deleted := 0
	for _, v := range versions[keep:] {
		if err := os.RemoveAll(filepath.Join(s.versionsDir, v)); err != nil {
			return deleted, fmt.Errorf("unable to delete version %s: %w", v, err)
		}
		deleted++
		s.logger.Info(context.Background(), "deleted old baseline version", logger.Fields{"version": v})
	}
	return deleted, nil
}

// Info reports the current state of the baseline directory.
func (s *Store) Info() (Info, error) {
	info := Info{
		BaselineDirectory: s.baselineDir,
		VersionsDirectory: s.versionsDir,
		Metadata:          s.LoadMetadata(),
	}
	versions, err := s.ListVersions()
	if err != nil {
		return info, err
	}
	info.AvailableVersions = versions

	files, err := baselineFiles(s.baselineDir)
	if err != nil {
		return info, err
	}
	info.TotalBaselines = len(files)
	for _, f := range files {
		stat, err := os.Stat(f)
		if err != nil {
			continue
		}
		info.BaselineFiles = append(info.BaselineFiles, FileInfo{
			Filename: filepath.Base(f),
			Size:     stat.Size(),
			Modified: stat.ModTime(),
		})
	}
	return info, nil
}

// versionDirFor resolves a version name to its directory, where "current"
// means the live baseline set.
func (s *Store) versionDirFor(name string) (string, error) {
	if name == "current" {
		return s.baselineDir, nil
	}
	dir := filepath.Join(s.versionsDir, name)
	if _, err := os.Stat(dir); err != nil {
		return "", fmt.Errorf("%w: %s", ErrVersionNotFound, name)
	}
	return dir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create %s: %w", dst, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("unable to copy %s: %w", src, err)
	}
	return nil
}

// PageAndDevice splits a baseline filename back into its page and device
// parts, e.g. expected_order_create_mobile.png → ("order_create", "mobile").
// The device is the last underscore-separated token.
func PageAndDevice(filename string) (page, device string, ok bool) {
	stem := strings.TrimSuffix(filepath.Base(filename), ".png")
	stem = strings.TrimPrefix(stem, "expected_")
	idx := strings.LastIndex(stem, "_")
	if idx <= 0 {
		return "", "", false
	}
	return stem[:idx], stem[idx+1:], true
}
