package baseline

import (
	"bytes"
	"os"
	"path/filepath"
	"time"
)

// FileComparison is the per-file outcome of a version comparison.
type FileComparison struct {
	Status   string `json:"status"` // identical, different, missing_in_v1, missing_in_v2
	SizeDiff int64  `json:"size_diff,omitempty"`
}

// VersionComparison reports how two baseline versions differ.
type VersionComparison struct {
	Version1   string                    `json:"version1"`
	Version2   string                    `json:"version2"`
	ComparedAt time.Time                 `json:"compared_at"`
	Files      map[string]FileComparison `json:"files"`
	Summary    ComparisonSummary         `json:"summary"`
}

// ComparisonSummary aggregates the per-file statuses.
type ComparisonSummary struct {
	TotalFiles  int `json:"total_files"`
	Identical   int `json:"identical"`
	Different   int `json:"different"`
	MissingInV1 int `json:"missing_in_v1"`
	MissingInV2 int `json:"missing_in_v2"`
}

// CompareVersions diffs two baseline versions file by file. Version name
// "current" refers to the live set. Files present in both versions are
// compared by content.
func (s *Store) CompareVersions(v1, v2 string) (*VersionComparison, error) {
	dir1, err := s.versionDirFor(v1)
	if err != nil {
		return nil, err
	}
	dir2, err := s.versionDirFor(v2)
	if err != nil {
		return nil, err
	}

	files1, err := fileSet(dir1)
	if err != nil {
		return nil, err
	}
	files2, err := fileSet(dir2)
	if err != nil {
		return nil, err
	}

	result := &VersionComparison{
		Version1:   v1,
		Version2:   v2,
		ComparedAt: time.Now(),
		Files:      map[string]FileComparison{},
	}

	for name, path1 := range files1 {
		path2, both := files2[name]
		if !both {
			result.Files[name] = FileComparison{Status: "missing_in_v2"}
			result.Summary.MissingInV2++
			continue
		}
		same, sizeDiff, err := sameContent(path1, path2)
		if err != nil {
			return nil, err
		}
		if same {
			result.Files[name] = FileComparison{Status: "identical"}
			result.Summary.Identical++
		} else {
			result.Files[name] = FileComparison{Status: "different", SizeDiff: sizeDiff}
			result.Summary.Different++
		}
	}
	for name := range files2 {
		if _, both := files1[name]; !both {
			result.Files[name] = FileComparison{Status: "missing_in_v1"}
			result.Summary.MissingInV1++
		}
	}
	result.Summary.TotalFiles = len(result.Files)
	return result, nil
}

func fileSet(dir string) (map[string]string, error) {
	files, err := baselineFiles(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[filepath.Base(f)] = f
	}
	return out, nil
}

func sameContent(path1, path2 string) (bool, int64, error) {
	b1, err := os.ReadFile(path1)
	if err != nil {
		return false, 0, err
	}
	b2, err := os.ReadFile(path2)
	if err != nil {
		return false, 0, err
	}
	return bytes.Equal(b1, b2), int64(len(b2) - len(b1)), nil
}
