package file

import (
	"path/filepath"
	"strings"
)

// ReplaceExt swaps the extension of path for ext, tolerating a missing dot
// on either side.
func ReplaceExt(path, ext string) string {
	if path == "" {
		return path
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	lastDot := strings.LastIndex(filename, ".")

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if lastDot <= 0 {
		return filepath.Join(dir, filename+ext)
	}

	return filepath.Join(dir, filename[:lastDot]+ext)
}

// InsertSuffix inserts a marker before the extension of path.
// e.g. InsertSuffix("a/ep1.srt", ".corrected") -> "a/ep1.corrected.srt"
func InsertSuffix(path, marker string) string {
	if path == "" || marker == "" {
		return path
	}

	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	lastDot := strings.LastIndex(filename, ".")
	if lastDot <= 0 {
		return filepath.Join(dir, filename+marker)
	}

	return filepath.Join(dir, filename[:lastDot]+marker+filename[lastDot:])
}
