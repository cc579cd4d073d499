package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// TensorFile represents a raw output tensor dumped to disk.
type TensorFile struct {
	// Path is the path to the tensor file.
	Path string
	// Frame is the frame number parsed from a "frame-<n>" file name, or -1.
	Frame int
}

// TensorExtensions are the file extensions treated as raw float32 dumps.
var TensorExtensions = []string{".bin", ".raw", ".f32"}

// LoadDirectoryTensorFiles lists the tensor files in a directory.
//
// Arguments:
// - dir: Directory path containing tensor files.
//
// Returns:
// - []TensorFile: Files ordered by frame number, then by path.
// - error: Error if the directory cannot be read.
func LoadDirectoryTensorFiles(dir string) ([]TensorFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []TensorFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if !isTensorExt(ext) {
			continue
		}

		frame := -1
		if n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSuffix(entry.Name(), ext), "frame-")); err == nil {
			frame = n
		}
		files = append(files, TensorFile{
			Path:  filepath.Join(dir, entry.Name()),
			Frame: frame,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Frame != files[j].Frame {
			return files[i].Frame < files[j].Frame
		}
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// ExpandTensorPaths replaces every directory in paths with its tensor files.
func ExpandTensorPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		files, err := LoadDirectoryTensorFiles(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			out = append(out, f.Path)
		}
	}
	return out, nil
}

func isTensorExt(ext string) bool {
	for _, e := range TensorExtensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
