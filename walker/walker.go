// Package walker finds the input files of an analysis run and reads them as text.
package walker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the file name suffixes analyzed when none are configured.
var DefaultExtensions = []string{".txt", ".c"}

// Match reports whether name ends with one of extensions.
func Match(name string, extensions []string) bool {
	for _, ext := range extensions {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Walk recursively visits every file under root whose name matches
// extensions, in lexical order. Symbolic links to files are visited, links to
// directories are not followed. A root that does not exist or is not a
// directory is treated as an empty tree. Entries below root that cannot be
// read are passed to skip, when it is not nil, and left out. An error returned
// by fn or skip stops the walk and is returned as is.
func Walk(ctx context.Context, root string, extensions []string, fn func(path string) error, skip func(path string, err error) error) error {
	if isLinkedDir(root) {
		// A trailing separator makes WalkDir resolve the link.
		root += string(filepath.Separator)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				if errors.Is(err, fs.ErrNotExist) {
					return fs.SkipAll
				}
				return err
			}
			if skip != nil {
				if err := skip(path, err); err != nil {
					return err
				}
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if path == root {
			return fs.SkipAll
		}
		if !Match(d.Name(), extensions) || !isFile(path, d) {
			return nil
		}
		return fn(path)
	})
}

func isLinkedDir(path string) bool {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&fs.ModeSymlink == 0 {
		return false
	}
	info, err = os.Stat(path)
	return err == nil && info.IsDir()
}

// isFile reports whether d is a regular file or a link to one. Broken links
// count as files so that reading them reports the error.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return info.Mode().IsRegular()
}

// ReadText reads path as UTF-8. Invalid byte sequences are dropped.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// ReadFile returns the text to analyze for path: the visible text for HTML
// documents, the lossy UTF-8 contents for everything else.
func ReadFile(path string) (string, error) {
	text, err := ReadText(path)
	if err != nil {
		return "", err
	}
	if !IsHTML(path) {
		return text, nil
	}

	extracted, err := ExtractHTML(bytes.NewReader([]byte(text)))
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", path, err)
	}
	return extracted, nil
}

// IsHTML reports whether path names an HTML document.
func IsHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}
