package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Conversation is one conversation folder under the archive root and the thread files it holds.
type Conversation struct {
	Dir   string
	Files []string
}

// ScanArchive lists the conversation folders directly under root and the regular files
// directly inside each. Anything that is not a directory at the root level, or not a regular
// file inside a folder, is skipped. An unreadable root or folder aborts the scan.
//
// Order follows os.ReadDir (sorted by name); it is the traversal order later stages see.
func ScanArchive(ctx context.Context, root string) ([]Conversation, error) {
	if ctx == nil {
		return nil, errors.New("ScanArchive: ctx is nil")
	}
	if root == "" {
		return nil, errors.New("ScanArchive: root is empty")
	}

	dirs, err := listEntries(root, isDir)
	if err != nil {
		return nil, fmt.Errorf("ScanArchive: read archive root %s: %w", root, err)
	}

	convs := make([]Conversation, 0, len(dirs))
	for _, dir := range dirs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		files, err := listEntries(dir, isRegular)
		if err != nil {
			return nil, fmt.Errorf("ScanArchive: read conversation dir %s: %w", dir, err)
		}
		convs = append(convs, Conversation{Dir: dir, Files: files})
	}
	return convs, nil
}

func listEntries(dir string, keep func(os.FileInfo) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		// Stat follows symlinks, so a link to a folder counts as a folder.
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if keep(info) {
			out = append(out, p)
		}
	}
	return out, nil
}

func isDir(fi os.FileInfo) bool { return fi.IsDir() }

func isRegular(fi os.FileInfo) bool { return fi.Mode().IsRegular() }
