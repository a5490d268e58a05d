package fileutils

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Truncate trims s and cuts it to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}

// MarshalJSON encodes v with a trailing newline, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return append(b, '\n'), nil
}

func WriteJSONFileAtomic(path string, v any, pretty bool) error {
	b, err := MarshalJSON(v, pretty)
	if err != nil {
		return err
	}
	if err := WriteFileAtomicSameDir(path, b, 0o644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

// WriteFileAtomicSameDir writes data to a temp file next to path and renames it into place,
// replacing any existing file. Readers never observe a partially written file.
func WriteFileAtomicSameDir(path string, data []byte, mode fs.FileMode) error {
	staged, err := StageFile(path, data, mode)
	if err != nil {
		return err
	}
	defer staged.Discard()
	return staged.Commit()
}

// StagedFile is data fully written and synced to a temp file beside its destination, waiting
// to be renamed into place.
type StagedFile struct {
	path    string
	tmpName string
}

// StageFile writes data to a temp file in path's directory. Nothing at path changes until
// Commit; Discard removes the temp file and is safe to call after Commit.
func StageFile(path string, data []byte, mode fs.FileMode) (*StagedFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, ".tmp_"+filepath.Base(path)+"_*")
	if err != nil {
		return nil, err
	}
	staged := &StagedFile{path: path, tmpName: tmp.Name()}

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		staged.Discard()
		return nil, err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		staged.Discard()
		return nil, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		staged.Discard()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		staged.Discard()
		return nil, err
	}
	return staged, nil
}

func (s *StagedFile) Commit() error {
	if s.tmpName == "" {
		return fmt.Errorf("commit %s: already committed or discarded", s.path)
	}
	if err := os.Rename(s.tmpName, s.path); err != nil {
		return err
	}
	s.tmpName = ""
	return nil
}

func (s *StagedFile) Discard() {
	if s.tmpName == "" {
		return
	}
	_ = os.Remove(s.tmpName)
	s.tmpName = ""
}
