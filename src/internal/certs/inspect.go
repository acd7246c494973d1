package certs

import (
	"errors"
	"fmt"
	"io"
	"os"
)

type FileState string

const (
	FileOK         FileState = "ok"
	FileNotFound   FileState = "not found"
	FileEmpty      FileState = "empty file"
	FileIsDir      FileState = "is a directory"
	FileUnreadable FileState = "unreadable"
)

// Inspect classifies the file at path without parsing it. The returned
// error carries the underlying cause for FileUnreadable.
func Inspect(path string) (FileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileNotFound, nil
		}
		return FileUnreadable, err
	}
	if info.IsDir() {
		return FileIsDir, nil
	}
	if info.Size() == 0 {
		return FileEmpty, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return FileUnreadable, err
	}
	defer f.Close()

	if _, err := f.Read(make([]byte, 1)); err != nil && !errors.Is(err, io.EOF) {
		return FileUnreadable, fmt.Errorf("read %s: %w", path, err)
	}

	return FileOK, nil
}
