package commands

import (
	"errors"
	"fmt"
)

const (
	errorPathNotFoundFormat = "path not found: %s"
	errorIoFormat           = "io error on %s: %v"
)

var (
	// ErrPathNotFound is matched by every PathNotFoundError.
	ErrPathNotFound = errors.New("path not found")
	// ErrDecode reports file content that is not valid UTF-8 text.
	ErrDecode = errors.New("content is not valid UTF-8")
)

// PathNotFoundError reports a root path that does not exist.
type PathNotFoundError struct {
	Path string
}

func (pathError *PathNotFoundError) Error() string {
	return fmt.Sprintf(errorPathNotFoundFormat, pathError.Path)
}

// Is lets errors.Is(err, ErrPathNotFound) succeed.
func (pathError *PathNotFoundError) Is(target error) bool {
	return target == ErrPathNotFound
}

// IoError reports a failure to read or decode an accepted file.
type IoError struct {
	Path string
	Err  error
}

func (ioError *IoError) Error() string {
	return fmt.Sprintf(errorIoFormat, ioError.Path, ioError.Err)
}

func (ioError *IoError) Unwrap() error {
	return ioError.Err
}
