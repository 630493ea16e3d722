package driver

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/datazip-inc/tsvingest/constants"
	"github.com/ulikunitz/xz"
)

// sourceFile is an opened input, possibly behind a decompressor. Closing it releases
// the decompressor and the underlying file.
type sourceFile struct {
	io.Reader
	closers []io.Closer
}

func (s *sourceFile) Close() error {
	var firstErr error
	for idx := len(s.closers) - 1; idx >= 0; idx-- {
		if err := s.closers[idx].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// openSource opens path and decompresses it according to its extension
func openSource(path string) (*sourceFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %s", path, err)
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, constants.GzipExtension):
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create gzip reader for %s: %s", path, err)
		}
		return &sourceFile{Reader: gzReader, closers: []io.Closer{file, gzReader}}, nil
	case strings.HasSuffix(lower, constants.XZExtension):
		xzReader, err := xz.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create xz reader for %s: %s", path, err)
		}
		return &sourceFile{Reader: xzReader, closers: []io.Closer{file}}, nil
	default:
		return &sourceFile{Reader: file, closers: []io.Closer{file}}, nil
	}
}
