package driver

import (
	"context"
	"fmt"
	"io"

	"github.com/datazip-inc/tsvingest/pkg/parser"
	"github.com/datazip-inc/tsvingest/types"
	"github.com/datazip-inc/tsvingest/utils/logger"
)

type streamState int

const (
	stateNotStarted streamState = iota
	stateReading
	stateExhausted
	stateLimitReached
	stateAborted
)

// StreamReader produces normalized documents file by file, row by row. The caller pulls
// documents with Next; only one input file is open at any time.
type StreamReader struct {
	files   []string
	guard   *HeaderGuard
	options parser.InferOptions
	limit   int64

	state   streamState
	err     error
	fileIdx int

	current  *sourceFile
	reader   *parser.TSVReader
	header   []string
	path     string
	fileRows int64

	totalRows  int64
	filesRead  int
	filesEmpty int
}

// NewStreamReader reads files in the given order. A limit of 0 means unbounded.
func NewStreamReader(files []string, guard *HeaderGuard, options parser.InferOptions, limit int64) *StreamReader {
	return &StreamReader{
		files:   files,
		guard:   guard,
		options: options,
		limit:   limit,
		state:   stateNotStarted,
	}
}

// Next returns the next document. It returns io.EOF once every file is consumed or the row
// limit is hit; any other error aborts the stream and is returned on every later call.
func (s *StreamReader) Next(ctx context.Context) (types.Document, error) {
	for {
		switch s.state {
		case stateExhausted, stateLimitReached:
			return nil, io.EOF
		case stateAborted:
			return nil, s.err
		}
		s.state = stateReading

		if err := ctx.Err(); err != nil {
			return nil, s.abort(err)
		}

		if s.limit > 0 && s.totalRows >= s.limit {
			logger.Infof("Reached row limit %d; stopping.", s.limit)
			s.closeCurrent()
			s.state = stateLimitReached
			return nil, io.EOF
		}

		if s.reader == nil {
			if s.fileIdx >= len(s.files) {
				s.state = stateExhausted
				return nil, io.EOF
			}
			if err := s.openNext(); err != nil {
				return nil, s.abort(err)
			}
			continue
		}

		row, err := s.reader.ReadRow()
		if err == io.EOF {
			logger.Debugf("Read %d rows from %s", s.fileRows, s.path)
			s.closeCurrent()
			continue
		}
		if err != nil {
			return nil, s.abort(fmt.Errorf("failed to read %s: %s", s.path, err))
		}

		s.totalRows++
		s.fileRows++
		return parser.NormalizeRow(s.header, row, s.options), nil
	}
}

func (s *StreamReader) openNext() error {
	path := s.files[s.fileIdx]
	s.fileIdx++
	logger.Infof("Processing: %s", path)

	source, err := openSource(path)
	if err != nil {
		return err
	}
	reader := parser.NewTSVReader(source)

	header, err := reader.ReadHeader()
	if err == io.EOF {
		logger.Infof("Skipping empty file: %s", path)
		s.filesEmpty++
		return source.Close()
	}
	if err != nil {
		source.Close()
		return fmt.Errorf("failed to read header of %s: %s", path, err)
	}

	if err := s.guard.Check(path, header); err != nil {
		source.Close()
		return err
	}

	s.current = source
	s.reader = reader
	s.header = header
	s.path = path
	s.fileRows = 0
	s.filesRead++
	return nil
}

func (s *StreamReader) closeCurrent() {
	if s.current == nil {
		return
	}
	if err := s.current.Close(); err != nil {
		logger.Warnf("failed to close %s: %s", s.path, err)
	}
	s.current = nil
	s.reader = nil
	s.header = nil
}

func (s *StreamReader) abort(err error) error {
	s.closeCurrent()
	s.state = stateAborted
	s.err = err
	return err
}

// Close releases the open file, if any. Further calls to Next return io.EOF unless the
// stream already failed.
func (s *StreamReader) Close() error {
	s.closeCurrent()
	if s.state == stateNotStarted || s.state == stateReading {
		s.state = stateExhausted
	}
	return nil
}

// TotalRows is the number of documents produced across all files
func (s *StreamReader) TotalRows() int64 {
	return s.totalRows
}

// LimitReached reports whether reading stopped because of the row limit
func (s *StreamReader) LimitReached() bool {
	return s.state == stateLimitReached
}

// FilesRead is the number of files whose header was accepted
func (s *StreamReader) FilesRead() int {
	return s.filesRead
}

// FilesSkipped is the number of files skipped for having no header line
func (s *StreamReader) FilesSkipped() int {
	return s.filesEmpty
}
