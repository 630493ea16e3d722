package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const readerBufferSize = 64 * 1024

// TSVReader splits a tab separated stream into header and data rows, one line at a time
type TSVReader struct {
	reader *bufio.Reader
	line   int64
}

func NewTSVReader(r io.Reader) *TSVReader {
	return &TSVReader{reader: bufio.NewReaderSize(r, readerBufferSize)}
}

// ReadHeader reads the first line as field names. It returns io.EOF for an empty stream.
// A UTF-8 byte order mark in front of the first name is dropped.
func (t *TSVReader) ReadHeader() ([]string, error) {
	header, err := t.ReadRow()
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	return header, nil
}

// ReadRow returns the cells of the next line, or io.EOF once the stream is exhausted.
// A blank line yields a row without cells.
func (t *TSVReader) ReadRow() ([]string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read line %d: %s", t.line+1, err)
	}
	if err == io.EOF && line == "" {
		return nil, io.EOF
	}
	t.line++

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if line == "" {
		return []string{}, nil
	}
	return strings.Split(line, Delimiter), nil
}

// Line is the number of lines consumed so far, header included
func (t *TSVReader) Line() int64 {
	return t.line
}
