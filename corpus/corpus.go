/*
Package corpus provides token streams to train language models from.

A stream hands out one tokenized sequence (usually a sentence) per call to
Next and returns io.EOF when exhausted. Reset rewinds it, as training reads
its input twice.
*/
package corpus

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// LineStream reads whitespace-tokenized sequences, one per line.
//
// Empty lines and lines starting with '#' are skipped. A comment line of the
// form
//
//	# name: some corpus
//
// sets the identifier of the stream.
type LineStream struct {
	source     io.ReadSeeker
	scanner    *bufio.Scanner
	identifier string
}

// NewLineStream creates a stream over reader. If reader is not seekable, its
// content is read into memory first.
func NewLineStream(reader io.Reader) (*LineStream, error) {
	source, ok := reader.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		source = bytes.NewReader(data)
	}
	return &LineStream{
		source:  source,
		scanner: bufio.NewScanner(source),
	}, nil
}

// Identifier returns the name given in the corpus header, if any.
func (s *LineStream) Identifier() string {
	return s.identifier
}

// Next returns the tokens of the next non-empty line.
// It returns io.EOF when exhausted.
func (s *LineStream) Next() ([]string, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if strings.HasPrefix(line, "#") {
			if name, ok := strings.CutPrefix(strings.TrimSpace(line[1:]), "name:"); ok {
				s.identifier = strings.TrimSpace(name)
			}
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}
		return tokens, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Reset rewinds the stream to its first line.
func (s *LineStream) Reset() error {
	if _, err := s.source.Seek(0, io.SeekStart); err != nil {
		return err
	}
	s.scanner = bufio.NewScanner(s.source)
	return nil
}

// SliceStream serves sequences from memory.
type SliceStream struct {
	sequences [][]string
	index     int
}

// NewSliceStream creates a stream over sequences.
func NewSliceStream(sequences ...[]string) *SliceStream {
	return &SliceStream{sequences: sequences}
}

// FromText splits text into lines and every line into tokens.
func FromText(text string) *SliceStream {
	s := &SliceStream{}
	for _, line := range strings.Split(text, "\n") {
		if tokens := strings.Fields(line); len(tokens) > 0 {
			s.sequences = append(s.sequences, tokens)
		}
	}
	return s
}

// Next returns the next sequence or io.EOF.
func (s *SliceStream) Next() ([]string, error) {
	if s.index >= len(s.sequences) {
		return nil, io.EOF
	}
	seq := s.sequences[s.index]
	s.index++
	return seq, nil
}

// Reset rewinds the stream.
func (s *SliceStream) Reset() error {
	s.index = 0
	return nil
}
