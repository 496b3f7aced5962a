// SPDX-License-Identifier: MIT
// Package lexer implements the Stream Lexer of spec §4.1: it splits an
// input byte stream into pass-through raw regions and OPI comment
// regions, while preserving the exact line terminator used.
package lexer

import (
	"bufio"
	"bytes"
	"io"
)

// Terminator identifies which line ending was read, so it can be
// re-emitted byte-for-byte.
type Terminator int8

const (
	TermNone Terminator = iota // EOF with no trailing terminator
	TermLF                     // \n
	TermCRLF                   // \r\n
	TermCR                     // \r
)

func (t Terminator) Bytes() []byte {
	switch t {
	case TermLF:
		return []byte{'\n'}
	case TermCRLF:
		return []byte{'\r', '\n'}
	case TermCR:
		return []byte{'\r'}
	default:
		return nil
	}
}

// Line is one logical input line: the raw bytes (without terminator)
// and the terminator that followed it (TermNone at EOF).
type Line struct {
	Bytes []byte
	Term  Terminator
}

// Full returns Bytes with the terminator appended.
func (l Line) Full() []byte {
	return append(append([]byte(nil), l.Bytes...), l.Term.Bytes()...)
}

// CommentIndex returns the index into l.Bytes of the first '%' that
// begins a recognized OPI comment, scanning for "%%" / "%ALD" style
// markers when opiActive reports whether we're already inside an OPI
// object (in which case any '%' ends the pass-through run, matching
// opi.py's `_BeginOPI` branch in the main loop).
func (l Line) CommentIndex(opiActive bool) int {
	if opiActive {
		return bytes.IndexByte(l.Bytes, '%')
	}
	if i := bytes.Index(l.Bytes, []byte("%ALD")); i >= 0 {
		return i
	}
	return bytes.Index(l.Bytes, []byte("%%BeginOPI"))
}

// Lexer reads successive Lines from the underlying reader. It never
// buffers more than one input line, matching spec §4.1's resource bound.
type Lexer struct {
	r   *bufio.Reader
	eof bool
}

func New(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r)}
}

// Next returns the next logical line, or io.EOF when the stream is
// exhausted. It respects \n, \r\n, and bare \r terminators.
func (lx *Lexer) Next() (Line, error) {
	if lx.eof {
		return Line{}, io.EOF
	}
	var buf bytes.Buffer
	for {
		b, err := lx.r.ReadByte()
		if err != nil {
			lx.eof = true
			if buf.Len() == 0 {
				return Line{}, io.EOF
			}
			return Line{Bytes: buf.Bytes(), Term: TermNone}, nil
		}
		switch b {
		case '\n':
			return Line{Bytes: buf.Bytes(), Term: TermLF}, nil
		case '\r':
			next, err := lx.r.Peek(1)
			if err == nil && len(next) == 1 && next[0] == '\n' {
				lx.r.ReadByte()
				return Line{Bytes: buf.Bytes(), Term: TermCRLF}, nil
			}
			return Line{Bytes: buf.Bytes(), Term: TermCR}, nil
		default:
			buf.WriteByte(b)
		}
	}
}
