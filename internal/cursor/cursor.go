// Package cursor is the character-level substrate of the term parser: a
// position over the input text with single-character tests, small
// scanners (words, digits, hex) and mark/reset backtracking.
package cursor

import (
	"unicode/utf8"
)

// EOF is returned by Ch and Peek at the end of input.
const EOF rune = -1

type Cursor struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

// State is a saved cursor position for backtracking.
type State struct {
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
}

func New(input string) *Cursor {
	c := &Cursor{input: input, line: 1, column: 0}
	c.readChar()
	return c
}

func (c *Cursor) readChar() {
	if c.ch == '\n' {
		c.line++
		c.column = 0
	}

	c.position = c.readPosition
	if c.readPosition >= len(c.input) {
		c.ch = EOF
		c.column++
		return
	}

	r, w := utf8.DecodeRuneInString(c.input[c.readPosition:])
	c.ch = r
	c.readPosition += w
	c.column++
}

// Ch returns the current character, or EOF.
func (c *Cursor) Ch() rune { return c.ch }

// AtEOF reports whether the whole input has been consumed.
func (c *Cursor) AtEOF() bool { return c.ch == EOF }

// Next consumes the current character and returns it.
func (c *Cursor) Next() rune {
	ch := c.ch
	if ch != EOF {
		c.readChar()
	}
	return ch
}

// Offset is the byte offset of the current character.
func (c *Cursor) Offset() int { return c.position }

// Line is the 1-based line of the current character.
func (c *Cursor) Line() int { return c.line }

// Column is the 1-based column of the current character.
func (c *Cursor) Column() int { return c.column }

// Input returns the text being scanned.
func (c *Cursor) Input() string { return c.input }

// From returns the input between offset and the current position.
func (c *Cursor) From(offset int) string {
	return c.input[offset:c.position]
}

func (c *Cursor) Mark() State {
	return State{c.position, c.readPosition, c.ch, c.line, c.column}
}

func (c *Cursor) Reset(s State) {
	c.position = s.position
	c.readPosition = s.readPosition
	c.ch = s.ch
	c.line = s.line
	c.column = s.column
}

// Accept consumes ch if it is the current character.
func (c *Cursor) Accept(ch rune) bool {
	if c.ch != ch || ch == EOF {
		return false
	}
	c.readChar()
	return true
}

// AcceptString consumes s if the input continues with it.
func (c *Cursor) AcceptString(s string) bool {
	if s == "" || c.ch == EOF || len(c.input)-c.position < len(s) || c.input[c.position:c.position+len(s)] != s {
		return false
	}
	for i := 0; i < utf8.RuneCountInString(s); i++ {
		c.readChar()
	}
	return true
}

// SkipSpaces consumes plain spaces. Tabs and newlines are significant.
func (c *Cursor) SkipSpaces() {
	for c.ch == ' ' {
		c.readChar()
	}
}

// Digits consumes a run of decimal digits.
func (c *Cursor) Digits() string {
	start := c.position
	for IsDigit(c.ch) {
		c.readChar()
	}
	return c.input[start:c.position]
}

// Hex consumes exactly n hex digits and returns their value.
// On failure the cursor is left where it was.
func (c *Cursor) Hex(n int) (rune, bool) {
	saved := c.Mark()
	var val rune
	for i := 0; i < n; i++ {
		var d rune
		switch {
		case c.ch >= '0' && c.ch <= '9':
			d = c.ch - '0'
		case c.ch >= 'a' && c.ch <= 'f':
			d = c.ch - 'a' + 10
		case c.ch >= 'A' && c.ch <= 'F':
			d = c.ch - 'A' + 10
		default:
			c.Reset(saved)
			return 0, false
		}
		val = val*16 + d
		c.readChar()
	}
	return val, true
}

// Word consumes an identifier: a word character that is not a digit,
// followed by any number of word characters.
func (c *Cursor) Word() (string, bool) {
	if !IsWordChar(c.ch) || IsDigit(c.ch) {
		return "", false
	}
	start := c.position
	for IsWordChar(c.ch) {
		c.readChar()
	}
	return c.input[start:c.position], true
}

func IsDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func IsHexDigit(ch rune) bool {
	return IsDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

// IsWordChar accepts the ASCII identifier alphabet: letters, digits, '_' and '$'.
func IsWordChar(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || IsDigit(ch) || ch == '_' || ch == '$'
}
