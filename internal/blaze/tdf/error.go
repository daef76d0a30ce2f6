package tdf

import (
	"errors"
	"fmt"
)

// ErrInvalidUTF8 is returned when a decoded string is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("tdf: string is not valid utf-8")

// UnexpectedEOFError reports a read past the end of the input.
type UnexpectedEOFError struct {
	Cursor    int
	Wanted    int
	Remaining int
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("tdf: unexpected eof at %d (wanted %d, %d remaining)",
		e.Cursor, e.Wanted, e.Remaining)
}

// InvalidTypeError reports a type code mismatch on an untagged read.
type InvalidTypeError struct {
	Expected Type
	Actual   Type
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("tdf: expected type %s, got %s", e.Expected, e.Actual)
}

// InvalidTagTypeError reports that a tag was found carrying the wrong type.
type InvalidTagTypeError struct {
	Tag      Tag
	Expected Type
	Actual   Type
}

func (e *InvalidTagTypeError) Error() string {
	return fmt.Sprintf("tdf: tag %q expected type %s, got %s", e.Tag, e.Expected, e.Actual)
}

// MissingTagError reports that a required tag never appeared.
type MissingTagError struct {
	Tag      Tag
	Expected Type
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("tdf: missing tag %q of type %s", e.Tag, e.Expected)
}
