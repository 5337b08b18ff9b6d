package inventory

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindEmptyPath Kind = iota + 1
	KindNotFound
	KindUnreadable
	KindNoHeader
	KindMissingColumns
	KindRead
)

func (k Kind) String() string {
	switch k {
	case KindEmptyPath:
		return "empty path"
	case KindNotFound:
		return "not found"
	case KindUnreadable:
		return "unreadable"
	case KindNoHeader:
		return "no header"
	case KindMissingColumns:
		return "missing columns"
	case KindRead:
		return "read failure"
	}
	return "unknown"
}

// Error describes why a report produced an empty or partial inventory.
type Error struct {
	Kind Kind
	Path string

	Missing []string
	Header  []string

	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindEmptyPath:
		return "report path is empty"
	case KindMissingColumns:
		return fmt.Sprintf("report '%s' is missing required columns [%s], found [%s]",
			e.Path, strings.Join(e.Missing, ", "), strings.Join(e.Header, ", "))
	}

	if e.Err != nil {
		return fmt.Sprintf("report '%s': %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("report '%s': %s", e.Path, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InputNotFound reports whether the input could not be reached at all.
func (e *Error) InputNotFound() bool {
	return e.Kind == KindEmptyPath || e.Kind == KindNotFound || e.Kind == KindUnreadable
}

// SchemaInvalid reports whether the header was unusable.
func (e *Error) SchemaInvalid() bool {
	return e.Kind == KindNoHeader || e.Kind == KindMissingColumns
}
