// internal/modelpath/types.go
package modelpath

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrEmptyKey is returned when a key yields no segments.
	ErrEmptyKey = errors.New("modelpath: key has no segments")
	// ErrUnsupportedKey is returned for key values that are not strings, integers or segment lists.
	ErrUnsupportedKey = errors.New("modelpath: unsupported key type")
	// ErrPathConflict is returned when a write addresses an existing array with a non-index segment.
	ErrPathConflict = errors.New("modelpath: path conflicts with existing model shape")
	// ErrIndexOutOfRange is returned when a write would grow an array past MaxIndexGrowth.
	ErrIndexOutOfRange = errors.New("modelpath: array index out of range")
	// ErrNoModel is returned when writing into a nil model.
	ErrNoModel = errors.New("modelpath: nil model")
)

// Segment is one step of a Path.
type Segment struct {
	Name  string
	Index int // -1 indicates the segment is not array-like.
}

// NewSegment builds a segment, detecting array-like names.
func NewSegment(name string) Segment {
	return Segment{Name: name, Index: indexOf(name)}
}

// IsIndex reports whether the segment addresses an array element.
func (s Segment) IsIndex() bool {
	return s.Index != -1
}

// Path is a normalized key.
type Path []Segment

// String renders the canonical form, e.g. `a[0].b`.
func (p Path) String() string {
	var sb strings.Builder
	for i, s := range p {
		if s.IsIndex() {
			sb.WriteString("[" + s.Name + "]")
			continue
		}
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(s.Name)
	}
	return sb.String()
}

// Equal reports whether both paths have the same segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Join returns a new path made of p followed by other.
func (p Path) Join(other Path) Path {
	out := make(Path, 0, len(p)+len(other))
	out = append(out, p...)
	return append(out, other...)
}

// indexOf returns the numeric value of an all-digit name, or -1.
func indexOf(name string) int {
	if name == "" || len(name) > 9 {
		return -1
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return -1
		}
	}
	n, err := strconv.Atoi(name)
	if err != nil {
		return -1
	}
	return n
}
