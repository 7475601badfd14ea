package source

import (
	"fmt"
	"go/token"

	"fortio.org/safecast"
)

// Span is a resolved source location. The analysis pipeline runs over
// host-parsed declarations, so spans carry file/line/column directly
// instead of raw byte offsets into a private file table.
type Span struct {
	Path   string
	Line   uint32 // 1-based
	Col    uint32 // 1-based
	EndCol uint32 // exclusive; 0 when the end is unknown
}

func (s Span) Empty() bool {
	return s.Path == "" && s.Line == 0
}

func (s Span) Len() uint32 {
	if s.EndCol > s.Col {
		return s.EndCol - s.Col
	}
	return 0
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.Path, s.Line, s.Col)
}

// Before reports whether s sorts before other in diagnostic order.
func (s Span) Before(other Span) bool {
	if s.Path != other.Path {
		return s.Path < other.Path
	}
	if s.Line != other.Line {
		return s.Line < other.Line
	}
	return s.Col < other.Col
}

// FromPos resolves a go/token position pair into a Span.
// end may be token.NoPos, in which case EndCol stays 0.
func FromPos(fset *token.FileSet, pos, end token.Pos) Span {
	if fset == nil || !pos.IsValid() {
		return Span{}
	}
	p := fset.Position(pos)
	sp := Span{
		Path: p.Filename,
		Line: mustU32(p.Line),
		Col:  mustU32(p.Column),
	}
	if end.IsValid() {
		e := fset.Position(end)
		if e.Filename == p.Filename && e.Line == p.Line {
			sp.EndCol = mustU32(e.Column)
		}
	}
	return sp
}

func mustU32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("position overflow: %w", err))
	}
	return v
}
