package epsilon

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/exp/slices"
)

// SchemaRow describes one piece of data written during serialization: a
// field, a zero-copy block, padding, or ancillary data such as a length or
// an option tag.
type SchemaRow struct {
	Field  string  // dotted path of the field
	Ty     string  // type name
	Offset int64   // offset from the start of the stream
	Size   int64   // length in bytes
	Align  uintptr // required alignment; zero when not applicable
}

// Schema is the list of rows recorded by a SchemaWriter.
type Schema struct {
	Rows []SchemaRow
}

// Sort orders the rows by offset. Rows at the same offset keep their
// recorded order, so a composite precedes its first member.
func (s *Schema) Sort() {
	slices.SortStableFunc(s.Rows, func(a, b SchemaRow) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
}

type schemaFrame struct {
	index int
	pos   int64
	ty    string
}

// SchemaWriter decorates a FieldWriter and records a Schema of everything
// written through it. The bytes reaching the underlying writer are exactly
// those an undecorated writer would produce.
type SchemaWriter struct {
	w      FieldWriter
	schema Schema
	path   []string
	frames []schemaFrame
}

var _ FieldWriter = (*SchemaWriter)(nil)

// NewSchemaWriter creates a SchemaWriter on top of w.
func NewSchemaWriter(w FieldWriter) *SchemaWriter {
	return &SchemaWriter{w: w}
}

// Schema returns the rows recorded so far, in recording order.
func (s *SchemaWriter) Schema() *Schema { return &s.schema }

func (s *SchemaWriter) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s *SchemaWriter) Pos() int64                  { return s.w.Pos() }
func (s *SchemaWriter) Logger() *slog.Logger        { return s.w.Logger() }

func (s *SchemaWriter) joined(leaf string) string {
	if leaf == "" {
		return strings.Join(s.path, ".")
	}
	return strings.Join(append(slices.Clip(s.path), leaf), ".")
}

// WritePadding records a PADDING row when padding is needed.
func (s *SchemaWriter) WritePadding(align uintptr) error {
	if align > 1 {
		if pad := PadAlignTo(s.Pos(), int64(align)); pad != 0 {
			s.schema.Rows = append(s.schema.Rows, SchemaRow{
				Field:  "PADDING",
				Ty:     fmt.Sprintf("[%d]uint8", pad),
				Offset: s.Pos(),
				Size:   pad,
				Align:  1,
			})
		}
	}
	return s.w.WritePadding(align)
}

// WriteZeroCopy records the block as a "zero" row under the current field.
func (s *SchemaWriter) WriteZeroCopy(typeName string, align uintptr, p []byte) error {
	if err := s.WritePadding(align); err != nil {
		return err
	}
	s.schema.Rows = append(s.schema.Rows, SchemaRow{
		Field:  s.joined("zero"),
		Ty:     typeName,
		Offset: s.Pos(),
		Size:   int64(len(p)),
		Align:  align,
	})
	_, err := s.w.Write(p)
	return err
}

// BeginField remembers where the field starts. Its row is inserted before
// the rows of its members when the field ends.
func (s *SchemaWriter) BeginField(name, typeName string) {
	s.path = append(s.path, name)
	s.frames = append(s.frames, schemaFrame{index: len(s.schema.Rows), pos: s.Pos(), ty: typeName})
	s.w.BeginField(name, typeName)
}

func (s *SchemaWriter) EndField() {
	s.w.EndField()
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	s.schema.Rows = slices.Insert(s.schema.Rows, f.index, SchemaRow{
		Field:  s.joined(""),
		Ty:     f.ty,
		Offset: f.pos,
		Size:   s.Pos() - f.pos,
	})
	s.path = s.path[:len(s.path)-1]
}
