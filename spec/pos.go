package spec

import "fmt"

// SourcePos identifies a location in a specification document. It is carried
// on every element of the model so that compile errors can point back at the
// line that caused them.
type SourcePos struct {
	Filename string
	Line     int
	Col      int
}

func (pos SourcePos) String() string {
	if pos.Line <= 0 || pos.Col <= 0 {
		return pos.Filename
	}
	return fmt.Sprintf("%s:%d:%d", pos.Filename, pos.Line, pos.Col)
}

// UnknownPos is a placeholder position for errors that relate to a document
// but not to any particular location in it.
func UnknownPos(filename string) SourcePos {
	return SourcePos{Filename: filename}
}
