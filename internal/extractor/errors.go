package extractor

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ParseError reports a translation unit that could not be parsed. Nothing is traversed when a
// ParseError is returned.
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// firstError returns the first ERROR or MISSING node in document order, or nil.
func firstError(n *sitter.Node) *sitter.Node {
	if n == nil || !n.HasError() {
		return nil
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if bad := firstError(n.Child(i)); bad != nil {
			return bad
		}
	}
	return n
}

func syntaxError(path string, src []byte, n *sitter.Node) *ParseError {
	p := n.StartPoint()
	msg := "syntax error"
	switch {
	case n.IsMissing():
		msg = fmt.Sprintf("expected '%s'", n.Type())
	case n.Type() == "ERROR":
		near := strings.Join(strings.Fields(n.Content(src)), " ")
		if len(near) > 40 {
			near = near[:40] + "..."
		}
		if near != "" {
			msg = fmt.Sprintf("syntax error near '%s'", near)
		}
	}
	return &ParseError{
		File:    path,
		Line:    int(p.Row) + 1,
		Column:  int(p.Column) + 1,
		Message: msg,
	}
}
