package csg

import "fmt"

// GeometryError reports that an operand, or the result, of a boolean is
// unusable. Operand is "a", "b" or "result".
type GeometryError struct {
	Op      Operation
	Operand string
	Reason  string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("csg %s: operand %s: %s", e.Op, e.Operand, e.Reason)
}
