package scene

import (
	"fmt"
	"strings"
)

// HideChildren hides every direct child of n.
func HideChildren(n *Node) error {
	if n == nil {
		return fmt.Errorf("hide children: nil node: %w", ErrInvalidArgument)
	}
	for _, c := range n.Children {
		c.Visible = false
	}
	return nil
}

// SetVisible looks up prefix+name below parent for every name and sets
// the visibility of the nodes found. Names with no match are skipped. It
// returns the number of nodes changed.
//
// A nil parent, or any blank or whitespace-only name, fails the whole call
// with ErrInvalidArgument and no node is changed.
func SetVisible(parent *Node, names []string, visible bool, prefix string) (int, error) {
	if parent == nil {
		return 0, fmt.Errorf("set visible: nil parent: %w", ErrInvalidArgument)
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return 0, fmt.Errorf("set visible: name %d is empty: %w", i, ErrInvalidArgument)
		}
	}
	changed := 0
	for _, name := range names {
		if n := parent.ObjectByName(prefix + name); n != nil {
			n.Visible = visible
			changed++
		}
	}
	return changed, nil
}
