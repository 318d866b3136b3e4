package scene

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/taigrr/carve/pkg/models"
)

// unnamed is shown for nodes with an empty name.
const unnamed = "(unnamed)"

// InventoryRow describes one group, or one material of a mesh, for the
// debug inventory.
type InventoryRow struct {
	Type      string
	Name      string
	Material  string
	Triangles int
}

// Inventory lists the groups and meshes of the subtree, one row per mesh
// material, sorted by type and then name. Plain objects are skipped.
func Inventory(root *Node) []InventoryRow {
	var rows []InventoryRow
	root.Traverse(func(n *Node) {
		name := n.Name
		if name == "" {
			name = unnamed
		}
		switch n.Kind {
		case KindGroup:
			rows = append(rows, InventoryRow{Type: n.Kind.String(), Name: name})
		case KindMesh:
			tris := 0
			if n.Geometry != nil {
				tris = n.Geometry.TriangleCount()
			}
			if n.Material.IsEmpty() {
				rows = append(rows, InventoryRow{Type: n.Kind.String(), Name: name, Triangles: tris})
				return
			}
			n.Material.Each(func(_ int, m *models.Material) {
				rows = append(rows, InventoryRow{Type: n.Kind.String(), Name: name, Material: m.Name, Triangles: tris})
			})
		}
	})
	slices.SortStableFunc(rows, func(a, b InventoryRow) int {
		return cmp.Or(cmp.Compare(a.Type, b.Type), cmp.Compare(a.Name, b.Name))
	})
	return rows
}

// WriteInventory writes the inventory of root as an aligned table.
func WriteInventory(w io.Writer, root *Node) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tNAME\tMATERIAL\tTRIANGLES")
	for _, r := range Inventory(root) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.Type, r.Name, r.Material, r.Triangles)
	}
	return tw.Flush()
}
