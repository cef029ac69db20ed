package debugui

import (
	"strconv"
	"strings"

	"github.com/plus3/scenic/scene"
)

// Row is one line of the hierarchy view.
type Row struct {
	ID          scene.ID
	Depth       int
	Name        string
	Tag         string
	Enabled     bool
	HasChildren bool
}

// HierarchyRows flattens the visible tree under root in depth-first order.
// The root itself and entities flagged FlagExcludeFromTree, with their
// subtrees, are left out. Without a filter the children of collapsed entities
// are skipped. A filter matches name, tag or id case-insensitively and lists
// every match regardless of collapse state.
func HierarchyRows(root *scene.Entity, filter string, collapsed func(scene.ID) bool) []Row {
	var rows []Row
	filter = strings.ToLower(strings.TrimSpace(filter))

	var visit func(e *scene.Entity, depth int)
	visit = func(e *scene.Entity, depth int) {
		for _, c := range e.Children() {
			if c.HasFlag(scene.FlagExcludeFromTree) || c.IsDestroyQueued() {
				continue
			}
			if filter == "" || matches(c, filter) {
				rows = append(rows, Row{
					ID:          c.ID(),
					Depth:       depth,
					Name:        c.Name(),
					Tag:         c.TypeTag(),
					Enabled:     c.EnabledHierarchy(),
					HasChildren: hasVisibleChildren(c),
				})
			}
			if filter != "" || collapsed == nil || !collapsed(c.ID()) {
				visit(c, depth+1)
			}
		}
	}
	visit(root, 0)
	return rows
}

func hasVisibleChildren(e *scene.Entity) bool {
	for _, c := range e.Children() {
		if !c.HasFlag(scene.FlagExcludeFromTree) && !c.IsDestroyQueued() {
			return true
		}
	}
	return false
}

func matches(e *scene.Entity, filter string) bool {
	return strings.Contains(strings.ToLower(e.Name()), filter) ||
		strings.Contains(strings.ToLower(e.TypeTag()), filter) ||
		strconv.FormatUint(uint64(e.ID()), 10) == filter
}
