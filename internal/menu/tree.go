package menu

import (
	"fmt"

	"picviewer/internal/types"
)

// NodeKind identifies the shape of a Node
type NodeKind int

const (
	KindLeaf NodeKind = iota
	KindSeparator
	KindSubmenu
	KindRadio
)

func (k NodeKind) String() string {
	switch k {
	case KindLeaf:
		return "text"
	case KindSeparator:
		return "separator"
	case KindSubmenu:
		return "submenu"
	case KindRadio:
		return "radio"
	default:
		return "unknown"
	}
}

// Node is one entry of a menu. Group and Selected apply to radio items,
// Children to submenus.
type Node struct {
	Kind     NodeKind
	ID       string
	Label    string
	Enabled  bool
	Group    string
	Selected bool
	Children Tree
}

// Tree is an ordered list of nodes
type Tree []Node

// Leaf creates an enabled text item
func Leaf(id, label string) Node {
	return Node{Kind: KindLeaf, ID: id, Label: label, Enabled: true}
}

// Separator creates a separator line
func Separator() Node {
	return Node{Kind: KindSeparator}
}

// Submenu creates a nested menu
func Submenu(id, label string, children ...Node) Node {
	return Node{Kind: KindSubmenu, ID: id, Label: label, Enabled: true, Children: children}
}

// Radio creates a radio item. Items are grouped by the group string alone,
// independent of where they are nested.
func Radio(id, label, group string, selected bool) Node {
	return Node{Kind: KindRadio, ID: id, Label: label, Enabled: true, Group: group, Selected: selected}
}

// Walk visits every node depth-first in menu order. Returning false stops the walk.
func (t Tree) Walk(fn func(Node) bool) {
	t.walk(fn)
}

func (t Tree) walk(fn func(Node) bool) bool {
	for _, node := range t {
		if !fn(node) {
			return false
		}
		if node.Kind == KindSubmenu && !node.Children.walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the node with the given id
func (t Tree) Find(id string) (Node, bool) {
	var found Node
	ok := false
	t.Walk(func(n Node) bool {
		if n.Kind != KindSeparator && n.ID == id {
			found, ok = n, true
			return false
		}
		return true
	})
	return found, ok
}

// Count returns the number of nodes, separators included
func (t Tree) Count() int {
	count := 0
	t.Walk(func(Node) bool {
		count++
		return true
	})
	return count
}

// RadioGroups returns the radio items of every group in menu order
func (t Tree) RadioGroups() map[string][]Node {
	groups := make(map[string][]Node)
	t.Walk(func(n Node) bool {
		if n.Kind == KindRadio {
			groups[n.Group] = append(groups[n.Group], n)
		}
		return true
	})
	return groups
}

// SelectedIn returns the id of the selected radio item of a group
func (t Tree) SelectedIn(group string) (string, bool) {
	for _, n := range t.RadioGroups()[group] {
		if n.Selected {
			return n.ID, true
		}
	}
	return "", false
}

// Validate checks that ids are present and unique, submenus are not empty and
// every radio group has exactly one selected item
func (t Tree) Validate() error {
	seen := make(map[string]bool)
	var err error
	t.Walk(func(n Node) bool {
		if n.Kind == KindSeparator {
			return true
		}
		switch {
		case n.ID == "":
			err = fmt.Errorf("%s item %q has no id", n.Kind, n.Label)
		case seen[n.ID]:
			err = fmt.Errorf("duplicate item id %q", n.ID)
		case n.Kind == KindSubmenu && len(n.Children) == 0:
			err = fmt.Errorf("submenu %q is empty", n.ID)
		case n.Kind == KindRadio && n.Group == "":
			err = fmt.Errorf("radio item %q has no group", n.ID)
		}
		seen[n.ID] = true
		return err == nil
	})
	if err != nil {
		return err
	}

	for group, members := range t.RadioGroups() {
		selected := 0
		for _, m := range members {
			if m.Selected {
				selected++
			}
		}
		if selected != 1 {
			return fmt.Errorf("radio group %q has %d selected items", group, selected)
		}
	}
	return nil
}

// Select returns a copy of the tree with the radio item id selected and its
// group siblings cleared. The tree is returned unchanged when id is not a radio item.
func (t Tree) Select(id string) Tree {
	target, ok := t.Find(id)
	if !ok || target.Kind != KindRadio {
		return t
	}
	return t.mapRadios(func(n Node) Node {
		if n.Group == target.Group {
			n.Selected = n.ID == id
		}
		return n
	})
}

func (t Tree) mapRadios(fn func(Node) Node) Tree {
	out := make(Tree, len(t))
	for i, n := range t {
		switch n.Kind {
		case KindRadio:
			out[i] = fn(n)
		case KindSubmenu:
			n.Children = n.Children.mapRadios(fn)
			out[i] = n
		default:
			out[i] = n
		}
	}
	return out
}

// Item and group identifiers of the context menu
const (
	ItemOpenFile       = "OpenFile"
	ItemReveal         = "Reveal"
	ItemHistory        = "History"
	ItemShowActualSize = "ShowActualSize"
	ItemToFirst        = "ToFirst"
	ItemToLast         = "ToLast"
	ItemReload         = "Reload"

	GroupSort      = "Sort"
	GroupTimestamp = "Timestamp"
	GroupMode      = "Mode"
	GroupTheme     = "Theme"
)

type choice struct {
	id    string
	label string
}

var (
	sortChoices = []choice{
		{string(types.SortNameAsc), "Name(Asc)"},
		{string(types.SortNameDesc), "Name(Desc)"},
		{string(types.SortDateAsc), "Date(Asc)"},
		{string(types.SortDateDesc), "Date(Desc)"},
	}
	timestampChoices = []choice{
		{string(types.TimestampNormal), "Normal"},
		{string(types.TimestampUnchanged), "Unchanged"},
	}
	modeChoices = []choice{
		{string(types.ModeKeyboard), "Keyboard"},
		{string(types.ModeMouse), "Mouse"},
	}
	themeChoices = []choice{
		{string(types.ThemeDark), "Dark"},
		{string(types.ThemeLight), "Light"},
	}
)

// Build creates the context menu for the given settings. The result depends
// on settings alone.
func Build(settings types.Settings) Tree {
	return Tree{
		Leaf(ItemOpenFile, "Open File"),
		Leaf(ItemReveal, "Reveal in File Explorer"),
		Leaf(ItemHistory, "History"),
		Leaf(ItemShowActualSize, "Show Actual Size"),
		Separator(),
		Leaf(ItemToFirst, "Move to First"),
		Leaf(ItemToLast, "Move to Last"),
		Submenu(GroupSort, "Sort By", radioGroup(GroupSort, settings.Sort, sortChoices)...),
		Separator(),
		Submenu(GroupTimestamp, "Timestamp", radioGroup(GroupTimestamp, settings.Timestamp, timestampChoices)...),
		Submenu(GroupMode, "Mode", radioGroup(GroupMode, settings.Mode, modeChoices)...),
		Submenu(GroupTheme, "Theme", radioGroup(GroupTheme, settings.Theme, themeChoices)...),
		Separator(),
		Leaf(ItemReload, "Reload"),
	}
}

// radioGroup selects the choice matching value, or the first choice when
// nothing matches
func radioGroup(group, value string, choices []choice) []Node {
	selected := 0
	for i, c := range choices {
		if c.id == value {
			selected = i
			break
		}
	}

	nodes := make([]Node, len(choices))
	for i, c := range choices {
		nodes[i] = Radio(c.id, c.label, group, i == selected)
	}
	return nodes
}
