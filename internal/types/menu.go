package types

// WindowID is the label that identifies one window for the life of the process
type WindowID string

// MainWindow is the label of the primary viewer window
const MainWindow WindowID = "main"

// Position anchors a popup in screen coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SelectionResult is the outcome of one popup. Selected is false when the
// user dismissed the menu without choosing an item.
type SelectionResult struct {
	ItemID   string `json:"itemId,omitempty"`
	Selected bool   `json:"selected"`
}
