package types

// Theme is the color scheme applied to window chrome and context menus
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// SortType orders the files of the current directory
type SortType string

const (
	SortNameAsc  SortType = "NameAsc"
	SortNameDesc SortType = "NameDesc"
	SortDateAsc  SortType = "DateAsc"
	SortDateDesc SortType = "DateDesc"
)

// Timestamp controls whether saving an edited image keeps its modification time
type Timestamp string

const (
	TimestampNormal    Timestamp = "Normal"
	TimestampUnchanged Timestamp = "Unchanged"
)

// Mode selects how the viewer is navigated
type Mode string

const (
	ModeKeyboard Mode = "Keyboard"
	ModeMouse    Mode = "Mouse"
)

// Settings is the snapshot used to construct a window's context menu.
// Values are kept as strings because they arrive unvalidated from the UI.
type Settings struct {
	Theme     string `json:"theme"`
	Sort      string `json:"sort"`
	Timestamp string `json:"timestamp"`
	Mode      string `json:"mode"`
}

// Bounds is the last known window geometry
type Bounds struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// AppSettings is everything the viewer persists between runs
type AppSettings struct {
	Directory   string            `json:"directory"`
	FullPath    string            `json:"fullPath"`
	Preference  Settings          `json:"preference"`
	History     map[string]string `json:"history"` // directory -> last viewed file
	Bounds      Bounds            `json:"bounds"`
	IsMaximized bool              `json:"isMaximized"`
}

// DefaultSettings returns the preference defaults of a fresh install
func DefaultSettings() Settings {
	return Settings{
		Theme:     string(ThemeDark),
		Sort:      string(SortNameAsc),
		Timestamp: string(TimestampUnchanged),
		Mode:      string(ModeKeyboard),
	}
}

// DefaultAppSettings returns the full defaults of a fresh install
func DefaultAppSettings() *AppSettings {
	return &AppSettings{
		Preference: DefaultSettings(),
		History:    make(map[string]string),
		Bounds:     Bounds{Width: 1200, Height: 800},
	}
}

// SortOptions lists the sort identifiers in menu order
func SortOptions() []SortType {
	return []SortType{SortNameAsc, SortNameDesc, SortDateAsc, SortDateDesc}
}

// TimestampOptions lists the timestamp identifiers in menu order
func TimestampOptions() []Timestamp {
	return []Timestamp{TimestampNormal, TimestampUnchanged}
}

// ModeOptions lists the mode identifiers in menu order
func ModeOptions() []Mode {
	return []Mode{ModeKeyboard, ModeMouse}
}

// ThemeOptions lists the theme identifiers in menu order
func ThemeOptions() []Theme {
	return []Theme{ThemeDark, ThemeLight}
}

// ParsePreparedTheme maps the theme of a prepare request. Unknown values
// fall back to dark.
func ParsePreparedTheme(value string) Theme {
	if value == string(ThemeLight) {
		return ThemeLight
	}
	return ThemeDark
}

// ParseChangedTheme maps the payload of a theme change. Anything other than
// "dark" is light.
func ParseChangedTheme(value string) Theme {
	if value == string(ThemeDark) {
		return ThemeDark
	}
	return ThemeLight
}

// IsValid reports whether every field holds a known option identifier
func (s Settings) IsValid() bool {
	return contains(ThemeOptions(), Theme(s.Theme)) &&
		contains(SortOptions(), SortType(s.Sort)) &&
		contains(TimestampOptions(), Timestamp(s.Timestamp)) &&
		contains(ModeOptions(), Mode(s.Mode))
}

func contains[T comparable](options []T, value T) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

// WindowState is the persisted location and geometry of the main window
type WindowState struct {
	Directory   string
	FullPath    string
	Bounds      Bounds
	IsMaximized bool
}
