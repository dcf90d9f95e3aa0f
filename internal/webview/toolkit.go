package webview

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	wailsmenu "github.com/wailsapp/wails/v2/pkg/menu"

	"picviewer/internal/infrastructure/logging"
	"picviewer/internal/menu"
	"picviewer/internal/platform"
	"picviewer/internal/types"
)

// ColorScheme holds 0xRRGGBB colors of one theme
type ColorScheme struct {
	Color                uint32 `json:"color"`
	BackgroundColor      uint32 `json:"backgroundColor"`
	HoverBackgroundColor uint32 `json:"hoverBackgroundColor"`
	DisabledColor        uint32 `json:"disabledColor"`
}

// Appearance is the styling the frontend renders menus with
type Appearance struct {
	Dark                  ColorScheme `json:"dark"`
	Light                 ColorScheme `json:"light"`
	BorderSize            int         `json:"borderSize"`
	ItemHorizontalPadding int         `json:"itemHorizontalPadding"`
}

// DefaultAppearance returns the viewer's menu styling
func DefaultAppearance() Appearance {
	return Appearance{
		Dark: ColorScheme{
			Color:                0xefefef,
			BackgroundColor:      0x202020,
			HoverBackgroundColor: 0x373535,
			DisabledColor:        0x797979,
		},
		Light: ColorScheme{
			Color:                0x000000,
			BackgroundColor:      0xf9f9f9,
			HoverBackgroundColor: 0xdddddd,
			DisabledColor:        0xa0a0a0,
		},
		ItemHorizontalPadding: 20,
	}
}

// Toolkit renders menus in the page of a window. The Go side keeps each
// menu as a Wails menu model; the page draws it and reports the clicked item.
type Toolkit struct {
	windows    *Windows
	appearance Appearance
	logger     logging.Logger
}

// NewToolkit creates a toolkit for the given windows
func NewToolkit(windows *Windows, appearance Appearance, logger logging.Logger) *Toolkit {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Toolkit{windows: windows, appearance: appearance, logger: logger}
}

// Create implements menu.Toolkit
func (t *Toolkit) Create(window types.WindowID, handle platform.NativeHandle, tree menu.Tree, theme types.Theme) (menu.NativeMenu, error) {
	w, ok := t.windows.Get(window)
	if !ok {
		return nil, fmt.Errorf("unknown window %q", window)
	}

	p := &popupMenu{
		window:     w,
		events:     t.windows.events,
		logger:     t.logger,
		handle:     handle,
		tree:       tree,
		theme:      theme,
		appearance: t.appearance,
		items:      make(map[string]*wailsmenu.MenuItem),
		groups:     make(map[string][]*wailsmenu.MenuItem),
	}
	p.root = p.build(tree)
	return p, nil
}

// popupMenu is one window's menu. The registry guarantees PopupAt and
// SetTheme are never called concurrently; mu guards against readers from
// event callbacks.
type popupMenu struct {
	window     *Window
	events     Events
	logger     logging.Logger
	handle     platform.NativeHandle
	appearance Appearance

	mu     sync.Mutex
	tree   menu.Tree
	theme  types.Theme
	root   *wailsmenu.Menu
	items  map[string]*wailsmenu.MenuItem
	groups map[string][]*wailsmenu.MenuItem
}

func (p *popupMenu) build(tree menu.Tree) *wailsmenu.Menu {
	m := &wailsmenu.Menu{}
	for _, node := range tree {
		m.Items = append(m.Items, p.item(node))
	}
	return m
}

func (p *popupMenu) item(node menu.Node) *wailsmenu.MenuItem {
	var item *wailsmenu.MenuItem
	switch node.Kind {
	case menu.KindSeparator:
		return &wailsmenu.MenuItem{Type: wailsmenu.SeparatorType}
	case menu.KindSubmenu:
		item = &wailsmenu.MenuItem{
			Label:    node.Label,
			Type:     wailsmenu.SubmenuType,
			Disabled: !node.Enabled,
			SubMenu:  p.build(node.Children),
		}
	case menu.KindRadio:
		group := node.Group
		item = &wailsmenu.MenuItem{
			Label:    node.Label,
			Type:     wailsmenu.RadioType,
			Disabled: !node.Enabled,
			Checked:  node.Selected,
			Click: func(data *wailsmenu.CallbackData) {
				p.check(group, data.MenuItem)
			},
		}
		p.groups[group] = append(p.groups[group], item)
	default:
		item = &wailsmenu.MenuItem{
			Label:    node.Label,
			Type:     wailsmenu.TextType,
			Disabled: !node.Enabled,
		}
	}
	p.items[node.ID] = item
	return item
}

// check moves the radio selection of a group. Callers hold mu.
func (p *popupMenu) check(group string, selected *wailsmenu.MenuItem) {
	for _, item := range p.groups[group] {
		item.Checked = item == selected
	}
}

type itemView struct {
	ID       string     `json:"id,omitempty"`
	Label    string     `json:"label,omitempty"`
	Type     string     `json:"type"`
	Disabled bool       `json:"disabled,omitempty"`
	Checked  bool       `json:"checked,omitempty"`
	Children []itemView `json:"children,omitempty"`
}

type showRequest struct {
	RequestID  string      `json:"requestId"`
	X          int         `json:"x"`
	Y          int         `json:"y"`
	Handle     uint64      `json:"handle"`
	Theme      types.Theme `json:"theme"`
	Appearance Appearance  `json:"appearance"`
	Items      []itemView  `json:"items"`
}

type popupResponse struct {
	RequestID string `json:"requestId"`
	ItemID    string `json:"itemId"`
}

type themeUpdate struct {
	Theme      types.Theme `json:"theme"`
	Appearance Appearance  `json:"appearance"`
}

// view describes the current menu state for the page. Callers hold mu.
func (p *popupMenu) view(tree menu.Tree) []itemView {
	views := make([]itemView, 0, len(tree))
	for _, node := range tree {
		if node.Kind == menu.KindSeparator {
			views = append(views, itemView{Type: string(wailsmenu.SeparatorType)})
			continue
		}
		item := p.items[node.ID]
		v := itemView{
			ID:       node.ID,
			Label:    item.Label,
			Type:     string(item.Type),
			Disabled: item.Disabled,
			Checked:  item.Checked,
		}
		if node.Kind == menu.KindSubmenu {
			v.Children = p.view(node.Children)
		}
		views = append(views, v)
	}
	return views
}

// PopupAt implements menu.NativeMenu. The page answers a show request with a
// response carrying the same request id and the clicked item id, which is
// empty when the menu was dismissed.
func (p *popupMenu) PopupAt(ctx context.Context, pos types.Position) (string, bool, error) {
	wctx, ok := p.window.Context()
	if !ok {
		return "", false, fmt.Errorf("window %q is not attached", p.window.Label())
	}

	requestID := uuid.NewString()
	responses := make(chan popupResponse, 1)
	off := p.events.On(wctx, MenuResponseEvent, func(data ...interface{}) {
		resp, ok := decodeResponse(data)
		if !ok || resp.RequestID != requestID {
			return
		}
		select {
		case responses <- resp:
		default:
		}
	})
	defer off()

	p.mu.Lock()
	request := showRequest{
		RequestID:  requestID,
		X:          pos.X,
		Y:          pos.Y,
		Handle:     uint64(p.handle),
		Theme:      p.theme,
		Appearance: p.appearance,
		Items:      p.view(p.tree),
	}
	p.mu.Unlock()
	p.events.Emit(wctx, ShowMenuEvent, request)

	select {
	case resp := <-responses:
		if resp.ItemID == "" {
			return "", false, nil
		}
		return p.selectItem(resp.ItemID)
	case <-ctx.Done():
		p.events.Emit(wctx, HideMenuEvent, requestID)
		return "", false, ctx.Err()
	}
}

func (p *popupMenu) selectItem(id string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	item, ok := p.items[id]
	if !ok {
		return "", false, fmt.Errorf("unknown menu item %q", id)
	}
	if item.Disabled || item.Type == wailsmenu.SubmenuType {
		p.logger.Warn("Ignoring response for item that cannot be chosen", "window", p.window.Label(), "item", id)
		return "", false, nil
	}
	if item.Click != nil {
		item.Click(&wailsmenu.CallbackData{MenuItem: item})
	}
	p.tree = p.tree.Select(id)
	return id, true, nil
}

// SetTheme implements menu.NativeMenu
func (p *popupMenu) SetTheme(theme types.Theme) error {
	wctx, ok := p.window.Context()
	if !ok {
		return fmt.Errorf("window %q is not attached", p.window.Label())
	}
	p.mu.Lock()
	p.theme = theme
	p.mu.Unlock()
	p.events.Emit(wctx, MenuThemeEvent, themeUpdate{Theme: theme, Appearance: p.appearance})
	return nil
}

func decodeResponse(data []interface{}) (popupResponse, bool) {
	if len(data) == 0 {
		return popupResponse{}, false
	}
	raw, err := json.Marshal(data[0])
	if err != nil {
		return popupResponse{}, false
	}
	var resp popupResponse
	if err := json.Unmarshal(raw, &resp); err != nil || resp.RequestID == "" {
		return popupResponse{}, false
	}
	return resp, true
}

var _ menu.Toolkit = (*Toolkit)(nil)
