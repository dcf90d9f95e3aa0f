package menu

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "picviewer/internal/infrastructure/errors"
	"picviewer/internal/testutils"
	"picviewer/internal/types"
)

type popupOutcome struct {
	result types.SelectionResult
	err    error
}

func startPopup(ctx context.Context, c *Coordinator, window types.WindowID, pos types.Position) <-chan popupOutcome {
	out := make(chan popupOutcome, 1)
	go func() {
		result, err := c.Popup(ctx, window, pos)
		out <- popupOutcome{result: result, err: err}
	}()
	return out
}

func waitOpened(t *testing.T, m *fakeMenu) {
	t.Helper()
	select {
	case <-m.opened:
	case <-time.After(time.Second):
		t.Fatal("popup was never shown")
	}
}

func waitOutcome(t *testing.T, out <-chan popupOutcome) popupOutcome {
	t.Helper()
	select {
	case o := <-out:
		return o
	case <-time.After(time.Second):
		t.Fatal("popup did not return")
		return popupOutcome{}
	}
}

func TestCoordinator_SelectionEmitsToOriginatingWindow(t *testing.T) {
	registry := NewRegistry()
	emitter := &fakeEmitter{}
	m := newFakeMenu()
	registry.Install("main", m, Build(types.Settings{Theme: "dark", Sort: "NameAsc", Timestamp: "Normal", Mode: "Mouse"}))
	c := NewCoordinator(registry, emitter, &testutils.RecordingLogger{}, 0)

	out := startPopup(context.Background(), c, "main", types.Position{X: 120, Y: 80})
	waitOpened(t, m)
	m.responses <- popupResponse{itemID: "ToFirst", selected: true}
	o := waitOutcome(t, out)

	if o.err != nil {
		t.Fatalf("Popup() error = %v", o.err)
	}
	if !o.result.Selected || o.result.ItemID != "ToFirst" {
		t.Errorf("Unexpected result %+v", o.result)
	}
	if m.positions[0] != (types.Position{X: 120, Y: 80}) {
		t.Errorf("Unexpected position %+v", m.positions[0])
	}

	events := emitter.Events()
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].window != "main" || events[0].event != SelectionEvent || events[0].payload[0] != "ToFirst" {
		t.Errorf("Unexpected event %+v", events[0])
	}
	if registry.Len() != 1 || registry.Showing("main") {
		t.Errorf("Expected one idle entry for main, got len=%d showing=%v", registry.Len(), registry.Showing("main"))
	}
}

func TestCoordinator_UnpreparedWindow(t *testing.T) {
	registry := NewRegistry()
	emitter := &fakeEmitter{}
	c := NewCoordinator(registry, emitter, &testutils.RecordingLogger{}, 0)

	result, err := c.Popup(context.Background(), "ghost", types.Position{})

	if !apperrors.IsMenuNotPrepared(err) {
		t.Fatalf("Expected MenuNotPrepared, got %v", err)
	}
	if result.Selected {
		t.Error("Expected no selection")
	}
	if len(emitter.Events()) != 0 {
		t.Error("Expected no events")
	}
	if registry.Len() != 0 {
		t.Error("Expected no registry entries")
	}
}

func TestCoordinator_DismissalEmitsNothing(t *testing.T) {
	registry := NewRegistry()
	emitter := &fakeEmitter{}
	m := newFakeMenu()
	registry.Install("main", m, Build(types.DefaultSettings()))
	c := NewCoordinator(registry, emitter, &testutils.RecordingLogger{}, 0)

	out := startPopup(context.Background(), c, "main", types.Position{X: 1, Y: 2})
	waitOpened(t, m)
	m.responses <- popupResponse{}
	o := waitOutcome(t, out)

	if o.err != nil || o.result.Selected {
		t.Errorf("Expected quiet dismissal, got %+v %v", o.result, o.err)
	}
	if len(emitter.Events()) != 0 {
		t.Error("Expected no events on dismissal")
	}
	if registry.Showing("main") {
		t.Error("Expected menu released after dismissal")
	}
}

func TestCoordinator_SecondPopupForSameWindowRejected(t *testing.T) {
	registry := NewRegistry()
	m := newFakeMenu()
	registry.Install("main", m, Build(types.DefaultSettings()))
	c := NewCoordinator(registry, &fakeEmitter{}, &testutils.RecordingLogger{}, 0)

	out := startPopup(context.Background(), c, "main", types.Position{})
	waitOpened(t, m)

	_, err := c.Popup(context.Background(), "main", types.Position{})
	if !apperrors.IsPopupActive(err) {
		t.Fatalf("Expected PopupActive, got %v", err)
	}

	m.responses <- popupResponse{}
	waitOutcome(t, out)
}

func TestCoordinator_ReprepareDuringPopupStillRejectsSecond(t *testing.T) {
	registry := NewRegistry()
	old := newFakeMenu()
	registry.Install("main", old, Build(types.DefaultSettings()))
	c := NewCoordinator(registry, &fakeEmitter{}, &testutils.RecordingLogger{}, 0)

	out := startPopup(context.Background(), c, "main", types.Position{})
	waitOpened(t, old)

	fresh := newFakeMenu()
	registry.Install("main", fresh, Build(types.DefaultSettings()))

	if _, err := c.Popup(context.Background(), "main", types.Position{}); !apperrors.IsPopupActive(err) {
		t.Fatalf("Expected PopupActive, got %v", err)
	}
	select {
	case <-fresh.opened:
		t.Fatal("Second popup shown while the first is still open")
	default:
	}

	old.responses <- popupResponse{}
	waitOutcome(t, out)

	next := startPopup(context.Background(), c, "main", types.Position{})
	waitOpened(t, fresh)
	fresh.responses <- popupResponse{}
	if o := waitOutcome(t, next); o.err != nil {
		t.Errorf("Popup after release error = %v", o.err)
	}
}

func TestCoordinator_WindowsDoNotBlockEachOther(t *testing.T) {
	registry := NewRegistry()
	emitter := &fakeEmitter{}
	mainMenu, otherMenu := newFakeMenu(), newFakeMenu()
	registry.Install("main", mainMenu, Build(types.DefaultSettings()))
	registry.Install("viewer-2", otherMenu, Build(types.DefaultSettings()))
	c := NewCoordinator(registry, emitter, &testutils.RecordingLogger{}, 0)

	mainOut := startPopup(context.Background(), c, "main", types.Position{})
	waitOpened(t, mainMenu)

	otherOut := startPopup(context.Background(), c, "viewer-2", types.Position{X: 5, Y: 5})
	waitOpened(t, otherMenu)
	otherMenu.responses <- popupResponse{itemID: "Reload", selected: true}
	if o := waitOutcome(t, otherOut); o.err != nil || o.result.ItemID != "Reload" {
		t.Fatalf("Second window popup failed: %+v %v", o.result, o.err)
	}

	select {
	case <-mainOut:
		t.Fatal("main popup returned before its response")
	default:
	}

	mainMenu.responses <- popupResponse{}
	waitOutcome(t, mainOut)

	events := emitter.Events()
	if len(events) != 1 || events[0].window != "viewer-2" {
		t.Errorf("Expected one event to viewer-2, got %+v", events)
	}
}

func TestCoordinator_TimeoutIsDismissal(t *testing.T) {
	registry := NewRegistry()
	emitter := &fakeEmitter{}
	logger := &testutils.RecordingLogger{}
	registry.Install("main", newFakeMenu(), Build(types.DefaultSettings()))
	c := NewCoordinator(registry, emitter, logger, 10*time.Millisecond)

	result, err := c.Popup(context.Background(), "main", types.Position{})
	if err != nil || result.Selected {
		t.Errorf("Expected dismissal, got %+v %v", result, err)
	}
	if !logger.Contains("INFO", "without response") {
		t.Error("Expected timeout to be logged")
	}
	if registry.Showing("main") {
		t.Error("Expected menu released after timeout")
	}
}

func TestCoordinator_ToolkitFailure(t *testing.T) {
	registry := NewRegistry()
	m := newFakeMenu()
	registry.Install("main", m, Build(types.DefaultSettings()))
	c := NewCoordinator(registry, &fakeEmitter{}, &testutils.RecordingLogger{}, 0)

	m.responses <- popupResponse{err: errToolkit}
	_, err := c.Popup(context.Background(), "main", types.Position{})

	if !errors.Is(err, errToolkit) {
		t.Fatalf("Expected toolkit error, got %v", err)
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeInternal) {
		t.Errorf("Expected internal code, got %v", err)
	}
	if registry.Showing("main") {
		t.Error("Expected menu released after failure")
	}
}

func TestCoordinator_EmitFailure(t *testing.T) {
	registry := NewRegistry()
	m := newFakeMenu()
	registry.Install("main", m, Build(types.DefaultSettings()))
	emitErr := errors.New("window closed")
	c := NewCoordinator(registry, &fakeEmitter{err: emitErr}, &testutils.RecordingLogger{}, 0)

	m.responses <- popupResponse{itemID: "Reload", selected: true}
	result, err := c.Popup(context.Background(), "main", types.Position{})

	if !errors.Is(err, emitErr) {
		t.Fatalf("Expected emit error, got %v", err)
	}
	if result.ItemID != "Reload" {
		t.Errorf("Expected the selection to be reported, got %+v", result)
	}
}
