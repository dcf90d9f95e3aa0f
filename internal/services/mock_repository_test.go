package services

import (
	"context"
	"fmt"
	"sync"

	"picviewer/internal/infrastructure/errors"
	"picviewer/internal/repository"
	"picviewer/internal/types"
)

// MockRepository implements the SettingsRepository interface for testing
type MockRepository struct {
	mu               sync.RWMutex
	preferences      map[string]string
	history          map[string]string
	windowState      *types.WindowState
	saveCallCount    int
	loadCallCount    int
	historyCallCount int
	deleteCallCount  int
	transactionCalls int
	shouldFailSave   bool
	shouldFailLoad   bool
	shouldFailTx     bool
}

var _ repository.SettingsRepository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		preferences: make(map[string]string),
		history:     make(map[string]string),
	}
}

// SetFailureModes configures the mock to simulate failures
func (m *MockRepository) SetFailureModes(save, load, tx bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailSave = save
	m.shouldFailLoad = load
	m.shouldFailTx = tx
}

// GetCallCounts returns the number of times each method group was called
func (m *MockRepository) GetCallCounts() (save, load, history, delete, tx int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveCallCount, m.loadCallCount, m.historyCallCount, m.deleteCallCount, m.transactionCalls
}

// GetPreferences implements SettingsRepository interface
func (m *MockRepository) GetPreferences(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loadCallCount++
	if m.shouldFailLoad {
		return nil, errors.NewRepositoryError("GetPreferences", fmt.Errorf("mock load failure"), errors.ErrCodeConnection)
	}
	return copyMap(m.preferences), nil
}

// SavePreferences implements SettingsRepository interface
func (m *MockRepository) SavePreferences(ctx context.Context, prefs map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCallCount++
	if m.shouldFailSave {
		return errors.NewRepositoryError("SavePreferences", fmt.Errorf("mock save failure"), errors.ErrCodeConnection)
	}
	for k, v := range prefs {
		m.preferences[k] = v
	}
	return nil
}

// GetHistory implements SettingsRepository interface
func (m *MockRepository) GetHistory(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loadCallCount++
	if m.shouldFailLoad {
		return nil, errors.NewRepositoryError("GetHistory", fmt.Errorf("mock load failure"), errors.ErrCodeConnection)
	}
	return copyMap(m.history), nil
}

// UpsertHistory implements SettingsRepository interface
func (m *MockRepository) UpsertHistory(ctx context.Context, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.historyCallCount++
	if m.shouldFailSave {
		return errors.NewRepositoryError("UpsertHistory", fmt.Errorf("mock save failure"), errors.ErrCodeConnection)
	}
	for k, v := range entries {
		m.history[k] = v
	}
	return nil
}

// DeleteHistory implements SettingsRepository interface
func (m *MockRepository) DeleteHistory(ctx context.Context, directory string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleteCallCount++
	if _, ok := m.history[directory]; !ok {
		return errors.HandleNotFound("DeleteHistory", "history", directory)
	}
	delete(m.history, directory)
	return nil
}

// GetWindowState implements SettingsRepository interface
func (m *MockRepository) GetWindowState(ctx context.Context) (*types.WindowState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loadCallCount++
	if m.shouldFailLoad {
		return nil, errors.NewRepositoryError("GetWindowState", fmt.Errorf("mock load failure"), errors.ErrCodeConnection)
	}
	if m.windowState == nil {
		return nil, errors.HandleNotFound("GetWindowState", "window_state", "1")
	}
	state := *m.windowState
	return &state, nil
}

// SaveWindowState implements SettingsRepository interface
func (m *MockRepository) SaveWindowState(ctx context.Context, state *types.WindowState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCallCount++
	if m.shouldFailSave {
		return errors.NewRepositoryError("SaveWindowState", fmt.Errorf("mock save failure"), errors.ErrCodeConnection)
	}
	saved := *state
	m.windowState = &saved
	return nil
}

// WithTransaction implements SettingsRepository interface. Writes made by
// fn are discarded when it fails.
func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repo repository.SettingsRepository) error) error {
	m.mu.Lock()
	m.transactionCalls++
	if m.shouldFailTx {
		m.mu.Unlock()
		return errors.NewRepositoryError("WithTransaction", fmt.Errorf("mock transaction failure"), errors.ErrCodeTransaction)
	}
	prefs, history := copyMap(m.preferences), copyMap(m.history)
	state := m.windowState
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.preferences, m.history, m.windowState = prefs, history, state
		m.mu.Unlock()
		return err
	}
	return nil
}

func copyMap(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
