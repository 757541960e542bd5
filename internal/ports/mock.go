package ports

import (
	"context"

	"github.com/cristianoliveira/area-links/internal/history"
	"github.com/cristianoliveira/area-links/internal/protocol"
	"github.com/stretchr/testify/mock"
)

// MockTabs is a testify mock of Tabs.
//
// Example usage:
//
//	tabs := new(MockTabs)
//	tabs.On("Get", mock.Anything, 7).Return(Tab{ID: 7, URL: "https://a.test/"}, nil)
//	tabs.On("SendMessage", mock.Anything, 7, mock.Anything).Return(protocol.Ack{Success: true}, nil)
//
//	// ... exercise the orchestrator ...
//
//	tabs.AssertCalled(t, "SendMessage", mock.Anything, 7, protocol.ResetSelection{})
type MockTabs struct {
	mock.Mock
}

// Get returns the configured tab.
func (m *MockTabs) Get(ctx context.Context, tabID int) (Tab, error) {
	args := m.Called(ctx, tabID)
	return args.Get(0).(Tab), args.Error(1)
}

// Active returns the configured active tab.
func (m *MockTabs) Active(ctx context.Context) (Tab, error) {
	args := m.Called(ctx)
	return args.Get(0).(Tab), args.Error(1)
}

// SendMessage returns the configured response. A nil first return value is
// allowed for fire-and-forget messages.
func (m *MockTabs) SendMessage(ctx context.Context, tabID int, req protocol.Request) (protocol.Response, error) {
	args := m.Called(ctx, tabID, req)
	resp, _ := args.Get(0).(protocol.Response)
	return resp, args.Error(1)
}

// InsertCSS returns the configured error.
func (m *MockTabs) InsertCSS(ctx context.Context, tabID int) error {
	return m.Called(ctx, tabID).Error(0)
}

// ExecuteScript returns the configured error.
func (m *MockTabs) ExecuteScript(ctx context.Context, tabID int) error {
	return m.Called(ctx, tabID).Error(0)
}

// Create returns the configured tab.
func (m *MockTabs) Create(ctx context.Context, opts CreateTabOptions) (Tab, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(Tab), args.Error(1)
}

// CreateWindow returns the configured error.
func (m *MockTabs) CreateWindow(ctx context.Context, urls []string, focused bool) error {
	return m.Called(ctx, urls, focused).Error(0)
}

// MockHistoryStore is a testify mock of HistoryStore.
type MockHistoryStore struct {
	mock.Mock
}

// Load returns the configured list.
func (m *MockHistoryStore) Load(ctx context.Context, kind history.Kind) ([]string, error) {
	args := m.Called(ctx, kind)
	urls, _ := args.Get(0).([]string)
	return urls, args.Error(1)
}

// Save returns the configured error.
func (m *MockHistoryStore) Save(ctx context.Context, kind history.Kind, urls []string) error {
	return m.Called(ctx, kind, urls).Error(0)
}

var (
	_ Tabs         = (*MockTabs)(nil)
	_ HistoryStore = (*MockHistoryStore)(nil)
)
