package session_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/gotodo/todokit/pkg/session"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Login(ctx context.Context, username, password string) (session.Session, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *mockGateway) Register(ctx context.Context, username, password string) (session.Session, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *mockGateway) Refresh(ctx context.Context) (session.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *mockGateway) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// statusError mimics a transport error that only exposes its HTTP status.
type statusError struct{ code int }

func (e statusError) Error() string   { return "status error" }
func (e statusError) HTTPStatus() int { return e.code }
