// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, req controller.Request) (*model.CachedResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CachedResponse), args.Error(1)
}

type MockClients struct {
	mock.Mock
}

func (m *MockClients) MatchAll(ctx context.Context, opts controller.MatchOptions) ([]controller.Client, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]controller.Client), args.Error(1)
}

func (m *MockClients) Navigate(ctx context.Context, id, url string) error {
	return m.Called(ctx, id, url).Error(0)
}

func (m *MockClients) Focus(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockClients) OpenWindow(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *MockClients) Claim(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Show(ctx context.Context, n model.NotificationPayload) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotifier) Close(ctx context.Context, tag string) error {
	return m.Called(ctx, tag).Error(0)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordLifecycle(ctx context.Context, event, version string, fields map[string]interface{}) {
	m.Called(ctx, event, version, fields)
}
