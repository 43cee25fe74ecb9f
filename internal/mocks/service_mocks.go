// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"
	"time"

	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) Record(ctx context.Context, entry *model.JournalEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockJournalService) RecordMany(ctx context.Context, entries []*model.JournalEntry) error {
	return m.Called(ctx, entries).Error(0)
}

func (m *MockJournalService) Query(ctx context.Context, opts model.JournalQueryOptions) ([]model.JournalEntry, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.JournalEntry), args.Error(1)
}

func (m *MockJournalService) Count(ctx context.Context, opts model.JournalQueryOptions) (int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(int64), args.Error(1)
}

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(subject string, scopes []string) (string, time.Time, error) {
	args := m.Called(subject, scopes)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) Validate(tokenString string) (*dto.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.Claims), args.Error(1)
}
