package mocks

import (
	"context"

	"paperapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockPaperRepository struct {
	mock.Mock
}

func (m *MockPaperRepository) Create(ctx context.Context, p *model.Paper) (*model.Paper, error) {
	args := m.Called(ctx, p)
	if f, ok := args.Get(0).(func(context.Context, *model.Paper) *model.Paper); ok {
		return f(ctx, p), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paper), args.Error(1)
}

func (m *MockPaperRepository) FindByID(ctx context.Context, id string) (*model.Paper, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paper), args.Error(1)
}

func (m *MockPaperRepository) List(ctx context.Context) ([]model.Paper, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Paper), args.Error(1)
}

func (m *MockPaperRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
