package mocks

import (
	"context"
	"io"

	"paperapi/internal/model"
	"paperapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockPaperService struct {
	mock.Mock
}

func (m *MockPaperService) List(ctx context.Context) ([]model.Paper, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Paper), args.Error(1)
}

func (m *MockPaperService) Upload(ctx context.Context, in service.UploadInput) (*model.Paper, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Paper), args.Error(1)
}

func (m *MockPaperService) Download(ctx context.Context, id string) (*model.Paper, io.ReadCloser, error) {
	args := m.Called(ctx, id)
	var p *model.Paper
	if args.Get(0) != nil {
		p = args.Get(0).(*model.Paper)
	}
	var rc io.ReadCloser
	if args.Get(1) != nil {
		rc = args.Get(1).(io.ReadCloser)
	}
	return p, rc, args.Error(2)
}

func (m *MockPaperService) Deliver(ctx context.Context, paperID, phoneNumber string) error {
	args := m.Called(ctx, paperID, phoneNumber)
	return args.Error(0)
}
