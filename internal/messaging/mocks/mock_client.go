package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) SendMedia(ctx context.Context, destination string, media io.Reader, filename, caption string) error {
	args := m.Called(ctx, destination, media, filename, caption)
	return args.Error(0)
}
