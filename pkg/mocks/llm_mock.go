// Package mocks provides testify mock implementations of the engine's
// external capabilities.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/testsmith-ai/testsmith/pkg/llm"
)

// MockLLMClient is a mock implementation of llm.Client interface.
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	args := m.Called(ctx, req)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*llm.Response), args.Error(1)
}
