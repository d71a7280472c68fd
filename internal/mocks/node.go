package mocks

import (
	"context"
	"io"

	"github.com/brettbedarf/datanode"
	"github.com/stretchr/testify/mock"
)

// MockNode implements datanode.Node for testing across packages
type MockNode struct {
	mock.Mock
}

func (m *MockNode) Name() string {
	return m.Called().String(0)
}

func (m *MockNode) Path() string {
	return m.Called().String(0)
}

func (m *MockNode) String() string {
	return m.Called().String(0)
}

func (m *MockNode) IsFile(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockNode) IsDir(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockNode) Exists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockNode) Create(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockNode) Mkdirs(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockNode) Touch(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockNode) Remove(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockNode) Size(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNode) Open(ctx context.Context) (io.ReadCloser, error) {
	args := m.Called(ctx)

	// Handle function return types (for complex tests)
	if fn, ok := args.Get(0).(func(context.Context) io.ReadCloser); ok {
		return fn(ctx), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockNode) OpenWriter(ctx context.Context) (io.WriteCloser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockNode) ChildrenNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockNode) Children(ctx context.Context) ([]datanode.Node, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]datanode.Node), args.Error(1)
}

func (m *MockNode) Child(name string) datanode.Node {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(datanode.Node)
}

var _ datanode.Node = (*MockNode)(nil)

// MockWriteCloser records writes and returns configured errors
type MockWriteCloser struct {
	mock.Mock
}

func (m *MockWriteCloser) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockWriteCloser) Close() error {
	return m.Called().Error(0)
}
