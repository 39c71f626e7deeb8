package mocks

import (
	"context"

	"github.com/ridloal/stationery-storefront/internal/cart/domain"
	"github.com/stretchr/testify/mock"
)

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Save(ctx context.Context, sessionID string, snap domain.Snapshot) error {
	args := m.Called(ctx, sessionID, snap)
	return args.Error(0)
}

func (m *MockSnapshotRepository) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	args := m.Called(ctx, sessionID)
	if res := args.Get(0); res != nil {
		return res.(domain.Snapshot), args.Error(1)
	}
	return domain.Snapshot{}, args.Error(1)
}

func (m *MockSnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
