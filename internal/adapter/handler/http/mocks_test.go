package http

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/wekeepgrowing/board-server/internal/domain/entity"
	"github.com/wekeepgrowing/board-server/internal/domain/model"
	"github.com/wekeepgrowing/board-server/internal/domain/repository"
)

// MockBoardRepository is a mock implementation of BoardRepository
type MockBoardRepository struct {
	mock.Mock
}

func (m *MockBoardRepository) Create(ctx context.Context, board *model.Board) error {
	return m.Called(ctx, board).Error(0)
}

func (m *MockBoardRepository) GetByID(ctx context.Context, id string) (*model.Board, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Board), args.Error(1)
}

func (m *MockBoardRepository) ListForUser(ctx context.Context, userID string, query entity.BoardQuery) ([]*model.Board, int64, error) {
	args := m.Called(ctx, userID, query)
	return args.Get(0).([]*model.Board), args.Get(1).(int64), args.Error(2)
}

func (m *MockBoardRepository) Update(ctx context.Context, id string, update model.BoardUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *MockBoardRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// MockMembershipRepository is a mock implementation of MembershipRepository
type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) membership(args mock.Arguments) (*model.Membership, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) Create(ctx context.Context, membership *model.Membership) error {
	return m.Called(ctx, membership).Error(0)
}

func (m *MockMembershipRepository) GetByID(ctx context.Context, teamID string) (*model.Membership, error) {
	return m.membership(m.Called(ctx, teamID))
}

func (m *MockMembershipRepository) GetByBoardAndUser(ctx context.Context, boardID, userID string) (*model.Membership, error) {
	return m.membership(m.Called(ctx, boardID, userID))
}

func (m *MockMembershipRepository) GetOwner(ctx context.Context, boardID string) (*model.Membership, error) {
	return m.membership(m.Called(ctx, boardID))
}

func (m *MockMembershipRepository) ListByBoard(ctx context.Context, boardID string, query entity.TeamQuery) ([]*model.Membership, int64, error) {
	args := m.Called(ctx, boardID, query)
	return args.Get(0).([]*model.Membership), args.Get(1).(int64), args.Error(2)
}

func (m *MockMembershipRepository) ListAllByBoard(ctx context.Context, boardID string) ([]*model.Membership, error) {
	args := m.Called(ctx, boardID)
	return args.Get(0).([]*model.Membership), args.Error(1)
}

func (m *MockMembershipRepository) CountByRole(ctx context.Context, boardID string, role model.Role) (int64, error) {
	args := m.Called(ctx, boardID, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMembershipRepository) UpdateRole(ctx context.Context, teamID string, role model.Role, permission model.Permission) error {
	return m.Called(ctx, teamID, role, permission).Error(0)
}

func (m *MockMembershipRepository) Delete(ctx context.Context, teamID string) error {
	return m.Called(ctx, teamID).Error(0)
}

func (m *MockMembershipRepository) DeleteByBoard(ctx context.Context, boardID string) error {
	return m.Called(ctx, boardID).Error(0)
}

// fakeStorage serves covers from a fixed CDN prefix.
type fakeStorage struct{}

func (fakeStorage) Upload(ctx context.Context, file *repository.Upload, folder string) (string, error) {
	_, err := io.Copy(io.Discard, file.Body)
	return file.Filename, err
}

func (fakeStorage) Delete(ctx context.Context, filename, folder string) error {
	return nil
}

func (fakeStorage) URL(ctx context.Context, filename, folder string) string {
	return "https://cdn.test/" + folder + "/" + filename
}
