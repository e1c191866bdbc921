package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/secure-notes/internal/lib/password"
	"github.com/magabrotheeeer/secure-notes/internal/models"
)

type RepositoryMock struct {
	mock.Mock
}

func (m *RepositoryMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *RepositoryMock) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepositoryMock) GetRoleByName(ctx context.Context, name models.AppRole) (*models.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *RepositoryMock) ListRoles(ctx context.Context) ([]models.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Role), args.Error(1)
}

func (m *RepositoryMock) UpdateUserRole(ctx context.Context, userID, roleID int64) error {
	return m.Called(ctx, userID, roleID).Error(0)
}

func (m *RepositoryMock) UpdateUserFlag(ctx context.Context, userID int64, flag models.UserFlag, value bool) error {
	return m.Called(ctx, userID, flag, value).Error(0)
}

func (m *RepositoryMock) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestService_UpdateUserRole(t *testing.T) {
	tests := []struct {
		name     string
		roleName string
		setup    func(r *RepositoryMock)
		wantErr  error
	}{
		{
			name:     "promote to admin",
			roleName: "ROLE_ADMIN",
			setup: func(r *RepositoryMock) {
				r.On("GetRoleByName", mock.Anything, models.RoleAdmin).Return(&models.Role{ID: 2, Name: models.RoleAdmin}, nil).Once()
				r.On("UpdateUserRole", mock.Anything, int64(7), int64(2)).Return(nil).Once()
			},
		},
		{
			name:     "unknown role rejected before store",
			roleName: "ROLE_ROOT",
			setup:    func(_ *RepositoryMock) {},
			wantErr:  models.ErrUnknownRole,
		},
		{
			name:     "short role name rejected",
			roleName: "admin",
			setup:    func(_ *RepositoryMock) {},
			wantErr:  models.ErrUnknownRole,
		},
		{
			name:     "unknown user",
			roleName: "ROLE_USER",
			setup: func(r *RepositoryMock) {
				r.On("GetRoleByName", mock.Anything, models.RoleUser).Return(&models.Role{ID: 1, Name: models.RoleUser}, nil).Once()
				r.On("UpdateUserRole", mock.Anything, int64(7), int64(1)).Return(models.ErrUserNotFound).Once()
			},
			wantErr: models.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepositoryMock)
			tt.setup(repo)
			s := NewService(repo, newNoopLogger())

			err := s.UpdateUserRole(context.Background(), 7, tt.roleName)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_StatusToggles(t *testing.T) {
	tests := []struct {
		name      string
		call      func(s *Service) error
		flag      models.UserFlag
		wantValue bool
	}{
		{
			name:      "lock sets account_non_locked false",
			call:      func(s *Service) error { return s.UpdateLockStatus(context.Background(), 4, true) },
			flag:      models.FlagAccountNonLocked,
			wantValue: false,
		},
		{
			name:      "unlock sets account_non_locked true",
			call:      func(s *Service) error { return s.UpdateLockStatus(context.Background(), 4, false) },
			flag:      models.FlagAccountNonLocked,
			wantValue: true,
		},
		{
			name:      "expire account",
			call:      func(s *Service) error { return s.UpdateExpiryStatus(context.Background(), 4, true) },
			flag:      models.FlagAccountNonExpired,
			wantValue: false,
		},
		{
			name:      "disable account",
			call:      func(s *Service) error { return s.UpdateEnabledStatus(context.Background(), 4, false) },
			flag:      models.FlagEnabled,
			wantValue: false,
		},
		{
			name:      "expire credentials",
			call:      func(s *Service) error { return s.UpdateCredentialsExpiryStatus(context.Background(), 4, true) },
			flag:      models.FlagCredentialsNonExpired,
			wantValue: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepositoryMock)
			repo.On("UpdateUserFlag", mock.Anything, int64(4), tt.flag, tt.wantValue).Return(nil).Once()

			require.NoError(t, tt.call(NewService(repo, newNoopLogger())))
			repo.AssertExpectations(t)
		})
	}
}

func TestService_UpdateLockStatus_UnknownUser(t *testing.T) {
	repo := new(RepositoryMock)
	repo.On("UpdateUserFlag", mock.Anything, int64(99), models.FlagAccountNonLocked, false).Return(models.ErrUserNotFound).Once()

	err := NewService(repo, newNoopLogger()).UpdateLockStatus(context.Background(), 99, true)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestService_UpdatePassword(t *testing.T) {
	repo := new(RepositoryMock)
	repo.On("UpdatePassword", mock.Anything, int64(4), mock.MatchedBy(func(hash string) bool {
		return password.CompareHash(hash, "n3w-pass") == nil
	})).Return(nil).Once()

	require.NoError(t, NewService(repo, newNoopLogger()).UpdatePassword(context.Background(), 4, "n3w-pass"))
	repo.AssertExpectations(t)
}

func TestService_Reads(t *testing.T) {
	repo := new(RepositoryMock)
	repo.On("ListUsers", mock.Anything).Return([]*models.User{{ID: 1}, {ID: 2}}, nil).Once()
	repo.On("GetUserByID", mock.Anything, int64(2)).Return(&models.User{ID: 2, Username: "admin"}, nil).Once()
	repo.On("GetUserByID", mock.Anything, int64(5)).Return(nil, models.ErrUserNotFound).Once()
	repo.On("ListRoles", mock.Anything).Return([]models.Role{{ID: 1, Name: models.RoleUser}, {ID: 2, Name: models.RoleAdmin}}, nil).Once()

	s := NewService(repo, newNoopLogger())

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)

	user, err := s.GetUser(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = s.GetUser(context.Background(), 5)
	assert.ErrorIs(t, err, models.ErrUserNotFound)

	roles, err := s.ListRoles(context.Background())
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}
