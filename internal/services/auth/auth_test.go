package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/secure-notes/internal/lib/jwt"
	"github.com/magabrotheeeer/secure-notes/internal/lib/password"
	"github.com/magabrotheeeer/secure-notes/internal/models"
	"github.com/magabrotheeeer/secure-notes/internal/services/auth"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) CreateUser(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetRoleByName(ctx context.Context, name models.AppRole) (*models.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newUser(t *testing.T, username, rawPassword string, role models.AppRole) *models.User {
	t.Helper()
	u := models.NewActiveUser(username, username+"@x.com", models.Role{ID: 1, Name: role}, models.SignUpMethodEmail, time.Now())
	u.ID = 1
	if rawPassword != "" {
		hash, err := password.GetHash(rawPassword)
		require.NoError(t, err)
		u.PasswordHash = hash
	}
	return &u
}

func TestAuthService_Login(t *testing.T) {
	maker := jwt.NewJWTMaker("secret", time.Hour)

	locked := newUser(t, "user1", "password1", models.RoleUser)
	locked.AccountNonLocked = false

	tests := []struct {
		name      string
		user      *models.User
		repoErr   error
		password  string
		wantErr   error
		wantRoles []string
	}{
		{
			name:      "valid credentials",
			user:      newUser(t, "alice", "pw1", models.RoleUser),
			password:  "pw1",
			wantRoles: []string{"ROLE_USER"},
		},
		{
			name:      "admin",
			user:      newUser(t, "admin", "adminPass", models.RoleAdmin),
			password:  "adminPass",
			wantRoles: []string{"ROLE_ADMIN"},
		},
		{
			name:     "wrong password",
			user:     newUser(t, "alice", "pw1", models.RoleUser),
			password: "pw2",
			wantErr:  models.ErrBadCredentials,
		},
		{
			name:     "unknown user",
			repoErr:  models.ErrUserNotFound,
			password: "pw1",
			wantErr:  models.ErrBadCredentials,
		},
		{
			name:     "federated account without password",
			user:     newUser(t, "octocat", "", models.RoleUser),
			password: "",
			wantErr:  models.ErrBadCredentials,
		},
		{
			name:     "locked account",
			user:     locked,
			password: "password1",
			wantErr:  models.ErrBadCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			username := "alice"
			if tt.user != nil {
				username = tt.user.Username
				repo.On("GetUserByUsername", mock.Anything, username).Return(tt.user, nil).Once()
			} else {
				repo.On("GetUserByUsername", mock.Anything, username).Return(nil, tt.repoErr).Once()
			}
			svc := auth.NewAuthService(repo, maker, newNoopLogger())

			res, err := svc.Login(context.Background(), username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, username, res.Username)
			assert.Equal(t, tt.wantRoles, res.Roles)

			claims, err := maker.ParseToken(res.Token)
			require.NoError(t, err)
			assert.Equal(t, username, claims.Subject)
			assert.Equal(t, tt.wantRoles, claims.Roles)
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("GetUserByUsername", mock.Anything, "alice").Return(nil, errors.New("connection refused"))
	svc := auth.NewAuthService(repo, jwt.NewJWTMaker("secret", time.Hour), newNoopLogger())

	_, err := svc.Login(context.Background(), "alice", "pw1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrBadCredentials)
}

func TestAuthService_Register(t *testing.T) {
	userRole := &models.Role{ID: 1, Name: models.RoleUser}
	adminRole := &models.Role{ID: 2, Name: models.RoleAdmin}

	tests := []struct {
		name       string
		req        auth.SignupRequest
		allowAdmin bool
		setupMocks func(r *UserRepoMock)
		wantID     int64
		wantErr    error
	}{
		{
			name: "default role",
			req:  auth.SignupRequest{Username: "alice", Email: "alice@x.com", Password: "pw1"},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetRoleByName", mock.Anything, models.RoleUser).Return(userRole, nil).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Username == "alice" &&
						u.Email == "alice@x.com" &&
						password.CompareHash(u.PasswordHash, "pw1") == nil &&
						u.Role == *userRole &&
						u.Enabled && u.AccountNonLocked && u.AccountNonExpired && u.CredentialsNonExpired &&
						!u.TwoFactorEnabled &&
						u.SignUpMethod == models.SignUpMethodEmail
				})).Return(int64(10), nil).Once()
			},
			wantID: 10,
		},
		{
			name:       "admin role when allowed",
			req:        auth.SignupRequest{Username: "root", Email: "root@x.com", Password: "pw1", Role: "admin"},
			allowAdmin: true,
			setupMocks: func(r *UserRepoMock) {
				r.On("GetRoleByName", mock.Anything, models.RoleAdmin).Return(adminRole, nil).Once()
				r.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
					return u.Role == *adminRole
				})).Return(int64(11), nil).Once()
			},
			wantID: 11,
		},
		{
			name:       "admin role rejected by default",
			req:        auth.SignupRequest{Username: "eve", Email: "eve@x.com", Password: "pw1", Role: "admin"},
			setupMocks: func(_ *UserRepoMock) {},
			wantErr:    models.ErrRoleNotAllowed,
		},
		{
			name:       "unknown role rejected before store",
			req:        auth.SignupRequest{Username: "eve", Email: "eve@x.com", Password: "pw1", Role: "root"},
			setupMocks: func(_ *UserRepoMock) {},
			wantErr:    models.ErrUnknownRole,
		},
		{
			name: "duplicate username",
			req:  auth.SignupRequest{Username: "alice", Email: "alice2@x.com", Password: "pw1"},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetRoleByName", mock.Anything, models.RoleUser).Return(userRole, nil).Once()
				r.On("CreateUser", mock.Anything, mock.Anything).Return(int64(0), models.ErrDuplicateUsername).Once()
			},
			wantErr: models.ErrDuplicateUsername,
		},
		{
			name: "missing role is a configuration error",
			req:  auth.SignupRequest{Username: "alice", Email: "alice@x.com", Password: "pw1"},
			setupMocks: func(r *UserRepoMock) {
				r.On("GetRoleByName", mock.Anything, models.RoleUser).Return(nil, models.ErrRoleNotFound).Once()
			},
			wantErr: models.ErrRoleNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)
			svc := auth.NewAuthService(repo, jwt.NewJWTMaker("secret", time.Hour), newNoopLogger(),
				auth.WithAdminSignup(tt.allowAdmin))

			id, err := svc.Register(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_LoadPrincipal(t *testing.T) {
	disabled := newUser(t, "bob", "pw", models.RoleUser)
	disabled.Enabled = false

	tests := []struct {
		name     string
		user     *models.User
		repoErr  error
		wantErr  error
		wantAuth []string
	}{
		{name: "current role from store", user: newUser(t, "bob", "pw", models.RoleAdmin), wantAuth: []string{"ROLE_ADMIN"}},
		{name: "disabled", user: disabled, wantErr: models.ErrUnauthenticated},
		{name: "deleted user", repoErr: models.ErrUserNotFound, wantErr: models.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			if tt.user != nil {
				repo.On("GetUserByUsername", mock.Anything, "bob").Return(tt.user, nil)
			} else {
				repo.On("GetUserByUsername", mock.Anything, "bob").Return(nil, tt.repoErr)
			}
			svc := auth.NewAuthService(repo, jwt.NewJWTMaker("secret", time.Hour), newNoopLogger())

			p, err := svc.LoadPrincipal(context.Background(), "bob")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "bob", p.Username)
			assert.Equal(t, tt.wantAuth, p.Authorities)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	maker := jwt.NewJWTMaker("secret", time.Hour)
	valid, err := maker.GenerateToken("bob", []string{"ROLE_USER"})
	require.NoError(t, err)
	forged, err := jwt.NewJWTMaker("other", time.Hour).GenerateToken("bob", []string{"ROLE_ADMIN"})
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		repo := new(UserRepoMock)
		repo.On("GetUserByUsername", mock.Anything, "bob").Return(newUser(t, "bob", "pw", models.RoleUser), nil)
		svc := auth.NewAuthService(repo, maker, newNoopLogger())

		p, err := svc.ValidateToken(context.Background(), valid)
		require.NoError(t, err)
		assert.Equal(t, "bob", p.Username)
		assert.Equal(t, []string{"ROLE_USER"}, p.Authorities)
	})

	t.Run("forged token never reaches store", func(t *testing.T) {
		repo := new(UserRepoMock)
		svc := auth.NewAuthService(repo, maker, newNoopLogger())

		_, err := svc.ValidateToken(context.Background(), forged)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
		assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
		repo.AssertNotCalled(t, "GetUserByUsername", mock.Anything, mock.Anything)
	})
}
