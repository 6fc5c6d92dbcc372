package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Kai120789/marketplace/internal/users"
	pkgAuth "github.com/Kai120789/marketplace/pkg/auth"
	"github.com/Kai120789/marketplace/pkg/auth/session"
	"github.com/Kai120789/marketplace/pkg/config"
	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/db/dbtest"
	"github.com/Kai120789/marketplace/pkg/enums"
	pkgerrors "github.com/Kai120789/marketplace/pkg/errors"
	"github.com/Kai120789/marketplace/pkg/logger"
)

var (
	testJWT = config.JWTConfig{
		Secret:            "secret",
		Issuer:            "marketplace",
		ExpirationMinutes: 30,
	}
	testPassword = config.PasswordConfig{
		ArgonMemoryKB:    64,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
)

type stubSessionManager struct {
	generated map[string]uuid.UUID
	revoked   []string
	rotateErr error
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{generated: map[string]uuid.UUID{}}
}

func (s *stubSessionManager) Generate(_ context.Context, userID uuid.UUID, accessID string) (string, error) {
	s.generated[accessID] = userID
	return "refresh-" + accessID, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, userID uuid.UUID, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	if s.generated[oldAccessID] != userID || provided != "refresh-"+oldAccessID {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.generated, oldAccessID)
	next := session.NewAccessID()
	s.generated[next] = userID
	return next, "refresh-" + next, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.generated, accessID)
	return nil
}

func buildTestService(t *testing.T) (Service, *stubSessionManager, *db.Client) {
	t.Helper()
	client := dbtest.New(t)
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		DB:             client,
		SessionManager: sessions,
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
		Logger:         logger.Nop(),
	})
	require.NoError(t, err)
	return svc, sessions, client
}

func TestRegisterThenLogin(t *testing.T) {
	svc, sessions, _ := buildTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, RegisterRequest{Email: "  Buyer@Example.com ", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, "buyer@example.com", profile.Email)
	require.Equal(t, enums.UserRoleConsumer, profile.Role)

	resp, err := svc.Login(ctx, LoginRequest{Email: "buyer@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, profile.UserID, resp.User.UserID)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, profile.UserID, claims.UserID)
	require.Equal(t, enums.UserRoleConsumer, claims.Role)
	require.Equal(t, profile.UserID, sessions.generated[claims.ID])
}

func TestRegisterRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	svc, _, _ := buildTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "buyer@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "BUYER@example.com", Password: "secret123"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "other@example.com", Password: "onlyletters"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "not-an-email", Password: "secret123"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := buildTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "buyer@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "buyer@example.com", Password: "wrong1234"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	svc, _, client := buildTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, RegisterRequest{Email: "seller@example.com", Password: "secret123"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, LoginRequest{Email: "seller@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = users.NewRepository(client.DB()).UpdateRole(ctx, profile.UserID, enums.UserRoleSeller)
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWT, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleSeller, claims.Role)

	_, err = svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "old refresh token must not rotate twice")
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, sessions, _ := buildTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "buyer@example.com", Password: "secret123"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, LoginRequest{Email: "buyer@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.AccessToken))
	require.Len(t, sessions.revoked, 1)

	err = svc.Logout(ctx, "")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}
