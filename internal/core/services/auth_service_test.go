package services

import (
	"context"
	"testing"

	"insureadmin/internal/adapters/persistence/models"
	"insureadmin/internal/config"
	"insureadmin/internal/core/domain"
	"insureadmin/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
	for _, u := range users {
		repo.byEmail[u.Email] = u
		repo.byID[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	var out []*models.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if u, ok := f.byID[id]; ok {
		delete(f.byEmail, u.Email)
		delete(f.byID, id)
	}
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) ListByRole(_ context.Context, roleID uint) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.byID {
		if u.RoleID == roleID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

type fakeRoleRepo struct {
	roles []*models.Role
}

func (f *fakeRoleRepo) List(_ context.Context) ([]*models.Role, error) { return f.roles, nil }

func (f *fakeRoleRepo) GetByID(_ context.Context, id uint) (*models.Role, error) {
	for _, r := range f.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRoleRepo) GetByName(_ context.Context, name string) (*models.Role, error) {
	for _, r := range f.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeRefreshTokenRepo counts writes so tests can prove nothing was
// persisted on a failed sign-in
type fakeRefreshTokenRepo struct {
	created []*models.RefreshToken
	revoked int
}

func (f *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	for _, t := range f.created {
		if t.TokenHash == tokenHash {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRefreshTokenRepo) Revoke(_ context.Context, _ uint) error {
	f.revoked++
	return nil
}

func (f *fakeRefreshTokenRepo) RevokeByTokenHash(_ context.Context, _ string) error {
	f.revoked++
	return nil
}

func (f *fakeRefreshTokenRepo) RevokeAllByUserID(_ context.Context, _ string) error {
	f.revoked++
	return nil
}

func (f *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) error { return nil }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.RefreshSecret = "test-refresh-secret"
	cfg.JWT.AccessTokenMins = 15
	cfg.JWT.RefreshTokenDays = 7
	cfg.JWT.ResetTokenMins = 30
	return cfg
}

func holderRole() *models.Role {
	return &models.Role{ID: 3, Name: domain.RolePolicyHolder.String()}
}

func seededUser(t *testing.T, plaintext string) *models.User {
	t.Helper()
	hash, err := password.Hash(plaintext)
	require.NoError(t, err)
	return &models.User{
		ID:       "user-1",
		Name:     "Jordan Voss",
		Email:    "jordan@example.com",
		Password: hash,
		RoleID:   3,
		Role:     holderRole(),
	}
}

func newTestAuthService(users *fakeUserRepo, tokens *fakeRefreshTokenRepo) *AuthService {
	cfg := testConfig()
	roles := &fakeRoleRepo{roles: []*models.Role{holderRole()}}
	return NewAuthService(users, roles, tokens, NewNotificationService(cfg), cfg)
}

func TestSignInSuccessPersistsRefreshToken(t *testing.T) {
	tokens := &fakeRefreshTokenRepo{}
	svc := newTestAuthService(newFakeUserRepo(seededUser(t, "correct-horse")), tokens)

	result, err := svc.SignIn(context.Background(), &SignInInput{
		Email:    "jordan@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "jordan@example.com", result.User.Email)
	assert.Len(t, tokens.created, 1)
}

func TestSignInWrongPasswordPersistsNothing(t *testing.T) {
	tokens := &fakeRefreshTokenRepo{}
	svc := newTestAuthService(newFakeUserRepo(seededUser(t, "correct-horse")), tokens)

	_, err := svc.SignIn(context.Background(), &SignInInput{
		Email:    "jordan@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, tokens.created)
}

func TestSignInUnknownEmail(t *testing.T) {
	tokens := &fakeRefreshTokenRepo{}
	svc := newTestAuthService(newFakeUserRepo(), tokens)

	_, err := svc.SignIn(context.Background(), &SignInInput{
		Email:    "nobody@example.com",
		Password: "whatever123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, tokens.created)
}

func TestSignInRejectsOutOfSetRole(t *testing.T) {
	user := seededUser(t, "correct-horse")
	user.Role = &models.Role{ID: 9, Name: "superuser"}
	tokens := &fakeRefreshTokenRepo{}
	svc := newTestAuthService(newFakeUserRepo(user), tokens)

	_, err := svc.SignIn(context.Background(), &SignInInput{
		Email:    "jordan@example.com",
		Password: "correct-horse",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, tokens.created)
}

func TestSignUpAssignsPolicyHolderRole(t *testing.T) {
	users := newFakeUserRepo()
	tokens := &fakeRefreshTokenRepo{}
	svc := newTestAuthService(users, tokens)

	result, err := svc.SignUp(context.Background(), &SignUpInput{
		Name:     "New Member",
		Email:    "member@example.com",
		Password: "long-enough-pw",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RolePolicyHolder.String(), result.User.RoleName)
	assert.Len(t, tokens.created, 1)

	stored, err := users.GetByEmail(context.Background(), "member@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "long-enough-pw", stored.Password)
	assert.True(t, password.Verify("long-enough-pw", stored.Password))
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(seededUser(t, "correct-horse")), &fakeRefreshTokenRepo{})

	_, err := svc.SignUp(context.Background(), &SignUpInput{
		Name:     "Dup",
		Email:    "jordan@example.com",
		Password: "long-enough-pw",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestSignUpShortPassword(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), &fakeRefreshTokenRepo{})

	_, err := svc.SignUp(context.Background(), &SignUpInput{
		Name:     "Short",
		Email:    "short@example.com",
		Password: "2short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRefreshTokenRotation(t *testing.T) {
	tokens := &fakeRefreshTokenRepo{}
	svc := newTestAuthService(newFakeUserRepo(seededUser(t, "correct-horse")), tokens)

	signedIn, err := svc.SignIn(context.Background(), &SignInInput{
		Email:    "jordan@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), signedIn.RefreshToken)
	require.NoError(t, err)

	assert.NotEqual(t, signedIn.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, 1, tokens.revoked)
	assert.Len(t, tokens.created, 2)
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), &fakeRefreshTokenRepo{})

	_, err := svc.RefreshToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdatePasswordRevokesAllSessions(t *testing.T) {
	user := seededUser(t, "correct-horse")
	tokens := &fakeRefreshTokenRepo{}
	svc := newTestAuthService(newFakeUserRepo(user), tokens)

	signedIn, err := svc.SignIn(context.Background(), &SignInInput{
		Email:    "jordan@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	err = svc.UpdatePassword(context.Background(), signedIn.AccessToken, "brand-new-password")
	require.NoError(t, err)

	assert.Equal(t, 1, tokens.revoked)
	assert.True(t, password.Verify("brand-new-password", user.Password))
}
