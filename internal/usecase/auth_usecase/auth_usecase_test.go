package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type userRepoMock struct {
	mock.Mock
}

func (m *userRepoMock) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *userRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type refreshTokenRepoMock struct {
	mock.Mock
}

func (m *refreshTokenRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *refreshTokenRepoMock) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if t := args.Get(0); t != nil {
		return t.(*model.RefreshToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *refreshTokenRepoMock) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	return m.Called(ctx, tokenID, usedAt).Error(0)
}

func (m *refreshTokenRepoMock) Revoke(ctx context.Context, tokenID string, revokedAt time.Time) error {
	return m.Called(ctx, tokenID, revokedAt).Error(0)
}

func (m *refreshTokenRepoMock) DeleteAllByUserID(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

type seqIDGen struct {
	n int
}

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

type stubIssuer struct{}

func (stubIssuer) Issue(userID int64, tokenVersion int, now time.Time) (string, time.Time, error) {
	return fmt.Sprintf("access-%d-v%d", userID, tokenVersion), now.Add(15 * time.Minute), nil
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

type plainVerifier struct{}

func (plainVerifier) Verify(plain string, hashed string) bool { return "hashed:"+plain == hashed }

var testNow = time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

func sha256hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestRegisterValidation(t *testing.T) {
	userRepo := &userRepoMock{}
	uc := NewRegisterUserUsecase(userRepo, plainHasher{}, fixedClock{testNow})
	ctx := context.Background()

	_, err := uc.Execute(ctx, RegisterUserInput{Email: "not-an-email", Password: "longenoughpass", StoreName: "店"})
	assert.ErrorIs(t, err, ErrInvalidEmailFormat)

	_, err = uc.Execute(ctx, RegisterUserInput{Email: "owner@example.com", Password: "longenoughpass", StoreName: " "})
	assert.ErrorIs(t, err, ErrStoreNameRequired)

	_, err = uc.Execute(ctx, RegisterUserInput{Email: "owner@example.com", Password: "short", StoreName: "店"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = uc.Execute(ctx, RegisterUserInput{Email: "owner@example.com", Password: "123456789012", StoreName: "店"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	userRepo := &userRepoMock{}
	uc := NewRegisterUserUsecase(userRepo, plainHasher{}, fixedClock{testNow})
	ctx := context.Background()

	userRepo.On("FindByEmail", ctx, "owner@example.com").
		Return(&model.User{ID: 1, Email: "owner@example.com"}, nil)

	_, err := uc.Execute(ctx, RegisterUserInput{Email: "owner@example.com", Password: "a-good-passphrase", StoreName: "店"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	userRepo := &userRepoMock{}
	uc := NewRegisterUserUsecase(userRepo, plainHasher{}, fixedClock{testNow})
	ctx := context.Background()

	userRepo.On("FindByEmail", ctx, "owner@example.com").Return(nil, repository.ErrUserNotFound)
	userRepo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "owner@example.com" &&
			u.PasswordHash == "hashed:a-good-passphrase" &&
			u.StoreName == "喫茶ひまわり" &&
			u.IsActive &&
			u.TokenVersion == 0
	})).Return(nil).Once()

	out, err := uc.Execute(ctx, RegisterUserInput{
		Email:     "owner@example.com",
		Password:  "a-good-passphrase",
		StoreName: "喫茶ひまわり",
	})
	assert.NoError(t, err)
	assert.Equal(t, "owner@example.com", out.User.Email)

	userRepo.AssertExpectations(t)
}

func newLoginUsecaseForTest(userRepo *userRepoMock, rtRepo *refreshTokenRepoMock) *LoginUsecase {
	return NewLoginUsecase(userRepo, rtRepo, plainVerifier{}, stubIssuer{}, &seqIDGen{}, fixedClock{testNow}, 14*24*time.Hour)
}

func TestLoginInvalidCredentials(t *testing.T) {
	userRepo := &userRepoMock{}
	rtRepo := &refreshTokenRepoMock{}
	uc := newLoginUsecaseForTest(userRepo, rtRepo)
	ctx := context.Background()

	userRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, repository.ErrUserNotFound)
	_, _, err := uc.Execute(ctx, LoginInput{Email: "nobody@example.com", Password: "whatever-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	userRepo.On("FindByEmail", ctx, "owner@example.com").
		Return(&model.User{ID: 1, Email: "owner@example.com", PasswordHash: "hashed:right", IsActive: true}, nil)
	_, _, err = uc.Execute(ctx, LoginInput{Email: "owner@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	userRepo := &userRepoMock{}
	rtRepo := &refreshTokenRepoMock{}
	uc := newLoginUsecaseForTest(userRepo, rtRepo)
	ctx := context.Background()

	userRepo.On("FindByEmail", ctx, "owner@example.com").
		Return(&model.User{ID: 1, PasswordHash: "hashed:right", IsActive: false}, nil)

	_, _, err := uc.Execute(ctx, LoginInput{Email: "owner@example.com", Password: "right"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestLoginStoresHashedRefreshToken(t *testing.T) {
	userRepo := &userRepoMock{}
	rtRepo := &refreshTokenRepoMock{}
	uc := newLoginUsecaseForTest(userRepo, rtRepo)
	ctx := context.Background()

	user := &model.User{ID: 7, Email: "owner@example.com", PasswordHash: "hashed:right", TokenVersion: 3, IsActive: true}
	userRepo.On("FindByEmail", ctx, "owner@example.com").Return(user, nil)

	var storedHash string
	rtRepo.On("Create", ctx, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		storedHash = rt.TokenHash
		return rt.UserID == 7 &&
			rt.ExpiresAt.Equal(testNow.Add(14*24*time.Hour)) &&
			rt.UsedAt == nil && rt.RevokedAt == nil
	})).Return(nil).Once()
	userRepo.On("Update", ctx, mock.MatchedBy(func(u *model.User) bool {
		return u.LastLoginAt != nil && u.LastLoginAt.Equal(testNow)
	})).Return(nil).Once()

	out, side, err := uc.Execute(ctx, LoginInput{Email: "owner@example.com", Password: "right", UserAgent: "pos-terminal"})
	assert.NoError(t, err)

	// Cookieに渡るのは平文、DBに入るのはそのSHA-256
	assert.NotEmpty(t, side.PlainRefreshToken)
	assert.Equal(t, sha256hex(side.PlainRefreshToken), storedHash)

	assert.Equal(t, "access-7-v3", out.Token.AccessToken)
	assert.Equal(t, 3, out.Token.TokenVersion)
	assert.Equal(t, int(15*time.Minute/time.Second), out.Token.ExpiresIn)

	rtRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func newRefreshUsecaseForTest(userRepo *userRepoMock, rtRepo *refreshTokenRepoMock) *RefreshUsecase {
	return NewRefreshUsecase(userRepo, rtRepo, stubIssuer{}, &seqIDGen{}, fixedClock{testNow}, 14*24*time.Hour)
}

func TestRefreshRejectsUsedOrExpiredToken(t *testing.T) {
	userRepo := &userRepoMock{}
	rtRepo := &refreshTokenRepoMock{}
	uc := newRefreshUsecaseForTest(userRepo, rtRepo)
	ctx := context.Background()

	used := testNow.Add(-time.Hour)
	rtRepo.On("FindByTokenHash", ctx, sha256hex("used-token")).
		Return(&model.RefreshToken{ID: "rt-1", UserID: 7, UsedAt: &used, ExpiresAt: testNow.Add(time.Hour)}, nil)
	_, _, err := uc.Execute(ctx, RefreshInput{PlainRefreshToken: "used-token"})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	rtRepo.On("FindByTokenHash", ctx, sha256hex("expired-token")).
		Return(&model.RefreshToken{ID: "rt-2", UserID: 7, ExpiresAt: testNow.Add(-time.Minute)}, nil)
	_, _, err = uc.Execute(ctx, RefreshInput{PlainRefreshToken: "expired-token"})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	rtRepo.On("FindByTokenHash", ctx, sha256hex("unknown-token")).
		Return(nil, repository.ErrRefreshTokenNotFound)
	_, _, err = uc.Execute(ctx, RefreshInput{PlainRefreshToken: "unknown-token"})
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefreshRotatesToken(t *testing.T) {
	userRepo := &userRepoMock{}
	rtRepo := &refreshTokenRepoMock{}
	uc := newRefreshUsecaseForTest(userRepo, rtRepo)
	ctx := context.Background()

	stored := &model.RefreshToken{ID: "rt-1", UserID: 7, TokenHash: sha256hex("old-token"), ExpiresAt: testNow.Add(time.Hour)}
	user := &model.User{ID: 7, TokenVersion: 3, IsActive: true}

	rtRepo.On("FindByTokenHash", ctx, sha256hex("old-token")).Return(stored, nil)
	userRepo.On("FindByID", ctx, int64(7)).Return(user, nil)
	rtRepo.On("MarkUsed", ctx, "rt-1", testNow).Return(nil).Once()

	var newHash string
	rtRepo.On("Create", ctx, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		newHash = rt.TokenHash
		return rt.UserID == 7 && rt.ID != "rt-1"
	})).Return(nil).Once()

	out, side, err := uc.Execute(ctx, RefreshInput{PlainRefreshToken: "old-token", UserAgent: "pos-terminal"})
	assert.NoError(t, err)

	assert.Equal(t, "access-7-v3", out.Token.AccessToken)
	assert.NotEmpty(t, side.PlainRefreshToken)
	assert.NotEqual(t, "old-token", side.PlainRefreshToken)
	assert.Equal(t, sha256hex(side.PlainRefreshToken), newHash)

	rtRepo.AssertExpectations(t)
}

func TestLogoutRevokesTokenAndBumpsVersion(t *testing.T) {
	userRepo := &userRepoMock{}
	rtRepo := &refreshTokenRepoMock{}
	uc := NewLogoutUsecase(userRepo, rtRepo, fixedClock{testNow})
	ctx := context.Background()

	rtRepo.On("FindByTokenHash", ctx, sha256hex("current-token")).
		Return(&model.RefreshToken{ID: "rt-1", UserID: 7}, nil)
	rtRepo.On("Revoke", ctx, "rt-1", testNow).Return(nil).Once()
	userRepo.On("IncrementTokenVersion", ctx, int64(7)).Return(nil).Once()

	assert.NoError(t, uc.Execute(ctx, LogoutInput{UserID: 7, PlainRefreshToken: "current-token"}))

	rtRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestLogoutIgnoresMissingToken(t *testing.T) {
	userRepo := &userRepoMock{}
	rtRepo := &refreshTokenRepoMock{}
	uc := NewLogoutUsecase(userRepo, rtRepo, fixedClock{testNow})
	ctx := context.Background()

	rtRepo.On("FindByTokenHash", ctx, sha256hex("gone")).
		Return(nil, repository.ErrRefreshTokenNotFound)
	userRepo.On("IncrementTokenVersion", ctx, int64(7)).Return(nil).Once()

	assert.NoError(t, uc.Execute(ctx, LogoutInput{UserID: 7, PlainRefreshToken: "gone"}))
	rtRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogoutEverywhereDeletesAllTokens(t *testing.T) {
	userRepo := &userRepoMock{}
	rtRepo := &refreshTokenRepoMock{}
	uc := NewLogoutUsecase(userRepo, rtRepo, fixedClock{testNow})
	ctx := context.Background()

	rtRepo.On("DeleteAllByUserID", ctx, int64(7)).Return(nil).Once()
	userRepo.On("IncrementTokenVersion", ctx, int64(7)).Return(nil).Once()

	assert.NoError(t, uc.ExecuteAll(ctx, 7))
	rtRepo.AssertExpectations(t)
}
