package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type guardUserRepoStub struct {
	user *model.User
	err  error
}

func (s *guardUserRepoStub) Create(ctx context.Context, user *model.User) error { return nil }
func (s *guardUserRepoStub) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	return s.user, s.err
}
func (s *guardUserRepoStub) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}
func (s *guardUserRepoStub) Update(ctx context.Context, user *model.User) error { return nil }
func (s *guardUserRepoStub) IncrementTokenVersion(ctx context.Context, userID int64) error {
	return nil
}

func doGuardRequest(t *testing.T, repo repository.UserRepository, userID, tv interface{}) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set(CtxUserIDKey, userID)
	}
	if tv != nil {
		c.Set(CtxTokenVersionKey, tv)
	}

	handler := TokenVersionGuard(repo)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec
}

func TestTokenVersionGuardPassesWhenVersionsMatch(t *testing.T) {
	repo := &guardUserRepoStub{user: &model.User{ID: 7, TokenVersion: 2, IsActive: true}}

	rec := doGuardRequest(t, repo, int64(7), 2)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// 他端末でログアウトした後の古いトークンは締め出す
func TestTokenVersionGuardRejectsStaleVersion(t *testing.T) {
	repo := &guardUserRepoStub{user: &model.User{ID: 7, TokenVersion: 3, IsActive: true}}

	rec := doGuardRequest(t, repo, int64(7), 2)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"session expired"}`, rec.Body.String())
}

func TestTokenVersionGuardRejectsInactiveUser(t *testing.T) {
	repo := &guardUserRepoStub{user: &model.User{ID: 7, TokenVersion: 2, IsActive: false}}

	rec := doGuardRequest(t, repo, int64(7), 2)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"account disabled"}`, rec.Body.String())
}

func TestTokenVersionGuardRejectsOnRepositoryError(t *testing.T) {
	repo := &guardUserRepoStub{err: errors.New("db unavailable")}

	rec := doGuardRequest(t, repo, int64(7), 2)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestTokenVersionGuardRejectsMissingContext(t *testing.T) {
	repo := &guardUserRepoStub{user: &model.User{ID: 7, TokenVersion: 2, IsActive: true}}

	rec := doGuardRequest(t, repo, nil, 2)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doGuardRequest(t, repo, int64(7), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
