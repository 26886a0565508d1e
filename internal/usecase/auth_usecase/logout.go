package auth

import (
	"context"
	"errors"

	"app/internal/repository"
)

type LogoutInput struct {
	UserID            int64
	PlainRefreshToken string
}

// ログアウト処理。渡されたリフレッシュトークンを失効させ、
// token_versionを上げて発行済みアクセストークンも無効化する。
type LogoutUsecase struct {
	userRepo repository.UserRepository
	rtRepo   repository.RefreshTokenRepository
	clock    Clock
}

func NewLogoutUsecase(
	userRepo repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	clock Clock,
) *LogoutUsecase {
	return &LogoutUsecase{
		userRepo: userRepo,
		rtRepo:   rtRepo,
		clock:    clock,
	}
}

func (u *LogoutUsecase) Execute(ctx context.Context, in LogoutInput) error {
	now := u.clock.Now()

	if in.PlainRefreshToken != "" {
		stored, err := u.rtRepo.FindByTokenHash(ctx, hashRefreshToken(in.PlainRefreshToken))
		if err == nil && stored.UserID == in.UserID {
			if err := u.rtRepo.Revoke(ctx, stored.ID, now); err != nil {
				return err
			}
		} else if err != nil && !errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return err
		}
		// 見当たらないトークンはそのままログアウト継続
	}

	return u.userRepo.IncrementTokenVersion(ctx, in.UserID)
}

// 全端末からの強制ログアウト。
func (u *LogoutUsecase) ExecuteAll(ctx context.Context, userID int64) error {
	if err := u.rtRepo.DeleteAllByUserID(ctx, userID); err != nil {
		return err
	}
	return u.userRepo.IncrementTokenVersion(ctx, userID)
}
