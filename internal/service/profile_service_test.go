package service

import (
	"context"
	"testing"

	"pokerpot/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	profileService := NewProfileService(db, cfg)
	ctx := context.Background()

	t.Run("注册成功返回凭证", func(t *testing.T) {
		resp, err := profileService.Signup(ctx, &SignupRequest{
			Email:     "alex@local.com",
			FirstName: "Alex",
			LastName:  "Morel",
			Password:  "horse-staple",
		})
		require.NoError(t, err)
		assert.NotZero(t, resp.ProfileID)
		assert.Equal(t, "alex@local.com", resp.Email)
		assert.NotEmpty(t, resp.Token)

		// 库里只有哈希，没有明文
		profile, err := profileService.GetProfile(ctx, resp.ProfileID)
		require.NoError(t, err)
		assert.NotEqual(t, "horse-staple", profile.Hash)
		assert.NotEmpty(t, profile.Hash)
	})

	t.Run("邮箱重复", func(t *testing.T) {
		_, err := profileService.Signup(ctx, &SignupRequest{
			Email:     "alex@local.com",
			FirstName: "Alex",
			LastName:  "Morel",
			Password:  "another-pass",
		})
		assert.ErrorIs(t, err, repository.ErrEmailExists)
	})
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	cfg := newTestConfig()
	profileService := NewProfileService(db, cfg)
	ctx := context.Background()

	_, err := profileService.Signup(ctx, &SignupRequest{
		Email:     "kian@local.com",
		FirstName: "Kian",
		LastName:  "Reilly",
		Password:  "horse-staple",
	})
	require.NoError(t, err)

	t.Run("登录成功签发可验证的 token", func(t *testing.T) {
		resp, err := profileService.Login(ctx, &LoginRequest{
			Email:    "kian@local.com",
			Password: "horse-staple",
		})
		require.NoError(t, err)
		assert.Equal(t, "Kian", resp.FirstName)

		parsed, err := jwt.Parse(resp.Token, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.Auth.JWTSecret), nil
		})
		require.NoError(t, err)
		assert.True(t, parsed.Valid)

		claims, ok := parsed.Claims.(jwt.MapClaims)
		require.True(t, ok)
		assert.Equal(t, "kian@local.com", claims["email"])
	})

	t.Run("密码错误", func(t *testing.T) {
		_, err := profileService.Login(ctx, &LoginRequest{
			Email:    "kian@local.com",
			Password: "wrong-pass",
		})
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("邮箱不存在", func(t *testing.T) {
		_, err := profileService.Login(ctx, &LoginRequest{
			Email:    "nobody@local.com",
			Password: "horse-staple",
		})
		assert.ErrorIs(t, err, repository.ErrEmailNotFound)
	})
}
