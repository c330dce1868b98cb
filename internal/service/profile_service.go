package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pokerpot/internal/config"
	"pokerpot/internal/model"
	"pokerpot/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredential = errors.New("邮箱或密码错误")

// ProfileService 身份服务：注册、登录、资料查询
// 记账核心只依赖它解析展示信息，凭证逻辑都收在这里
type ProfileService struct {
	db          *gorm.DB
	cfg         *config.Config
	profileRepo *repository.ProfileRepository
}

func NewProfileService(db *gorm.DB, cfg *config.Config) *ProfileService {
	return &ProfileService{
		db:          db,
		cfg:         cfg,
		profileRepo: repository.NewProfileRepository(db),
	}
}

type SignupRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	ProfileID int64  `json:"profile_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Token     string `json:"token"`
}

// Signup 注册新用户，邮箱重复返回 ErrEmailExists
func (s *ProfileService) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	cost := s.cfg.Auth.BcryptCost
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("生成密码哈希失败: %w", err)
	}

	profile := &model.Profile{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Hash:      string(hash),
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	log.Printf("用户注册成功: profileID=%d", profile.ID)
	return s.buildAuthResponse(profile)
}

// Login 校验凭证并签发 JWT
// 密码错误统一返回 ErrInvalidCredential，不泄露具体原因
func (s *ProfileService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.Hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	return s.buildAuthResponse(profile)
}

// GetProfile 按 ID 查询用户资料
func (s *ProfileService) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

func (s *ProfileService) buildAuthResponse(profile *model.Profile) (*AuthResponse, error) {
	ttl := time.Duration(s.cfg.Auth.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}

	claims := jwt.MapClaims{
		"sub":   profile.ID,
		"email": profile.Email,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("签发 token 失败: %w", err)
	}

	return &AuthResponse{
		ProfileID: profile.ID,
		Email:     profile.Email,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Token:     token,
	}, nil
}
