package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/config"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/entity"
	"github.com/tungchinhus/quanlysanxuat-sub000/internal/sanxuat/repository"
)

// FirebaseLookupURL endpoint xác minh ID token của Firebase
const FirebaseLookupURL = "https://identitytoolkit.googleapis.com/v1/accounts:lookup"

// AuthService đăng nhập bằng Firebase ID token, quy về định danh nội bộ và
// phát hành JWT riêng của hệ thống. Phiên refresh lưu trong Redis.
type AuthService struct {
	userRepo *repository.UserRepository
	rdb      *redis.Client
	cfg      *config.Config
	client   *http.Client
}

// NewAuthService tạo service xác thực
func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		rdb:      rdb,
		cfg:      cfg,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// TokenPair cặp token
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// firebaseLookupResponse phản hồi accounts:lookup
type firebaseLookupResponse struct {
	Users []struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
	} `json:"users"`
}

// Login xác minh Firebase ID token, upsert người dùng và phát hành cặp JWT.
// Định danh được chuẩn hóa ngay tại đây: firebase_uid quy về id số nội bộ
// một lần lúc mở phiên, các bản ghi mới về sau chỉ ghi id số.
func (s *AuthService) Login(ctx context.Context, idToken string) (*entity.User, *TokenPair, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, nil, newValidationError("id token is required")
	}

	info, err := s.verifyFirebaseToken(ctx, idToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.FindByFirebaseUID(ctx, info.uid)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, nil, wrapStorage("load user", err)
		}
		user = &entity.User{
			FirebaseUID: info.uid,
			Username:    usernameFromEmail(info.email, info.uid),
			Name:        info.name,
			Email:       info.email,
			Status:      "active",
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, nil, wrapStorage("create user", err)
		}
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, nil, wrapStorage("update last login", err)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

type firebaseAccount struct {
	uid   string
	email string
	name  string
}

func (s *AuthService) verifyFirebaseToken(ctx context.Context, idToken string) (*firebaseAccount, error) {
	url := fmt.Sprintf("%s?key=%s", FirebaseLookupURL, s.cfg.Firebase.APIKey)
	body := strings.NewReader(fmt.Sprintf(`{"idToken":%q}`, idToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, wrapStorage("build firebase request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, wrapStorage("verify firebase token", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapStorage("read firebase response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newValidationError("firebase rejected id token (status %d)", resp.StatusCode)
	}

	var lookup firebaseLookupResponse
	if err := json.Unmarshal(data, &lookup); err != nil {
		return nil, wrapStorage("decode firebase response", err)
	}
	if len(lookup.Users) == 0 {
		return nil, newValidationError("firebase id token matches no account")
	}
	u := lookup.Users[0]
	name := u.DisplayName
	if name == "" {
		name = u.Email
	}
	return &firebaseAccount{uid: u.LocalID, email: u.Email, name: name}, nil
}

func usernameFromEmail(email, uid string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "fb_" + uid
}

func (s *AuthService) issueTokens(ctx context.Context, user *entity.User) (*TokenPair, error) {
	now := time.Now()
	accessExpire := s.cfg.JWT.AccessTokenExpire
	claims := jwt.MapClaims{
		"sub":          fmt.Sprintf("%d", user.ID),
		"uid":          user.ID,
		"firebase_uid": user.FirebaseUID,
		"name":         user.Name,
		"email":        user.Email,
		"iss":          s.cfg.JWT.Issuer,
		"iat":          now.Unix(),
		"exp":          now.Add(accessExpire).Unix(),
		"jti":          uuid.New().String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, wrapStorage("sign access token", err)
	}

	refreshToken := uuid.New().String()
	key := refreshKey(refreshToken)
	if err := s.rdb.Set(ctx, key, user.ID, s.cfg.JWT.RefreshTokenExpire).Err(); err != nil {
		return nil, wrapStorage("store refresh session", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessExpire.Seconds()),
	}, nil
}

// Refresh đổi refresh token lấy cặp token mới. Token cũ bị thu hồi (xoay vòng).
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	key := refreshKey(refreshToken)
	val, err := s.rdb.Get(ctx, key).Uint64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, newValidationError("refresh token is invalid or expired")
		}
		return nil, wrapStorage("load refresh session", err)
	}

	user, err := s.userRepo.FindByID(ctx, uint(val))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newValidationError("user for refresh token no longer exists")
		}
		return nil, wrapStorage("load user", err)
	}

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return nil, wrapStorage("revoke refresh session", err)
	}
	return s.issueTokens(ctx, user)
}

// Logout thu hồi phiên refresh
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, refreshKey(refreshToken)).Err(); err != nil {
		return wrapStorage("revoke refresh session", err)
	}
	return nil
}

func refreshKey(token string) string {
	return "auth:refresh:" + token
}
