package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin    = "admin"
	RoleGuardian = "guardian"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrNotFound      = errors.New("not found")
)

type Service struct {
	store  AccountStore
	secret []byte
}

// secret は設定ファイルから。未設定の開発環境だけ既定値で起動する。
func NewService(db *sql.DB, secret string) *Service {
	if secret == "" {
		secret = "dev-only-secret"
	}
	return &Service{store: NewStore(db), secret: []byte(secret)}
}

func (s *Service) Secret() []byte { return s.secret }

type AuthService interface {
	Login(ctx context.Context, id, password string) (string, error)
	Register(ctx context.Context, id, password, role, parentID string) error
	Delete(ctx context.Context, id string) error
}

// Login: ID/パスワード検証の上、sub/role（guardianなら parent_id も）を
// 含むHS256トークンを発行する。
func (s *Service) Login(ctx context.Context, id, password string) (string, error) {
	acct, err := s.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if acct == nil {
		return "", errors.New("authentication failed")
	}
	if acct.IsDisabled {
		return "", errors.New("account disabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", errors.New("authentication failed")
	}

	claims := jwt.MapClaims{
		"sub":  acct.ID,
		"role": acct.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	if acct.ParentID != "" {
		claims["parent_id"] = acct.ParentID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// Register: アカウント作成。guardianロールは保護者ULIDの紐付けが必須。
func (s *Service) Register(ctx context.Context, id, password, role, parentID string) error {
	if role != RoleAdmin && role != RoleGuardian {
		return errors.New("role must be admin or guardian")
	}
	if role == RoleGuardian && parentID == "" {
		return errors.New("guardian account requires parent_id")
	}

	exists, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if exists != nil {
		return ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.store.Create(ctx, &Account{
		ID:           id,
		PasswordHash: string(hash),
		Role:         role,
		ParentID:     parentID,
		IsDisabled:   false,
	})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
