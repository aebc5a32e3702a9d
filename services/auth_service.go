package services

import (
	"context"
	"strings"
	"time"

	"capstone-tracker/config"
	"capstone-tracker/models"
	"capstone-tracker/repositories"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	CreateAccount(ctx context.Context, adminID uint, req models.RegisterRequest) (*models.User, error)
	EnsureAdmin(ctx context.Context, email, password string) error
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context, id uint) (*models.ProfileResponse, error)
}

type authService struct {
	store repositories.Store
}

func NewAuthService(store repositories.Store) AuthService {
	return &authService{store: store}
}

// Register is self-service sign-up and only creates students. Group code and
// year section are copied from the student's enrollment slip; staff accounts
// come from CreateAccount.
func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	// Set default role if not provided
	if req.Role == "" {
		req.Role = models.RoleStudent
	}
	if err := validRole(req.Role); err != nil {
		return nil, err
	}
	if req.Role != models.RoleStudent {
		return nil, models.NewPolicyError("only students may register; staff accounts are created by an administrator")
	}

	user, err := s.create(s.store.WithContext(ctx).Users(), req)
	if err != nil {
		return nil, err
	}

	token, err := generateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: token, User: *user}, nil
}

// CreateAccount lets an administrator open an account with any role.
func (s *authService) CreateAccount(ctx context.Context, adminID uint, req models.RegisterRequest) (*models.User, error) {
	store := s.store.WithContext(ctx)
	admin, err := loadActor(store, adminID)
	if err != nil {
		return nil, err
	}
	if err := requireRole(admin, "create accounts", models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validRole(req.Role); err != nil {
		return nil, err
	}
	return s.create(store.Users(), req)
}

// EnsureAdmin creates the first administrator when no user holds email yet.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	users := s.store.WithContext(ctx).Users()
	if _, err := users.GetByEmail(email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(err, "check admin account")
	}

	_, err := s.create(users, models.RegisterRequest{
		Username: strings.SplitN(email, "@", 2)[0],
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	})
	return err
}

func validRole(role models.UserRole) error {
	if !role.Valid() {
		return models.NewValidationError("invalid role",
			map[string]string{"role": "must be one of student faculty dean grammarian admin"})
	}
	return nil
}

func (s *authService) create(users repositories.UserRepository, req models.RegisterRequest) (*models.User, error) {
	if _, err := users.GetByEmail(req.Email); err == nil {
		return nil, models.NewPolicyError("user already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "check existing user")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &models.User{
		Username:    req.Username,
		Email:       req.Email,
		Password:    string(hashedPassword),
		Role:        req.Role,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		GroupCode:   strings.TrimSpace(req.GroupCode),
		YearSection: strings.TrimSpace(req.YearSection),
	}

	if err := users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewPolicyError("user already exists")
		}
		return nil, errors.Wrap(err, "create user")
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.store.WithContext(ctx).Users().GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewUnauthorizedError("invalid credentials")
		}
		return nil, errors.Wrap(err, "load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, models.NewUnauthorizedError("invalid credentials")
	}

	token, err := generateToken(user)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{Token: token, User: *user}, nil
}

func (s *authService) Profile(ctx context.Context, id uint) (*models.ProfileResponse, error) {
	user, err := loadActor(s.store.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	return &models.ProfileResponse{
		User:        *user,
		FullName:    user.FullName(),
		IsFinalYear: user.IsFinalYear(),
	}, nil
}

func generateToken(user *models.User) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      now.Add(config.JWTExpiration).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(config.JWTSecret)
	return signedToken, errors.Wrap(err, "sign token")
}
