package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/agassama1998/materialmanagementapp/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "materialmanagementapp"

type AuthUseCase interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ParseToken(token string) (*domain.Principal, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type authUseCase struct {
	userRepo  domain.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *logrus.Logger
}

func NewAuthUseCase(repo domain.UserRepository, jwtSecret string, tokenTTL time.Duration, logger *logrus.Logger) AuthUseCase {
	return &authUseCase{
		userRepo:  repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       logger,
	}
}

// Register creates an account with the User role.
func (uc *authUseCase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	uc.log.Infof("Use Case: Attempting registration for email: %s", email)

	var errs domain.ValidationErrors
	if !isValidEmail(email) {
		errs = append(errs, domain.FieldError{Field: "email", Reason: "is not a valid email address"})
	}
	if err := validatePassword(password); err != nil {
		errs = append(errs, domain.FieldError{Field: "password", Reason: err.Error()})
	}
	if errs != nil {
		uc.log.Warnf("Use Case: Registration failed for %s: %v", email, errs)
		return nil, errs
	}

	hash, err := HashPassword(password)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to hash password for %s: %v", email, err)
		return nil, err
	}

	created, err := uc.userRepo.CreateUser(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to create user %s: %v", email, err)
		return nil, err
	}

	uc.log.Infof("Use Case: User registered successfully. ID: %d, Email: %s", created.ID, created.Email)
	return created, nil
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	uc.log.Infof("Use Case: Attempting authentication for email: %s", email)

	if !isValidEmail(email) || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warnf("Use Case: Auth failed - user not found: %s", email)
			return nil, domain.ErrInvalidCredentials
		}
		uc.log.Errorf("Use Case: Error retrieving user %s during auth: %v", email, err)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			uc.log.Warnf("Use Case: Auth failed - incorrect password for user %s (ID: %d)", email, user.ID)
			return nil, domain.ErrInvalidCredentials
		}
		uc.log.Errorf("Use Case: Error comparing password hash for user %s: %v", email, err)
		return nil, fmt.Errorf("internal error during authentication: %w", err)
	}

	now := time.Now()
	expiresAt := now.Add(uc.tokenTTL)
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
		Role:  user.Role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.jwtSecret)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to sign token for user %d: %v", user.ID, err)
		return nil, fmt.Errorf("could not issue token: %w", err)
	}

	uc.log.Infof("Use Case: Authentication successful for user %s (ID: %d)", email, user.ID)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ParseToken verifies signature, issuer and expiry and returns the caller.
func (uc *authUseCase) ParseToken(token string) (*domain.Principal, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return uc.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("invalid subject in token: %w", domain.ErrUnauthorized)
	}
	return &domain.Principal{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

func (uc *authUseCase) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return uc.userRepo.GetUserByID(ctx, id)
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("internal error processing password: %w", err)
	}
	return string(hashed), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isValidEmail provides a basic check for email format.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}
	domainParts := strings.Split(parts[1], ".")
	return len(domainParts) >= 2 && domainParts[0] != "" && domainParts[len(domainParts)-1] != ""
}

// validatePassword enforces basic password complexity rules.
func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}
	if !hasUpper {
		return errors.New("must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("must contain at least one lowercase letter")
	}
	if !hasDigit {
		return errors.New("must contain at least one digit")
	}
	return nil
}
