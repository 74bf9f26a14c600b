package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/Harshi-1401/quickmart-backend/internal/models"
	"github.com/Harshi-1401/quickmart-backend/internal/notification"
	"github.com/Harshi-1401/quickmart-backend/internal/repositories"
)

// CodeDispatcher delivers verification codes. Satisfied by
// notification.Dispatcher.
type CodeDispatcher interface {
	SendVerificationCode(ctx context.Context, address, code, name string) notification.Outcome
}

// verifyCodeTTL is how long an emailed verification code stays valid.
const verifyCodeTTL = 5 * time.Minute

// AuthService handles registration, login, token validation and the email
// verification flow.
type AuthService struct {
	userRepo   repositories.UserRepository
	dispatcher CodeDispatcher
	jwtSecret  []byte
	tokenDurat time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, dispatcher CodeDispatcher, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		dispatcher: dispatcher,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 7 * 24 * time.Hour, // Token valid for 7 days
	}
}

// RegisterUser registers a new user, hashes their password, and saves them
// to the database. Returns a signed token so the client is logged in
// immediately after registering.
func (s *AuthService) RegisterUser(user *models.User) (string, error) {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Phone = strings.TrimSpace(user.Phone)
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}

	// Check if phone or email already exists
	if existingUser, err := s.userRepo.GetByPhone(user.Phone); err == nil && existingUser != nil {
		return "", &models.ValidationError{Message: "Phone number already registered. Please login."}
	}
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return "", &models.ValidationError{Message: "Email already registered. Please login."}
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(user); err != nil {
		return "", fmt.Errorf("failed to register user: %w", err)
	}

	return s.generateToken(user)
}

// LoginUser authenticates by email or phone and returns a JWT token. The
// presence of '@' selects the lookup key, matching how clients submit a
// single identifier field.
func (s *AuthService) LoginUser(emailOrPhone, password string) (string, *models.User, error) {
	var user *models.User
	var err error
	if strings.Contains(emailOrPhone, "@") {
		user, err = s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(emailOrPhone)))
	} else {
		user, err = s.userRepo.GetByPhone(strings.TrimSpace(emailOrPhone))
	}
	if err != nil {
		// Do not reveal whether the account exists
		return "", nil, fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": user.ID,
		"role":   user.Role,
		"exp":    time.Now().Add(s.tokenDurat).Unix(),
		"iat":    time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// GetUserByID loads a user; used by the auth middleware to build the
// request principal.
func (s *AuthService) GetUserByID(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// RequestVerification generates a fresh verification code for the user,
// stores it with its expiry, and dispatches it. The returned outcome says
// which transport delivered it, or carries the code itself when none did.
func (s *AuthService) RequestVerification(ctx context.Context, email string) (notification.Outcome, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return notification.Outcome{}, err
	}

	code, err := generateOTP()
	if err != nil {
		return notification.Outcome{}, fmt.Errorf("failed to generate verification code: %w", err)
	}

	user.VerifyCode = code
	user.VerifyCodeExpiresAt = time.Now().Add(verifyCodeTTL)
	if err := s.userRepo.Update(user); err != nil {
		return notification.Outcome{}, fmt.Errorf("failed to store verification code: %w", err)
	}

	return s.dispatcher.SendVerificationCode(ctx, user.Email, code, user.Name), nil
}

// VerifyCode checks a submitted code against the stored one and marks the
// user verified on a match. Codes are single-use and expire after five
// minutes.
func (s *AuthService) VerifyCode(email, code string) error {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	if user.VerifyCode == "" || time.Now().After(user.VerifyCodeExpiresAt) {
		return &models.ValidationError{Message: "Verification code expired. Please request a new one."}
	}
	if user.VerifyCode != code {
		return &models.ValidationError{Message: "Invalid verification code."}
	}

	user.Verified = true
	user.VerifyCode = ""
	user.VerifyCodeExpiresAt = time.Time{}
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

// generateOTP returns a 6-digit code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
