package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/Harshi-1401/quickmart-backend/internal/models"
	"github.com/Harshi-1401/quickmart-backend/internal/notification"
	"github.com/Harshi-1401/quickmart-backend/internal/services"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByPhone(phone string) (*models.User, error) {
	args := m.Called(phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// stubDispatcher records dispatched codes and returns a scripted outcome.
type stubDispatcher struct {
	outcome  notification.Outcome
	lastCode string
	lastAddr string
}

func (s *stubDispatcher) SendVerificationCode(ctx context.Context, address, code, name string) notification.Outcome {
	s.lastAddr = address
	s.lastCode = code
	out := s.outcome
	out.Code = code
	return out
}

func notFound(kind, id string) error {
	return &models.NotFoundError{Kind: kind, ID: id}
}

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, &stubDispatcher{}, "test_secret")

	user := &models.User{
		ID:       "user-1",
		Name:     "Ann",
		Email:    "Ann@Example.com",
		Phone:    "9876543210",
		Password: "secret123",
	}

	mockRepo.On("GetByPhone", "9876543210").Return(nil, notFound("user", "9876543210")).Once()
	mockRepo.On("GetByEmail", "ann@example.com").Return(nil, notFound("user", "ann@example.com")).Once()
	mockRepo.On("Create", user).Return(nil).Once()

	token, err := service.RegisterUser(user)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "ann@example.com", user.Email, "email is normalized to lower case")
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret123", user.Password, "password must be stored hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims["userId"])

	mockRepo.AssertExpectations(t)
}

func TestAuthService_RegisterUser_DuplicatePhone(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, &stubDispatcher{}, "test_secret")

	existing := &models.User{ID: "user-0", Phone: "9876543210"}
	mockRepo.On("GetByPhone", "9876543210").Return(existing, nil).Once()

	_, err := service.RegisterUser(&models.User{
		Name: "Ann", Email: "ann@example.com", Phone: "9876543210", Password: "secret123",
	})

	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "Phone number already registered")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_LoginUser_ByEmailAndPhone(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, &stubDispatcher{}, "test_secret")

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	assert.NoError(t, err)
	user := &models.User{ID: "user-1", Email: "ann@example.com", Phone: "9876543210", Password: string(hashed), Role: models.RoleCustomer}

	// '@' in the identifier selects the email lookup.
	mockRepo.On("GetByEmail", "ann@example.com").Return(user, nil).Once()
	token, loggedIn, err := service.LoginUser("Ann@Example.com", "secret123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "user-1", loggedIn.ID)

	// Anything else is treated as a phone number.
	mockRepo.On("GetByPhone", "9876543210").Return(user, nil).Once()
	token, _, err = service.LoginUser("9876543210", "secret123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser_InvalidCredentials(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, &stubDispatcher{}, "test_secret")

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	user := &models.User{ID: "user-1", Email: "ann@example.com", Password: string(hashed)}

	// Wrong password and unknown account yield the same generic error.
	mockRepo.On("GetByEmail", "ann@example.com").Return(user, nil).Once()
	_, _, err := service.LoginUser("ann@example.com", "wrong")
	assert.EqualError(t, err, "invalid credentials")

	mockRepo.On("GetByEmail", "ghost@example.com").Return(nil, notFound("user", "ghost@example.com")).Once()
	_, _, err = service.LoginUser("ghost@example.com", "secret123")
	assert.EqualError(t, err, "invalid credentials")
}

func TestAuthService_ValidateToken_RejectsGarbage(t *testing.T) {
	service := services.NewAuthService(new(MockUserRepository), &stubDispatcher{}, "test_secret")

	_, err := service.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestAuthService_RequestVerification_StoresAndDispatchesCode(t *testing.T) {
	mockRepo := new(MockUserRepository)
	dispatcher := &stubDispatcher{outcome: notification.Outcome{Delivered: true, Provider: notification.ProviderPrimary}}
	service := services.NewAuthService(mockRepo, dispatcher, "test_secret")

	user := &models.User{ID: "user-1", Name: "Ann", Email: "ann@example.com"}
	mockRepo.On("GetByEmail", "ann@example.com").Return(user, nil).Once()
	mockRepo.On("Update", user).Return(nil).Once()

	outcome, err := service.RequestVerification(context.Background(), "ann@example.com")

	assert.NoError(t, err)
	assert.True(t, outcome.Delivered)
	assert.Equal(t, notification.ProviderPrimary, outcome.Provider)
	assert.Len(t, dispatcher.lastCode, 6)
	assert.Equal(t, dispatcher.lastCode, user.VerifyCode, "stored code must match the dispatched one")
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), user.VerifyCodeExpiresAt, 5*time.Second)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_RequestVerification_FallbackOutcomeCarriesCode(t *testing.T) {
	mockRepo := new(MockUserRepository)
	dispatcher := &stubDispatcher{outcome: notification.Outcome{Delivered: false, Provider: notification.ProviderNone}}
	service := services.NewAuthService(mockRepo, dispatcher, "test_secret")

	user := &models.User{ID: "user-1", Name: "Ann", Email: "ann@example.com"}
	mockRepo.On("GetByEmail", "ann@example.com").Return(user, nil).Once()
	mockRepo.On("Update", user).Return(nil).Once()

	outcome, err := service.RequestVerification(context.Background(), "ann@example.com")

	assert.NoError(t, err, "transport failure is not an operation failure")
	assert.False(t, outcome.Delivered)
	assert.Equal(t, notification.ProviderNone, outcome.Provider)
	assert.Equal(t, user.VerifyCode, outcome.Code)
}

func TestAuthService_VerifyCode(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, &stubDispatcher{}, "test_secret")

	user := &models.User{
		ID: "user-1", Email: "ann@example.com",
		VerifyCode:          "482913",
		VerifyCodeExpiresAt: time.Now().Add(2 * time.Minute),
	}
	mockRepo.On("GetByEmail", "ann@example.com").Return(user, nil)

	// Wrong code.
	err := service.VerifyCode("ann@example.com", "000000")
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.False(t, user.Verified)

	// Correct code marks the user verified and clears the code.
	mockRepo.On("Update", user).Return(nil).Once()
	err = service.VerifyCode("ann@example.com", "482913")
	assert.NoError(t, err)
	assert.True(t, user.Verified)
	assert.Empty(t, user.VerifyCode)

	// The code is single-use: a second attempt fails as expired.
	err = service.VerifyCode("ann@example.com", "482913")
	assert.ErrorAs(t, err, &validationErr)
}

func TestAuthService_VerifyCode_Expired(t *testing.T) {
	mockRepo := new(MockUserRepository)
	service := services.NewAuthService(mockRepo, &stubDispatcher{}, "test_secret")

	user := &models.User{
		ID: "user-1", Email: "ann@example.com",
		VerifyCode:          "482913",
		VerifyCodeExpiresAt: time.Now().Add(-time.Second),
	}
	mockRepo.On("GetByEmail", "ann@example.com").Return(user, nil).Once()

	err := service.VerifyCode("ann@example.com", "482913")
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "expired")
}
