package service

import (
	"errors"
	"os"
	"testing"

	"github.com/Rotten120/real-time-chatting-app/internal/models"
	"gorm.io/gorm"
)

type MockUserRepository struct {
	users  map[uint]*models.User
	nextID uint
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uint]*models.User), nextID: 1}
}

func (m *MockUserRepository) Create(user *models.User) error {
	user.ID = m.nextID
	m.nextID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			out := *user
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			out := *user
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		out := *user
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func setupAuthTest(t *testing.T) *AuthService {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret-key")
	t.Cleanup(func() { os.Unsetenv("JWT_SECRET") })
	return NewAuthService(NewMockUserRepository())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupAuthTest(t)

	reg, err := svc.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Token == "" {
		t.Error("Register returned no token")
	}
	if reg.User.Username != "alice" {
		t.Errorf("registered username = %q, want alice", reg.User.Username)
	}

	login, err := svc.Login(LoginInput{Email: "alice@example.com", Password: "Secret123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.Token == "" {
		t.Error("Login returned no token")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := setupAuthTest(t)

	if _, err := svc.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Secret123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(RegisterInput{Username: "alice2", Email: "alice@example.com", Password: "Secret123"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email: got %v, want ErrEmailTaken", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := setupAuthTest(t)

	if _, err := svc.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Secret123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(RegisterInput{Username: "alice", Email: "other@example.com", Password: "Secret123"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate username: got %v, want ErrUsernameTaken", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := setupAuthTest(t)

	if _, err := svc.Register(RegisterInput{Username: "alice", Email: "alice@example.com", Password: "Secret123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Login(LoginInput{Email: "alice@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := setupAuthTest(t)

	_, err := svc.Login(LoginInput{Email: "nobody@example.com", Password: "Secret123"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}
