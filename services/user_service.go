package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kendall-kelly/baskets-api/database"
	"github.com/kendall-kelly/baskets-api/models"
)

// UpdateProfileInput holds the profile fields a user may change. Nil fields
// are left unchanged.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Address   *string
}

// UserService manages member profiles linked to Auth0 identities
type UserService struct {
	db *gorm.DB
	serviceOptions
}

var userServiceInstance *UserService

func NewUserService(db *gorm.DB, opts ...Option) *UserService {
	return &UserService{db: db, serviceOptions: buildOptions(opts)}
}

// InitUserService creates the user service and registers it globally
func InitUserService(db *gorm.DB, opts ...Option) *UserService {
	userServiceInstance = NewUserService(db, opts...)
	return userServiceInstance
}

func GetUserService() *UserService {
	return userServiceInstance
}

func SetUserService(s *UserService) {
	userServiceInstance = s
}

func userNotFound() *Error {
	return newError(KindNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
}

// FindByAuth0ID returns the profile linked to an Auth0 subject
func (s *UserService) FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, userNotFound()
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// CreateProfile creates the profile of an Auth0 identity from its userinfo.
// Role defaults to member.
func (s *UserService) CreateProfile(ctx context.Context, auth0ID, role string, info *Auth0UserInfo) (*models.User, error) {
	if info.Email == "" {
		return nil, newError(KindInvalidInput, "MISSING_EMAIL", "Email not provided by Auth0")
	}
	first, last := info.Names()
	if last == "" {
		return nil, newError(KindInvalidInput, "MISSING_NAME", "Last name not provided by Auth0")
	}
	if role != models.RoleStaff {
		role = models.RoleMember
	}

	user := models.User{
		Auth0ID:   auth0ID,
		Username:  info.Username(),
		FirstName: first,
		LastName:  last,
		Email:     strings.ToLower(info.Email),
		Role:      role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, newError(KindConflict, "USER_EXISTS", "A user with this Auth0 ID, username or email already exists")
		}
		return nil, s.fail("create user", err, zap.String("auth0_id", auth0ID))
	}

	zap.L().Info("User profile created", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return &user, nil
}

// UpdateProfile applies the given changes to the profile of an Auth0 identity
func (s *UserService) UpdateProfile(ctx context.Context, auth0ID string, input UpdateProfileInput) (*models.User, error) {
	user, err := s.FindByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		last := strings.TrimSpace(*input.LastName)
		if last == "" {
			return nil, newError(KindInvalidInput, "VALIDATION_ERROR", "Last name must not be empty")
		}
		updates["last_name"] = last
	}
	if input.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if len(updates) == 0 {
		return user, nil
	}

	db := s.db.WithContext(ctx)
	if err := db.Model(user).Updates(updates).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, newError(KindConflict, "EMAIL_EXISTS", "A user with this email already exists")
		}
		return nil, s.fail("update user", err, zap.Uint("user_id", user.ID))
	}
	return s.FindByAuth0ID(ctx, auth0ID)
}
