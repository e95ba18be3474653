package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"budgetbuddy/internal/cache"
	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/validator"
)

// userService handles identity-store business logic.
type userService struct {
	db         *gorm.DB
	identities cache.IdentityCache
	cost       int
}

// NewUserService creates a new UserServicer. identities may be nil.
func NewUserService(db *gorm.DB, identities cache.IdentityCache) UserServicer {
	if identities == nil {
		identities = cache.NopIdentityCache{}
	}
	return &userService{db: db, identities: identities, cost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user. Username and email must both be unused.
func (s *userService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username, email and password are required")
	}

	db := s.db.WithContext(ctx)
	if err := s.checkAvailable(db, "", &username, &email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Currency: models.DefaultCurrency,
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with a concurrent registration; report which field.
			if conflict := s.checkAvailable(db, "", &username, &email); conflict != nil {
				return nil, conflict
			}
			return nil, apperrors.ErrEmailTaken
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// checkAvailable returns a conflict error if another user (not excludeID)
// already holds the username or email.
func (s *userService) checkAvailable(db *gorm.DB, excludeID string, username, email *string) error {
	taken := func(column, value string) (bool, error) {
		q := db.Model(&models.User{}).Where(column+" = ?", value)
		if excludeID != "" {
			q = q.Where("id <> ?", excludeID)
		}
		var count int64
		if err := q.Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	}

	if email != nil {
		exists, err := taken("email", *email)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if exists {
			return apperrors.ErrEmailTaken
		}
	}
	if username != nil {
		exists, err := taken("username", *username)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if exists {
			return apperrors.ErrUsernameTaken
		}
	}
	return nil
}

// Authenticate verifies email and password. Unknown emails and wrong
// passwords produce the same error.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// UpdateProfile changes username and/or email, re-checking uniqueness.
func (s *userService) UpdateProfile(ctx context.Context, id string, username, email *string) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if username != nil {
		trimmed := strings.TrimSpace(*username)
		username = &trimmed
		if trimmed != user.Username {
			updates["username"] = trimmed
		}
	}
	if email != nil {
		normalized := normalizeEmail(*email)
		email = &normalized
		if normalized != user.Email {
			updates["email"] = normalized
		}
	}
	if len(updates) == 0 {
		return user, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkAvailable(tx, id, username, email); err != nil {
			return err
		}
		if err := tx.Model(user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrEmailTaken
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.identities.Invalidate(ctx, id)
	return user, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *userService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "old_password and new_password are required")
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return apperrors.ErrIncorrectPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password", string(hashed)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpdateCurrency sets the display currency. An empty code resets it to the default.
func (s *userService) UpdateCurrency(ctx context.Context, id, currency string) (*models.User, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = models.DefaultCurrency
	}
	if !validator.IsCurrency(currency) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be an ISO 4217 code")
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("currency", currency).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.identities.Invalidate(ctx, id)
	return user, nil
}

// UpdatePicture stores the profile picture URL.
func (s *userService) UpdatePicture(ctx context.Context, id, pictureURL string) (*models.User, error) {
	pictureURL = strings.TrimSpace(pictureURL)
	if pictureURL == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "profile_picture_url is required")
	}

	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("profile_picture_url", pictureURL).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}
