package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/vistara-apps/healthsync/internal/models"
	"github.com/vistara-apps/healthsync/pkg/email"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// UserService encapsulates the business logic for user accounts, onboarding
// and profile updates. Subscription status is deliberately outside its update
// surface: the only transition, free -> premium, happens in PaymentService.
type UserService struct {
	repo UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{repo: repo}
}

// RegisterUser registers a new user after hashing their password. New
// accounts start on the free tier with no selected conditions.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User, password string) (*models.User, error) {
	logrus.Info("Registering new user")

	if user.Username == "" || password == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, fmt.Errorf("%w: username and password are required", models.ErrValidation)
	}
	if user.Email != "" && !emailRegex.MatchString(user.Email) {
		logrus.WithField("email", user.Email).Warn("Invalid email format during registration")
		return nil, fmt.Errorf("%w: invalid email format", models.ErrValidation)
	}

	if user.Email != "" {
		existingUser, _ := s.repo.GetUserByEmail(ctx, user.Email)
		if existingUser != nil {
			logrus.WithField("email", user.Email).Warn("Email already in use")
			return nil, fmt.Errorf("%w: email already in use", models.ErrValidation)
		}
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user.HashedPassword = string(hashedPwd)
	user.SubscriptionStatus = models.SubscriptionFree
	if user.SelectedConditions == nil {
		user.SelectedConditions = []string{}
	}
	if user.Role == "" {
		user.Role = "user"
	}

	user.IsVerified = true
	if user.Email != "" {
		user.VerifyToken = uuid.NewString()
		user.IsVerified = false
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %v", err)
	}

	if user.Email != "" {
		verificationLink := fmt.Sprintf("http://localhost:8080/users/verify?token=%s", user.VerifyToken)
		body := fmt.Sprintf("Welcome to HealthSync!\n\nPlease verify your email by clicking the link below:\n%s", verificationLink)
		if err := email.SendEmail(user.Email, "Email Verification", body); err != nil {
			// Accounts stay usable without mail infrastructure.
			logrus.WithError(err).Warn("Failed to send verification email, marking account verified")
			if _, uerr := s.repo.UpdateUser(ctx, createdUser.ID, map[string]interface{}{
				"is_verified":  true,
				"verify_token": "",
				"updated_at":   time.Now(),
			}); uerr == nil {
				createdUser.IsVerified = true
			}
		}
	}

	logrus.WithField("userID", createdUser.ID.Hex()).Info("User registered successfully")
	return createdUser, nil
}

// VerifyEmail confirms ownership of the registered email address.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.repo.GetUserByVerificationToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid or expired verification token")
	}

	update := map[string]interface{}{
		"is_verified":  true,
		"verify_token": "",
		"updated_at":   time.Now(),
	}
	if _, err := s.repo.UpdateUser(ctx, user.ID, update); err != nil {
		return fmt.Errorf("failed to update user verification status: %v", err)
	}
	return nil
}

// AuthenticateUser verifies the email and password and returns the user if
// credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, userEmail, password string) (*models.User, error) {
	logrus.WithField("email", userEmail).Info("Authenticating user")

	user, err := s.repo.GetUserByEmail(ctx, userEmail)
	if err != nil {
		logrus.WithField("email", userEmail).Warn("User not found")
		return nil, fmt.Errorf("user not found")
	}

	if !user.IsVerified {
		logrus.WithField("email", userEmail).Warn("Attempt to login with unverified email")
		return nil, fmt.Errorf("email not verified. Please check your inbox")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", userEmail).Warn("Invalid credentials")
		return nil, fmt.Errorf("invalid credentials")
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return user, nil
}

// ProfileUpdate is the set of fields a user may change on their own profile.
// Subscription status is not among them.
type ProfileUpdate struct {
	Username                *string                         `json:"username,omitempty"`
	Email                   *string                         `json:"email,omitempty"`
	NotificationPreferences *models.NotificationPreferences `json:"notification_preferences,omitempty"`
}

// UpdateProfile applies a whitelisted partial update to the user's profile.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if update.Username != nil {
		if *update.Username == "" {
			return nil, fmt.Errorf("%w: username must not be empty", models.ErrValidation)
		}
		fields["username"] = *update.Username
	}
	if update.Email != nil {
		if *update.Email != "" && !emailRegex.MatchString(*update.Email) {
			return nil, fmt.Errorf("%w: invalid email format", models.ErrValidation)
		}
		fields["email"] = *update.Email
	}
	if update.NotificationPreferences != nil {
		fields["notification_preferences"] = *update.NotificationPreferences
	}

	user, err := s.repo.UpdateUser(ctx, objID, fields)
	if err != nil {
		logrus.WithError(err).Error("Failed to update user profile")
		return nil, fmt.Errorf("failed to update user: %v", err)
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User profile updated")
	return user, nil
}

// UpdateConditions replaces the user's selected condition set. Order is
// irrelevant; every id must belong to the taxonomy. The content feed derives
// from this set on every read, so no cached view needs invalidating.
func (s *UserService) UpdateConditions(ctx context.Context, id string, conditions []string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %v", err)
	}

	seen := make(map[string]struct{}, len(conditions))
	deduped := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if !models.ValidConditionID(c) {
			return nil, fmt.Errorf("%w: unknown condition %q", models.ErrValidation, c)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		deduped = append(deduped, c)
	}

	update := map[string]interface{}{
		"selected_conditions": deduped,
		"updated_at":          time.Now(),
	}
	user, err := s.repo.UpdateUser(ctx, objID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update conditions: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"userID":     user.ID.Hex(),
		"conditions": len(deduped),
	}).Info("Selected conditions updated")
	return user, nil
}

// GetAllUsers returns every account. Admin and ingestion use only.
func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.GetAllUsers(ctx)
}
