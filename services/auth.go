package services

import (
	"complaint-portal/models"
	"complaint-portal/utils"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Name     string `json:"name" label:"Name" validate:"required,min=2"`
	Email    string `json:"email" label:"Email" validate:"required,email"`
	Password string `json:"password" label:"Password" validate:"required,min=6"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role" label:"Role" validate:"omitempty,oneof=user hr admin"`

	// HR profile fields, used when Role is hr or admin.
	Organization string `json:"organization"`
	Position     string `json:"position"`
	Department   string `json:"department"`
	IsNGO        bool   `json:"isNGO"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ProfileInput struct {
	Name    string `json:"name" label:"Name" validate:"omitempty,min=2"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type ChangePasswordInput struct {
	OldPassword     string `json:"oldPassword" label:"Current password" validate:"required"`
	NewPassword     string `json:"newPassword" label:"New password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Session is what register and login return to the client.
type Session struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Role  models.Role        `json:"role"`
	Token string             `json:"token"`
}

type AuthService struct {
	users  UserRepository
	hrs    HRRepository
	tokens *utils.TokenIssuer
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthService(store *Store, tokens *utils.TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{users: store.Users, hrs: store.HRs, tokens: tokens, logger: logger, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}
	role, _ := models.ParseRole(in.Role)

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, Validation("User already exists")
	} else if !isNotFound(err) {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  hash,
		Phone:     in.Phone,
		Address:   in.Address,
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, Validation("User already exists")
		}
		return nil, err
	}

	if role.NeedsHRProfile() {
		now := s.now()
		profile := &models.HRProfile{
			User:         user.ID,
			Organization: in.Organization,
			Position:     in.Position,
			Department:   in.Department,
			IsNGO:        in.IsNGO,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.hrs.Create(ctx, profile); err != nil {
			return nil, err
		}
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.Hex()), zap.String("role", string(role)))
	return s.session(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		if isNotFound(err) {
			return nil, Unauthenticated("Invalid email or password")
		}
		return nil, err
	}
	if !utils.CheckPasswordHash(in.Password, user.Password) {
		return nil, Unauthenticated("Invalid email or password")
	}
	return s.session(user)
}

func (s *AuthService) session(u *models.User) (*Session, error) {
	token, err := s.tokens.Generate(u.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &Session{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, Token: token}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, Unauthenticated("Not authorized, no token")
	}
	hex, err := s.tokens.Parse(token)
	if err != nil {
		return nil, Unauthenticated("Not authorized, token invalid")
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return nil, Unauthenticated("Not authorized, token invalid")
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, Unauthenticated("Not authorized, user not found")
		}
		return nil, err
	}
	return user, nil
}

// TokenTTL is the lifetime of issued session tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

func (s *AuthService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the contact fields; empty fields keep their value.
func (s *AuthService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, in ProfileInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return nil, err
	}
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Phone != "" {
		user.Phone = in.Phone
	}
	if in.Address != "" {
		user.Address = in.Address
	}
	if err := s.users.UpdateProfile(ctx, user.ID, user.Name, user.Phone, user.Address); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID primitive.ObjectID, in ChangePasswordInput) error {
	if err := check(in); err != nil {
		return err
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.NewPassword {
		return Validation("New password and confirmation do not match")
	}
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(in.OldPassword, user.Password) {
		return Validation("Old password is incorrect")
	}
	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}
