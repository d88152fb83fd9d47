package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ereignis/ereignis-api/internal/auth"
	"github.com/ereignis/ereignis-api/internal/domain"
	"github.com/ereignis/ereignis-api/internal/events"
	"github.com/ereignis/ereignis-api/internal/repository"
	"github.com/ereignis/ereignis-api/internal/validate"
	apperrors "github.com/ereignis/ereignis-api/pkg/util/errorutil"
)

const (
	MsgUsernameExists   = "username already exists"
	MsgUserMissing      = "user does not exist"
	MsgWrongPassword    = "incorrect password"
	MsgUserNotFound     = "user not found"
	MsgNotActivated     = "account not activated"
	MsgInvalidOperation = "invalid operation"
	MsgInvalidToken     = "invalid or expired token"
)

// Sessions binds and drops the session of the current request.
type Sessions interface {
	Establish(ctx context.Context, userID int64) error
	Destroy(ctx context.Context) error
}

// UserResponse carries either field errors or a user, never both.
type UserResponse struct {
	Errors []domain.FieldError
	User   *domain.User
}

// UserPage is one page of users, newest first.
type UserPage struct {
	Users      []domain.User
	HasMore    bool
	NextCursor string
}

// ProfileInput holds the profile fields to change; nil means unchanged.
type ProfileInput struct {
	Username *string
	Email    *string
	Phone    *string
}

// UserService orchestrates account operations.
type UserService struct {
	users      repository.UserRepository
	sessions   Sessions
	hasher     *auth.Hasher
	tokens     *auth.ConfirmationTokens
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UserDependencies encapsulates collaborators of the user service.
type UserDependencies struct {
	Users      repository.UserRepository
	Sessions   Sessions
	Hasher     *auth.Hasher
	Tokens     *auth.ConfirmationTokens
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher(logger)
	}
	return &UserService{
		users:      deps.Users,
		sessions:   deps.Sessions,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func fieldErrors(field, message string) UserResponse {
	return UserResponse{Errors: []domain.FieldError{{Field: field, Message: message}}}
}

// Register creates an unconfirmed REGULAR account and logs it in.
func (s *UserService) Register(ctx context.Context, in validate.RegisterInput) (UserResponse, error) {
	if errs := validate.Register(in); errs != nil {
		return UserResponse{Errors: errs}, nil
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return UserResponse{}, err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Roles:        domain.DefaultRoles(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return fieldErrors("username", MsgUsernameExists), nil
		}
		s.logger.Error("insert user", zap.Error(err))
		return UserResponse{}, err
	}

	if err := s.sessions.Establish(ctx, user.ID); err != nil {
		return UserResponse{}, err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:   events.EventUserRegistered,
		UserID: user.ID,
		Payload: events.UserRegisteredPayload{
			Username: user.Username,
			Email:    user.Email,
		},
	})
	return UserResponse{User: user}, nil
}

// Login looks the account up by email when the identifier contains "@", else by username.
func (s *UserService) Login(ctx context.Context, usernameOrEmail, password string) (UserResponse, error) {
	var (
		user *domain.User
		err  error
	)
	if strings.Contains(usernameOrEmail, "@") {
		user, err = s.users.FindByEmail(ctx, usernameOrEmail)
	} else {
		user, err = s.users.FindByUsername(ctx, usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fieldErrors("usernameOrEmail", MsgUserMissing), nil
		}
		return UserResponse{}, err
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		s.logger.Warn("verify password", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	if !ok {
		return fieldErrors("password", MsgWrongPassword), nil
	}

	if err := s.sessions.Establish(ctx, user.ID); err != nil {
		return UserResponse{}, err
	}
	return UserResponse{User: user}, nil
}

// Logout drops the current session.
func (s *UserService) Logout(ctx context.Context) (bool, error) {
	if err := s.sessions.Destroy(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Me returns the actor of the request, or nil.
func (s *UserService) Me(ctx context.Context) *domain.User {
	return auth.ActorFromContext(ctx)
}

// Users lists accounts newest first. The store is asked for one extra row to
// learn whether another page exists.
func (s *UserService) Users(ctx context.Context, limit int, cursor string) (UserPage, error) {
	before, err := domain.DecodeCursor(cursor)
	if err != nil {
		return UserPage{}, apperrors.NewValidationError("invalid cursor", nil)
	}
	size := domain.PageSize(limit)

	rows, err := s.users.List(ctx, domain.PageRequest{Before: before, Limit: size + 1})
	if err != nil {
		return UserPage{}, err
	}

	page := UserPage{HasMore: len(rows) > size}
	if page.HasMore {
		rows = rows[:size]
		page.NextCursor = domain.EncodeCursor(rows[len(rows)-1].CreatedAt)
	}
	page.Users = rows
	return page, nil
}

// User fetches one account. Unconfirmed accounts are only visible to their owner and admins.
func (s *UserService) User(ctx context.Context, id int64) (UserResponse, error) {
	actor := auth.ActorFromContext(ctx)

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fieldErrors("", MsgUserNotFound), nil
		}
		return UserResponse{}, err
	}
	if !user.Confirmed && !auth.OwnerOrAdmin(actor, user.ID) {
		return fieldErrors("", MsgNotActivated), nil
	}
	return UserResponse{User: user}, nil
}

// UpdateProfile changes username, email or phone. Only the owner or an admin may do so.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, in ProfileInput) (UserResponse, error) {
	actor := auth.ActorFromContext(ctx)
	if !auth.OwnerOrAdmin(actor, id) {
		return fieldErrors("", MsgInvalidOperation), nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fieldErrors("", MsgInvalidOperation), nil
		}
		return UserResponse{}, err
	}

	if errs := validate.ProfileUpdate(in.Email, in.Username); errs != nil {
		return UserResponse{Errors: errs}, nil
	}

	fields := domain.UserFields{Username: in.Username, Email: in.Email, Phone: in.Phone}
	if fields.Empty() {
		return UserResponse{User: user}, nil
	}

	updated, err := s.users.UpdateFields(ctx, id, fields)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			return fieldErrors("username", MsgUsernameExists), nil
		case errors.Is(err, domain.ErrNotFound):
			return fieldErrors("", MsgInvalidOperation), nil
		}
		return UserResponse{}, err
	}
	return UserResponse{User: updated}, nil
}

// AddProviderRole grants PROVIDER. Granting it twice is a no-op.
func (s *UserService) AddProviderRole(ctx context.Context, id int64) (UserResponse, error) {
	return s.changeRoles(ctx, id, func(roles []domain.Role) ([]domain.Role, bool) {
		for _, r := range roles {
			if r == domain.RoleProvider {
				return roles, false
			}
		}
		return append(append([]domain.Role(nil), roles...), domain.RoleProvider), true
	})
}

// RemoveProviderRole revokes PROVIDER. Revoking an absent role is a no-op.
// A user left without roles falls back to REGULAR.
func (s *UserService) RemoveProviderRole(ctx context.Context, id int64) (UserResponse, error) {
	return s.changeRoles(ctx, id, func(roles []domain.Role) ([]domain.Role, bool) {
		next := make([]domain.Role, 0, len(roles))
		for _, r := range roles {
			if r != domain.RoleProvider {
				next = append(next, r)
			}
		}
		if len(next) == len(roles) {
			return roles, false
		}
		if len(next) == 0 {
			next = domain.DefaultRoles()
		}
		return next, true
	})
}

func (s *UserService) changeRoles(ctx context.Context, id int64, change func([]domain.Role) ([]domain.Role, bool)) (UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fieldErrors("", MsgUserNotFound), nil
		}
		return UserResponse{}, err
	}

	roles, changed := change(user.Roles)
	if !changed {
		return UserResponse{User: user}, nil
	}

	updated, err := s.users.UpdateFields(ctx, id, domain.UserFields{Roles: roles})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fieldErrors("", MsgUserNotFound), nil
		}
		return UserResponse{}, err
	}
	return UserResponse{User: updated}, nil
}

// DeleteUser removes an account. Every refusal, whether unauthorized or
// missing, is reported as false.
func (s *UserService) DeleteUser(ctx context.Context, id int64) (bool, error) {
	actor := auth.ActorFromContext(ctx)
	if !auth.OwnerOrAdmin(actor, id) {
		return false, nil
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		s.logger.Error("delete user", zap.Int64("user_id", id), zap.Error(err))
		return false, err
	}

	if actor.ID == id {
		if err := s.sessions.Destroy(ctx); err != nil {
			s.logger.Warn("destroy session of deleted user", zap.Int64("user_id", id), zap.Error(err))
		}
	}
	return true, nil
}

// SendConfirmation mails a confirmation link to the actor.
func (s *UserService) SendConfirmation(ctx context.Context) (bool, error) {
	actor := auth.ActorFromContext(ctx)
	if actor == nil {
		return false, nil
	}
	if actor.Confirmed {
		return true, nil
	}

	token, expiresAt, err := s.tokens.Issue(actor.ID)
	if err != nil {
		return false, err
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:   events.EventConfirmationRequested,
		UserID: actor.ID,
		Payload: events.ConfirmationRequestedPayload{
			Username:  actor.Username,
			Email:     actor.Email,
			Token:     token,
			ExpiresAt: expiresAt,
		},
	})
	return true, nil
}

// ConfirmAccount marks the account a valid token was issued for as confirmed.
func (s *UserService) ConfirmAccount(ctx context.Context, token string) (UserResponse, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return fieldErrors("token", MsgInvalidToken), nil
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fieldErrors("token", MsgInvalidToken), nil
		}
		return UserResponse{}, err
	}
	if user.Confirmed {
		return UserResponse{User: user}, nil
	}

	confirmed := true
	updated, err := s.users.UpdateFields(ctx, id, domain.UserFields{Confirmed: &confirmed})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fieldErrors("token", MsgInvalidToken), nil
		}
		return UserResponse{}, err
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:      events.EventAccountConfirmed,
		UserID:    id,
		Timestamp: time.Now().UTC(),
	})
	return UserResponse{User: updated}, nil
}
