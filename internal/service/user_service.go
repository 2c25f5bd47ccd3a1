package service

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"facilitybook/internal/domain"
	"facilitybook/internal/events"
	"facilitybook/internal/models"

	"github.com/rs/zerolog"
)

// UserBookings cancels the active bookings of a user being removed.
type UserBookings interface {
	CancelUserBookings(ctx context.Context, actorID, userID int64) ([]*models.Booking, error)
}

type UserService struct {
	users        domain.UserStore
	bookings     UserBookings
	eventBus     domain.EventPublisher
	studentEmail *regexp.Regexp
	logger       *zerolog.Logger
}

// NewUserService builds the account service. studentEmailPattern constrains
// student registrations; an empty pattern accepts any address.
func NewUserService(users domain.UserStore, bookings UserBookings, eventBus domain.EventPublisher, studentEmailPattern string, logger *zerolog.Logger) (*UserService, error) {
	svc := &UserService{users: users, bookings: bookings, eventBus: eventBus, logger: logger}
	if studentEmailPattern != "" {
		re, err := regexp.Compile(studentEmailPattern)
		if err != nil {
			return nil, fmt.Errorf("compile student email pattern: %w", err)
		}
		svc.studentEmail = re
	}
	return svc, nil
}

// RegisterUser creates a Student or Faculty account with notifications on.
func (s *UserService) RegisterUser(ctx context.Context, reg models.Registration) (*models.User, error) {
	name := strings.TrimSpace(reg.Name)
	email := strings.TrimSpace(reg.Email)

	if name == "" {
		return nil, domain.Validation("Name is required.")
	}
	if _, err := mail.ParseAddress(email); err != nil || strings.ContainsAny(email, " <>") {
		return nil, domain.Validation("Please enter a valid email address.")
	}
	if reg.Password == "" {
		return nil, domain.Validation("Password is required.")
	}

	caps := models.CapabilitiesFor(reg.Role)
	if !caps.SelfRegister {
		return nil, domain.Validation("Only Student and Faculty accounts can be registered.")
	}

	user := &models.User{
		Name:                name,
		Email:               email,
		Password:            reg.Password,
		Role:                reg.Role,
		NotificationEnabled: true,
	}

	switch caps.ProfileField {
	case models.ProfileFieldSection:
		user.Section = strings.TrimSpace(reg.Section)
		if user.Section == "" {
			return nil, domain.Validation("Section is required for students.")
		}
		if s.studentEmail != nil && !s.studentEmail.MatchString(email) {
			return nil, domain.Validation("Student email does not match the school format.")
		}
	case models.ProfileFieldDepartment:
		user.Department = strings.TrimSpace(reg.Department)
		if user.Department == "" {
			return nil, domain.Validation("Department is required for faculty.")
		}
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	s.publishEvent(events.EventUserRegistered, user, user.ID)
	return user.Public(), nil
}

// Login matches the credential pair exactly.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil || user.Password != password {
		return nil, domain.Unauthorized("Invalid email or password.")
	}
	return user.Public(), nil
}

// UpdateUser changes a profile. Users may edit themselves; account managers
// may edit non-Admin users. The role never changes. When a user changes their
// own password and supplies oldPassword, it must match the current one.
func (s *UserService) UpdateUser(ctx context.Context, actorID int64, upd models.UserUpdate, oldPassword string) (*models.User, error) {
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Get(ctx, upd.ID)
	if err != nil {
		return nil, err
	}

	self := actor.ID == user.ID
	if !self && !(models.CapabilitiesFor(actor.Role).ManagesUsers && user.Role != models.RoleAdmin) {
		return nil, domain.Unauthorized("You are not allowed to edit this user.")
	}
	if upd.Role != nil && *upd.Role != user.Role {
		return nil, domain.Validation("A user's role cannot be changed.")
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, domain.Validation("Name is required.")
		}
		user.Name = name
	}
	if upd.Password != nil {
		if *upd.Password == "" {
			return nil, domain.Validation("Password is required.")
		}
		if self && oldPassword != "" && oldPassword != user.Password {
			return nil, domain.Validation("Current password is incorrect.")
		}
		user.Password = *upd.Password
	}
	if upd.NotificationEnabled != nil {
		user.NotificationEnabled = *upd.NotificationEnabled
	}

	switch models.CapabilitiesFor(user.Role).ProfileField {
	case models.ProfileFieldSection:
		if upd.Section != nil {
			user.Section = strings.TrimSpace(*upd.Section)
			if user.Section == "" {
				return nil, domain.Validation("Section is required for students.")
			}
		}
		user.Department = ""
	case models.ProfileFieldDepartment:
		if upd.Department != nil {
			user.Department = strings.TrimSpace(*upd.Department)
			if user.Department == "" {
				return nil, domain.Validation("Department is required for faculty.")
			}
		}
		user.Section = ""
	default:
		user.Section = ""
		user.Department = ""
	}

	if err := s.users.Replace(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Int64("actor_id", actorID).Msg("user updated")
	s.publishEvent(events.EventUserUpdated, user, actorID)
	return user.Public(), nil
}

// DeleteUser removes a non-Admin account and cancels its active bookings.
// Nothing changes when the target is an Admin.
func (s *UserService) DeleteUser(ctx context.Context, actorID, targetID int64) ([]*models.Booking, error) {
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CapabilitiesFor(actor.Role).ManagesUsers {
		return nil, domain.Unauthorized("Only administrators can delete users.")
	}
	target, err := s.users.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !models.CapabilitiesFor(target.Role).Deletable {
		return nil, domain.Unauthorized("Administrator accounts cannot be deleted.")
	}

	// Removing the account first stops new bookings for it and makes a
	// concurrent delete fail before anything is cancelled.
	if err := s.users.Delete(ctx, targetID); err != nil {
		return nil, err
	}
	cancelled, err := s.bookings.CancelUserBookings(ctx, actorID, targetID)
	if err != nil {
		return nil, fmt.Errorf("cancel bookings of deleted user %d: %w", targetID, err)
	}

	s.logger.Info().
		Int64("user_id", targetID).
		Int64("actor_id", actorID).
		Int("cancelled_bookings", len(cancelled)).
		Msg("user deleted")
	s.publishEvent(events.EventUserDeleted, target, actorID)
	return cancelled, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

// ListUsers returns every account to an account manager.
func (s *UserService) ListUsers(ctx context.Context, actorID int64) ([]*models.User, error) {
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !models.CapabilitiesFor(actor.Role).ManagesUsers {
		return nil, domain.Unauthorized("Only administrators can list users.")
	}
	all, err := s.users.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(all))
	for _, u := range all {
		out = append(out, u.Public())
	}
	return out, nil
}

// EnsureAdmin creates the bootstrap Admin account unless a user with the
// same e-mail already exists.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	if existing, err := s.users.GetByEmail(ctx, email); err == nil {
		return existing.Public(), nil
	}
	admin := &models.User{
		Name:                name,
		Email:               email,
		Password:            password,
		Role:                models.RoleAdmin,
		NotificationEnabled: true,
	}
	if err := s.users.Insert(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", admin.ID).Str("email", email).Msg("bootstrap admin created")
	s.publishEvent(events.EventUserRegistered, admin, 0)
	return admin.Public(), nil
}

func (s *UserService) publishEvent(eventType string, user *models.User, changedByID int64) {
	if s.eventBus == nil {
		return
	}
	payload := events.UserEventPayload{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        string(user.Role),
		ChangedByID: changedByID,
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("user_id", user.ID).Msg("publish event error")
	}
}
