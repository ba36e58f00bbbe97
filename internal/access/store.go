// Package access holds the role and user permission model and answers
// whether a user may use an application area.
package access

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/starford/mailcraft/internal/apperr"
	"github.com/starford/mailcraft/internal/models"
	"github.com/starford/mailcraft/internal/storage"
)

// StorageKey is the storage key of the persisted permission state.
const StorageKey = "user-permission-storage"

// AdminRoleID is the built-in role that cannot be deleted and inherits the
// users of deleted roles.
const AdminRoleID = "admin"

// EventChanged is emitted after every mutation.
const EventChanged = "access.changed"

var (
	allLevels = func() []any {
		out := make([]any, len(models.AccessLevels))
		for i, l := range models.AccessLevels {
			out[i] = l
		}
		return out
	}()
	allAreas = []any{
		models.AreaEmailBuilder, models.AreaProposalGenerator,
		models.AreaSettings, models.AreaAnalytics,
	}
)

// DefaultState is the state of a fresh install: admin mode on, full access,
// three built-in roles and one admin user.
func DefaultState() models.AccessState {
	full := models.Permissions{
		EmailBuilder:      models.AccessAll,
		ProposalGenerator: models.AccessAll,
		Settings:          models.AccessAll,
		Analytics:         models.AccessAll,
	}
	return models.AccessState{
		Access: full,
		Roles: []models.UserRole{
			{
				ID:          AdminRoleID,
				Name:        "Administrador",
				Description: "Acesso completo a todas as funcionalidades",
				Permissions: full,
			},
			{
				ID:          "marketing",
				Name:        "Marketing",
				Description: "Acesso ao construtor de emails",
				Permissions: models.Permissions{
					EmailBuilder:      models.AccessAll,
					ProposalGenerator: models.AccessRestricted,
					Settings:          models.AccessRestricted,
					Analytics:         models.AccessAll,
				},
			},
			{
				ID:          "sales",
				Name:        "Vendas",
				Description: "Acesso ao gerador de propostas",
				Permissions: models.Permissions{
					EmailBuilder:      models.AccessRestricted,
					ProposalGenerator: models.AccessAll,
					Settings:          models.AccessRestricted,
					Analytics:         models.AccessAll,
				},
			},
		},
		Users: []models.User{
			{ID: "admin-user", Name: "Admin", Email: "admin@empresa.com", RoleID: AdminRoleID},
		},
		ActiveRoleID: AdminRoleID,
		AdminMode:    true,
	}
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithListener registers fn to be called with EventChanged after every
// mutation.
func WithListener(fn func(kind string)) StoreOption {
	return func(s *Store) { s.listeners = append(s.listeners, fn) }
}

// WithIDGenerator replaces the generator used for new role and user ids.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// Store holds the permission state and writes it through to storage after
// every change.
type Store struct {
	kv        storage.Provider
	logger    *slog.Logger
	listeners []func(string)
	newID     func() string

	mu    sync.Mutex
	state models.AccessState
}

// NewStore restores the persisted state, or starts from DefaultState when
// nothing was saved or the saved blob is unreadable.
func NewStore(ctx context.Context, kv storage.Provider, opts ...StoreOption) *Store {
	s := &Store{kv: kv, logger: slog.Default(), newID: uuid.NewString}
	for _, o := range opts {
		o(s)
	}
	s.state = s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) models.AccessState {
	data, err := s.kv.Read(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotExist) {
			s.logger.Warn("permission state unreadable, using defaults", slog.String("error", err.Error()))
		}
		return DefaultState()
	}
	var st models.AccessState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("permission state corrupt, using defaults", slog.String("error", err.Error()))
		return DefaultState()
	}
	return st.Clone()
}

// State returns a copy of the current state.
func (s *Store) State() models.AccessState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SetAdminMode turns the permission bypass on or off.
func (s *Store) SetAdminMode(ctx context.Context, on bool) {
	_ = s.update(ctx, func(st *models.AccessState) error {
		st.AdminMode = on
		return nil
	})
}

// SetAccess sets the current access level of one area.
func (s *Store) SetAccess(ctx context.Context, area models.Area, level models.AccessLevel) error {
	if err := validateAreaLevel(area, level); err != nil {
		return err
	}
	return s.update(ctx, func(st *models.AccessState) error {
		st.Access = st.Access.With(area, level)
		return nil
	})
}

// AddRole stores a new role under a generated id and returns it.
func (s *Store) AddRole(ctx context.Context, name, description string, perms models.Permissions) (models.UserRole, error) {
	role := models.UserRole{
		ID:          "role-" + s.newID(),
		Name:        name,
		Description: description,
		Permissions: perms,
	}
	if err := validateRole(role); err != nil {
		return models.UserRole{}, err
	}
	err := s.update(ctx, func(st *models.AccessState) error {
		st.Roles = append(st.Roles, role)
		return nil
	})
	return role, err
}

// RolePatch carries the role fields to change. Nil fields are left as is.
type RolePatch struct {
	Name        *string
	Description *string
	Permissions *models.Permissions
}

// UpdateRole merges patch into the role with the given id.
func (s *Store) UpdateRole(ctx context.Context, id string, patch RolePatch) (models.UserRole, error) {
	var out models.UserRole
	err := s.update(ctx, func(st *models.AccessState) error {
		i := roleIndex(st, id)
		if i < 0 {
			return fmt.Errorf("role %q: %w", id, apperr.ErrNotFound)
		}
		role := st.Roles[i]
		if patch.Name != nil {
			role.Name = *patch.Name
		}
		if patch.Description != nil {
			role.Description = *patch.Description
		}
		if patch.Permissions != nil {
			role.Permissions = *patch.Permissions
		}
		if err := validateRole(role); err != nil {
			return err
		}
		st.Roles[i] = role
		out = role
		return nil
	})
	return out, err
}

// DeleteRole removes a role. Its users move to the admin role and, when it
// was active, the first remaining role becomes active. The admin role
// itself cannot be deleted.
func (s *Store) DeleteRole(ctx context.Context, id string) error {
	if id == AdminRoleID {
		return fmt.Errorf("role %q is built in: %w", id, apperr.ErrConflict)
	}
	return s.update(ctx, func(st *models.AccessState) error {
		i := roleIndex(st, id)
		if i < 0 {
			return fmt.Errorf("role %q: %w", id, apperr.ErrNotFound)
		}
		st.Roles = append(st.Roles[:i:i], st.Roles[i+1:]...)
		for j := range st.Users {
			if st.Users[j].RoleID == id {
				st.Users[j].RoleID = AdminRoleID
			}
		}
		if st.ActiveRoleID == id {
			st.ActiveRoleID = ""
			if len(st.Roles) > 0 {
				st.ActiveRoleID = st.Roles[0].ID
			}
		}
		return nil
	})
}

// SetActiveRole marks a role as active without touching the current access
// levels.
func (s *Store) SetActiveRole(ctx context.Context, id string) error {
	return s.update(ctx, func(st *models.AccessState) error {
		if roleIndex(st, id) < 0 {
			return fmt.Errorf("role %q: %w", id, apperr.ErrNotFound)
		}
		st.ActiveRoleID = id
		return nil
	})
}

// ApplyRole copies a role's permissions into the current access levels and
// makes it the active role.
func (s *Store) ApplyRole(ctx context.Context, id string) error {
	return s.update(ctx, func(st *models.AccessState) error {
		i := roleIndex(st, id)
		if i < 0 {
			return fmt.Errorf("role %q: %w", id, apperr.ErrNotFound)
		}
		st.Access = st.Roles[i].Permissions
		st.ActiveRoleID = id
		return nil
	})
}

// AddUser stores a new user under a generated id and returns it.
func (s *Store) AddUser(ctx context.Context, name, email, roleID string) (models.User, error) {
	user := models.User{ID: "user-" + s.newID(), Name: name, Email: email, RoleID: roleID}
	if err := validateUser(user); err != nil {
		return models.User{}, err
	}
	err := s.update(ctx, func(st *models.AccessState) error {
		if roleIndex(st, roleID) < 0 {
			return fmt.Errorf("role %q: %w", roleID, apperr.ErrNotFound)
		}
		st.Users = append(st.Users, user)
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UserPatch carries the user fields to change. Nil fields are left as is.
type UserPatch struct {
	Name   *string
	Email  *string
	RoleID *string
}

// UpdateUser merges patch into the user with the given id.
func (s *Store) UpdateUser(ctx context.Context, id string, patch UserPatch) (models.User, error) {
	var out models.User
	err := s.update(ctx, func(st *models.AccessState) error {
		i := userIndex(st, id)
		if i < 0 {
			return fmt.Errorf("user %q: %w", id, apperr.ErrNotFound)
		}
		user := st.Users[i]
		if patch.Name != nil {
			user.Name = *patch.Name
		}
		if patch.Email != nil {
			user.Email = *patch.Email
		}
		if patch.RoleID != nil {
			if roleIndex(st, *patch.RoleID) < 0 {
				return fmt.Errorf("role %q: %w", *patch.RoleID, apperr.ErrNotFound)
			}
			user.RoleID = *patch.RoleID
		}
		if err := validateUser(user); err != nil {
			return err
		}
		st.Users[i] = user
		out = user
		return nil
	})
	return out, err
}

// AssignRole moves a user to another role.
func (s *Store) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := s.UpdateUser(ctx, userID, UserPatch{RoleID: &roleID})
	return err
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.update(ctx, func(st *models.AccessState) error {
		i := userIndex(st, id)
		if i < 0 {
			return fmt.Errorf("user %q: %w", id, apperr.ErrNotFound)
		}
		st.Users = append(st.Users[:i:i], st.Users[i+1:]...)
		return nil
	})
}

// HasPermission reports whether the user may use area. Admin mode allows
// everything. Otherwise the user's role must grant the area; unknown users
// and users of deleted roles are refused.
func (s *Store) HasPermission(userID string, area models.Area) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.AdminMode {
		return true
	}
	i := userIndex(&s.state, userID)
	if i < 0 {
		return false
	}
	r := roleIndex(&s.state, s.state.Users[i].RoleID)
	if r < 0 {
		return false
	}
	level, ok := s.state.Roles[r].Permissions.Level(area)
	return ok && level.Grants()
}

// update applies fn to a working copy and commits it only when fn
// succeeds. Nothing is persisted or emitted on error.
func (s *Store) update(ctx context.Context, fn func(*models.AccessState) error) error {
	s.mu.Lock()
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	data, err := json.Marshal(s.state)
	s.mu.Unlock()

	if err == nil {
		err = s.kv.Write(ctx, StorageKey, data)
	}
	if err != nil {
		s.logger.Error("persist permission state failed", slog.String("error", err.Error()))
	}
	s.emit(EventChanged)
	return nil
}

func (s *Store) emit(kind string) {
	for _, fn := range s.listeners {
		fn(kind)
	}
}

func roleIndex(st *models.AccessState, id string) int {
	for i, r := range st.Roles {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func userIndex(st *models.AccessState, id string) int {
	for i, u := range st.Users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func validateAreaLevel(area models.Area, level models.AccessLevel) error {
	err := validation.Errors{
		"area":  validation.Validate(area, validation.Required, validation.In(allAreas...)),
		"level": validation.Validate(level, validation.Required, validation.In(allLevels...)),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}

func validatePermissions(p models.Permissions) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.EmailBuilder, validation.Required, validation.In(allLevels...)),
		validation.Field(&p.ProposalGenerator, validation.Required, validation.In(allLevels...)),
		validation.Field(&p.Settings, validation.Required, validation.In(allLevels...)),
		validation.Field(&p.Analytics, validation.Required, validation.In(allLevels...)),
	)
}

func validateRole(r models.UserRole) error {
	err := validation.Errors{
		"name":        validation.Validate(r.Name, validation.Required),
		"permissions": validatePermissions(r.Permissions),
	}.Filter()
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}

func validateUser(u models.User) error {
	err := validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.Required),
		validation.Field(&u.Email, validation.Required, is.EmailFormat),
		validation.Field(&u.RoleID, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}
