package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/oauthgw/internal/oauth/domain"
	"github.com/aussiebroadwan/oauthgw/internal/oauth/idp"
	"github.com/aussiebroadwan/oauthgw/pkg/errx"
	"github.com/aussiebroadwan/oauthgw/pkg/slogx"
)

type CreateUserRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first-name" validate:"required"`
	LastName  string `json:"last-name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

// UpdateUserRequest overlays the supplied fields; nil fields are untouched.
type UpdateUserRequest struct {
	FirstName *string `json:"first-name"`
	LastName  *string `json:"last-name"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

type UserService struct {
	IDP idp.Provider
}

// List returns every user the caller may see. Records that cannot be mapped
// are dropped and logged rather than failing the whole listing.
func (s *UserService) List(ctx context.Context, token string, enabled *bool) ([]domain.User, error) {
	var recs []domain.UserRecord
	err := opListUsers.run(ctx, func(ctx context.Context) (err error) {
		recs, err = s.IDP.Users().List(ctx, token, enabled)
		return err
	})
	if err != nil {
		return nil, err
	}

	log := slogx.FromContext(ctx)
	users := make([]domain.User, 0, len(recs))
	for _, rec := range recs {
		u, err := rec.ToUser()
		if err != nil {
			log.Warn("dropping unmappable user record", "user_id", rec.ID(), "err", err)
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// Get returns one user. A record that cannot be mapped is an error here.
func (s *UserService) Get(ctx context.Context, token, id string) (domain.User, error) {
	var rec domain.UserRecord
	err := opGetUser.run(ctx, func(ctx context.Context) (err error) {
		rec, err = s.IDP.Users().Get(ctx, token, id)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return toUser(rec)
}

// Create creates the user, then fetches exactly the id the provider assigned
// so the response reflects what was stored.
func (s *UserService) Create(ctx context.Context, token string, req CreateUserRequest) (domain.User, error) {
	if err := validateRequest(req); err != nil {
		return domain.User{}, err
	}

	var (
		id  string
		rec domain.UserRecord
	)
	err := opCreateUser.run(ctx,
		func(ctx context.Context) (err error) {
			id, err = s.IDP.Users().Create(ctx, token,
				domain.NewUserRecord(req.Username, req.FirstName, req.LastName, req.Email, req.Password))
			return err
		},
		func(ctx context.Context) (err error) {
			rec, err = s.IDP.Users().Get(ctx, token, id)
			return err
		},
	)
	if err != nil {
		return domain.User{}, err
	}
	return toUser(rec)
}

// Update is a read-modify-write: the current record is fetched, the supplied
// fields overlaid, write-protected fields stripped and the result written back.
func (s *UserService) Update(ctx context.Context, token, id string, req UpdateUserRequest) (domain.User, error) {
	patch := domain.UserPatch{
		FirstName: trimmed(req.FirstName),
		LastName:  trimmed(req.LastName),
		Email:     trimmed(req.Email),
	}
	if patch.IsEmpty() {
		return domain.User{}, errx.Validation("at least one of first-name, last-name or email is required")
	}
	if err := validateRequest(UpdateUserRequest(patch)); err != nil {
		return domain.User{}, err
	}

	var current, merged domain.UserRecord
	err := opUpdateUser.run(ctx,
		func(ctx context.Context) (err error) {
			current, err = s.IDP.Users().Get(ctx, token, id)
			return err
		},
		func(ctx context.Context) error {
			merged = current.Merge(patch)
			return s.IDP.Users().Update(ctx, token, id, merged)
		},
	)
	if err != nil {
		return domain.User{}, err
	}

	out := merged.Clone()
	out[domain.FieldID] = id
	return toUser(out)
}

// ChangePassword sets a new permanent password.
func (s *UserService) ChangePassword(ctx context.Context, token, id string, req ChangePasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	return opChangePassword.run(ctx, func(ctx context.Context) error {
		return s.IDP.Users().ResetPassword(ctx, token, id, req.Password)
	})
}

// Disable is the delete operation: the user is switched off, never removed.
// Disabling a disabled user writes nothing.
func (s *UserService) Disable(ctx context.Context, token, id string) error {
	var current domain.UserRecord
	return opDisableUser.run(ctx,
		func(ctx context.Context) (err error) {
			current, err = s.IDP.Users().Get(ctx, token, id)
			return err
		},
		func(ctx context.Context) error {
			if !current.Enabled() {
				slogx.FromContext(ctx).Debug("user already disabled", "user_id", id)
				return nil
			}
			return s.IDP.Users().Update(ctx, token, id, current.Disabled())
		},
	)
}

// Roles lists the realm roles mapped to a user.
func (s *UserService) Roles(ctx context.Context, token, id string) ([]domain.Role, error) {
	var roles []domain.Role
	err := opUserRoles.run(ctx, func(ctx context.Context) (err error) {
		roles, err = s.IDP.Users().RealmRoles(ctx, token, id)
		return err
	})
	return roles, err
}

func toUser(rec domain.UserRecord) (domain.User, error) {
	u, err := rec.ToUser()
	if errors.Is(err, domain.ErrIncompleteRecord) {
		return domain.User{}, errx.IncompleteData(err.Error())
	}
	return u, err
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
