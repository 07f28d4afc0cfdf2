package domain

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

// ErrIncompleteRecord is returned when an upstream user record lacks a field
// the outward user shape requires.
var ErrIncompleteRecord = errors.New("domain: incomplete user record")

// Upstream field names of a user representation.
const (
	FieldID              = "id"
	FieldUsername        = "username"
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldEmail           = "email"
	FieldEnabled         = "enabled"
	FieldEmailVerified   = "emailVerified"
	FieldCredentials     = "credentials"
	FieldRequiredActions = "requiredActions"
)

// writeProtected fields are dropped from every record written back upstream.
var writeProtected = []string{FieldID, FieldCredentials, FieldRequiredActions}

// User is the outward view of an identity record.
type User struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
	Email     string
	Enabled   bool
}

// UserPatch holds the fields an update may overlay. Nil means untouched.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil
}

// UserRecord is an upstream user representation kept as an opaque map, so a
// read-modify-write round trip preserves fields the gateway does not model
// (attributes, federation links, ...).
type UserRecord map[string]any

// NewUserRecord builds the create payload for a new, enabled user with a
// permanent password.
func NewUserRecord(username, firstName, lastName, email, password string) UserRecord {
	return UserRecord{
		FieldUsername:      username,
		FieldFirstName:     firstName,
		FieldLastName:      lastName,
		FieldEmail:         email,
		FieldEnabled:       true,
		FieldEmailVerified: true,
		FieldCredentials: []any{
			map[string]any{
				"type":      "password",
				"value":     password,
				"temporary": false,
			},
		},
	}
}

// StringField returns the string field key.
func (r UserRecord) StringField(key string) (string, bool) {
	v, ok := r[key].(string)
	return v, ok
}

// BoolField returns the boolean field key.
func (r UserRecord) BoolField(key string) (bool, bool) {
	v, ok := r[key].(bool)
	return v, ok
}

// ID returns the upstream id or "".
func (r UserRecord) ID() string {
	v, _ := r.StringField(FieldID)
	return v
}

// Enabled reports the enabled flag; records without one count as enabled.
func (r UserRecord) Enabled() bool {
	v, ok := r.BoolField(FieldEnabled)
	return !ok || v
}

// Clone returns a shallow copy. Nested values are shared and must not be
// mutated.
func (r UserRecord) Clone() UserRecord {
	return maps.Clone(r)
}

// Writable returns a copy with write-protected fields removed.
func (r UserRecord) Writable() UserRecord {
	out := r.Clone()
	if out == nil {
		out = UserRecord{}
	}
	for _, k := range writeProtected {
		delete(out, k)
	}
	return out
}

// Merge overlays p on a writable copy of r.
func (r UserRecord) Merge(p UserPatch) UserRecord {
	out := r.Writable()
	if p.FirstName != nil {
		out[FieldFirstName] = *p.FirstName
	}
	if p.LastName != nil {
		out[FieldLastName] = *p.LastName
	}
	if p.Email != nil {
		out[FieldEmail] = *p.Email
	}
	return out
}

// Disabled returns a writable copy of r with enabled=false.
func (r UserRecord) Disabled() UserRecord {
	out := r.Writable()
	out[FieldEnabled] = false
	return out
}

// ToUser maps the record to the outward shape. Every field is required.
func (r UserRecord) ToUser() (User, error) {
	var (
		u       User
		missing []string
	)

	str := func(key string, dst *string) {
		v, ok := r.StringField(key)
		if !ok || strings.TrimSpace(v) == "" {
			missing = append(missing, key)
			return
		}
		*dst = v
	}
	str(FieldID, &u.ID)
	str(FieldUsername, &u.Username)
	str(FieldFirstName, &u.FirstName)
	str(FieldLastName, &u.LastName)
	str(FieldEmail, &u.Email)

	enabled, ok := r.BoolField(FieldEnabled)
	if !ok {
		missing = append(missing, FieldEnabled)
	}
	u.Enabled = enabled

	if len(missing) > 0 {
		return User{}, fmt.Errorf("%w: missing %s", ErrIncompleteRecord, strings.Join(missing, ", "))
	}
	return u, nil
}
