package session

import (
	"encoding/json"
	"fmt"
)

// Role is the closed set of dashboard roles. The zero value is not a valid
// role; anonymous requests are represented by the absence of a Session, never
// by a Role value.
type Role uint8

const (
	// RoleAdmin has unrestricted access, including user management.
	RoleAdmin Role = iota + 1
	// RoleEngineer sees only data belonging to its own engineer name.
	RoleEngineer
	// RoleSub is restricted to explicit allow-lists of engineers, projects,
	// and promo codes.
	RoleSub
)

const (
	roleAdminName    = "admin"
	roleEngineerName = "engineer"
	roleSubName      = "sub"
)

// ParseRole maps the wire/database spelling of a role to its Role value.
func ParseRole(s string) (Role, error) {
	switch s {
	case roleAdminName:
		return RoleAdmin, nil
	case roleEngineerName:
		return RoleEngineer, nil
	case roleSubName:
		return RoleSub, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return roleAdminName
	case RoleEngineer:
		return roleEngineerName
	case RoleSub:
		return roleSubName
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Valid reports whether r is one of the three defined roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEngineer || r == RoleSub
}

// MarshalJSON encodes the role as its string name so tokens and API payloads
// carry "admin"/"engineer"/"sub" rather than numeric tags.
func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid role %d", uint8(r))
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON rejects anything outside the closed role set, so a tampered
// or stale payload with an unknown role fails decoding instead of producing
// a session with undefined authority.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// SubScope is the allow-list bundle carried by sub-role sessions.
type SubScope struct {
	Engineers []string
	Projects  []string
	Promos    []string
}

// Session is the decoded payload of a session token. It is a value type:
// built at login, serialized into the token, and reconstructed on every
// request. Scoping fields are only populated for the role that owns them;
// use [Session.Engineer] and [Session.Sub] instead of reading them directly.
type Session struct {
	Email            string   `json:"email"`
	Role             Role     `json:"role"`
	EngineerName     string   `json:"engineerName,omitempty"`
	AllowedEngineers []string `json:"allowedEngineers,omitempty"`
	AllowedProjects  []string `json:"allowedProjects,omitempty"`
	AllowedPromos    []string `json:"allowedPromos,omitempty"`

	// IssuedAt and ExpiresAt are unix seconds, stamped by the codec.
	// ExpiresAt zero means the token never expires; the codec always stamps
	// it, so non-expiring payloads only arise from externally signed tokens.
	IssuedAt  int64 `json:"iat,omitempty"`
	ExpiresAt int64 `json:"exp,omitempty"`
}

// NewAdmin builds an unrestricted admin session.
func NewAdmin(email string) Session {
	return Session{Email: email, Role: RoleAdmin}
}

// NewEngineer builds an engineer session scoped to its own engineer name.
func NewEngineer(email, engineerName string) Session {
	return Session{Email: email, Role: RoleEngineer, EngineerName: engineerName}
}

// NewSub builds a sub session restricted to the given allow-lists.
func NewSub(email string, scope SubScope) Session {
	return Session{
		Email:            email,
		Role:             RoleSub,
		AllowedEngineers: scope.Engineers,
		AllowedProjects:  scope.Projects,
		AllowedPromos:    scope.Promos,
	}
}

// Engineer returns the engineer name for engineer-role sessions. The second
// return is false for every other role, so callers cannot accidentally scope
// by an empty name.
func (s *Session) Engineer() (string, bool) {
	if s == nil || s.Role != RoleEngineer {
		return "", false
	}
	return s.EngineerName, true
}

// Sub returns the allow-list bundle for sub-role sessions.
func (s *Session) Sub() (SubScope, bool) {
	if s == nil || s.Role != RoleSub {
		return SubScope{}, false
	}
	return SubScope{
		Engineers: s.AllowedEngineers,
		Projects:  s.AllowedProjects,
		Promos:    s.AllowedPromos,
	}, true
}

// IsAdmin reports whether s is a valid admin session. Safe on nil.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
