// Package scope evaluates per-role data visibility: admins are unrestricted,
// engineers see only records owned by their own engineer name, and sub
// accounts are limited to explicit allow-lists. It is the fine-grained half
// of the authorization contract; the coarse page-level half lives in the
// middleware gate.
package scope

import (
	"errors"
	"slices"

	"github.com/arvindpj/storegate/session"
)

// ErrForbidden is returned when a session is valid but not allowed to touch
// the requested record. Handlers must surface it as a 403, distinct from a
// 404, so a denied record is never mistaken for a missing one.
var ErrForbidden = errors.New("forbidden")

// Access is a request-scoped view derived from a decoded session. The zero
// value (and an Access built from a nil session) denies everything.
type Access struct {
	sess *session.Session
}

// FromSession derives the access view for s. A nil s means anonymous.
func FromSession(s *session.Session) Access {
	return Access{sess: s}
}

// Unrestricted reports whether the access view bypasses all scoping
// (admin sessions only).
func (a Access) Unrestricted() bool {
	return a.sess.IsAdmin()
}

// CheckEngineer decides whether data owned by the named engineer is visible.
func (a Access) CheckEngineer(name string) error {
	switch {
	case a.sess == nil:
		return ErrForbidden
	case a.sess.Role == session.RoleAdmin:
		return nil
	case a.sess.Role == session.RoleEngineer:
		if own, ok := a.sess.Engineer(); ok && own != "" && own == name {
			return nil
		}
		return ErrForbidden
	case a.sess.Role == session.RoleSub:
		if sub, ok := a.sess.Sub(); ok && slices.Contains(sub.Engineers, name) {
			return nil
		}
		return ErrForbidden
	}
	return ErrForbidden
}

// CheckProject decides whether the project is visible. ownerEngineer is the
// engineer the project belongs to; engineers are matched against it, subs
// against their allowed-project list.
func (a Access) CheckProject(projectID, ownerEngineer string) error {
	if a.sess != nil && a.sess.Role == session.RoleSub {
		if sub, ok := a.sess.Sub(); ok && slices.Contains(sub.Projects, projectID) {
			return nil
		}
		return ErrForbidden
	}
	return a.CheckEngineer(ownerEngineer)
}

// CheckPromo decides whether the promo code is visible, with the same owner
// semantics as CheckProject.
func (a Access) CheckPromo(code, ownerEngineer string) error {
	if a.sess != nil && a.sess.Role == session.RoleSub {
		if sub, ok := a.sess.Sub(); ok && slices.Contains(sub.Promos, code) {
			return nil
		}
		return ErrForbidden
	}
	return a.CheckEngineer(ownerEngineer)
}

// Engineers returns the visibility filter for engineer-owned listings:
// all=true for admins, otherwise the explicit set of visible engineer names
// (possibly empty, which means the listing is empty, not an error).
func (a Access) Engineers() (all bool, names []string) {
	switch {
	case a.sess == nil:
		return false, nil
	case a.sess.Role == session.RoleAdmin:
		return true, nil
	case a.sess.Role == session.RoleEngineer:
		if own, ok := a.sess.Engineer(); ok && own != "" {
			return false, []string{own}
		}
		return false, nil
	default:
		sub, _ := a.sess.Sub()
		return false, sub.Engineers
	}
}

// Promos returns the visibility filter for promo listings. For roles without
// an explicit promo allow-list the caller should fall back to filtering by
// [Access.Engineers].
func (a Access) Promos() (all bool, codes []string, byOwner bool) {
	switch {
	case a.sess == nil:
		return false, nil, false
	case a.sess.Role == session.RoleAdmin:
		return true, nil, false
	case a.sess.Role == session.RoleSub:
		sub, _ := a.sess.Sub()
		return false, sub.Promos, false
	default:
		return false, nil, true
	}
}
