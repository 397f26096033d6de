// Package permission answers whether a user may perform an action.
//
// The role → capability table is fixed when the Oracle is built and never
// mutated afterwards, so an Oracle is safe for concurrent use.
package permission

import (
	"fmt"
	"sort"

	"github.com/astro81/pathsala-backend/internal/model"
)

// Capability names a guarded action.
type Capability string

const (
	ViewCourse   Capability = "view_course"
	AddCourse    Capability = "add_course"
	EditCourse   Capability = "edit_course"
	DeleteCourse Capability = "delete_course"
	RateCourse   Capability = "rate_course"

	AddCategory    Capability = "add_category"
	EditCategory   Capability = "edit_category"
	DeleteCategory Capability = "delete_category"

	ManageUsers Capability = "manage_users"

	ApplyEnrollment  Capability = "apply_enrollment"
	ViewEnrollment   Capability = "view_enrollment"
	EditEnrollment   Capability = "edit_enrollment"
	DeleteEnrollment Capability = "delete_enrollment"
)

var known = map[Capability]struct{}{
	ViewCourse: {}, AddCourse: {}, EditCourse: {}, DeleteCourse: {}, RateCourse: {},
	AddCategory: {}, EditCategory: {}, DeleteCategory: {},
	ManageUsers:     {},
	ApplyEnrollment: {}, ViewEnrollment: {}, EditEnrollment: {}, DeleteEnrollment: {},
}

// IsKnown reports whether c is a capability the system checks.
func IsKnown(c Capability) bool {
	_, ok := known[c]
	return ok
}

// DefaultTable returns a fresh copy of the built-in table.
func DefaultTable() map[string][]Capability {
	return map[string][]Capability{
		model.RoleAdmin: {
			ViewCourse, AddCourse, EditCourse, DeleteCourse,
			AddCategory, EditCategory, DeleteCategory,
			ManageUsers,
			ViewEnrollment, EditEnrollment, DeleteEnrollment,
		},
		model.RoleModerator: {
			ViewCourse, AddCourse, EditCourse,
			AddCategory, EditCategory,
			ViewEnrollment, EditEnrollment,
		},
		model.RoleStudent: {
			ViewCourse, RateCourse,
			ApplyEnrollment,
		},
	}
}

// Oracle is the immutable capability table.
type Oracle struct {
	table map[string]map[Capability]struct{}
}

// New builds an Oracle. Unknown capability names are rejected.
func New(table map[string][]Capability) (*Oracle, error) {
	o := &Oracle{table: make(map[string]map[Capability]struct{}, len(table))}
	for role, caps := range table {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			if !IsKnown(c) {
				return nil, fmt.Errorf("permission: role %q lists unknown capability %q", role, c)
			}
			set[c] = struct{}{}
		}
		o.table[role] = set
	}
	return o, nil
}

// MustDefault builds the Oracle from DefaultTable.
func MustDefault() *Oracle {
	o, err := New(DefaultTable())
	if err != nil {
		panic(err)
	}
	return o
}

// FromConfig builds the Oracle from a role → capability-name override.
// An empty override yields the default table.
func FromConfig(override map[string][]string) (*Oracle, error) {
	if len(override) == 0 {
		return New(DefaultTable())
	}
	table := make(map[string][]Capability, len(override))
	for role, names := range override {
		caps := make([]Capability, 0, len(names))
		for _, n := range names {
			caps = append(caps, Capability(n))
		}
		table[role] = caps
	}
	return New(table)
}

// Validate checks the table against the roles the identity model knows:
// every role needs an entry and every entry must name a known role.
func (o *Oracle) Validate(roles []string) error {
	want := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		want[r] = struct{}{}
		if _, ok := o.table[r]; !ok {
			return fmt.Errorf("permission: role %q has no capability entry", r)
		}
	}
	for r := range o.table {
		if _, ok := want[r]; !ok {
			return fmt.Errorf("permission: table names unknown role %q", r)
		}
	}
	return nil
}

// Can reports whether role holds c. Empty or unknown names yield false.
func (o *Oracle) Can(role string, c Capability) bool {
	if c == "" {
		return false
	}
	set, ok := o.table[role]
	if !ok {
		return false
	}
	_, ok = set[c]
	return ok
}

// Authorize reports whether user may perform c. Inactive and nil users
// are always refused.
func (o *Oracle) Authorize(user *model.User, c Capability) bool {
	if user == nil || !user.IsActive {
		return false
	}
	return o.Can(user.Role, c)
}

// CapabilitiesOf lists role's capabilities in name order.
func (o *Oracle) CapabilitiesOf(role string) []string {
	set := o.table[role]
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}
