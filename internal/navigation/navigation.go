// Package navigation builds the sidebar for a session.
package navigation

import "github.com/jwalitptl/admin-console/internal/session"

type Item struct {
	Key   string
	Label string
	Path  string
	// SuperAdminOnly hides the entry from regular staff.
	SuperAdminOnly bool
}

var menu = []Item{
	{Key: "customers", Label: "Customers", Path: "/customers"},
	{Key: "leads", Label: "Leads", Path: "/leads"},
	{Key: "staff", Label: "Staff", Path: "/staff", SuperAdminOnly: true},
	{Key: "roles", Label: "Roles", Path: "/roles", SuperAdminOnly: true},
	{Key: "faqs", Label: "FAQs", Path: "/faqs"},
	{Key: "certificates", Label: "Certificates", Path: "/certificates"},
	{Key: "call-logs", Label: "IVR Call Logs", Path: "/ivr/call-logs", SuperAdminOnly: true},
	{Key: "custom-template", Label: "Custom Template", Path: "/custom-template"},
}

// Items returns the entries visible to s, in menu order. Anonymous sessions
// see nothing.
func Items(s session.Session) []Item {
	role := s.Role()
	if role == session.RoleNone {
		return nil
	}
	out := make([]Item, 0, len(menu))
	for _, item := range menu {
		if item.SuperAdminOnly && role != session.RoleSuperAdmin {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Allowed reports whether s may open the entry with key.
func Allowed(s session.Session, key string) bool {
	for _, item := range Items(s) {
		if item.Key == key {
			return true
		}
	}
	return false
}
