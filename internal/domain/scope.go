package domain

import (
	"sort"
	"strings"
)

// Scope is the salesperson visibility of a caller, supplied by the auth layer.
// It is applied before any row reaches the KPI engine.
type Scope struct {
	All          bool     `json:"all"`
	AllowedNames []string `json:"allowed_names,omitempty"`
}

// ScopeAll grants access to every salesperson.
func ScopeAll() Scope {
	return Scope{All: true}
}

// ScopeNames restricts access to the given salespeople.
func ScopeNames(names ...string) Scope {
	return Scope{AllowedNames: names}
}

// Allows reports whether rows owned by salesperson name are visible.
func (s Scope) Allows(name string) bool {
	if s.All {
		return true
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, allowed := range s.AllowedNames {
		if strings.EqualFold(strings.TrimSpace(allowed), name) {
			return true
		}
	}
	return false
}

// Key is a stable representation used in cache keys.
func (s Scope) Key() string {
	if s.All {
		return "ALL"
	}
	names := make([]string, 0, len(s.AllowedNames))
	for _, n := range s.AllowedNames {
		if n = strings.ToUpper(strings.TrimSpace(n)); n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// FilterTransactions drops lines whose salesperson is outside the scope.
func (s Scope) FilterTransactions(lines []TransactionLine) []TransactionLine {
	if s.All {
		return lines
	}
	out := make([]TransactionLine, 0, len(lines))
	for _, l := range lines {
		if s.Allows(l.SalesExecName) {
			out = append(out, l)
		}
	}
	return out
}

// FilterCustomers drops master customers assigned outside the scope.
func (s Scope) FilterCustomers(customers []CustomerRecord) []CustomerRecord {
	if s.All {
		return customers
	}
	out := make([]CustomerRecord, 0, len(customers))
	for _, c := range customers {
		if s.Allows(c.AssignedSalesExec) {
			out = append(out, c)
		}
	}
	return out
}
