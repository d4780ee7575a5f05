package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMonthWindow(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	w := MonthWindow(now, -1)
	if !w.From.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) || !w.To.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v", w)
	}
	if w.Contains(w.To) {
		t.Fatalf("window end must be exclusive")
	}
	if !w.Contains(w.From) {
		t.Fatalf("window start must be inclusive")
	}
}

func TestLastNDays(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	w := LastNDays(now, 7)
	if got := w.String(); got != "2025-03-04..2025-03-11" {
		t.Fatalf("got %q", got)
	}
	if got := (Window{}).String(); got != "-..-" {
		t.Fatalf("got %q", got)
	}
}

func TestScope(t *testing.T) {
	s := ScopeNames(" alice ", "BOB")
	if !s.Allows("Alice") || !s.Allows("bob ") || s.Allows("carol") || s.Allows("  ") {
		t.Fatalf("unexpected scope decisions for %+v", s)
	}
	if got := s.Key(); got != "ALICE,BOB" {
		t.Fatalf("got %q", got)
	}
	if !ScopeAll().Allows("") {
		t.Fatalf("ScopeAll must allow everything")
	}

	lines := []TransactionLine{{SalesExecName: "Alice"}, {SalesExecName: "Carol"}, {SalesExecName: ""}}
	if got := s.FilterTransactions(lines); len(got) != 1 {
		t.Fatalf("got %d lines, want 1", len(got))
	}
	customers := []CustomerRecord{{AssignedSalesExec: "bob"}, {AssignedSalesExec: "dave"}}
	if got := s.FilterCustomers(customers); len(got) != 1 {
		t.Fatalf("got %d customers, want 1", len(got))
	}
}

func TestAgreementCovers(t *testing.T) {
	a := Agreement{
		CustomerCode: "C1",
		StartDate:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	cases := []struct {
		line TransactionLine
		want bool
	}{
		{TransactionLine{CustomerCode: "C1", DocumentDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, true},
		{TransactionLine{CustomerCode: " C1 ", DocumentDate: time.Date(2025, 1, 31, 22, 0, 0, 0, time.UTC)}, true},
		{TransactionLine{CustomerCode: "C1", DocumentDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}, false},
		{TransactionLine{CustomerCode: "C2", DocumentDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)}, false},
	}
	for i, tc := range cases {
		if got := a.Covers(tc.line); got != tc.want {
			t.Fatalf("case %d: got %v, want %v", i, got, tc.want)
		}
	}
	if got := AchievementPct(45, 100); got != 45 {
		t.Fatalf("got %v, want 45", got)
	}
	if got := AchievementPct(0, 0); got != 0 {
		t.Fatalf("got %v, want 0", got)
	}
}

func TestIsValidationError(t *testing.T) {
	wrapped := fmt.Errorf("import: %w", &EmptyImportError{Schema: "invoices"})
	if !IsValidationError(wrapped) {
		t.Fatalf("wrapped EmptyImportError should be a validation error")
	}
	if IsValidationError(errors.New("boom")) || IsValidationError(ErrNotFound) {
		t.Fatalf("plain errors are not validation errors")
	}
}

func TestAchievementPct(t *testing.T) {
	cases := []struct {
		achieved, target, want float64
	}{
		{45, 100, 45},
		{55, 100, 55},
		{7, 70, 10},
		{0, 0, 0},
		{10, 0, 0},
	}
	for _, tc := range cases {
		if got := AchievementPct(tc.achieved, tc.target); got != tc.want {
			t.Fatalf("AchievementPct(%v, %v): got %v, want %v", tc.achieved, tc.target, got, tc.want)
		}
	}
}
