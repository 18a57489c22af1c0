package meal

import (
	"fmt"
	"time"
)

// Principal is the tagged result of authentication: exactly one of the three
// record fields is set, matching Role.
type Principal struct {
	Role    Role     `json:"role"`
	Student *Student `json:"student,omitempty"`
	Manager *Manager `json:"manager,omitempty"`
	Admin   *Admin   `json:"admin,omitempty"`
}

// ID returns the id of whichever record is set.
func (p Principal) ID() string {
	switch p.Role {
	case RoleStudent:
		return p.Student.ID
	case RoleManager:
		return p.Manager.ID
	case RoleAdmin:
		return p.Admin.ID
	}
	return ""
}

// Authenticate looks up credentials within the claimed role's collection.
func (s *Store) Authenticate(role Role, email, password string) (Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch role {
	case RoleStudent:
		for _, id := range s.studentOrder {
			st := s.students[id]
			if st.Email == email && st.Password == password {
				cp := *st
				return Principal{Role: RoleStudent, Student: &cp}, nil
			}
		}
	case RoleManager:
		for i := range s.managers {
			if s.managers[i].Email == email && s.managers[i].Password == password {
				cp := s.managers[i]
				return Principal{Role: RoleManager, Manager: &cp}, nil
			}
		}
	case RoleAdmin:
		for _, id := range s.adminOrder {
			a := s.admins[id]
			if a.Email == email && a.Password == password {
				cp := *a
				return Principal{Role: RoleAdmin, Admin: &cp}, nil
			}
		}
	default:
		return Principal{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	return Principal{}, ErrInvalidCredentials
}

// Students returns the roster in insertion order.
func (s *Store) Students() []Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Student, 0, len(s.studentOrder))
	for _, id := range s.studentOrder {
		out = append(out, *s.students[id])
	}
	return out
}

// Student returns one roster record.
func (s *Store) Student(id string) (Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	if !ok {
		return Student{}, fmt.Errorf("%w: student %s", ErrNotFound, id)
	}
	return *st, nil
}

// TokensByStudent returns a student's tokens, newest first.
func (s *Store) TokensByStudent(studentID string) []Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Token
	for i := len(s.tokens) - 1; i >= 0; i-- {
		if s.tokens[i].StudentID == studentID {
			out = append(out, s.tokens[i])
		}
	}
	return out
}

// Cancellations returns refund requests, optionally filtered by status and
// student. Empty filters match everything.
func (s *Store) Cancellations(status CancellationStatus, studentID string) []CancelledDay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []CancelledDay
	for _, id := range s.cancelOrder {
		c := s.cancellations[id]
		if status != "" && c.Status != status {
			continue
		}
		if studentID != "" && c.StudentID != studentID {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// PaymentsByStudent returns a student's top-up history, newest first.
func (s *Store) PaymentsByStudent(studentID string) []PaymentTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []PaymentTransaction
	for i := len(s.payments) - 1; i >= 0; i-- {
		if s.payments[i].StudentID == studentID {
			out = append(out, s.payments[i])
		}
	}
	return out
}

// DiningMonths returns every period, newest first.
func (s *Store) DiningMonths() []DiningMonth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DiningMonth, 0, len(s.monthOrder))
	for i := len(s.monthOrder) - 1; i >= 0; i-- {
		out = append(out, *s.diningMonths[s.monthOrder[i]])
	}
	return out
}

// ActiveDiningMonth returns the single administratively active period.
func (s *Store) ActiveDiningMonth() (DiningMonth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if dm := s.activeMonthLocked(); dm != nil {
		return *dm, nil
	}
	return DiningMonth{}, ErrNoActiveDiningMonth
}

// ManagersForMonth returns the manager records tied to one period.
func (s *Store) ManagersForMonth(diningMonthID string) []Manager {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Manager
	for _, m := range s.managers {
		if m.DiningMonthID == diningMonthID {
			out = append(out, m)
		}
	}
	return out
}

// Stats computes dashboard numbers from current state. Nothing here is
// cached; revenue is the sum of token costs, refunds the sum of approved
// cancellation credits.
func (s *Store) Stats(now time.Time) DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats DashboardStats
	stats.TotalStudents = len(s.studentOrder)
	for i := range s.tokens {
		stats.TotalRevenue += s.tokens[i].TotalCost
		if TokenActiveAt(s.tokens[i], now) {
			stats.TotalActiveTokens++
		}
	}
	for _, id := range s.cancelOrder {
		switch s.cancellations[id].Status {
		case StatusPending:
			stats.PendingCancellations++
		case StatusApproved:
			stats.TotalRefunds += s.cancellations[id].RefundAmount
		}
	}
	return stats
}
