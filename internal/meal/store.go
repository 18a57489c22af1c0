package meal

import (
	"fmt"
	"sync"
	"time"
)

// Store is the process-wide record store. All state lives in memory for the
// lifetime of the process; every named transition validates its preconditions
// and applies under one lock, so a failed transition never leaves a partial
// mutation behind.
//
// Records that get updated in place (students, cancellations, dining months)
// are indexed by id; append-only collections (tokens, payments) are slices.
type Store struct {
	mu sync.RWMutex

	students     map[string]*Student
	studentOrder []string
	admins       map[string]*Admin
	adminOrder   []string
	managers     []Manager

	tokens        []Token
	cancellations map[string]*CancelledDay
	cancelOrder   []string
	diningMonths  map[string]*DiningMonth
	monthOrder    []string
	payments      []PaymentTransaction
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		students:      make(map[string]*Student),
		admins:        make(map[string]*Admin),
		cancellations: make(map[string]*CancelledDay),
		diningMonths:  make(map[string]*DiningMonth),
	}
}

// AddStudent inserts a new roster record.
func (s *Store) AddStudent(st Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == "" {
		return fmt.Errorf("%w: student id required", ErrValidation)
	}
	if _, ok := s.students[st.ID]; ok {
		return fmt.Errorf("%w: student %s already exists", ErrConflict, st.ID)
	}
	for _, id := range s.studentOrder {
		if s.students[id].Email == st.Email {
			return fmt.Errorf("%w: email %s already registered", ErrConflict, st.Email)
		}
	}
	s.students[st.ID] = &st
	s.studentOrder = append(s.studentOrder, st.ID)
	return nil
}

// AddAdmin inserts an administrator record.
func (s *Store) AddAdmin(a Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		return fmt.Errorf("%w: admin id required", ErrValidation)
	}
	if _, ok := s.admins[a.ID]; ok {
		return fmt.Errorf("%w: admin %s already exists", ErrConflict, a.ID)
	}
	s.admins[a.ID] = &a
	s.adminOrder = append(s.adminOrder, a.ID)
	return nil
}

// UpdateStudent replaces a roster record by id. Balance is preserved from the
// stored record; it only moves through purchase, top-up, and refund.
func (s *Store) UpdateStudent(st Student) (Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.students[st.ID]
	if !ok {
		return Student{}, fmt.Errorf("%w: student %s", ErrNotFound, st.ID)
	}
	st.Balance = cur.Balance
	st.CreatedAt = cur.CreatedAt
	if st.Password == "" {
		st.Password = cur.Password
	}
	*cur = st
	return *cur, nil
}

// UpdateStudentPhoto replaces only the profile photo field.
func (s *Store) UpdateStudentPhoto(studentID, uri string) (Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.students[studentID]
	if !ok {
		return Student{}, fmt.Errorf("%w: student %s", ErrNotFound, studentID)
	}
	cur.ProfilePhoto = uri
	return *cur, nil
}

// PurchaseToken appends the token and debits the student's balance in one
// step. The token must already carry its computed cost and date span; the
// store stamps it with the active dining month.
func (s *Store) PurchaseToken(t Token) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[t.StudentID]
	if !ok {
		return Token{}, fmt.Errorf("%w: student %s", ErrNotFound, t.StudentID)
	}
	dm := s.activeMonthLocked()
	if dm == nil {
		return Token{}, ErrNoActiveDiningMonth
	}
	if st.Balance < t.TotalCost {
		return Token{}, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientBalance, t.TotalCost, st.Balance)
	}
	t.DiningMonthID = dm.ID
	st.Balance -= t.TotalCost
	s.tokens = append(s.tokens, t)
	return t, nil
}

// RequestCancellation appends a pending refund request. The student must hold
// a token active right now; a second overlapping request for the same date is
// rejected unless the earlier one was denied.
func (s *Store) RequestCancellation(c CancelledDay, now time.Time) (CancelledDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[c.StudentID]; !ok {
		return CancelledDay{}, fmt.Errorf("%w: student %s", ErrNotFound, c.StudentID)
	}
	var active *Token
	for i := range s.tokens {
		if s.tokens[i].StudentID == c.StudentID && TokenActiveAt(s.tokens[i], now) {
			active = &s.tokens[i]
			break
		}
	}
	if active == nil {
		return CancelledDay{}, fmt.Errorf("%w: no active token", ErrConflict)
	}
	for _, id := range s.cancelOrder {
		prev := s.cancellations[id]
		if prev.StudentID != c.StudentID || prev.Status == StatusDenied {
			continue
		}
		if DateOnly(prev.CancelledDate).Equal(DateOnly(c.CancelledDate)) && mealsOverlap(prev.MealType, c.MealType) {
			return CancelledDay{}, fmt.Errorf("%w: %s already cancelled for that date", ErrConflict, prev.MealType)
		}
	}
	if c.TokenID == "" {
		c.TokenID = active.ID
	}
	cp := c
	s.cancellations[c.ID] = &cp
	s.cancelOrder = append(s.cancelOrder, c.ID)
	return c, nil
}

// ResolveCancellation moves a pending request to approved or denied. Approval
// credits the owning student's refund in the same step; a request already in
// a terminal state is never re-reviewed.
func (s *Store) ResolveCancellation(id string, approve bool, approverID string, now time.Time) (CancelledDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cancellations[id]
	if !ok {
		return CancelledDay{}, fmt.Errorf("%w: cancellation %s", ErrNotFound, id)
	}
	if c.Status != StatusPending {
		return CancelledDay{}, fmt.Errorf("%w: already %s", ErrConflict, c.Status)
	}
	if approve {
		st, ok := s.students[c.StudentID]
		if !ok {
			return CancelledDay{}, fmt.Errorf("%w: student %s", ErrNotFound, c.StudentID)
		}
		st.Balance += c.RefundAmount
		c.Status = StatusApproved
	} else {
		c.Status = StatusDenied
	}
	c.ApprovedBy = approverID
	at := now
	c.ApprovedAt = &at
	return *c, nil
}

// AddPayment appends a completed top-up transaction and credits the balance.
func (s *Store) AddPayment(p PaymentTransaction) (PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.students[p.StudentID]
	if !ok {
		return PaymentTransaction{}, fmt.Errorf("%w: student %s", ErrNotFound, p.StudentID)
	}
	st.Balance += p.Amount
	s.payments = append(s.payments, p)
	return p, nil
}

// OpenDiningMonth deactivates every existing period and appends the new one
// as the single active period.
func (s *Store) OpenDiningMonth(dm DiningMonth) DiningMonth {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.monthOrder {
		s.diningMonths[id].IsActive = false
	}
	dm.IsActive = true
	cp := dm
	s.diningMonths[dm.ID] = &cp
	s.monthOrder = append(s.monthOrder, dm.ID)
	return dm
}

// AssignManagers replaces the manager pair of a dining month. Exactly two
// distinct students take over; prior manager records for the period are
// dropped.
func (s *Store) AssignManagers(diningMonthID string, studentIDs []string, assignedBy string, now time.Time) ([]Manager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dm, ok := s.diningMonths[diningMonthID]
	if !ok {
		return nil, fmt.Errorf("%w: dining month %s", ErrNotFound, diningMonthID)
	}
	if len(studentIDs) != 2 || studentIDs[0] == studentIDs[1] {
		return nil, fmt.Errorf("%w: exactly 2 distinct students required", ErrValidation)
	}
	assigned := make([]Manager, 0, 2)
	for _, sid := range studentIDs {
		st, ok := s.students[sid]
		if !ok {
			return nil, fmt.Errorf("%w: student %s", ErrNotFound, sid)
		}
		for _, cur := range dm.ManagerIDs {
			if cur == sid {
				return nil, fmt.Errorf("%w: student %s already manages this period", ErrConflict, sid)
			}
		}
		assigned = append(assigned, Manager{
			ID:            sid,
			StudentID:     sid,
			Name:          st.Name,
			Email:         st.Email,
			Password:      st.Password,
			HallID:        st.HallID,
			DiningMonthID: diningMonthID,
			AssignedBy:    assignedBy,
			AssignedAt:    now,
		})
	}
	kept := s.managers[:0]
	for _, m := range s.managers {
		if m.DiningMonthID != diningMonthID {
			kept = append(kept, m)
		}
	}
	s.managers = append(kept, assigned...)
	dm.ManagerIDs = append([]string(nil), studentIDs...)
	return assigned, nil
}

// mealsOverlap reports whether two cancellation selections cover a common
// meal: "both" overlaps everything.
func mealsOverlap(a, b CancelMealType) bool {
	return a == b || a == CancelBoth || b == CancelBoth
}

func (s *Store) activeMonthLocked() *DiningMonth {
	for _, id := range s.monthOrder {
		if s.diningMonths[id].IsActive {
			return s.diningMonths[id]
		}
	}
	return nil
}
