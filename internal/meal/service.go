package meal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// diningMonthDays is the fixed length of a dining period. The end date lands
// on start+29 so the period spans 30 calendar days including the start.
const diningMonthDays = 30

var tokenDurations = map[int]bool{5: true, 7: true, 15: true, 30: true}

// Service validates inputs, computes prices and date spans, and drives the
// store's transitions.
type Service struct {
	store *Store
	now   func() time.Time
}

// NewService creates a service over the given store.
func NewService(store *Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Store exposes the underlying store for read queries.
func (s *Service) Store() *Store { return s.store }

// Login authenticates credentials within the claimed role.
func (s *Service) Login(role Role, email, password string) (Principal, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Principal{}, fmt.Errorf("%w: email and password required", ErrValidation)
	}
	return s.store.Authenticate(role, email, password)
}

// PurchaseToken buys a meal token for the student. Cost is fixed here, once;
// the store debits the balance and stamps the active dining month.
func (s *Service) PurchaseToken(studentID string, duration int, mealType TokenMealType) (Token, error) {
	if studentID == "" {
		return Token{}, fmt.Errorf("%w: student id required", ErrValidation)
	}
	if !tokenDurations[duration] {
		return Token{}, fmt.Errorf("%w: duration must be 5, 7, 15 or 30 days", ErrValidation)
	}
	switch mealType {
	case MealLunch:
		if duration > 7 {
			return Token{}, fmt.Errorf("%w: lunch-only tokens come in 5 or 7 days", ErrValidation)
		}
	case MealLunchDinner:
	default:
		return Token{}, fmt.Errorf("%w: unknown meal type %q", ErrValidation, mealType)
	}

	now := s.now()
	t := Token{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		Duration:     duration,
		MealType:     mealType,
		StartDate:    now,
		EndDate:      AddDays(now, duration),
		TotalCost:    TokenPrice(duration, mealType),
		PurchaseDate: now,
	}
	return s.store.PurchaseToken(t)
}

// RequestCancellation submits a refund request for one dining date. The date
// must respect the two-day advance notice; the refund amount is fixed at
// submission from the flat schedule.
func (s *Service) RequestCancellation(studentID string, date time.Time, mealType CancelMealType) (CancelledDay, error) {
	if studentID == "" {
		return CancelledDay{}, fmt.Errorf("%w: student id required", ErrValidation)
	}
	switch mealType {
	case CancelLunch, CancelDinner, CancelBoth:
	default:
		return CancelledDay{}, fmt.Errorf("%w: unknown meal type %q", ErrValidation, mealType)
	}
	now := s.now()
	if !CancellableOn(date, now) {
		return CancelledDay{}, fmt.Errorf("%w: cancellations need %d days notice", ErrValidation, cancelNoticeDays)
	}
	c := CancelledDay{
		ID:            uuid.NewString(),
		StudentID:     studentID,
		CancelledDate: DateOnly(date),
		MealType:      mealType,
		RefundAmount:  Refund(mealType),
		RequestDate:   now,
		Status:        StatusPending,
	}
	return s.store.RequestCancellation(c, now)
}

// ResolveCancellation applies a manager decision to a pending request.
func (s *Service) ResolveCancellation(id, decision, approverID string) (CancelledDay, error) {
	if id == "" || approverID == "" {
		return CancelledDay{}, fmt.Errorf("%w: cancellation and approver ids required", ErrValidation)
	}
	switch decision {
	case string(StatusApproved), string(StatusDenied):
	default:
		return CancelledDay{}, fmt.Errorf("%w: decision must be approved or denied", ErrValidation)
	}
	return s.store.ResolveCancellation(id, decision == string(StatusApproved), approverID, s.now())
}

// AddBalance records a top-up and credits the student. The transaction ref is
// operator-entered text; no gateway is consulted.
func (s *Service) AddBalance(studentID string, amount float64, method PaymentMethod, transactionRef string) (PaymentTransaction, error) {
	if studentID == "" {
		return PaymentTransaction{}, fmt.Errorf("%w: student id required", ErrValidation)
	}
	if amount <= 0 {
		return PaymentTransaction{}, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	switch method {
	case MethodBkash, MethodNagad, MethodRocket, MethodCard:
	default:
		return PaymentTransaction{}, fmt.Errorf("%w: unknown payment method %q", ErrValidation, method)
	}
	if strings.TrimSpace(transactionRef) == "" {
		return PaymentTransaction{}, fmt.Errorf("%w: transaction reference required", ErrValidation)
	}
	p := PaymentTransaction{
		ID:             uuid.NewString(),
		StudentID:      studentID,
		Amount:         amount,
		Method:         method,
		TransactionRef: transactionRef,
		Status:         PaymentCompleted,
		CreatedAt:      s.now(),
	}
	return s.store.AddPayment(p)
}

// OpenDiningMonth starts a new 30-day period and supersedes the current one.
func (s *Service) OpenDiningMonth(startDate time.Time, creatorID string) (DiningMonth, error) {
	if startDate.IsZero() {
		return DiningMonth{}, fmt.Errorf("%w: start date required", ErrValidation)
	}
	if creatorID == "" {
		return DiningMonth{}, fmt.Errorf("%w: creator id required", ErrValidation)
	}
	start := DateOnly(startDate)
	dm := DiningMonth{
		ID:        uuid.NewString(),
		StartDate: start,
		EndDate:   AddDays(start, diningMonthDays-1),
		CreatedBy: creatorID,
		CreatedAt: s.now(),
	}
	return s.store.OpenDiningMonth(dm), nil
}

// AssignManagers hands a dining month to a new pair of student managers.
func (s *Service) AssignManagers(diningMonthID string, studentIDs []string, assignedBy string) ([]Manager, error) {
	if diningMonthID == "" {
		return nil, fmt.Errorf("%w: dining month id required", ErrValidation)
	}
	return s.store.AssignManagers(diningMonthID, studentIDs, assignedBy, s.now())
}

// CreateStudent adds a roster record with a fresh id.
func (s *Service) CreateStudent(st Student) (Student, error) {
	if err := validateStudent(st); err != nil {
		return Student{}, err
	}
	st.ID = uuid.NewString()
	st.CreatedAt = s.now()
	if err := s.store.AddStudent(st); err != nil {
		return Student{}, err
	}
	return st, nil
}

// UpdateStudent replaces a roster record.
func (s *Service) UpdateStudent(st Student) (Student, error) {
	if st.ID == "" {
		return Student{}, fmt.Errorf("%w: student id required", ErrValidation)
	}
	if err := validateStudent(st); err != nil {
		return Student{}, err
	}
	return s.store.UpdateStudent(st)
}

// UpdateStudentPhoto sets the profile photo URI.
func (s *Service) UpdateStudentPhoto(studentID, uri string) (Student, error) {
	if studentID == "" || uri == "" {
		return Student{}, fmt.Errorf("%w: student id and photo uri required", ErrValidation)
	}
	return s.store.UpdateStudentPhoto(studentID, uri)
}

func validateStudent(st Student) error {
	if strings.TrimSpace(st.Name) == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if !strings.Contains(st.Email, "@") {
		return fmt.Errorf("%w: valid email required", ErrValidation)
	}
	return nil
}
