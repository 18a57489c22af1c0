package meal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, time.Time) {
	t.Helper()
	s := NewStore()
	now := date(2026, time.March, 10)
	require.NoError(t, s.AddStudent(Student{
		ID: "stu-1", Name: "Arif Hossain", Email: "arif@hall.edu",
		Password: "pw", Balance: 3000,
	}))
	s.OpenDiningMonth(DiningMonth{
		ID:        "dm-1",
		StartDate: date(2026, time.March, 1),
		EndDate:   date(2026, time.March, 30),
		CreatedBy: "admin-1",
	})
	return s, now
}

func activeToken(studentID string, now time.Time) Token {
	return Token{
		ID:        "tok-1",
		StudentID: studentID,
		Duration:  7,
		MealType:  MealLunchDinner,
		StartDate: now,
		EndDate:   AddDays(now, 7),
		TotalCost: 560,
	}
}

func TestOpenDiningMonthKeepsOneActive(t *testing.T) {
	s := NewStore()
	var last DiningMonth
	for i := 0; i < 3; i++ {
		start := date(2026, time.Month(3+i), 1)
		last = s.OpenDiningMonth(DiningMonth{
			ID:        start.Format("dm-2006-01"),
			StartDate: start,
			EndDate:   AddDays(start, 29),
		})

		active := 0
		for _, dm := range s.DiningMonths() {
			if dm.IsActive {
				active++
				assert.Equal(t, last.ID, dm.ID)
			}
		}
		assert.Equal(t, 1, active)
	}

	dm, err := s.ActiveDiningMonth()
	require.NoError(t, err)
	assert.Equal(t, last.ID, dm.ID)
}

func TestPurchaseTokenDebitsBalance(t *testing.T) {
	s, now := newTestStore(t)

	tok, err := s.PurchaseToken(activeToken("stu-1", now))
	require.NoError(t, err)
	assert.Equal(t, "dm-1", tok.DiningMonthID)

	st, err := s.Student("stu-1")
	require.NoError(t, err)
	assert.Equal(t, 2440.0, st.Balance)
	assert.Len(t, s.TokensByStudent("stu-1"), 1)
}

func TestPurchaseTokenInsufficientBalance(t *testing.T) {
	s, now := newTestStore(t)
	tok := activeToken("stu-1", now)
	tok.TotalCost = 5000

	_, err := s.PurchaseToken(tok)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	st, _ := s.Student("stu-1")
	assert.Equal(t, 3000.0, st.Balance)
	assert.Empty(t, s.TokensByStudent("stu-1"))
}

func TestPurchaseTokenNeedsActiveDiningMonth(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddStudent(Student{ID: "stu-1", Name: "A", Email: "a@b.c", Password: "pw", Balance: 3000}))

	_, err := s.PurchaseToken(activeToken("stu-1", date(2026, time.March, 10)))
	assert.ErrorIs(t, err, ErrNoActiveDiningMonth)
}

func TestRequestCancellationNeedsActiveToken(t *testing.T) {
	s, now := newTestStore(t)

	_, err := s.RequestCancellation(CancelledDay{
		ID: "can-1", StudentID: "stu-1",
		CancelledDate: AddDays(now, 3), MealType: CancelBoth,
		RefundAmount: 72, Status: StatusPending,
	}, now)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRequestCancellationFillsTokenID(t *testing.T) {
	s, now := newTestStore(t)
	_, err := s.PurchaseToken(activeToken("stu-1", now))
	require.NoError(t, err)

	cd, err := s.RequestCancellation(CancelledDay{
		ID: "can-1", StudentID: "stu-1",
		CancelledDate: AddDays(now, 3), MealType: CancelLunch,
		RefundAmount: 36, Status: StatusPending,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", cd.TokenID)
}

func TestRequestCancellationRejectsOverlap(t *testing.T) {
	s, now := newTestStore(t)
	_, err := s.PurchaseToken(activeToken("stu-1", now))
	require.NoError(t, err)

	target := AddDays(now, 3)
	submit := func(id string, mt CancelMealType) error {
		_, err := s.RequestCancellation(CancelledDay{
			ID: id, StudentID: "stu-1", CancelledDate: target,
			MealType: mt, RefundAmount: Refund(mt), Status: StatusPending,
		}, now)
		return err
	}

	require.NoError(t, submit("can-1", CancelLunch))
	// "both" overlaps the pending lunch request.
	assert.ErrorIs(t, submit("can-2", CancelBoth), ErrConflict)
	// Dinner alone does not.
	require.NoError(t, submit("can-3", CancelDinner))

	// A denied request frees the slot for resubmission.
	_, err = s.ResolveCancellation("can-1", false, "mgr-1", now)
	require.NoError(t, err)
	require.NoError(t, submit("can-4", CancelLunch))
}

func TestResolveCancellationApproveCreditsOnce(t *testing.T) {
	s, now := newTestStore(t)
	_, err := s.PurchaseToken(activeToken("stu-1", now))
	require.NoError(t, err)

	_, err = s.RequestCancellation(CancelledDay{
		ID: "can-1", StudentID: "stu-1",
		CancelledDate: AddDays(now, 3), MealType: CancelBoth,
		RefundAmount: 72, Status: StatusPending,
	}, now)
	require.NoError(t, err)

	cd, err := s.ResolveCancellation("can-1", true, "mgr-1", now)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, cd.Status)
	assert.Equal(t, "mgr-1", cd.ApprovedBy)
	require.NotNil(t, cd.ApprovedAt)

	st, _ := s.Student("stu-1")
	assert.Equal(t, 2440.0+72, st.Balance)

	// Terminal state: a second decision has no further effect.
	_, err = s.ResolveCancellation("can-1", true, "mgr-2", now)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = s.ResolveCancellation("can-1", false, "mgr-2", now)
	assert.ErrorIs(t, err, ErrConflict)

	st, _ = s.Student("stu-1")
	assert.Equal(t, 2440.0+72, st.Balance)
}

func TestResolveCancellationDenyLeavesBalance(t *testing.T) {
	s, now := newTestStore(t)
	_, err := s.PurchaseToken(activeToken("stu-1", now))
	require.NoError(t, err)

	_, err = s.RequestCancellation(CancelledDay{
		ID: "can-1", StudentID: "stu-1",
		CancelledDate: AddDays(now, 3), MealType: CancelBoth,
		RefundAmount: 72, Status: StatusPending,
	}, now)
	require.NoError(t, err)

	cd, err := s.ResolveCancellation("can-1", false, "mgr-1", now)
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, cd.Status)
	require.NotNil(t, cd.ApprovedAt)

	st, _ := s.Student("stu-1")
	assert.Equal(t, 2440.0, st.Balance)
}

func TestAddPaymentCreditsBalance(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.AddPayment(PaymentTransaction{
		ID: "pay-1", StudentID: "stu-1", Amount: 1500,
		Method: MethodBkash, TransactionRef: "TXN-001", Status: PaymentCompleted,
	})
	require.NoError(t, err)

	st, _ := s.Student("stu-1")
	assert.Equal(t, 4500.0, st.Balance)
	assert.Len(t, s.PaymentsByStudent("stu-1"), 1)
}

func TestAssignManagers(t *testing.T) {
	s, now := newTestStore(t)
	require.NoError(t, s.AddStudent(Student{ID: "stu-2", Name: "B", Email: "b@hall.edu", Password: "pw"}))
	require.NoError(t, s.AddStudent(Student{ID: "stu-3", Name: "C", Email: "c@hall.edu", Password: "pw"}))

	_, err := s.AssignManagers("dm-1", []string{"stu-1"}, "admin-1", now)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.AssignManagers("dm-1", []string{"stu-1", "stu-1"}, "admin-1", now)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.AssignManagers("dm-1", []string{"stu-1", "ghost"}, "admin-1", now)
	assert.ErrorIs(t, err, ErrNotFound)

	managers, err := s.AssignManagers("dm-1", []string{"stu-1", "stu-2"}, "admin-1", now)
	require.NoError(t, err)
	require.Len(t, managers, 2)
	assert.Equal(t, "admin-1", managers[0].AssignedBy)

	// Reassigning a sitting manager is rejected; a fresh pair replaces both.
	_, err = s.AssignManagers("dm-1", []string{"stu-2", "stu-3"}, "admin-1", now)
	assert.ErrorIs(t, err, ErrConflict)

	dm, err := s.ActiveDiningMonth()
	require.NoError(t, err)
	assert.Equal(t, []string{"stu-1", "stu-2"}, dm.ManagerIDs)
	assert.Len(t, s.ManagersForMonth("dm-1"), 2)
}

func TestUpdateStudentPreservesBalance(t *testing.T) {
	s, _ := newTestStore(t)

	updated, err := s.UpdateStudent(Student{
		ID: "stu-1", Name: "Arif H.", Email: "arif@hall.edu",
		RoomNumber: "202", Balance: 999999,
	})
	require.NoError(t, err)
	assert.Equal(t, "Arif H.", updated.Name)
	assert.Equal(t, "202", updated.RoomNumber)
	// Balance only moves through purchase, top-up, and refund.
	assert.Equal(t, 3000.0, updated.Balance)
	// Omitted password keeps the stored one.
	assert.Equal(t, "pw", updated.Password)
}

func TestUpdateStudentPhoto(t *testing.T) {
	s, _ := newTestStore(t)

	st, err := s.UpdateStudentPhoto("stu-1", "https://cdn.example/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/photo.jpg", st.ProfilePhoto)

	_, err = s.UpdateStudentPhoto("ghost", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticate(t *testing.T) {
	s, now := newTestStore(t)
	require.NoError(t, s.AddStudent(Student{ID: "stu-2", Name: "B", Email: "b@hall.edu", Password: "pw2"}))
	require.NoError(t, s.AddAdmin(Admin{ID: "admin-1", Name: "Head", Email: "admin@hall.edu", Password: "adminpw"}))
	_, err := s.AssignManagers("dm-1", []string{"stu-1", "stu-2"}, "admin-1", now)
	require.NoError(t, err)

	p, err := s.Authenticate(RoleStudent, "arif@hall.edu", "pw")
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, p.Role)
	assert.Equal(t, "stu-1", p.ID())

	p, err = s.Authenticate(RoleManager, "b@hall.edu", "pw2")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, p.Role)

	p, err = s.Authenticate(RoleAdmin, "admin@hall.edu", "adminpw")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, p.Role)

	_, err = s.Authenticate(RoleStudent, "arif@hall.edu", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	// Role is part of the lookup: student credentials do not open admin.
	_, err = s.Authenticate(RoleAdmin, "arif@hall.edu", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStats(t *testing.T) {
	s, now := newTestStore(t)
	_, err := s.PurchaseToken(activeToken("stu-1", now))
	require.NoError(t, err)

	_, err = s.RequestCancellation(CancelledDay{
		ID: "can-1", StudentID: "stu-1",
		CancelledDate: AddDays(now, 3), MealType: CancelLunch,
		RefundAmount: 36, Status: StatusPending,
	}, now)
	require.NoError(t, err)

	stats := s.Stats(now)
	assert.Equal(t, 1, stats.TotalActiveTokens)
	assert.Equal(t, 560.0, stats.TotalRevenue)
	assert.Equal(t, 1, stats.PendingCancellations)
	assert.Equal(t, 0.0, stats.TotalRefunds)

	_, err = s.ResolveCancellation("can-1", true, "mgr-1", now)
	require.NoError(t, err)

	stats = s.Stats(now)
	assert.Equal(t, 0, stats.PendingCancellations)
	assert.Equal(t, 36.0, stats.TotalRefunds)

	// Past the token's end date it drops out of the active count.
	stats = s.Stats(AddDays(now, 8))
	assert.Equal(t, 0, stats.TotalActiveTokens)
}
