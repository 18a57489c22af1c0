package meal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, time.Time) {
	t.Helper()
	store, now := newTestStore(t)
	svc := NewService(store)
	svc.now = func() time.Time { return now }
	return svc, now
}

func TestServicePurchaseTokenScenario(t *testing.T) {
	svc, now := newTestService(t)

	tok, err := svc.PurchaseToken("stu-1", 7, MealLunchDinner)
	require.NoError(t, err)
	assert.Equal(t, 560.0, tok.TotalCost)
	assert.Equal(t, 7, tok.Duration)
	assert.Equal(t, MealLunchDinner, tok.MealType)
	assert.Equal(t, now, tok.StartDate)
	assert.Equal(t, AddDays(now, 7), tok.EndDate)
	assert.NotEmpty(t, tok.ID)

	st, err := svc.Store().Student("stu-1")
	require.NoError(t, err)
	assert.Equal(t, 2440.0, st.Balance)
}

func TestServicePurchaseTokenValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.PurchaseToken("stu-1", 10, MealLunchDinner)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.PurchaseToken("stu-1", 15, MealLunch)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.PurchaseToken("stu-1", 7, "breakfast")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, svc.Store().TokensByStudent("stu-1"))
}

func TestServiceCancellationNoticeWindow(t *testing.T) {
	svc, now := newTestService(t)
	_, err := svc.PurchaseToken("stu-1", 7, MealLunchDinner)
	require.NoError(t, err)

	_, err = svc.RequestCancellation("stu-1", now, CancelBoth)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.RequestCancellation("stu-1", AddDays(now, 1), CancelBoth)
	assert.ErrorIs(t, err, ErrValidation)

	cd, err := svc.RequestCancellation("stu-1", AddDays(now, 2), CancelBoth)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, cd.Status)
	assert.Equal(t, 72.0, cd.RefundAmount)
	assert.Equal(t, now, cd.RequestDate)
}

func TestServiceResolveCancellation(t *testing.T) {
	svc, now := newTestService(t)
	_, err := svc.PurchaseToken("stu-1", 7, MealLunchDinner)
	require.NoError(t, err)
	cd, err := svc.RequestCancellation("stu-1", AddDays(now, 3), CancelBoth)
	require.NoError(t, err)

	_, err = svc.ResolveCancellation(cd.ID, "maybe", "mgr-1")
	assert.ErrorIs(t, err, ErrValidation)

	resolved, err := svc.ResolveCancellation(cd.ID, "denied", "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, resolved.Status)

	st, _ := svc.Store().Student("stu-1")
	assert.Equal(t, 2440.0, st.Balance)
}

func TestServiceAddBalance(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddBalance("stu-1", 0, MethodBkash, "TXN-1")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddBalance("stu-1", -50, MethodBkash, "TXN-1")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddBalance("stu-1", 500, "paypal", "TXN-1")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddBalance("stu-1", 500, MethodBkash, "  ")
	assert.ErrorIs(t, err, ErrValidation)

	p, err := svc.AddBalance("stu-1", 500, MethodNagad, "TXN-1")
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, p.Status)

	st, _ := svc.Store().Student("stu-1")
	assert.Equal(t, 3500.0, st.Balance)
}

func TestServiceOpenDiningMonthSpan(t *testing.T) {
	svc, _ := newTestService(t)

	start := date(2026, time.April, 1)
	dm, err := svc.OpenDiningMonth(start, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, start, dm.StartDate)
	assert.Equal(t, date(2026, time.April, 30), dm.EndDate)
	assert.True(t, dm.IsActive)

	active, err := svc.Store().ActiveDiningMonth()
	require.NoError(t, err)
	assert.Equal(t, dm.ID, active.ID)
}

func TestServiceCreateAndUpdateStudent(t *testing.T) {
	svc, _ := newTestService(t)

	st, err := svc.CreateStudent(Student{Name: "New Resident", Email: "new@hall.edu", Password: "pw", Balance: 100})
	require.NoError(t, err)
	assert.NotEmpty(t, st.ID)

	_, err = svc.CreateStudent(Student{Name: "", Email: "x@hall.edu"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateStudent(Student{Name: "No Email", Email: "nope"})
	assert.ErrorIs(t, err, ErrValidation)

	st.Department = "Physics"
	updated, err := svc.UpdateStudent(st)
	require.NoError(t, err)
	assert.Equal(t, "Physics", updated.Department)
}

func TestServiceLogin(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(RoleStudent, "", "pw")
	assert.ErrorIs(t, err, ErrValidation)

	p, err := svc.Login(RoleStudent, "arif@hall.edu", "pw")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", p.ID())
	require.NotNil(t, p.Student)
	assert.Nil(t, p.Manager)
	assert.Nil(t, p.Admin)
}
