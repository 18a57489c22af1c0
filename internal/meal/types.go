package meal

import "time"

// Role identifies the kind of principal acting on the system.
type Role string

const (
	RoleStudent Role = "student"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// TokenMealType is the meal composition of a purchased token.
type TokenMealType string

const (
	MealLunch       TokenMealType = "lunch"
	MealLunchDinner TokenMealType = "lunch_dinner"
)

// CancelMealType selects which meal(s) a cancellation request covers.
type CancelMealType string

const (
	CancelLunch  CancelMealType = "lunch"
	CancelDinner CancelMealType = "dinner"
	CancelBoth   CancelMealType = "both"
)

// CancellationStatus is the review state of a refund request.
// pending is the only non-terminal state.
type CancellationStatus string

const (
	StatusPending  CancellationStatus = "pending"
	StatusApproved CancellationStatus = "approved"
	StatusDenied   CancellationStatus = "denied"
)

// PaymentMethod is the mobile-banking or card channel a top-up came through.
type PaymentMethod string

const (
	MethodBkash  PaymentMethod = "bkash"
	MethodNagad  PaymentMethod = "nagad"
	MethodRocket PaymentMethod = "rocket"
	MethodCard   PaymentMethod = "card"
)

// PaymentStatus exists for completeness; this system only ever records
// completed transactions.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Student is a hall resident. Balance moves only through token purchase,
// payment top-up, and approved refunds.
type Student struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Password           string    `json:"-"`
	HallID             string    `json:"hall_id"`
	RegistrationNumber string    `json:"registration_number"`
	StudentNumber      string    `json:"student_number"`
	Department         string    `json:"department"`
	RoomNumber         string    `json:"room_number"`
	PhoneNumber        string    `json:"phone_number"`
	ProfilePhoto       string    `json:"profile_photo,omitempty"`
	Balance            float64   `json:"balance"`
	CreatedAt          time.Time `json:"created_at"`
}

// Manager is a student elevated to approval authority for one dining month.
type Manager struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Password      string    `json:"-"`
	HallID        string    `json:"hall_id"`
	DiningMonthID string    `json:"dining_month_id"`
	AssignedBy    string    `json:"assigned_by"`
	AssignedAt    time.Time `json:"assigned_at"`
}

// Admin manages the student roster and manager assignment. No balance.
type Admin struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"-"`
	HallID       string `json:"hall_id"`
	ProfilePhoto string `json:"profile_photo,omitempty"`
}

// DiningMonth is a 30-day dining period. At most one is active at a time;
// opening a new one deactivates every existing period first.
type DiningMonth struct {
	ID         string    `json:"id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	IsActive   bool      `json:"is_active"`
	ManagerIDs []string  `json:"manager_ids"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// Token is a purchased meal plan. TotalCost is computed once at purchase and
// never changes. EndDate is an exact instant: the token is active while
// StartDate <= now <= EndDate.
type Token struct {
	ID            string        `json:"id"`
	StudentID     string        `json:"student_id"`
	Duration      int           `json:"duration"`
	MealType      TokenMealType `json:"meal_type"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	TotalCost     float64       `json:"total_cost"`
	PurchaseDate  time.Time     `json:"purchase_date"`
	DiningMonthID string        `json:"dining_month_id"`
}

// CancelledDay is a single-date refund request. RefundAmount is fixed at
// submission; approval credits exactly that amount.
type CancelledDay struct {
	ID            string             `json:"id"`
	StudentID     string             `json:"student_id"`
	TokenID       string             `json:"token_id,omitempty"`
	CancelledDate time.Time          `json:"cancelled_date"`
	MealType      CancelMealType     `json:"meal_type"`
	RefundAmount  float64            `json:"refund_amount"`
	RequestDate   time.Time          `json:"request_date"`
	Status        CancellationStatus `json:"status"`
	ApprovedBy    string             `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time         `json:"approved_at,omitempty"`
}

// PaymentTransaction is an append-only record of a balance top-up.
// TransactionRef is operator free text, not verified against any provider.
type PaymentTransaction struct {
	ID             string        `json:"id"`
	StudentID      string        `json:"student_id"`
	Amount         float64       `json:"amount"`
	Method         PaymentMethod `json:"method"`
	TransactionRef string        `json:"transaction_ref"`
	Status         PaymentStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}

// DashboardStats are computed on read; the store keeps no derived values.
type DashboardStats struct {
	TotalActiveTokens    int     `json:"total_active_tokens"`
	TotalRevenue         float64 `json:"total_revenue"`
	TotalRefunds         float64 `json:"total_refunds"`
	TotalStudents        int     `json:"total_students"`
	PendingCancellations int     `json:"pending_cancellations"`
}
