package backend

import (
	"encoding/json"
	"time"
)

// Role values returned by the backend for a user profile.
const (
	RoleAdmin  = "Admin"
	RoleMember = "Member"
)

// UserProfile is the read-only cached copy of a backend user record.
type UserProfile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	GroupID  string `json:"group_id,omitempty"`
	IsActive bool   `json:"is_active"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p UserProfile) IsAdmin() bool { return p.Role == RoleAdmin }

// LoginResult is the payload of a successful credentials login.
type LoginResult struct {
	Token                  string `json:"access_token"`
	RequiresPasswordChange bool   `json:"requires_password_change"`
}

// ProjectRecord is a project row as the backend serialises it. Financial
// fields appear under more than one name depending on the endpoint, so the
// aliases are kept as pointers and resolved by the dashboard loader.
type ProjectRecord struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Address         string  `json:"address,omitempty"`
	City            string  `json:"city,omitempty"`
	IsActive        bool    `json:"is_active"`
	IsParentProject bool    `json:"is_parent_project"`
	RelationProject string  `json:"relation_project,omitempty"`
	StatusColor     string  `json:"status_color,omitempty"`
	ImageURL        string  `json:"image_url,omitempty"`
	ProfitPercent   *float64 `json:"profit_percent,omitempty"`

	IncomeMonthToDate  *float64 `json:"income_month_to_date,omitempty"`
	Income             *float64 `json:"income,omitempty"`
	ExpenseMonthToDate *float64 `json:"expense_month_to_date,omitempty"`
	Expense            *float64 `json:"expense,omitempty"`
}

// Transaction is a single project transaction used for category charts.
type Transaction struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	IsIncome  bool      `json:"is_income"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditLogEntry is immutable once created; Details carries an action-specific
// JSON blob whose shape is not normative.
type AuditLogEntry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id,omitempty"`
	User      *UserProfile    `json:"user,omitempty"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AdminInvite is a single-use, time-limited admin registration code.
type AdminInvite struct {
	ID         string     `json:"id"`
	InviteCode string     `json:"invite_code"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	IsUsed     bool       `json:"is_used"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	IsExpired  bool       `json:"is_expired"`
}

// SupplierDocument is an uploaded document attached to a supplier.
type SupplierDocument struct {
	ID         string    `json:"id"`
	SupplierID string    `json:"supplier_id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Supplier is a vendor the projects purchase from.
type Supplier struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	IsActive bool   `json:"is_active"`
}

// RegisterRequest covers the member/admin registration variants. InviteCode
// is required only for the admin flow.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FullName   string `json:"full_name"`
	InviteCode string `json:"invite_code,omitempty"`
	GroupID    string `json:"group_id,omitempty"`
}
