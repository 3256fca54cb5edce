package shop

import (
	"github.com/shopspring/decimal"
)

// Role classifies an account. The role string is persisted verbatim in the
// users file, so the constants double as the on-disk representation.
type Role string

const (
	RoleManager Role = "Manager"
	RoleCashier Role = "Cashier"
)

// Action names a capability a front end may ask about before exposing an
// operation. Permission checks live in Role.Can; the stores themselves never
// enforce permissions.
type Action string

const (
	ActionViewBooks        Action = "view_books"
	ActionSearchBooks      Action = "search_books"
	ActionSell             Action = "sell"
	ActionManageBooks      Action = "manage_books"
	ActionManageCategories Action = "manage_categories"
	ActionManageAccounts   Action = "manage_accounts"
	ActionViewLedger       Action = "view_ledger"
)

// Can reports whether the role is allowed to perform action.
// Managers can do everything. Cashiers get the register-side actions:
// browsing, searching and selling.
func (r Role) Can(action Action) bool {
	if r == RoleManager {
		return true
	}
	switch action {
	case ActionViewBooks, ActionSearchBooks, ActionSell:
		return true
	}
	return false
}

// Account is a store user. The password is stored and compared as plain
// text; that is a documented property of the system, not an oversight.
type Account struct {
	Role     Role   `json:"role"`
	Username string `json:"username"`
	Password string `json:"-"`
	FullName string `json:"full_name"`
}

// Book represents one catalog entry and its current stock level.
type Book struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Category string          `json:"category"` // free-text label, not a Category.ID reference
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

// Category is a browsing label. Book.Category matches Category.Name by
// convention only; no referential integrity is enforced.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CartItem is one pending sale line. Title and UnitPrice are snapshots taken
// when the line was added; later catalog edits do not affect them.
type CartItem struct {
	BookID    string
	Title     string
	Quantity  int
	UnitPrice decimal.Decimal
}

// LineTotal is Quantity × UnitPrice.
func (ci CartItem) LineTotal() decimal.Decimal {
	return ci.UnitPrice.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// Transaction is one committed sale line. Immutable once written: the ledger
// is append-only and has no update or delete path.
type Transaction struct {
	ID        string          `json:"id"` // shared batch id for all lines of one checkout
	BookID    string          `json:"book_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"` // always Quantity × UnitPrice, never edited
	Cashier   string          `json:"cashier"`
	Timestamp string          `json:"timestamp"` // local time, "2006-01-02 15:04:05"
}

// TimeFormat is the fixed layout used for Transaction.Timestamp.
const TimeFormat = "2006-01-02 15:04:05"
