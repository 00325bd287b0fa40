package models

import (
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction directions
func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}

type TransactionStatus string

const (
	StatusPaid    TransactionStatus = "paid"
	StatusPending TransactionStatus = "pending"
)

// Toggled returns the opposite payment status
func (s TransactionStatus) Toggled() TransactionStatus {
	if s == StatusPaid {
		return StatusPending
	}
	return StatusPaid
}

type DebtStatus string

const (
	DebtOpen        DebtStatus = "open"
	DebtNegotiating DebtStatus = "negotiating"
	DebtAgreement   DebtStatus = "agreement"
	DebtPaid        DebtStatus = "paid"
)

// GenericCategory is the category assigned to generated agreement installments
const GenericCategory = "Other"

// Transaction is a single income or expense entry. Amount is always positive;
// Type carries the direction. Date is a local calendar date in YYYY-MM-DD form.
type Transaction struct {
	Id            string            `json:"id"`
	Description   string            `json:"description"`
	Amount        decimal.Decimal   `json:"amount"`
	Type          TransactionType   `json:"type"`
	Category      string            `json:"category"`
	Date          string            `json:"date"`
	Status        TransactionStatus `json:"status"`
	PaymentMethod string            `json:"paymentMethod,omitempty"`
	IsRecurring   bool              `json:"isRecurring,omitempty"` // marks a recurrence template
	DebtId        string            `json:"debtId,omitempty"`
	AutoPay       bool              `json:"autoPay,omitempty"`
	GoogleEventId string            `json:"googleEventId,omitempty"`
}

// Investment tracks a position's market value against its cost basis
type Investment struct {
	Id             string          `json:"id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	InvestedAmount decimal.Decimal `json:"investedAmount"`
	TargetAmount   decimal.Decimal `json:"targetAmount"`
	Type           string          `json:"type"`
	Date           string          `json:"date"`
}

// CostBasis returns InvestedAmount, falling back to Amount when unset
func (i Investment) CostBasis() decimal.Decimal {
	if i.InvestedAmount.IsZero() {
		return i.Amount
	}
	return i.InvestedAmount
}

type Budget struct {
	Id       string          `json:"id"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
}

// Debt is an obligation towards a creditor. Once an agreement exists its
// status follows the payment status of the linked installment transactions.
type Debt struct {
	Id             string          `json:"id"`
	Creditor       string          `json:"creditor"`
	OriginalAmount decimal.Decimal `json:"originalAmount"`
	CurrentAmount  decimal.Decimal `json:"currentAmount"`
	TargetAmount   decimal.Decimal `json:"targetAmount"`
	AgreedAmount   decimal.Decimal `json:"agreedAmount"`
	DueDate        string          `json:"dueDate"`
	Status         DebtStatus      `json:"status"`
	Platform       string          `json:"platform,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

type ShoppingItem struct {
	Id          string          `json:"id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	ActualPrice decimal.Decimal `json:"actualPrice"`
	IsChecked   bool            `json:"isChecked"`
}

// KanbanBoard exclusively owns its columns, and columns own their cards
type KanbanBoard struct {
	Id      string         `json:"id"`
	Title   string         `json:"title"`
	Columns []KanbanColumn `json:"columns"`
}

type KanbanColumn struct {
	Id    string       `json:"id"`
	Title string       `json:"title"`
	Cards []KanbanCard `json:"cards"`
}

type KanbanCard struct {
	Id          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Tags        []string           `json:"tags,omitempty"`
	Comments    []KanbanComment    `json:"comments,omitempty"`
	Attachments []KanbanAttachment `json:"attachments,omitempty"`
	DueDate     string             `json:"dueDate,omitempty"`
}

type KanbanComment struct {
	Id   string `json:"id"`
	Text string `json:"text"`
	Date string `json:"date"`
}

type KanbanAttachment struct {
	Id   string `json:"id"`
	Name string `json:"name"`
	Url  string `json:"url"`
}

type Note struct {
	Id       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Color    string `json:"color,omitempty"`
	IsPinned bool   `json:"isPinned"`
	Date     string `json:"date"`
}

// Category is referenced by name from transactions and budgets.
// Default categories are seeded and cannot be deleted.
type Category struct {
	Id        string          `json:"id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Color     string          `json:"color,omitempty"`
	IsDefault bool            `json:"isDefault"`
}

// WealthProfile is a per-owner singleton used for retirement projections
type WealthProfile struct {
	Age                 int              `json:"age"`
	RetirementAge       int              `json:"retirementAge"`
	RiskProfile         string           `json:"riskProfile"`
	MonthlyContribution *decimal.Decimal `json:"monthlyContribution,omitempty"`
}

// WalletBalance is the stored form of the cached wallet aggregate
type WalletBalance struct {
	Amount decimal.Decimal `json:"amount"`
}

// Badge is the stored form of one unlocked badge id
type Badge struct {
	Id string `json:"id"`
}
