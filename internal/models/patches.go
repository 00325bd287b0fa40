package models

import (
	"github.com/shopspring/decimal"
)

// Patch is a typed partial update for one entity kind. Nil fields are left
// untouched when the patch is applied.
type Patch interface {
	PatchCollection() Collection
}

type TransactionPatch struct {
	Description   *string
	Amount        *decimal.Decimal
	Type          *TransactionType
	Category      *string
	Date          *string
	Status        *TransactionStatus
	PaymentMethod *string
	IsRecurring   *bool
	DebtId        *string
	AutoPay       *bool
	GoogleEventId *string
}

func (TransactionPatch) PatchCollection() Collection { return CollectionTransactions }

func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.PaymentMethod != nil {
		t.PaymentMethod = *p.PaymentMethod
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.DebtId != nil {
		t.DebtId = *p.DebtId
	}
	if p.AutoPay != nil {
		t.AutoPay = *p.AutoPay
	}
	if p.GoogleEventId != nil {
		t.GoogleEventId = *p.GoogleEventId
	}
	return t
}

type InvestmentPatch struct {
	Name           *string
	Amount         *decimal.Decimal
	InvestedAmount *decimal.Decimal
	TargetAmount   *decimal.Decimal
	Type           *string
	Date           *string
}

func (InvestmentPatch) PatchCollection() Collection { return CollectionInvestments }

func (p InvestmentPatch) Apply(i Investment) Investment {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Amount != nil {
		i.Amount = *p.Amount
	}
	if p.InvestedAmount != nil {
		i.InvestedAmount = *p.InvestedAmount
	}
	if p.TargetAmount != nil {
		i.TargetAmount = *p.TargetAmount
	}
	if p.Type != nil {
		i.Type = *p.Type
	}
	if p.Date != nil {
		i.Date = *p.Date
	}
	return i
}

type BudgetPatch struct {
	Category *string
	Limit    *decimal.Decimal
}

func (BudgetPatch) PatchCollection() Collection { return CollectionBudgets }

func (p BudgetPatch) Apply(b Budget) Budget {
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Limit != nil {
		b.Limit = *p.Limit
	}
	return b
}

type DebtPatch struct {
	Creditor       *string
	OriginalAmount *decimal.Decimal
	CurrentAmount  *decimal.Decimal
	TargetAmount   *decimal.Decimal
	AgreedAmount   *decimal.Decimal
	DueDate        *string
	Status         *DebtStatus
	Platform       *string
	Notes          *string
}

func (DebtPatch) PatchCollection() Collection { return CollectionDebts }

func (p DebtPatch) Apply(d Debt) Debt {
	if p.Creditor != nil {
		d.Creditor = *p.Creditor
	}
	if p.OriginalAmount != nil {
		d.OriginalAmount = *p.OriginalAmount
	}
	if p.CurrentAmount != nil {
		d.CurrentAmount = *p.CurrentAmount
	}
	if p.TargetAmount != nil {
		d.TargetAmount = *p.TargetAmount
	}
	if p.AgreedAmount != nil {
		d.AgreedAmount = *p.AgreedAmount
	}
	if p.DueDate != nil {
		d.DueDate = *p.DueDate
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if p.Platform != nil {
		d.Platform = *p.Platform
	}
	if p.Notes != nil {
		d.Notes = *p.Notes
	}
	return d
}

type ShoppingItemPatch struct {
	Name        *string
	Quantity    *int
	ActualPrice *decimal.Decimal
	IsChecked   *bool
}

func (ShoppingItemPatch) PatchCollection() Collection { return CollectionShopping }

func (p ShoppingItemPatch) Apply(s ShoppingItem) ShoppingItem {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Quantity != nil {
		s.Quantity = *p.Quantity
	}
	if p.ActualPrice != nil {
		s.ActualPrice = *p.ActualPrice
	}
	if p.IsChecked != nil {
		s.IsChecked = *p.IsChecked
	}
	return s
}

// KanbanBoardPatch replaces the column tree wholesale when Columns is set
type KanbanBoardPatch struct {
	Title   *string
	Columns *[]KanbanColumn
}

func (KanbanBoardPatch) PatchCollection() Collection { return CollectionKanban }

func (p KanbanBoardPatch) Apply(b KanbanBoard) KanbanBoard {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Columns != nil {
		b.Columns = *p.Columns
	}
	return b
}

type NotePatch struct {
	Title    *string
	Content  *string
	Color    *string
	IsPinned *bool
	Date     *string
}

func (NotePatch) PatchCollection() Collection { return CollectionNotes }

func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Color != nil {
		n.Color = *p.Color
	}
	if p.IsPinned != nil {
		n.IsPinned = *p.IsPinned
	}
	if p.Date != nil {
		n.Date = *p.Date
	}
	return n
}

type CategoryPatch struct {
	Name  *string
	Type  *TransactionType
	Color *string
}

func (CategoryPatch) PatchCollection() Collection { return CollectionCategories }

func (p CategoryPatch) Apply(c Category) Category {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	return c
}

// Ptr returns a pointer to v, for building patches inline
func Ptr[T any](v T) *T {
	return &v
}
