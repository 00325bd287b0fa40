package models

import (
	"github.com/shopspring/decimal"
)

// Collection names one document collection in the entity store
type Collection string

const (
	CollectionTransactions Collection = "transactions"
	CollectionInvestments  Collection = "investments"
	CollectionBudgets      Collection = "budgets"
	CollectionDebts        Collection = "debts"
	CollectionShopping     Collection = "shopping"
	CollectionKanban       Collection = "kanban"
	CollectionNotes        Collection = "notes"
	CollectionCategories   Collection = "categories"
	CollectionBadges       Collection = "badges"
	CollectionSettings     Collection = "settings"
)

// Singleton document ids inside CollectionSettings
const (
	SettingWalletBalance = "walletBalance"
	SettingWealthProfile = "wealthProfile"
)

// Collections lists every collection in snapshot order
var Collections = []Collection{
	CollectionTransactions,
	CollectionInvestments,
	CollectionBudgets,
	CollectionDebts,
	CollectionShopping,
	CollectionKanban,
	CollectionNotes,
	CollectionCategories,
	CollectionBadges,
	CollectionSettings,
}

// Valid reports whether c is a known collection
func (c Collection) Valid() bool {
	return c.bit() != 0
}

func (c Collection) bit() CollectionSet {
	for i, known := range Collections {
		if known == c {
			return 1 << uint(i)
		}
	}
	return 0
}

// CollectionSet is a small bitset of collections touched by a change
type CollectionSet uint16

// SetOf builds a CollectionSet from the given collections
func SetOf(collections ...Collection) CollectionSet {
	var s CollectionSet
	for _, c := range collections {
		s = s.With(c)
	}
	return s
}

func (s CollectionSet) With(c Collection) CollectionSet {
	return s | c.bit()
}

func (s CollectionSet) Has(c Collection) bool {
	return s&c.bit() != 0
}

func (s CollectionSet) Empty() bool {
	return s == 0
}

// AppData is the aggregate snapshot of everything one owner can see.
// Collections are treated as immutable once published: writers replace
// a collection's slice instead of mutating it in place.
type AppData struct {
	Transactions   []Transaction    `json:"transactions"`
	Investments    []Investment     `json:"investments"`
	Budgets        []Budget         `json:"budgets"`
	Debts          []Debt           `json:"debts"`
	ShoppingList   []ShoppingItem   `json:"shoppingList"`
	KanbanBoards   []KanbanBoard    `json:"kanbanBoards"`
	Notes          []Note           `json:"notes"`
	Categories     []Category       `json:"categories"`
	UnlockedBadges []string         `json:"unlockedBadges"`
	WalletBalance  *decimal.Decimal `json:"walletBalance,omitempty"`
	WealthProfile  *WealthProfile   `json:"wealthProfile,omitempty"`
}

// EmptyAppData returns the empty default shape: every collection present
// and empty, no wallet balance and no wealth profile.
func EmptyAppData() AppData {
	return AppData{
		Transactions:   []Transaction{},
		Investments:    []Investment{},
		Budgets:        []Budget{},
		Debts:          []Debt{},
		ShoppingList:   []ShoppingItem{},
		KanbanBoards:   []KanbanBoard{},
		Notes:          []Note{},
		Categories:     []Category{},
		UnlockedBadges: []string{},
	}
}

// Normalize replaces nil collections with empty ones so that snapshots
// coming from different sources compare equal.
func (d AppData) Normalize() AppData {
	if d.Transactions == nil {
		d.Transactions = []Transaction{}
	}
	if d.Investments == nil {
		d.Investments = []Investment{}
	}
	if d.Budgets == nil {
		d.Budgets = []Budget{}
	}
	if d.Debts == nil {
		d.Debts = []Debt{}
	}
	if d.ShoppingList == nil {
		d.ShoppingList = []ShoppingItem{}
	}
	if d.KanbanBoards == nil {
		d.KanbanBoards = []KanbanBoard{}
	}
	if d.Notes == nil {
		d.Notes = []Note{}
	}
	if d.Categories == nil {
		d.Categories = []Category{}
	}
	if d.UnlockedBadges == nil {
		d.UnlockedBadges = []string{}
	}
	return d
}

// FindTransaction returns the transaction with the given id
func (d AppData) FindTransaction(id string) (Transaction, bool) {
	for _, t := range d.Transactions {
		if t.Id == id {
			return t, true
		}
	}
	return Transaction{}, false
}

// FindDebt returns the debt with the given id
func (d AppData) FindDebt(id string) (Debt, bool) {
	for _, debt := range d.Debts {
		if debt.Id == id {
			return debt, true
		}
	}
	return Debt{}, false
}

// FindBoard returns the kanban board with the given id
func (d AppData) FindBoard(id string) (KanbanBoard, bool) {
	for _, b := range d.KanbanBoards {
		if b.Id == id {
			return b, true
		}
	}
	return KanbanBoard{}, false
}

// HasBadge reports whether the badge id is already unlocked
func (d AppData) HasBadge(id string) bool {
	for _, b := range d.UnlockedBadges {
		if b == id {
			return true
		}
	}
	return false
}

// DefaultCategories are seeded for new owners when no seed file is configured
func DefaultCategories() []Category {
	return []Category{
		{Id: "default-salary", Name: "Salary", Type: TransactionIncome, Color: "#22c55e", IsDefault: true},
		{Id: "default-investments", Name: "Investments", Type: TransactionIncome, Color: "#14b8a6", IsDefault: true},
		{Id: "default-housing", Name: "Housing", Type: TransactionExpense, Color: "#ef4444", IsDefault: true},
		{Id: "default-food", Name: "Food", Type: TransactionExpense, Color: "#f97316", IsDefault: true},
		{Id: "default-transport", Name: "Transport", Type: TransactionExpense, Color: "#eab308", IsDefault: true},
		{Id: "default-health", Name: "Health", Type: TransactionExpense, Color: "#ec4899", IsDefault: true},
		{Id: "default-leisure", Name: "Leisure", Type: TransactionExpense, Color: "#8b5cf6", IsDefault: true},
		{Id: "default-other", Name: GenericCategory, Type: TransactionExpense, Color: "#64748b", IsDefault: true},
	}
}
