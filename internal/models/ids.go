package models

// EntityId and WithId let storage code handle every collection element
// generically. WithId returns a copy carrying the given id.

func (t Transaction) EntityId() string { return t.Id }
func (t Transaction) WithId(id string) Transaction {
	t.Id = id
	return t
}

func (i Investment) EntityId() string { return i.Id }
func (i Investment) WithId(id string) Investment {
	i.Id = id
	return i
}

func (b Budget) EntityId() string { return b.Id }
func (b Budget) WithId(id string) Budget {
	b.Id = id
	return b
}

func (d Debt) EntityId() string { return d.Id }
func (d Debt) WithId(id string) Debt {
	d.Id = id
	return d
}

func (s ShoppingItem) EntityId() string { return s.Id }
func (s ShoppingItem) WithId(id string) ShoppingItem {
	s.Id = id
	return s
}

func (b KanbanBoard) EntityId() string { return b.Id }
func (b KanbanBoard) WithId(id string) KanbanBoard {
	b.Id = id
	return b
}

func (n Note) EntityId() string { return n.Id }
func (n Note) WithId(id string) Note {
	n.Id = id
	return n
}

func (c Category) EntityId() string { return c.Id }
func (c Category) WithId(id string) Category {
	c.Id = id
	return c
}
