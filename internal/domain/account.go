package domain

import "time"

// Account holds a user's item inventory.
type Account struct {
	ID        string
	Inventory Inventory
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot returns a read-only copy of the account.
func (a *Account) Snapshot() *Account {
	cp := *a
	cp.Inventory = a.Inventory.Clone()
	return &cp
}

// ApplyDebit removes items from the account if it holds all of them.
func (a *Account) ApplyDebit(items []string, at time.Time) error {
	if err := a.Inventory.Debit(a.ID, items); err != nil {
		return err
	}
	a.touch(at)
	return nil
}

// ApplyCredit adds items to the account.
func (a *Account) ApplyCredit(items []string, at time.Time) {
	if a.Inventory == nil {
		a.Inventory = make(Inventory)
	}
	a.Inventory.Credit(items)
	a.touch(at)
}

func (a *Account) touch(at time.Time) {
	a.Version++
	a.UpdatedAt = at
}
