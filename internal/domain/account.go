package domain

import "time"

// Account is a directory entry for a balance-holding account.
// The balance itself is never stored here; it is always derived by
// folding the account's movements.
type Account struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
