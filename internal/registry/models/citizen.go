package models

import "time"

// Citizen is a read-mostly input to the approval workflow: owners and heirs
// are citizens looked up by identifier.
type Citizen struct {
	ID         int64
	FirstName  string
	LastName   string
	NationalID string
	Address    string
	Phone      string
	Email      string
	CreatedAt  time.Time
}

// FullName renders the display name used in derived heir lines and
// notifications.
func (c *Citizen) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	return c.FirstName + " " + c.LastName
}
