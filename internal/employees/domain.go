package employees

import "time"

// Employee represents a personnel record.
type Employee struct {
	ID         int64
	FullName   string
	Email      string
	Department string
	Position   string
	HiredAt    time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ListFilters narrows employee listings.
type ListFilters struct {
	Department string
	Search     string
}
