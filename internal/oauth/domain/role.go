package domain

// Role is a realm role. ID is assigned upstream and is empty on create.
type Role struct {
	ID          string
	Name        string
	Description string
}

