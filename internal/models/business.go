package models

import "time"

type Business struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// BusinessMember links a user to a business they were added to.
// (business_id, user_id) is unique: a user joins a business at most once.
type BusinessMember struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"business_id"`
	UserID     int64     `json:"user_id"`
	AddedBy    int64     `json:"added_by"`
	AddedAt    time.Time `json:"added_at"`
}

// OwnedBusiness is the admin-side listing row: businesses the caller
// created, with a distinct member count.
type OwnedBusiness struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UserCount   int64     `json:"user_count"`
}

// JoinedBusiness is the member-side listing row: businesses the caller
// belongs to, with the creator's email and when the caller was added.
type JoinedBusiness struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	CreatedByEmail string    `json:"created_by_email"`
	AddedAt        time.Time `json:"added_at"`
}
