// internal/api/docs.go
package api

import "time"

// These types are for Swagger documentation
type SignupRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"password123"`
}

type SigninRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Password string `json:"password" example:"password123"`
}

type UserResponse struct {
	ID        int64     `json:"id" example:"1"`
	Email     string    `json:"email" example:"user@example.com"`
	Role      string    `json:"role" example:"user"`
	ShareCode string    `json:"share_code" example:"7K2M9X"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateBusinessRequest struct {
	Name        string `json:"name" example:"Acme"`
	Description string `json:"description" example:"Night shift crew"`
}

type AddUserToBusinessRequest struct {
	BusinessID int64  `json:"business_id" example:"1"`
	ShareCode  string `json:"share_code" example:"7K2M9X"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"Error message"`
}
