package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is a postal address.
type Address struct {
	Street     string `json:"street" bson:"street" binding:"required"`
	City       string `json:"city" bson:"city" binding:"required"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postal_code" bson:"postal_code" binding:"required"`
	Country    string `json:"country" bson:"country" binding:"required"`
}

// User is a storefront customer.
type User struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Password  string             `json:"-" bson:"password"`
	Address   *Address           `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// RegisterUserRequest is the customer sign-up payload.
type RegisterUserRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,max=72"`
	Phone    string `json:"phone" binding:"omitempty,max=30"`
}

// ClientLoginRequest is the customer login payload.
type ClientLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is a partial profile update.
type UpdateProfileRequest struct {
	Name    *string  `json:"name" binding:"omitempty,min=2,max=100"`
	Phone   *string  `json:"phone" binding:"omitempty,max=30"`
	Address *Address `json:"address"`
}

// ChangePasswordRequest replaces the current password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,max=72"`
}

// UserList is one page of customers.
type UserList struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Pages int    `json:"pages"`
}
