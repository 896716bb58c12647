package model

import "time"

type User struct {
	UUID            string     `db:"uuid" json:"uuid"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	FirstName       string     `db:"first_name" json:"first_name"`
	LastName        string     `db:"last_name" json:"last_name"`
	ImagePath       string     `db:"image_path" json:"image_path,omitempty"`
	IsVerified      bool       `db:"is_verified" json:"is_verified"`
	EmailVerifiedAt *time.Time `db:"email_verified_at" json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}
