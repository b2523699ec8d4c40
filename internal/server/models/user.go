package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Onboarded    bool      `json:"onboarded"`
	CreatedAt    time.Time `json:"createdAt"`
}
