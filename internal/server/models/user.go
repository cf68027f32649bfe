package models

import "time"

type User struct {
	ID           string
	UserName     string
	PasswordHash []byte
	Email        string
	DisplayName  string
	CreatedAt    time.Time
}
