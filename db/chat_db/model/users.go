package model

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/techwiz42/cyberiad/security_helpers"
)

type Users struct {
	ID           uint64       `db:"id"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    sql.NullTime `db:"updated_at"`
	Salt         string       `db:"object_salt"`
	Username     string       `db:"username"`
	Email        string       `db:"email"`
	PasswordHash string       `db:"password_hash"`
	Role         string       `db:"role"`
	LastLoginAt  sql.NullTime `db:"last_login_at"`
	LastActiveAt time.Time    `db:"last_active_at"`
	IsActive     bool         `db:"is_active"`
}

func (u Users) PublicID() string {
	return security_helpers.Encode(u.ID, USERS_TYPE, u.Salt)
}

func (u Users) ToFiberMap() fiber.Map {
	return fiber.Map{
		"id":         u.PublicID(),
		"created_at": u.CreatedAt.Format(time.RFC3339),
		"username":   u.Username,
		"email":      u.Email,
		"role":       u.Role,
	}
}

var USERS_TYPE = "Users"

const (
	ROLE_ADMIN = "admin"
	ROLE_USER  = "user"
)
