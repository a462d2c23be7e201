package models

import "github.com/uptrace/bun"

// User roles.
const (
	RoleAdmin   = "admin"
	RoleOfficer = "officer"
)

// User is a race officer or administrator with a bcrypt-hashed password.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Username string `bun:"username,notnull,unique" json:"username"`
	Password string `bun:"password,notnull" json:"-"`
	Role     string `bun:"role,notnull,default:'officer'" json:"role"`
}
