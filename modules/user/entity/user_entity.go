package entity

import (
	"appointment-scheduler/core/entity"
)

type User struct {
	FirstName  string  `db:"first_name" json:"first_name"`
	LastName   string  `db:"last_name" json:"last_name"`
	Email      string  `db:"email" json:"email"`
	Password   string  `db:"password" json:"-"`
	Role       string  `db:"role" json:"role"`
	Phone      *string `db:"phone" json:"phone"`
	Department *string `db:"department" json:"department"`
	entity.BaseEntity
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
