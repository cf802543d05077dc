package model

import "time"

// Position is an employee privilege tier. Tiers are ordered by seniority but
// authorization checks use exact membership, never the ordering.
type Position string

const (
	PositionAssociate Position = "ASSOCIATE"
	PositionManager   Position = "MANAGER"
	PositionDirector  Position = "DIRECTOR"
	PositionAdmin     Position = "ADMIN"
)

func (p Position) Valid() bool {
	switch p {
	case PositionAssociate, PositionManager, PositionDirector, PositionAdmin:
		return true
	}
	return false
}

type Sex string

const (
	SexMale   Sex = "MALE"
	SexFemale Sex = "FEMALE"
	SexOther  Sex = "OTHER"
)

func (s Sex) Valid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

type Employee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Position     Position  `json:"position"`
	HireDate     time.Time `json:"hireDate"`
	Sex          Sex       `json:"sex"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	ID              string `json:"id" binding:"required,max=64"`
	Name            string `json:"name" binding:"required,max=128"`
	Email           string `json:"email" binding:"required,email,max=254"`
	Password        string `json:"password" binding:"required,min=8,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	Position        string `json:"position" binding:"required,oneof=ASSOCIATE MANAGER DIRECTOR ADMIN"`
	HireDate        string `json:"hireDate" binding:"required,datetime=2006-01-02"`
	Sex             string `json:"sex" binding:"required,oneof=MALE FEMALE OTHER"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// StaffingReport counts employees per position.
type StaffingReport struct {
	Total      int              `json:"total"`
	ByPosition map[Position]int `json:"byPosition"`
}
