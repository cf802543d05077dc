package model

import "time"

type Client struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	HouseID     *string    `json:"houseId,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type CreateClientRequest struct {
	ID          string  `json:"id" binding:"required,max=64"`
	Name        string  `json:"name" binding:"required,max=128"`
	HouseID     *string `json:"houseId" binding:"omitempty,max=64"`
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
}
