package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	CartData Cart               `bson:"cartData" json:"cartData"`
	Date     time.Time          `bson:"date" json:"date"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
