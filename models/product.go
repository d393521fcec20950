package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. ID is the public sequential identifier; the
// Mongo ObjectID is kept only as the document key.
type Product struct {
	ObjectID  primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ID        int64              `bson:"id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Category  string             `bson:"category" json:"category"`
	NewPrice  float64            `bson:"new_price" json:"new_price"`
	OldPrice  float64            `bson:"old_price" json:"old_price"`
	Date      time.Time          `bson:"date" json:"date"`
	Available bool               `bson:"available" json:"available"`
}

// NewProductRequest is the body of POST /addproduct.
type NewProductRequest struct {
	Name     string   `json:"name" binding:"required,notblank"`
	Image    string   `json:"image" binding:"required,notblank"`
	Category string   `json:"category" binding:"required,notblank"`
	NewPrice *float64 `json:"new_price" binding:"required,gte=0"`
	OldPrice *float64 `json:"old_price" binding:"required,gte=0"`
}

// RemoveProductRequest is the body of POST /removeproduct.
type RemoveProductRequest struct {
	ID   *int64 `json:"id" binding:"required"`
	Name string `json:"name"`
}

// UploadImageRequest is the body of /upload: a data URI, remote URL or raw
// base64 payload that is handed to the media host untouched.
type UploadImageRequest struct {
	Image string `json:"image" binding:"required"`
}
