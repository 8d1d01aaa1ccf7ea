package chat_dto

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type PostMessageRequest struct {
	Text string `json:"text" validate:"required,min=1"`
	Type string `json:"type" validate:"omitempty,oneof=text stamp image"`
}

func ObjectIDValidator(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}
