package auth

import (
	"unicode"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Alex-SA1/Efficient-Study-Platform/errors"
)

var validate = validator.New()

// JoinRequest is the join form as submitted by the menu page.
type JoinRequest struct {
	SessionCode string `validate:"required,len=12,alpha"`
}

// ValidateJoin rejects malformed codes before any registry lookup happens.
func ValidateJoin(req JoinRequest) error {
	if err := validate.Struct(req); err != nil {
		return apperrors.ErrInvalidSessionCode
	}
	return nil
}

// RegisterRequest is consumed by the account seeding tool. Interactive
// registration lives in the account collaborator, not here.
type RegisterRequest struct {
	Username string `validate:"required,min=3,max=30,alphanum"`
	Password string `validate:"required,min=12,max=72"`
}

func ValidateRegister(req RegisterRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}

	if !isPasswordComplex(req.Password) {
		return apperrors.ErrInvalidPassword
	}
	return nil
}

func isPasswordComplex(s string) bool {
	var (
		hasUpper   = false
		hasLower   = false
		hasNumber  = false
		hasSpecial = false
	)
	for _, char := range s {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasNumber && hasSpecial
}
