package validation

import (
	"fmt"
	"unicode"
)

// MinPasswordLength минимальная длина пароля.
const MinPasswordLength = 8

// ValidatePassword проверяет пароль.
// Требования:
// - Минимум 8 символов
// - Хотя бы одна буква
// - Хотя бы одна цифра
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasLetter {
		return fmt.Errorf("password must contain at least one letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one digit")
	}
	return nil
}
