// Package validation проверки пользовательского ввода: форма отчёта на клиенте
// и запросы к sandbox серверу.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinNameLength  = 2
	MaxNameLength  = 100
	MinPhoneDigits = 5
	MaxPhoneDigits = 15
	MaxEmailLength = 255
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	phoneRegex       = regexp.MustCompile(`^\+?[0-9\s\-()]+$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must be at most %d characters", MaxEmailLength)
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return fmt.Errorf("email format is invalid")
	}
	if local == "" || len(local) > 64 {
		return fmt.Errorf("email local part must be 1 to 64 characters")
	}
	if !emailLocalRegex.MatchString(local) {
		return fmt.Errorf("email local part contains invalid characters")
	}
	if !emailDomainRegex.MatchString(domain) {
		return fmt.Errorf("email domain is invalid")
	}
	return nil
}

// ValidateName проверяет имя заявителя или пользователя.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is required")
	}
	return ValidateLength("name", name, MinNameLength, MaxNameLength)
}

// ValidatePhone проверяет номер телефона: цифры, пробелы, скобки, дефисы и ведущий "+".
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("phone is required")
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("phone contains invalid characters")
	}
	digits := len(Digits(phone))
	if digits < MinPhoneDigits || digits > MaxPhoneDigits {
		return fmt.Errorf("phone must contain %d to %d digits", MinPhoneDigits, MaxPhoneDigits)
	}
	return nil
}

// Digits оставляет в строке только ASCII цифры.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
