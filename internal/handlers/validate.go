package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for account and content fields.
const (
	minUsernameLen = 3
	minPasswordLen = 6
	minCategoryLen = 2
	minTitleLen    = 3
	maxTitleLen    = 200
	minContentLen  = 10
	maxExcerptLen  = 300
)

// validateRegister checks registration inputs.
func validateRegister(username, email, password string) []FieldError {
	var errs []FieldError
	if utf8.RuneCountInString(strings.TrimSpace(username)) < minUsernameLen {
		errs = append(errs, FieldError{"username", "username must be at least 3 characters"})
	}
	if !validEmail(email) {
		errs = append(errs, FieldError{"email", "valid email required"})
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		errs = append(errs, FieldError{"password", "password must be at least 6 characters"})
	}
	return errs
}

// validateLogin checks login inputs.
func validateLogin(email, password string) []FieldError {
	var errs []FieldError
	if !validEmail(email) {
		errs = append(errs, FieldError{"email", "valid email required"})
	}
	if password == "" {
		errs = append(errs, FieldError{"password", "password required"})
	}
	return errs
}

// validateCategoryName checks a new category's name.
func validateCategoryName(name string) []FieldError {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < minCategoryLen {
		return []FieldError{{"name", "name must be at least 2 characters"}}
	}
	return nil
}

// validateTitle checks a post title against its bounds.
func validateTitle(title string) *FieldError {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < minTitleLen {
		return &FieldError{"title", "title must be at least 3 characters"}
	}
	if n > maxTitleLen {
		return &FieldError{"title", "title must be at most 200 characters"}
	}
	return nil
}

// validateContent checks a post body against its minimum length.
func validateContent(content string) *FieldError {
	if utf8.RuneCountInString(content) < minContentLen {
		return &FieldError{"content", "content must be at least 10 characters"}
	}
	return nil
}

// validateExcerpt checks an optional excerpt against its maximum length.
func validateExcerpt(excerpt string) *FieldError {
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return &FieldError{"excerpt", "excerpt must be at most 300 characters"}
	}
	return nil
}

// validEmail reports whether the string parses as a bare email address.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
