// Package validation contiene las reglas de forma para los payloads de
// entrada. Cada esquema es una función de parseo pura: recibe el request
// crudo y devuelve un valor tipado o la lista de violaciones por campo.
package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// FieldError describe una violación de validación sobre un campo puntual.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	isbnRe  = regexp.MustCompile(`^[0-9-]+$`)
)

const maxTextLen = 255

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// RegisterInput es el resultado normalizado de un registro válido.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

func ParseRegister(req RegisterRequest) (RegisterInput, []FieldError) {
	var errs []FieldError

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRe.MatchString(email) {
		errs = append(errs, FieldError{Field: "email", Message: "Invalid email format"})
	}
	if len(req.Password) < 6 {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 6 characters"})
	}

	if len(errs) > 0 {
		return RegisterInput{}, errs
	}
	return RegisterInput{
		Email:    email,
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
	}, nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string
	Password string
}

func ParseLogin(req LoginRequest) (LoginInput, []FieldError) {
	var errs []FieldError

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRe.MatchString(email) {
		errs = append(errs, FieldError{Field: "email", Message: "Invalid email format"})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}

	if len(errs) > 0 {
		return LoginInput{}, errs
	}
	return LoginInput{Email: email, Password: req.Password}, nil
}

type BookCreateRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
}

// BookInput es el resultado normalizado de un alta de libro válida.
type BookInput struct {
	Title       string
	Author      string
	ISBN        string
	Description string
	PublishedAt *time.Time
}

func ParseBookCreate(req BookCreateRequest) (BookInput, []FieldError) {
	var errs []FieldError

	title := strings.TrimSpace(req.Title)
	if msg, ok := checkRequiredText("Title is required", "Title too long", title); !ok {
		errs = append(errs, FieldError{Field: "title", Message: msg})
	}
	author := strings.TrimSpace(req.Author)
	if msg, ok := checkRequiredText("Author is required", "Author name too long", author); !ok {
		errs = append(errs, FieldError{Field: "author", Message: msg})
	}

	isbn := strings.TrimSpace(req.ISBN)
	if isbn != "" && !isbnRe.MatchString(isbn) {
		errs = append(errs, FieldError{Field: "isbn", Message: "ISBN must contain only digits and hyphens"})
	}

	var publishedAt *time.Time
	if req.PublishedAt != "" {
		t, err := parseDatetime(req.PublishedAt)
		if err != nil {
			errs = append(errs, FieldError{Field: "published_at", Message: "Invalid datetime format"})
		} else {
			publishedAt = &t
		}
	}

	if len(errs) > 0 {
		return BookInput{}, errs
	}
	return BookInput{
		Title:       title,
		Author:      author,
		ISBN:        isbn,
		Description: strings.TrimSpace(req.Description),
		PublishedAt: publishedAt,
	}, nil
}

type BookUpdateRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	ISBN        *string `json:"isbn"`
	Description *string `json:"description"`
	PublishedAt *string `json:"published_at"`
}

// BookPatch lleva solo los campos presentes en un update parcial.
type BookPatch struct {
	Title       *string
	Author      *string
	ISBN        *string
	Description *string
	PublishedAt *time.Time
}

// ParseBookUpdate aplica las mismas reglas que el alta, pero cada campo es
// opcional. No exige que venga al menos un campo.
func ParseBookUpdate(req BookUpdateRequest) (BookPatch, []FieldError) {
	var errs []FieldError
	var patch BookPatch

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if msg, ok := checkRequiredText("Title is required", "Title too long", title); !ok {
			errs = append(errs, FieldError{Field: "title", Message: msg})
		} else {
			patch.Title = &title
		}
	}
	if req.Author != nil {
		author := strings.TrimSpace(*req.Author)
		if msg, ok := checkRequiredText("Author is required", "Author name too long", author); !ok {
			errs = append(errs, FieldError{Field: "author", Message: msg})
		} else {
			patch.Author = &author
		}
	}
	if req.ISBN != nil {
		isbn := strings.TrimSpace(*req.ISBN)
		if isbn != "" && !isbnRe.MatchString(isbn) {
			errs = append(errs, FieldError{Field: "isbn", Message: "ISBN must contain only digits and hyphens"})
		} else {
			patch.ISBN = &isbn
		}
	}
	if req.Description != nil {
		desc := strings.TrimSpace(*req.Description)
		patch.Description = &desc
	}
	if req.PublishedAt != nil && *req.PublishedAt != "" {
		t, err := parseDatetime(*req.PublishedAt)
		if err != nil {
			errs = append(errs, FieldError{Field: "published_at", Message: "Invalid datetime format"})
		} else {
			patch.PublishedAt = &t
		}
	}

	if len(errs) > 0 {
		return BookPatch{}, errs
	}
	return patch, nil
}

// checkRequiredText valida presencia y largo máximo en caracteres, no bytes.
func checkRequiredText(requiredMsg, tooLongMsg, value string) (string, bool) {
	if value == "" {
		return requiredMsg, false
	}
	if utf8.RuneCountInString(value) > maxTextLen {
		return tooLongMsg, false
	}
	return "", true
}

func parseDatetime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
