// Package account validates the login and registration forms and signs the
// resulting profile into the session store. There is no credential check:
// the session is local and token-less.
package account

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/service/session"
	"hakey-storefront/internal/validation"
)

const registerPasswordMin = 8

type sessionStore interface {
	Login(ctx context.Context, profile domain.UserProfile) session.State
}

type Service struct {
	sessions sessionStore
	admins   map[string]struct{}
	validate *validator.Validate
	logger   *log.Logger
}

// New wires the flows to a session store. Emails listed in adminEmails
// (case-insensitive) are signed in with the admin flag.
func New(sessions sessionStore, adminEmails []string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Service{
		sessions: sessions,
		admins:   admins,
		validate: validation.New(),
		logger:   logger,
	}
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterInput struct {
	Name            string `json:"name" validate:"required,min=2,max=50"`
	Email           string `json:"email" validate:"required,loose_email"`
	Phone           string `json:"phone" validate:"omitempty,phone"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"acceptTerms" validate:"required"`
}

var loginMessages = validation.Messages{
	"email.required":    "El email es requerido",
	"email.loose_email": "Email inválido",
	"password.required": "La contraseña es requerida",
	"password.min":      "La contraseña debe tener al menos 6 caracteres",
}

var registerMessages = validation.Messages{
	"name.required":            "El nombre es requerido",
	"name.min":                 "El nombre debe tener al menos 2 caracteres",
	"name.max":                 "El nombre no puede tener más de 50 caracteres",
	"email.required":           "El email es requerido",
	"email.loose_email":        "Email inválido",
	"phone":                    "Número de teléfono inválido",
	"password.required":        "La contraseña es requerida",
	"confirmPassword.required": "Debes confirmar tu contraseña",
	"confirmPassword.eqfield":  "Las contraseñas no coinciden",
	"acceptTerms":              "Debes aceptar los términos y condiciones",
}

// Login validates the form and signs in a profile named after the email's
// local part.
func (s *Service) Login(ctx context.Context, in LoginInput) (*domain.UserProfile, error) {
	in.Email = strings.TrimSpace(in.Email)
	ve := &domain.ValidationError{}
	if err := validation.Collect(s.validate, in, loginMessages, ve); err != nil {
		return nil, err
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	profile := domain.UserProfile{
		Email:   in.Email,
		Name:    strings.SplitN(in.Email, "@", 2)[0],
		IsAdmin: s.isAdmin(in.Email),
	}
	s.sessions.Login(ctx, profile)
	s.logger.Printf("account: login email=%s admin=%t", profile.Email, profile.IsAdmin)
	return &profile, nil
}

// Register validates the sign-up form and signs the new profile in. Nothing
// is stored beyond the session record.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.UserProfile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	ve := &domain.ValidationError{}
	if err := validation.Collect(s.validate, in, registerMessages, ve); err != nil {
		return nil, err
	}
	if in.Password != "" {
		if msg := validatePassword(in.Password, registerPasswordMin); msg != "" {
			ve.Add("password", msg)
		}
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	profile := domain.UserProfile{
		Email:   in.Email,
		Name:    in.Name,
		IsAdmin: s.isAdmin(in.Email),
	}
	s.sessions.Login(ctx, profile)
	s.logger.Printf("account: register email=%s admin=%t", profile.Email, profile.IsAdmin)
	return &profile, nil
}

func (s *Service) isAdmin(email string) bool {
	_, ok := s.admins[strings.ToLower(email)]
	return ok
}

// validatePassword returns the first failing strength rule, or "".
func validatePassword(p string, min int) string {
	if len([]rune(p)) < min {
		return fmt.Sprintf("La contraseña debe tener al menos %d caracteres", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	switch {
	case !hasUpper:
		return "Debe contener al menos una mayúscula"
	case !hasLower:
		return "Debe contener al menos una minúscula"
	case !hasDigit:
		return "Debe contener al menos un número"
	}
	return ""
}
