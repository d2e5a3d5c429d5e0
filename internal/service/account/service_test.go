package account

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/service/session"
)

type stubSessions struct {
	logins []domain.UserProfile
}

func (s *stubSessions) Login(_ context.Context, p domain.UserProfile) session.State {
	s.logins = append(s.logins, p)
	return session.State{User: &p}
}

func validRegister() RegisterInput {
	return RegisterInput{
		Name:            "Ana Pérez",
		Email:           "ana@example.com",
		Phone:           "+56 9 1234 5678",
		Password:        "Secret123",
		ConfirmPassword: "Secret123",
		AcceptTerms:     true,
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return ve.Fields
}

func TestLoginDerivesNameFromEmail(t *testing.T) {
	sessions := &stubSessions{}
	svc := New(sessions, nil, nil)
	p, err := svc.Login(context.Background(), LoginInput{Email: " ana@example.com ", Password: "123456"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "ana" || p.Email != "ana@example.com" || p.IsAdmin {
		t.Fatalf("unexpected profile %+v", p)
	}
	if len(sessions.logins) != 1 {
		t.Fatalf("expected one session login, got %d", len(sessions.logins))
	}
}

func TestLoginValidation(t *testing.T) {
	sessions := &stubSessions{}
	svc := New(sessions, nil, nil)
	cases := []struct {
		in    LoginInput
		field string
		msg   string
	}{
		{LoginInput{Password: "123456"}, "email", "El email es requerido"},
		{LoginInput{Email: "ana@example", Password: "123456"}, "email", "Email inválido"},
		{LoginInput{Email: "ana@example.com"}, "password", "La contraseña es requerida"},
		{LoginInput{Email: "ana@example.com", Password: "12345"}, "password", "La contraseña debe tener al menos 6 caracteres"},
	}
	for _, tc := range cases {
		_, err := svc.Login(context.Background(), tc.in)
		fields := fieldErrors(t, err)
		if fields[tc.field] != tc.msg {
			t.Fatalf("%+v: expected %s=%q, got %v", tc.in, tc.field, tc.msg, fields)
		}
	}
	if len(sessions.logins) != 0 {
		t.Fatalf("invalid forms must not sign in")
	}
}

func TestLoginMarksAdmins(t *testing.T) {
	svc := New(&stubSessions{}, []string{" Admin@Hakey.cl "}, nil)
	p, err := svc.Login(context.Background(), LoginInput{Email: "admin@hakey.cl", Password: "123456"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsAdmin {
		t.Fatalf("expected admin flag")
	}
}

func TestRegisterSignsIn(t *testing.T) {
	sessions := &stubSessions{}
	svc := New(sessions, nil, nil)
	p, err := svc.Register(context.Background(), validRegister())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Ana Pérez" || p.Email != "ana@example.com" {
		t.Fatalf("unexpected profile %+v", p)
	}
	if len(sessions.logins) != 1 {
		t.Fatalf("expected one session login")
	}
}

func TestRegisterPhoneIsOptional(t *testing.T) {
	in := validRegister()
	in.Phone = ""
	if _, err := New(&stubSessions{}, nil, nil).Register(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := New(&stubSessions{}, nil, nil)
	cases := []struct {
		mutate func(*RegisterInput)
		field  string
		msg    string
	}{
		{func(in *RegisterInput) { in.Name = "  " }, "name", "El nombre es requerido"},
		{func(in *RegisterInput) { in.Name = "A" }, "name", "El nombre debe tener al menos 2 caracteres"},
		{func(in *RegisterInput) { in.Name = strings.Repeat("a", 51) }, "name", "El nombre no puede tener más de 50 caracteres"},
		{func(in *RegisterInput) { in.Email = "nope" }, "email", "Email inválido"},
		{func(in *RegisterInput) { in.Phone = "12ab" }, "phone", "Número de teléfono inválido"},
		{func(in *RegisterInput) { in.Password, in.ConfirmPassword = "Ab1", "Ab1" }, "password", "La contraseña debe tener al menos 8 caracteres"},
		{func(in *RegisterInput) { in.Password, in.ConfirmPassword = "secret123", "secret123" }, "password", "Debe contener al menos una mayúscula"},
		{func(in *RegisterInput) { in.Password, in.ConfirmPassword = "SECRET123", "SECRET123" }, "password", "Debe contener al menos una minúscula"},
		{func(in *RegisterInput) { in.Password, in.ConfirmPassword = "SecretPass", "SecretPass" }, "password", "Debe contener al menos un número"},
		{func(in *RegisterInput) { in.ConfirmPassword = "" }, "confirmPassword", "Debes confirmar tu contraseña"},
		{func(in *RegisterInput) { in.ConfirmPassword = "Secret124" }, "confirmPassword", "Las contraseñas no coinciden"},
		{func(in *RegisterInput) { in.AcceptTerms = false }, "acceptTerms", "Debes aceptar los términos y condiciones"},
	}
	for _, tc := range cases {
		in := validRegister()
		tc.mutate(&in)
		_, err := svc.Register(context.Background(), in)
		fields := fieldErrors(t, err)
		if fields[tc.field] != tc.msg {
			t.Fatalf("expected %s=%q, got %v", tc.field, tc.msg, fields)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if msg := validatePassword("Abcdefg1", 8); msg != "" {
		t.Fatalf("expected valid password, got %q", msg)
	}
	if msg := validatePassword("Abc1", 8); msg == "" {
		t.Fatalf("expected length failure")
	}
}
