package model

import (
	"fmt"
	"strings"

	"agenda/internal/common"
)

// MinPasswordLength mirrors the min= rule on RegisterRequest.Password.
const MinPasswordLength = 6

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Surname  string `json:"surname" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Company  string `json:"company" binding:"max=500"`
	Address  string `json:"address" binding:"max=500"`
	Phones   string `json:"phones" binding:"max=500"`
}

// Normalize trims the free-text fields and re-checks the required ones.
// The email keeps its case; only surrounding blanks are removed.
func (r *RegisterRequest) Normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Surname = strings.TrimSpace(r.Surname)
	r.Email = strings.TrimSpace(r.Email)
	r.Company = strings.TrimSpace(r.Company)
	r.Address = strings.TrimSpace(r.Address)
	r.Phones = strings.TrimSpace(r.Phones)

	verr := &common.ValidationError{}
	requireField(verr, "name", r.Name)
	requireField(verr, "surname", r.Surname)
	requireField(verr, "email", r.Email)
	if len(r.Password) < MinPasswordLength {
		verr.Add("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ProfileRequest is the body of PUT /auth/profile. Nil fields stay unchanged.
type ProfileRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=100"`
	Surname *string `json:"surname" binding:"omitempty,max=100"`
	Company *string `json:"company" binding:"omitempty,max=500"`
	Address *string `json:"address" binding:"omitempty,max=500"`
	Phones  *string `json:"phones" binding:"omitempty,max=500"`
}

// Apply copies the present fields onto u.
func (r *ProfileRequest) Apply(u *User) error {
	verr := &common.ValidationError{}
	if r.Name != nil {
		u.Name = strings.TrimSpace(*r.Name)
		requireField(verr, "name", u.Name)
	}
	if r.Surname != nil {
		u.Surname = strings.TrimSpace(*r.Surname)
		requireField(verr, "surname", u.Surname)
	}
	if r.Company != nil {
		u.Company = strings.TrimSpace(*r.Company)
	}
	if r.Address != nil {
		u.Address = strings.TrimSpace(*r.Address)
	}
	if r.Phones != nil {
		u.Phones = strings.TrimSpace(*r.Phones)
	}
	if verr.Empty() {
		return nil
	}
	return verr
}

// ContactRequest is the body of POST /contacts and PUT /contacts/:id.
// Ownership and visibility flags are deliberately absent: they are never
// taken from the client.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Surname string `json:"surname" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=254"`
	Company string `json:"company" binding:"max=500"`
	Address string `json:"address" binding:"max=500"`
	Phones  string `json:"phones" binding:"max=500"`
}

// Normalize trims every field and re-checks the required ones.
func (r *ContactRequest) Normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Surname = strings.TrimSpace(r.Surname)
	r.Email = strings.TrimSpace(r.Email)
	r.Company = strings.TrimSpace(r.Company)
	r.Address = strings.TrimSpace(r.Address)
	r.Phones = strings.TrimSpace(r.Phones)

	verr := &common.ValidationError{}
	requireField(verr, "name", r.Name)
	requireField(verr, "surname", r.Surname)
	requireField(verr, "email", r.Email)
	if verr.Empty() {
		return nil
	}
	return verr
}

// ApplyTo copies the editable fields onto c.
func (r *ContactRequest) ApplyTo(c *Contact) {
	c.Name = r.Name
	c.Surname = r.Surname
	c.Email = r.Email
	c.Company = r.Company
	c.Address = r.Address
	c.Phones = r.Phones
}

func requireField(verr *common.ValidationError, field, value string) {
	if value == "" {
		verr.Add(field, "is required")
	}
}
