package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateContactRequest struct {
	FirstName string
	LastName  string
	Email     string
	Github    string
	Npm       string
	Avatar    string
	CompanyID *snowflake.ID
}

type UpdateContactRequest struct {
	ID     string
	Fields map[string]any
}

type Service interface {
	Create(context.Context, CreateContactRequest) (Contact, error)
	GetByID(ctx context.Context, id string) (Contact, error)
	Update(context.Context, UpdateContactRequest) (Contact, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInsufficientSignal  = errors.New("insufficient_signal")
	ErrNotFound            = errors.New("not_found")
)
