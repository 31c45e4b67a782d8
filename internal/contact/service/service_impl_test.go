package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tributaryhq/tributary/internal/contact/domain"
	"github.com/tributaryhq/tributary/internal/contact/repository"
	"github.com/tributaryhq/tributary/internal/orgcontext"
)

func setupContactService(t *testing.T) (domain.Service, *snowflake.Node, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.Contact{}); err != nil {
		t.Fatal(err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	ctx := orgcontext.WithOrgID(context.Background(), int64(node.Generate()))
	return svc, node, ctx
}

func TestContactCRUD(t *testing.T) {
	svc, _, ctx := setupContactService(t)

	created, err := svc.Create(ctx, domain.CreateContactRequest{
		FirstName: "Bob",
		LastName:  "Smith",
		Email:     "Bob@Acme.IO",
		Github:    "BobSmith",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "bob@acme.io" || created.Github != "bobsmith" {
		t.Errorf("expected normalized handles, got %q / %q", created.Email, created.Github)
	}

	fetched, err := svc.GetByID(ctx, created.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.DisplayName() != "Bob Smith" {
		t.Errorf("unexpected display name %q", fetched.DisplayName())
	}

	updated, err := svc.Update(ctx, domain.UpdateContactRequest{
		ID:     created.ID.String(),
		Fields: map[string]any{"title": "CTO"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "CTO" {
		t.Errorf("expected title updated, got %q", updated.Title)
	}

	if err := svc.Delete(ctx, created.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID.String()); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestContactInvalidID(t *testing.T) {
	svc, _, ctx := setupContactService(t)

	if _, err := svc.GetByID(ctx, "abc"); err != domain.ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestContactTenantIsolation(t *testing.T) {
	svc, node, ctx := setupContactService(t)

	created, err := svc.Create(ctx, domain.CreateContactRequest{Email: "bob@acme.io"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	otherCtx := orgcontext.WithOrgID(context.Background(), int64(node.Generate()))
	if _, err := svc.GetByID(otherCtx, created.ID.String()); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound across tenants, got %v", err)
	}
}
