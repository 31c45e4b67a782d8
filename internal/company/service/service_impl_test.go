package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tributaryhq/tributary/internal/company/domain"
	"github.com/tributaryhq/tributary/internal/company/repository"
	"github.com/tributaryhq/tributary/internal/orgcontext"
)

func setupCompanyService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.Company{}); err != nil {
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
	return svc, db, node
}

func TestResolveByDomainCreatesCompany(t *testing.T) {
	svc, db, node := setupCompanyService(t)
	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	company, err := svc.ResolveByDomain(ctx, "Acme.IO")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if company == nil {
		t.Fatal("expected a company to be created")
	}
	if company.Name != "Acme" {
		t.Errorf("expected derived name Acme, got %q", company.Name)
	}
	if company.Domain != "acme.io" {
		t.Errorf("expected normalized domain acme.io, got %q", company.Domain)
	}
	if company.Website != "https://acme.io" {
		t.Errorf("unexpected website %q", company.Website)
	}

	var count int64
	db.Model(&domain.Company{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 company row, got %d", count)
	}
}

func TestResolveByDomainReusesExisting(t *testing.T) {
	svc, _, node := setupCompanyService(t)
	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	first, err := svc.ResolveByDomain(ctx, "acme.io")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := svc.ResolveByDomain(ctx, "acme.io")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same company, got %s and %s", first.ID, second.ID)
	}
}

func TestResolveByDomainRejectsFreeEmail(t *testing.T) {
	svc, db, node := setupCompanyService(t)
	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	company, err := svc.ResolveByDomain(ctx, "gmail.com")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if company != nil {
		t.Fatalf("expected no company for a free email domain, got %s", company.ID)
	}

	var count int64
	db.Model(&domain.Company{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no company rows, got %d", count)
	}
}

func TestResolveByDomainScopedToTenant(t *testing.T) {
	svc, _, node := setupCompanyService(t)
	orgA := node.Generate()
	orgB := node.Generate()

	a, err := svc.ResolveByDomain(orgcontext.WithOrgID(context.Background(), int64(orgA)), "acme.io")
	if err != nil {
		t.Fatalf("org A resolve: %v", err)
	}
	b, err := svc.ResolveByDomain(orgcontext.WithOrgID(context.Background(), int64(orgB)), "acme.io")
	if err != nil {
		t.Fatalf("org B resolve: %v", err)
	}
	if a.ID == b.ID {
		t.Fatal("expected each tenant to own its own company for the domain")
	}
}

func TestFuzzyMatchByName(t *testing.T) {
	svc, db, node := setupCompanyService(t)
	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	seed := []domain.Company{
		{ID: node.Generate(), OrgID: orgID, Name: "Acme", Domain: "acme.io"},
		{ID: node.Generate(), OrgID: orgID, Name: "Initech", Domain: "initech.com", GithubOrg: "initech-labs"},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	match, err := svc.FuzzyMatchByName(ctx, "Acme Inc.")
	if err != nil {
		t.Fatalf("fuzzy match: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match for Acme Inc.")
	}
	if match.Company.Name != "Acme" {
		t.Errorf("expected Acme, got %q", match.Company.Name)
	}
	if match.Score != 1.0 {
		t.Errorf("expected score 1.0, got %v", match.Score)
	}

	none, err := svc.FuzzyMatchByName(ctx, "Globex")
	if err != nil {
		t.Fatalf("fuzzy match: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no match for Globex, got %q", none.Company.Name)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _, node := setupCompanyService(t)
	orgID := node.Generate()
	ctx := orgcontext.WithOrgID(context.Background(), int64(orgID))

	if _, err := svc.GetByID(ctx, node.Generate()); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
