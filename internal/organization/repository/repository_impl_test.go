package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tributaryhq/tributary/internal/organization/domain"
)

func setupOrgRepo(t *testing.T) (domain.Repository, *gorm.DB, snowflake.ID) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&domain.Organization{}); err != nil {
		t.Fatal(err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}
	orgID := node.Generate()
	org := domain.Organization{
		ID:       orgID,
		Name:     "Acme",
		Slug:     "acme",
		Settings: datatypes.JSON("{}"),
	}
	if err := db.Create(&org).Error; err != nil {
		t.Fatal(err)
	}
	return Provide(), db, orgID
}

func TestAutoMergeHistoryRoundTrip(t *testing.T) {
	repo, db, orgID := setupOrgRepo(t)
	ctx := context.Background()

	history, err := repo.AutoMergeHistory(ctx, db, orgID)
	if err != nil {
		t.Fatalf("empty history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(history))
	}

	record := domain.AutoMergeRecord{
		PrimaryID:        "1",
		PrimaryName:      "Bob Smith",
		MergedID:         "2",
		MergedName:       "bob@acme.io",
		Confidence:       1.0,
		SharedIdentities: []string{"EMAIL:bob@acme.io"},
		MergedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := repo.AppendAutoMergeRecord(ctx, db, orgID, record); err != nil {
		t.Fatalf("append: %v", err)
	}

	history, err = repo.AutoMergeHistory(ctx, db, orgID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(history))
	}
	if history[0].PrimaryName != "Bob Smith" || !history[0].MergedAt.Equal(record.MergedAt) {
		t.Errorf("round-trip mismatch: %+v", history[0])
	}
}

func TestAutoMergeHistoryCapped(t *testing.T) {
	repo, db, orgID := setupOrgRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < domain.AutoMergeHistoryCap+5; i++ {
		record := domain.AutoMergeRecord{
			PrimaryID: fmt.Sprintf("p%d", i),
			MergedID:  fmt.Sprintf("m%d", i),
			MergedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.AppendAutoMergeRecord(ctx, db, orgID, record); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	history, err := repo.AutoMergeHistory(ctx, db, orgID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != domain.AutoMergeHistoryCap {
		t.Fatalf("expected the history capped at %d, got %d", domain.AutoMergeHistoryCap, len(history))
	}
	// Oldest entries are evicted first.
	if history[0].PrimaryID != "p5" {
		t.Errorf("expected the oldest surviving entry to be p5, got %s", history[0].PrimaryID)
	}
	if history[len(history)-1].PrimaryID != fmt.Sprintf("p%d", domain.AutoMergeHistoryCap+4) {
		t.Errorf("expected the newest entry last, got %s", history[len(history)-1].PrimaryID)
	}
}

func TestFindByIDLockedOnSqlite(t *testing.T) {
	// The lock clause is postgres/mysql only; on sqlite the read must
	// come back plain.
	_, db, orgID := setupOrgRepo(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		org, err := findByIDLocked(tx, orgID)
		if err != nil {
			return err
		}
		if org == nil || org.ID != orgID {
			t.Fatalf("expected the org row, got %+v", org)
		}
		missing, err := findByIDLocked(tx, snowflake.ID(999))
		if err != nil {
			return err
		}
		if missing != nil {
			t.Fatalf("expected nil for an unknown org, got %+v", missing)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("locked read: %v", err)
	}
}

func TestAppendAutoMergeRecordUnknownOrg(t *testing.T) {
	repo, db, _ := setupOrgRepo(t)

	err := repo.AppendAutoMergeRecord(context.Background(), db, snowflake.ID(999), domain.AutoMergeRecord{})
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
