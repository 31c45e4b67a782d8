package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tributaryhq/tributary/internal/organization/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, settings, created_at, updated_at
		 FROM organizations WHERE id = ?`,
		id,
	).Scan(&org).Error
	if err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func (r *repo) AutoMergeHistory(ctx context.Context, db *gorm.DB, orgID snowflake.ID) ([]domain.AutoMergeRecord, error) {
	org, err := r.FindByID(ctx, db, orgID)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}
	settings, err := decodeSettings(org.Settings)
	if err != nil {
		return nil, err
	}
	return historyFromSettings(settings)
}

// AppendAutoMergeRecord adds one record to the tenant's audit trail,
// evicting the oldest entries past the cap. The read-modify-write runs
// in its own transaction with the org row locked so two concurrent
// merges cannot drop each other's record.
func (r *repo) AppendAutoMergeRecord(ctx context.Context, db *gorm.DB, orgID snowflake.ID, record domain.AutoMergeRecord) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := findByIDLocked(tx, orgID)
		if err != nil {
			return err
		}
		if org == nil {
			return domain.ErrNotFound
		}

		settings, err := decodeSettings(org.Settings)
		if err != nil {
			return err
		}
		history, err := historyFromSettings(settings)
		if err != nil {
			return err
		}

		history = append(history, record)
		if len(history) > domain.AutoMergeHistoryCap {
			history = history[len(history)-domain.AutoMergeHistoryCap:]
		}
		encoded, err := json.Marshal(history)
		if err != nil {
			return fmt.Errorf("encode auto-merge history: %w", err)
		}
		settings[domain.SettingsKeyAutoMergeHistory] = encoded

		raw, err := json.Marshal(settings)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}

		return tx.Exec(
			`UPDATE organizations SET settings = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			raw,
			orgID,
		).Error
	})
}

// findByIDLocked reads the org row under FOR UPDATE where the dialect
// has it; sqlite serializes writers on its own.
func findByIDLocked(tx *gorm.DB, id snowflake.ID) (*domain.Organization, error) {
	query := `SELECT id, name, slug, settings, created_at, updated_at
		 FROM organizations WHERE id = ?`
	if !strings.EqualFold(tx.Dialector.Name(), "sqlite") {
		query += " FOR UPDATE"
	}
	var org domain.Organization
	if err := tx.Raw(query, id).Scan(&org).Error; err != nil {
		return nil, err
	}
	if org.ID == 0 {
		return nil, nil
	}
	return &org, nil
}

func decodeSettings(raw []byte) (map[string]json.RawMessage, error) {
	settings := map[string]json.RawMessage{}
	if len(raw) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}

func historyFromSettings(settings map[string]json.RawMessage) ([]domain.AutoMergeRecord, error) {
	raw, ok := settings[domain.SettingsKeyAutoMergeHistory]
	if !ok {
		return nil, nil
	}
	var history []domain.AutoMergeRecord
	if err := json.Unmarshal(raw, &history); err != nil {
		return nil, fmt.Errorf("decode auto-merge history: %w", err)
	}
	return history, nil
}
