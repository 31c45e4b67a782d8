package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tributaryhq/tributary/internal/identity/domain"
	"github.com/tributaryhq/tributary/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, gdb *gorm.DB, identity *domain.Identity) error {
	identity.Value = strings.ToLower(strings.TrimSpace(identity.Value))
	if identity.Value == "" {
		return nil
	}

	err := gdb.WithContext(ctx).Create(identity).Error
	if err == nil {
		return nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return err
	}

	// The pair exists. Same contact: refresh when the new claim is
	// stronger. Different contact: distinguishable non-error outcome.
	existing, ferr := r.findByTypeValueGlobal(ctx, gdb, identity.Type, identity.Value)
	if ferr != nil {
		return ferr
	}
	if existing == nil {
		// Row vanished between insert and lookup; concurrent merge.
		return domain.ErrOwnedByOtherContact
	}
	if existing.ContactID != identity.ContactID {
		return domain.ErrOwnedByOtherContact
	}
	if identity.Confidence > existing.Confidence || (identity.Verified && !existing.Verified) {
		return gdb.WithContext(ctx).Exec(
			`UPDATE identities SET confidence = ?, verified = ?, updated_at = ? WHERE id = ?`,
			maxFloat(identity.Confidence, existing.Confidence),
			identity.Verified || existing.Verified,
			time.Now().UTC(),
			existing.ID,
		).Error
	}
	return nil
}

func (r *repo) FindByTypeValue(ctx context.Context, gdb *gorm.DB, orgID snowflake.ID, t domain.IdentityType, value string) (*domain.Identity, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return nil, nil
	}
	var identity domain.Identity
	err := gdb.WithContext(ctx).
		Where("org_id = ? AND type = ? AND value = ?", orgID, t, value).
		Limit(1).
		Find(&identity).Error
	if err != nil {
		return nil, err
	}
	if identity.ID == 0 {
		return nil, nil
	}
	return &identity, nil
}

func (r *repo) findByTypeValueGlobal(ctx context.Context, gdb *gorm.DB, t domain.IdentityType, value string) (*domain.Identity, error) {
	var identity domain.Identity
	err := gdb.WithContext(ctx).
		Where("type = ? AND value = ?", t, value).
		Limit(1).
		Find(&identity).Error
	if err != nil {
		return nil, err
	}
	if identity.ID == 0 {
		return nil, nil
	}
	return &identity, nil
}

func (r *repo) ListByContact(ctx context.Context, gdb *gorm.DB, orgID, contactID snowflake.ID) ([]domain.Identity, error) {
	var identities []domain.Identity
	err := gdb.WithContext(ctx).
		Where("org_id = ? AND contact_id = ?", orgID, contactID).
		Order("confidence desc, created_at asc").
		Find(&identities).Error
	if err != nil {
		return nil, err
	}
	return identities, nil
}

func (r *repo) FindOwnersOfPairs(ctx context.Context, gdb *gorm.DB, orgID snowflake.ID, pairs []domain.Pair) ([]domain.Identity, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	clause := gdb.Session(&gorm.Session{NewDB: true}).
		Where("type = ? AND value = ?", pairs[0].Type, strings.ToLower(pairs[0].Value))
	for _, pair := range pairs[1:] {
		clause = clause.Or("type = ? AND value = ?", pair.Type, strings.ToLower(pair.Value))
	}
	var identities []domain.Identity
	err := gdb.WithContext(ctx).
		Where("org_id = ?", orgID).
		Where(clause).
		Find(&identities).Error
	if err != nil {
		return nil, err
	}
	return identities, nil
}

func (r *repo) UpdateOwner(ctx context.Context, gdb *gorm.DB, id, contactID snowflake.ID) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE identities SET contact_id = ?, updated_at = ? WHERE id = ?`,
		contactID, time.Now().UTC(), id,
	).Error
}

func (r *repo) Delete(ctx context.Context, gdb *gorm.DB, id snowflake.ID) error {
	return gdb.WithContext(ctx).Exec(`DELETE FROM identities WHERE id = ?`, id).Error
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
