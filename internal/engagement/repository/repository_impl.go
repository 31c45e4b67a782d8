package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tributaryhq/tributary/internal/engagement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ReassignSignals(ctx context.Context, tx *gorm.DB, orgID, from, to snowflake.ID) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE signals SET actor_contact_id = ? WHERE org_id = ? AND actor_contact_id = ?`,
		to, orgID, from,
	).Error
}

func (r *repo) ReassignActivities(ctx context.Context, tx *gorm.DB, orgID, from, to snowflake.ID) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE activities SET contact_id = ? WHERE org_id = ? AND contact_id = ?`,
		to, orgID, from,
	).Error
}

func (r *repo) ReassignDeals(ctx context.Context, tx *gorm.DB, orgID, from, to snowflake.ID) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE deals SET contact_id = ? WHERE org_id = ? AND contact_id = ?`,
		to, orgID, from,
	).Error
}

func (r *repo) ReassignEnrollments(ctx context.Context, tx *gorm.DB, orgID, from, to snowflake.ID) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE email_enrollments SET contact_id = ? WHERE org_id = ? AND contact_id = ?`,
		to, orgID, from,
	).Error
}

func (r *repo) MoveTags(ctx context.Context, tx *gorm.DB, from, to snowflake.ID) error {
	// Repoint links the target does not hold yet, then drop the rest so
	// the unique (contact_id, tag_id) index never trips.
	err := tx.WithContext(ctx).Exec(
		`UPDATE contact_tags SET contact_id = ?
		 WHERE contact_id = ?
		   AND tag_id NOT IN (SELECT tag_id FROM (SELECT tag_id FROM contact_tags WHERE contact_id = ?) AS held)`,
		to, from, to,
	).Error
	if err != nil {
		return err
	}
	return tx.WithContext(ctx).Exec(
		`DELETE FROM contact_tags WHERE contact_id = ?`,
		from,
	).Error
}

func (r *repo) CountSignalsByContact(ctx context.Context, db *gorm.DB, orgID, contactID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Signal{}).
		Where("org_id = ? AND actor_contact_id = ?", orgID, contactID).
		Count(&count).Error
	return count, err
}
