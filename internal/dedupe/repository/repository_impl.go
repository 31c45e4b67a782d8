package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
	"github.com/tributaryhq/tributary/internal/dedupe/domain"
	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) DuplicateEmails(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]string, error) {
	var emails []string
	err := db.WithContext(ctx).Raw(
		`SELECT LOWER(email) AS email
		 FROM contacts
		 WHERE org_id = ? AND email IS NOT NULL AND email <> ''
		 GROUP BY LOWER(email)
		 HAVING COUNT(*) > 1
		 ORDER BY email
		 LIMIT ?`,
		orgID, limit,
	).Scan(&emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *repo) ContactsByEmail(ctx context.Context, db *gorm.DB, orgID snowflake.ID, email string) ([]contactdomain.Contact, error) {
	var contacts []contactdomain.Contact
	err := db.WithContext(ctx).
		Where("org_id = ? AND LOWER(email) = ?", orgID, strings.ToLower(email)).
		Order("created_at asc, id asc").
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *repo) DuplicateIdentityPairs(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]identitydomain.Pair, error) {
	var pairs []identitydomain.Pair
	err := db.WithContext(ctx).Raw(
		`SELECT type, value
		 FROM identities
		 WHERE org_id = ?
		 GROUP BY type, value
		 HAVING COUNT(DISTINCT contact_id) > 1
		 ORDER BY type, value
		 LIMIT ?`,
		orgID, limit,
	).Scan(&pairs).Error
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func (r *repo) ContactsByIdentityPair(ctx context.Context, db *gorm.DB, orgID snowflake.ID, pair identitydomain.Pair) ([]contactdomain.Contact, error) {
	var contacts []contactdomain.Contact
	err := db.WithContext(ctx).Raw(
		`SELECT c.*
		 FROM contacts c
		 JOIN identities i ON i.contact_id = c.id
		 WHERE i.org_id = ? AND i.type = ? AND i.value = ?
		 ORDER BY c.created_at asc, c.id asc`,
		orgID, pair.Type, strings.ToLower(pair.Value),
	).Scan(&contacts).Error
	if err != nil {
		return nil, err
	}
	return contacts, nil
}
