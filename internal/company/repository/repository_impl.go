package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tributaryhq/tributary/internal/company/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, company *domain.Company) error {
	return db.WithContext(ctx).Create(company).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Company, error) {
	var company domain.Company
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Limit(1).
		Find(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) FindByDomain(ctx context.Context, db *gorm.DB, orgID snowflake.ID, dom string) (*domain.Company, error) {
	dom = strings.ToLower(strings.TrimSpace(dom))
	if dom == "" {
		return nil, nil
	}
	var company domain.Company
	err := db.WithContext(ctx).
		Where("org_id = ? AND LOWER(domain) = ?", orgID, dom).
		Limit(1).
		Find(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) FindByGithubOrg(ctx context.Context, db *gorm.DB, orgID snowflake.ID, githubOrg string) (*domain.Company, error) {
	githubOrg = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(githubOrg, "@")))
	if githubOrg == "" {
		return nil, nil
	}
	var company domain.Company
	err := db.WithContext(ctx).
		Where("org_id = ? AND LOWER(github_org) = ?", orgID, githubOrg).
		Limit(1).
		Find(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, limit int) ([]domain.Company, error) {
	var companies []domain.Company
	err := db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at asc, id asc").
		Limit(limit).
		Find(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}
