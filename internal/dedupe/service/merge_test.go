package service

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"

	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
	"github.com/tributaryhq/tributary/internal/dedupe/domain"
	engagementdomain "github.com/tributaryhq/tributary/internal/engagement/domain"
)

func (f dedupeFixture) newSignal(t *testing.T, contactID snowflake.ID) {
	t.Helper()
	signal := engagementdomain.Signal{
		ID:             f.node.Generate(),
		OrgID:          f.orgID,
		ActorContactID: &contactID,
		Source:         "github",
		Kind:           "star",
		OccurredAt:     time.Now().UTC(),
	}
	if err := f.db.Create(&signal).Error; err != nil {
		t.Fatal(err)
	}
}

func TestMergeContactsReassignsEverything(t *testing.T) {
	f := setupDedupe(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	primary := f.newContact(t, "bob@acme.io", base, nil)
	dup := f.newContact(t, "bob@acme.io", base.Add(time.Hour), func(c *contactdomain.Contact) {
		c.Title = "Staff Engineer"
		c.City = "Berlin"
	})

	f.newSignal(t, primary.ID)
	f.newSignal(t, dup.ID)
	f.newSignal(t, dup.ID)

	activity := engagementdomain.Activity{
		ID:         f.node.Generate(),
		OrgID:      f.orgID,
		ContactID:  dup.ID,
		Kind:       "note",
		OccurredAt: base,
	}
	if err := f.db.Create(&activity).Error; err != nil {
		t.Fatal(err)
	}
	deal := engagementdomain.Deal{
		ID:        f.node.Generate(),
		OrgID:     f.orgID,
		ContactID: &dup.ID,
		Name:      "Expansion",
		Stage:     "open",
	}
	if err := f.db.Create(&deal).Error; err != nil {
		t.Fatal(err)
	}
	f.newIdentity(t, dup.ID, "GITHUB", "bobsmith")

	result, err := f.svc.MergeContacts(f.ctx, primary.ID, []snowflake.ID{dup.ID})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if result.Merged != 1 || len(result.Errors) != 0 {
		t.Fatalf("expected a clean single merge, got %+v", result)
	}

	// No engagement record lost; all now point at the primary.
	var signals int64
	f.db.Model(&engagementdomain.Signal{}).Where("actor_contact_id = ?", primary.ID).Count(&signals)
	if signals != 3 {
		t.Errorf("expected 3 signals on the primary, got %d", signals)
	}
	var activities int64
	f.db.Model(&engagementdomain.Activity{}).Where("contact_id = ?", primary.ID).Count(&activities)
	if activities != 1 {
		t.Errorf("expected the activity on the primary, got %d", activities)
	}
	var deals int64
	f.db.Model(&engagementdomain.Deal{}).Where("contact_id = ?", primary.ID).Count(&deals)
	if deals != 1 {
		t.Errorf("expected the deal on the primary, got %d", deals)
	}
	var identities int64
	f.db.Table("identities").Where("contact_id = ?", primary.ID).Count(&identities)
	if identities != 1 {
		t.Errorf("expected the github identity moved to the primary, got %d", identities)
	}

	// Field union: empty primary fields adopt the duplicate's values.
	var reloaded contactdomain.Contact
	if err := f.db.First(&reloaded, "id = ?", primary.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.Title != "Staff Engineer" || reloaded.City != "Berlin" {
		t.Errorf("expected field union to fill title and city, got %q / %q", reloaded.Title, reloaded.City)
	}

	// The duplicate is gone.
	var remaining int64
	f.db.Model(&contactdomain.Contact{}).Where("id = ?", dup.ID).Count(&remaining)
	if remaining != 0 {
		t.Error("duplicate contact still present after merge")
	}
}

func TestMergeContactsPrimaryFieldsWin(t *testing.T) {
	f := setupDedupe(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	primary := f.newContact(t, "bob@acme.io", base, func(c *contactdomain.Contact) {
		c.Title = "CTO"
	})
	dup := f.newContact(t, "bob@acme.io", base.Add(time.Hour), func(c *contactdomain.Contact) {
		c.Title = "Engineer"
	})

	if _, err := f.svc.MergeContacts(f.ctx, primary.ID, []snowflake.ID{dup.ID}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	var reloaded contactdomain.Contact
	if err := f.db.First(&reloaded, "id = ?", primary.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.Title != "CTO" {
		t.Errorf("primary's title must survive the merge, got %q", reloaded.Title)
	}
}

func TestMergeContactsSharedIdentityDiscarded(t *testing.T) {
	f := setupDedupe(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	primary := f.newContact(t, "bob@acme.io", base, nil)
	dup := f.newContact(t, "bob@acme.io", base.Add(time.Hour), nil)
	f.newIdentity(t, primary.ID, "EMAIL", "bob@acme.io")
	f.newIdentity(t, dup.ID, "EMAIL", "bob@acme.io")

	if _, err := f.svc.MergeContacts(f.ctx, primary.ID, []snowflake.ID{dup.ID}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	var identities int64
	f.db.Table("identities").Where("value = ?", "bob@acme.io").Count(&identities)
	if identities != 1 {
		t.Fatalf("expected a single identity row after the merge, got %d", identities)
	}
	var owner int64
	f.db.Table("identities").Where("value = ? AND contact_id = ?", "bob@acme.io", primary.ID).Count(&owner)
	if owner != 1 {
		t.Fatal("the surviving identity must belong to the primary")
	}
}

func (f dedupeFixture) newTag(t *testing.T, name string) engagementdomain.Tag {
	t.Helper()
	tag := engagementdomain.Tag{
		ID:    f.node.Generate(),
		OrgID: f.orgID,
		Name:  name,
	}
	if err := f.db.Create(&tag).Error; err != nil {
		t.Fatal(err)
	}
	return tag
}

func (f dedupeFixture) tagContact(t *testing.T, contactID, tagID snowflake.ID) {
	t.Helper()
	link := engagementdomain.ContactTag{
		ID:        f.node.Generate(),
		ContactID: contactID,
		TagID:     tagID,
	}
	if err := f.db.Create(&link).Error; err != nil {
		t.Fatal(err)
	}
}

func TestMergeContactsMovesTagsAndAdoptsCompany(t *testing.T) {
	f := setupDedupe(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	companyID := f.node.Generate()
	primary := f.newContact(t, "bob@acme.io", base, nil)
	dup := f.newContact(t, "bob@acme.io", base.Add(time.Hour), func(c *contactdomain.Contact) {
		c.CompanyID = &companyID
	})

	// One tag held by both sides, one only by the duplicate; the overlap
	// must not trip the unique (contact_id, tag_id) index.
	shared := f.newTag(t, "oss")
	distinct := f.newTag(t, "champion")
	f.tagContact(t, primary.ID, shared.ID)
	f.tagContact(t, dup.ID, shared.ID)
	f.tagContact(t, dup.ID, distinct.ID)

	result, err := f.svc.MergeContacts(f.ctx, primary.ID, []snowflake.ID{dup.ID})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if result.Merged != 1 || len(result.Errors) != 0 {
		t.Fatalf("expected a clean single merge, got %+v", result)
	}

	var primaryLinks int64
	f.db.Model(&engagementdomain.ContactTag{}).Where("contact_id = ?", primary.ID).Count(&primaryLinks)
	if primaryLinks != 2 {
		t.Errorf("expected the primary to hold both tags, got %d links", primaryLinks)
	}
	var dupLinks int64
	f.db.Model(&engagementdomain.ContactTag{}).Where("contact_id = ?", dup.ID).Count(&dupLinks)
	if dupLinks != 0 {
		t.Errorf("expected no tag links left on the duplicate, got %d", dupLinks)
	}
	var sharedLinks int64
	f.db.Model(&engagementdomain.ContactTag{}).Where("tag_id = ?", shared.ID).Count(&sharedLinks)
	if sharedLinks != 1 {
		t.Errorf("expected a single link for the shared tag, got %d", sharedLinks)
	}

	var reloaded contactdomain.Contact
	if err := f.db.First(&reloaded, "id = ?", primary.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.CompanyID == nil || *reloaded.CompanyID != companyID {
		t.Error("expected the primary to adopt the duplicate's company")
	}
}

func TestMergeContactsKeepsPrimaryCompany(t *testing.T) {
	f := setupDedupe(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	primaryCompany := f.node.Generate()
	dupCompany := f.node.Generate()
	primary := f.newContact(t, "bob@acme.io", base, func(c *contactdomain.Contact) {
		c.CompanyID = &primaryCompany
	})
	dup := f.newContact(t, "bob@acme.io", base.Add(time.Hour), func(c *contactdomain.Contact) {
		c.CompanyID = &dupCompany
	})

	if _, err := f.svc.MergeContacts(f.ctx, primary.ID, []snowflake.ID{dup.ID}); err != nil {
		t.Fatalf("merge: %v", err)
	}

	var reloaded contactdomain.Contact
	if err := f.db.First(&reloaded, "id = ?", primary.ID).Error; err != nil {
		t.Fatal(err)
	}
	if reloaded.CompanyID == nil || *reloaded.CompanyID != primaryCompany {
		t.Error("the primary's company link must survive the merge")
	}
}

func TestMergeContactsPartialFailure(t *testing.T) {
	f := setupDedupe(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	primary := f.newContact(t, "bob@acme.io", base, nil)
	dup := f.newContact(t, "bob@acme.io", base.Add(time.Hour), nil)
	unknown := f.node.Generate()

	result, err := f.svc.MergeContacts(f.ctx, primary.ID, []snowflake.ID{dup.ID, unknown})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if result.Merged != 1 {
		t.Errorf("expected the known duplicate merged, got %d", result.Merged)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one per-duplicate error, got %v", result.Errors)
	}
}

func TestMergeContactsGuards(t *testing.T) {
	f := setupDedupe(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	contact := f.newContact(t, "bob@acme.io", base, nil)

	if _, err := f.svc.MergeContacts(f.ctx, contact.ID, nil); err != domain.ErrNoDuplicates {
		t.Errorf("expected ErrNoDuplicates, got %v", err)
	}
	if _, err := f.svc.MergeContacts(f.ctx, contact.ID, []snowflake.ID{contact.ID}); err != domain.ErrPrimaryInDuplicates {
		t.Errorf("expected ErrPrimaryInDuplicates, got %v", err)
	}
	if _, err := f.svc.MergeContacts(f.ctx, f.node.Generate(), []snowflake.ID{contact.ID}); err != domain.ErrPrimaryNotFound {
		t.Errorf("expected ErrPrimaryNotFound, got %v", err)
	}
}

func TestMergeContactsCrossTenantDuplicateRejected(t *testing.T) {
	f := setupDedupe(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	primary := f.newContact(t, "bob@acme.io", base, nil)
	foreign := contactdomain.Contact{
		ID:    f.node.Generate(),
		OrgID: f.node.Generate(),
		Email: "bob@acme.io",
	}
	if err := f.db.Create(&foreign).Error; err != nil {
		t.Fatal(err)
	}

	result, err := f.svc.MergeContacts(f.ctx, primary.ID, []snowflake.ID{foreign.ID})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if result.Merged != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected the foreign contact rejected, got %+v", result)
	}

	var remaining int64
	f.db.Model(&contactdomain.Contact{}).Where("id = ?", foreign.ID).Count(&remaining)
	if remaining != 1 {
		t.Fatal("another tenant's contact must never be touched")
	}
}
