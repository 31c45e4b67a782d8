package domain

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// SignalInput is the partial identity payload a connector hands the
// resolution cascade. Unknown connector-specific fields ride along in
// Extra and are ignored by matching.
type SignalInput struct {
	Email         string         `json:"email,omitempty"`
	GithubHandle  string         `json:"github_handle,omitempty"`
	NpmHandle     string         `json:"npm_handle,omitempty"`
	CompanyName   string         `json:"company_name,omitempty"`
	CompanyDomain string         `json:"company_domain,omitempty"`
	GithubOrg     string         `json:"github_org,omitempty"`
	FirstName     string         `json:"first_name,omitempty"`
	LastName      string         `json:"last_name,omitempty"`
	Avatar        string         `json:"avatar,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// Normalized returns a copy with handles and addresses lower-cased and
// trimmed.
func (in SignalInput) Normalized() SignalInput {
	out := in
	out.Email = strings.ToLower(strings.TrimSpace(in.Email))
	out.GithubHandle = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(in.GithubHandle, "@")))
	out.NpmHandle = strings.ToLower(strings.TrimSpace(in.NpmHandle))
	out.CompanyDomain = strings.ToLower(strings.TrimSpace(in.CompanyDomain))
	out.GithubOrg = strings.TrimSpace(in.GithubOrg)
	out.CompanyName = strings.TrimSpace(in.CompanyName)
	out.FirstName = strings.TrimSpace(in.FirstName)
	out.LastName = strings.TrimSpace(in.LastName)
	out.Avatar = strings.TrimSpace(in.Avatar)
	return out
}

// Sufficient reports whether the signal set is strong enough to justify
// creating a new contact.
func (in SignalInput) Sufficient() bool {
	return in.Email != "" || in.GithubHandle != "" || in.NpmHandle != ""
}

// EmailDomain returns the domain part of the email, or "".
func (in SignalInput) EmailDomain() string {
	at := strings.LastIndexByte(in.Email, '@')
	if at < 0 || at == len(in.Email)-1 {
		return ""
	}
	return in.Email[at+1:]
}

// Pairs lists the identity facts implied by the input.
func (in SignalInput) Pairs() []Pair {
	var pairs []Pair
	if in.Email != "" {
		pairs = append(pairs, Pair{Type: TypeEmail, Value: in.Email})
	}
	if in.GithubHandle != "" {
		pairs = append(pairs, Pair{Type: TypeGithub, Value: in.GithubHandle})
	}
	if in.NpmHandle != "" {
		pairs = append(pairs, Pair{Type: TypeNpm, Value: in.NpmHandle})
	}
	return pairs
}

// Resolution is the cascade's answer: who and where, with how much trust.
type Resolution struct {
	ContactID        snowflake.ID `json:"contact_id,omitempty"`
	CompanyID        snowflake.ID `json:"company_id,omitempty"`
	Confidence       float64      `json:"confidence"`
	Source           string       `json:"source"`
	IsNew            bool         `json:"is_new"`
	IdentitiesStored int          `json:"identities_stored"`
}

// Graph is the read-only inspection view of one contact's identity state.
type Graph struct {
	Contact    GraphContact  `json:"contact"`
	Company    *GraphCompany `json:"company,omitempty"`
	Identities []Identity    `json:"identities"`
}

type GraphContact struct {
	ID     snowflake.ID `json:"id"`
	Name   string       `json:"name"`
	Email  string       `json:"email,omitempty"`
	Github string       `json:"github,omitempty"`
	Npm    string       `json:"npm,omitempty"`
}

type GraphCompany struct {
	ID     snowflake.ID `json:"id"`
	Name   string       `json:"name"`
	Domain string       `json:"domain,omitempty"`
}

type Service interface {
	// Resolve maps a partial signal to a contact and company, creating
	// them when the rules allow, and persists the implied identities.
	Resolve(ctx context.Context, in SignalInput) (Resolution, error)
	// GetGraph returns the contact's stored identity state, identities
	// sorted by confidence descending. Pure read.
	GetGraph(ctx context.Context, contactID snowflake.ID) (Graph, error)
}
