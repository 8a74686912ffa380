// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "chambers/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing an ArticleID where a TagID is expected.
type (
	AdminUserID uuid.UUID
	ArticleID   uuid.UUID
	TagID       uuid.UUID
	JobID       uuid.UUID
)

// IdentityID is the opaque principal reference issued by the identity
// provider. It is not a UUID we mint, so it stays a string.
type IdentityID string

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseAdminUserID(s string) (AdminUserID, error) {
	id, err := parseUUID(s, "admin user ID")
	return AdminUserID(id), err
}

func ParseArticleID(s string) (ArticleID, error) {
	id, err := parseUUID(s, "article ID")
	return ArticleID(id), err
}

func ParseTagID(s string) (TagID, error) {
	id, err := parseUUID(s, "tag ID")
	return TagID(id), err
}

func ParseJobID(s string) (JobID, error) {
	id, err := parseUUID(s, "job ID")
	return JobID(id), err
}

func ParseIdentityID(s string) (IdentityID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity ID cannot be empty")
	}
	return IdentityID(s), nil
}

// String methods - for logging and debugging.

func (id AdminUserID) String() string { return uuid.UUID(id).String() }
func (id ArticleID) String() string   { return uuid.UUID(id).String() }
func (id TagID) String() string       { return uuid.UUID(id).String() }
func (id JobID) String() string       { return uuid.UUID(id).String() }
func (id IdentityID) String() string  { return string(id) }

// New functions - mint fresh IDs.

func NewAdminUserID() AdminUserID { return AdminUserID(uuid.New()) }
func NewArticleID() ArticleID     { return ArticleID(uuid.New()) }
func NewTagID() TagID             { return TagID(uuid.New()) }
func NewJobID() JobID             { return JobID(uuid.New()) }

func parseUUID(s, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	return id, nil
}
