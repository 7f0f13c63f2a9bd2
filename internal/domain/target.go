package domain

import (
	"time"
)

// TargetRecord is the stored association between an identifier, a destination URL
// and an optional password hash. Records are written once and never mutated.
type TargetRecord struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	URL          string    `gorm:"not null;type:text" json:"url"`
	PasswordHash *string   `gorm:"type:text" json:"password_hash,omitempty"` // nil for open records
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for GORM
func (TargetRecord) TableName() string {
	return "targets"
}

// IsProtected reports whether reading the record's stats requires a password
func (r *TargetRecord) IsProtected() bool {
	return r.PasswordHash != nil
}

// RedirectCounter counts redirects served for an identifier.
// A missing counter means zero redirects.
type RedirectCounter struct {
	ID    string `gorm:"primaryKey;size:32" json:"id"`
	Count int64  `gorm:"not null" json:"count"`
}

// TableName specifies the table name for GORM
func (RedirectCounter) TableName() string {
	return "redirect_counters"
}

// CreateTargetRequest is the payload for creating a tracked short link.
// Accepted as JSON or as an urlencoded/multipart form.
type CreateTargetRequest struct {
	ID       string `json:"id" form:"id"` // optional caller-chosen identifier
	URL      string `json:"url" form:"url"`
	Password string `json:"password" form:"password"` // empty means no password
}

// CreateTargetResponse is returned after a record has been stored
type CreateTargetResponse struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	ShortURL          string `json:"short_url"`
	RedirectPath      string `json:"redirect_path"`
	StatsPath         string `json:"stats_path"`
	PasswordProtected bool   `json:"password_protected"`
}

// StatsRequest carries the identifier and credential of a stats lookup.
// Pw is accepted as an alias of Password for the legacy login form.
type StatsRequest struct {
	ID       string `json:"id" form:"id"`
	Password string `json:"password" form:"password"`
	Pw       string `json:"pw" form:"pw"`
}

// Credential returns the supplied password, preferring the long field name
func (r *StatsRequest) Credential() string {
	if r.Password != "" {
		return r.Password
	}
	return r.Pw
}

// StatsResponse reports the redirect count of an identifier
type StatsResponse struct {
	ID    string `json:"id"`
	Count int64  `json:"count"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
