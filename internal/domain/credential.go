package domain

import "time"

// Credential is the persisted record of an issued API token. The signed
// token itself is authoritative for identity and expiry; this record is
// authoritative for current validity (revocation) and admin status.
type Credential struct {
	Token     string    `json:"token"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// UsageRecord captures one invocation of a gated capability by a token.
// Records are append-only.
type UsageRecord struct {
	Token     string    `json:"token"`
	Endpoint  string    `json:"endpoint"`
	Timestamp time.Time `json:"timestamp"`
}
