// Package models defines the GORM-mapped rows persisted by the honeypot:
// authentication attempts, typed commands, sessions, captured file uploads,
// and the reputation/geolocation enrichment caches.
package models

import "time"

// AllModels lists every model for AutoMigrate, in dependency order.
func AllModels() []any {
	return []any{
		&AuthAttempt{},
		&Command{},
		&Session{},
		&FileUpload{},
		&ReputationCacheEntry{},
		&GeolocationCacheEntry{},
	}
}

// AuthMethod identifies how credentials were offered.
type AuthMethod string

const (
	AuthMethodPassword  AuthMethod = "password"
	AuthMethodPublicKey AuthMethod = "publickey"
)

// AuthAttempt is recorded on every authentication callback, before the
// accept/reject decision is made, so rejected credentials are captured too.
type AuthAttempt struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	Timestamp     time.Time  `gorm:"index;not null" json:"timestamp"`
	RemoteAddress string     `gorm:"index;not null;size:64" json:"remote_address"`
	Username      string     `gorm:"index;not null;size:256" json:"username"`
	Method        AuthMethod `gorm:"not null;size:16" json:"method"`
	Password      *string    `gorm:"size:256" json:"password,omitempty"`
	KeyFingerprint *string   `gorm:"size:128" json:"key_fingerprint,omitempty"`

	// Accepted reflects the server's accept-policy decision recorded at the
	// time of the attempt (always true unless reject_all_auth or the CLI
	// interface is disabled), not whether the offered credentials were
	// genuinely valid — this honeypot accepts everything by design.
	Accepted bool `gorm:"not null" json:"accepted"`
}

func (AuthAttempt) TableName() string { return "auth_attempts" }

// Command is a single line committed by the line editor and run through the
// dispatcher, recorded verbatim (post-line-edit, pre-interpretation).
type Command struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	AuthID     string    `gorm:"index;not null;size:36" json:"auth_id"`
	Timestamp  time.Time `gorm:"index;not null" json:"timestamp"`
	Text       string    `gorm:"type:text;not null" json:"text"`
}

func (Command) TableName() string { return "commands" }

// Session spans one accepted auth attempt's interactive shell lifetime.
// At most one Session exists per AuthAttempt, hence the shared primary key.
type Session struct {
	AuthID     string    `gorm:"primaryKey;size:36" json:"auth_id"`
	StartedAt  time.Time `gorm:"not null" json:"started_at"`
	EndedAt    time.Time `gorm:"not null" json:"ended_at"`
	DurationMs int64     `gorm:"not null" json:"duration_ms"`
}

func (Session) TableName() string { return "sessions" }

// FileUpload records one SFTP upload's forensic metadata. The upload path
// always inlines the bytes in Content; BlobKey is not set by it.
type FileUpload struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	AuthID         string    `gorm:"index;not null;size:36" json:"auth_id"`
	Timestamp      time.Time `gorm:"index;not null" json:"timestamp"`
	Filename       string    `gorm:"not null;size:512" json:"filename"`
	Path           string    `gorm:"not null;size:1024" json:"path"`
	Size           int64     `gorm:"not null" json:"size"`
	SHA256         string    `gorm:"index;not null;size:64" json:"sha256"`
	ClaimedMIME    string    `gorm:"size:128" json:"claimed_mime,omitempty"`
	DetectedMIME   string    `gorm:"size:128" json:"detected_mime,omitempty"`
	FormatMismatch bool      `gorm:"not null" json:"format_mismatch"`
	Entropy        float64   `gorm:"not null" json:"entropy"`
	Content        []byte    `gorm:"type:blob" json:"-"`
	BlobKey        string    `gorm:"size:256" json:"blob_key,omitempty"`
}

func (FileUpload) TableName() string { return "file_uploads" }

// ReputationCacheEntry is a TTL-governed cache row for AbuseIPDB lookups.
type ReputationCacheEntry struct {
	IP               string    `gorm:"primaryKey;size:64" json:"ip"`
	FetchedAt        time.Time `gorm:"not null" json:"fetched_at"`
	AbuseScore       int       `gorm:"not null" json:"abuse_score"`
	CountryCode      string    `gorm:"size:8" json:"country_code,omitempty"`
	IsTor            bool      `gorm:"not null" json:"is_tor"`
	IsWhitelisted    bool      `gorm:"not null" json:"is_whitelisted"`
	TotalReports     int       `gorm:"not null" json:"total_reports"`
	ResponseBlob     string    `gorm:"type:text" json:"response_blob,omitempty"`
}

func (ReputationCacheEntry) TableName() string { return "reputation_cache" }

// GeolocationCacheEntry is a TTL-governed cache row for ip-api.com lookups.
type GeolocationCacheEntry struct {
	IP           string    `gorm:"primaryKey;size:64" json:"ip"`
	FetchedAt    time.Time `gorm:"not null" json:"fetched_at"`
	Country      string    `gorm:"size:128" json:"country,omitempty"`
	Region       string    `gorm:"size:16" json:"region,omitempty"`
	RegionName   string    `gorm:"size:128" json:"region_name,omitempty"`
	City         string    `gorm:"size:128" json:"city,omitempty"`
	Zip          string    `gorm:"size:32" json:"zip,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Timezone     string    `gorm:"size:64" json:"timezone,omitempty"`
	ISP          string    `gorm:"size:256" json:"isp,omitempty"`
	Organization string    `gorm:"size:256" json:"organization,omitempty"`
	AS           string    `gorm:"size:256" json:"as,omitempty"`
	ResponseBlob string    `gorm:"type:text" json:"response_blob,omitempty"`
}

func (GeolocationCacheEntry) TableName() string { return "geolocation_cache" }

// EnrichedAuthRow is the shape of the auth/reputation/geolocation join used
// by the report generator.
type EnrichedAuthRow struct {
	AuthAttempt
	ReputationAbuseScore  *int
	ReputationCountryCode *string
	GeoCountry            *string
	GeoCity               *string
	GeoISP                *string
}
