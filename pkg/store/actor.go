package store

import (
	"context"
	"time"

	"github.com/marmos91/glasshouse/internal/logger"
	"github.com/marmos91/glasshouse/pkg/store/models"
)

// QueueDepth bounds the persistence actor's inbound channel. Sends block
// when full: a stalled database is a louder failure than a silently
// dropped row.
const QueueDepth = 100

// Actor is the single goroutine that owns the database connection. All
// writes — and the two cache lookups that must see the latest data — flow
// through its inbox, processed strictly in arrival order.
type Actor struct {
	store *Store
	inbox chan Message
	done  chan struct{}
}

// NewActor wraps a Store with a bounded inbox and starts its run loop.
func NewActor(s *Store) *Actor {
	a := &Actor{
		store: s,
		inbox: make(chan Message, QueueDepth),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

// Send enqueues a message, blocking if the inbox is full.
func (a *Actor) Send(msg Message) {
	a.inbox <- msg
}

// Stopped is closed once the actor's run loop has exited after Shutdown.
func (a *Actor) Stopped() <-chan struct{} {
	return a.done
}

func (a *Actor) run() {
	defer close(a.done)
	for msg := range a.inbox {
		if shutdown, ok := msg.(Shutdown); ok {
			a.drainRemaining()
			if shutdown.Done != nil {
				close(shutdown.Done)
			}
			return
		}
		a.handle(msg)
	}
}

// drainRemaining processes whatever is already queued behind the Shutdown
// message before the actor exits, since Go channels preserve send order.
func (a *Actor) drainRemaining() {
	for {
		select {
		case msg := <-a.inbox:
			a.handle(msg)
		default:
			return
		}
	}
}

func (a *Actor) handle(msg Message) {
	switch m := msg.(type) {
	case RecordAuth:
		a.recordAuth(m)
	case RecordCommand:
		a.recordCommand(m)
	case RecordSession:
		a.recordSession(m)
	case RecordFileUpload:
		a.recordFileUpload(m)
	case GetAbuseIPCheck:
		a.getAbuseIPCheck(m)
	case RecordAbuseIPCheck:
		a.recordAbuseIPCheck(m)
	case GetIPAPICheck:
		a.getIPAPICheck(m)
	case RecordIPAPICheck:
		a.recordIPAPICheck(m)
	default:
		logger.Warn("persistence actor received unknown message type")
	}
}

func (a *Actor) recordAuth(m RecordAuth) {
	row := &models.AuthAttempt{
		ID:             m.ID,
		Timestamp:      m.Timestamp,
		RemoteAddress:  m.RemoteAddress,
		Username:       m.Username,
		Method:         models.AuthMethod(m.Method),
		Password:       m.Password,
		KeyFingerprint: m.KeyFingerprint,
		Accepted:       m.Accepted,
	}
	if err := a.store.db.Create(row).Error; err != nil {
		logger.Error("failed to record auth attempt", logger.AuthID(m.ID), logger.Err(err))
	}
}

func (a *Actor) recordCommand(m RecordCommand) {
	row := &models.Command{
		ID:        m.ID,
		AuthID:    m.AuthID,
		Timestamp: m.Timestamp,
		Text:      m.Text,
	}
	if err := a.store.db.Create(row).Error; err != nil {
		logger.Error("failed to record command", logger.AuthID(m.AuthID), logger.Err(err))
	}
}

func (a *Actor) recordSession(m RecordSession) {
	row := &models.Session{
		AuthID:     m.AuthID,
		StartedAt:  m.StartedAt,
		EndedAt:    m.EndedAt,
		DurationMs: m.DurationMs,
	}
	if err := a.store.db.Create(row).Error; err != nil {
		logger.Error("failed to record session", logger.AuthID(m.AuthID), logger.Err(err))
	}
}

func (a *Actor) recordFileUpload(m RecordFileUpload) {
	row := &models.FileUpload{
		ID:             m.ID,
		AuthID:         m.AuthID,
		Timestamp:      m.Timestamp,
		Filename:       m.Filename,
		Path:           m.Path,
		Size:           m.Size,
		SHA256:         m.SHA256,
		ClaimedMIME:    m.ClaimedMIME,
		DetectedMIME:   m.DetectedMIME,
		FormatMismatch: m.FormatMismatch,
		Entropy:        m.Entropy,
		Content:        m.Content,
		BlobKey:        m.BlobKey,
	}
	if err := a.store.db.Create(row).Error; err != nil {
		logger.Error("failed to record file upload", logger.AuthID(m.AuthID), logger.Err(err))
	}
}

func (a *Actor) getAbuseIPCheck(m GetAbuseIPCheck) {
	var row models.ReputationCacheEntry
	result := CacheLookupResult{}
	err := a.store.db.Where("ip = ?", m.IP).First(&row).Error
	if err == nil && time.Since(row.FetchedAt) < m.MaxAge {
		result = CacheLookupResult{Found: true, Entry: row}
	} else if err != nil && !isRecordNotFound(err) {
		logger.Error("failed to query reputation cache", logger.IP(m.IP), logger.Err(err))
	}
	m.ReplyCh <- result
}

func (a *Actor) recordAbuseIPCheck(m RecordAbuseIPCheck) {
	row := &models.ReputationCacheEntry{
		IP:            m.IP,
		FetchedAt:     m.FetchedAt,
		AbuseScore:    m.AbuseScore,
		CountryCode:   m.CountryCode,
		IsTor:         m.IsTor,
		IsWhitelisted: m.IsWhitelisted,
		TotalReports:  m.TotalReports,
		ResponseBlob:  m.ResponseBlob,
	}
	if err := a.store.db.Save(row).Error; err != nil {
		logger.Error("failed to upsert reputation cache", logger.IP(m.IP), logger.Err(err))
	}
}

func (a *Actor) getIPAPICheck(m GetIPAPICheck) {
	var row models.GeolocationCacheEntry
	result := CacheLookupResult{}
	err := a.store.db.Where("ip = ?", m.IP).First(&row).Error
	if err == nil && time.Since(row.FetchedAt) < m.MaxAge {
		result = CacheLookupResult{Found: true, Entry: row}
	} else if err != nil && !isRecordNotFound(err) {
		logger.Error("failed to query geolocation cache", logger.IP(m.IP), logger.Err(err))
	}
	m.ReplyCh <- result
}

func (a *Actor) recordIPAPICheck(m RecordIPAPICheck) {
	row := &models.GeolocationCacheEntry{
		IP:           m.IP,
		FetchedAt:    m.FetchedAt,
		Country:      m.Country,
		Region:       m.Region,
		RegionName:   m.RegionName,
		City:         m.City,
		Zip:          m.Zip,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		Timezone:     m.Timezone,
		ISP:          m.ISP,
		Organization: m.Organization,
		AS:           m.AS,
		ResponseBlob: m.ResponseBlob,
	}
	if err := a.store.db.Save(row).Error; err != nil {
		logger.Error("failed to upsert geolocation cache", logger.IP(m.IP), logger.Err(err))
	}
}

// Shutdown enqueues a Shutdown message and blocks until the actor has
// drained its queue and exited, or ctx is canceled.
func (a *Actor) Shutdown(ctx context.Context) {
	done := make(chan struct{})
	a.inbox <- Shutdown{Done: done}
	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("persistence actor shutdown timed out")
	}
}
