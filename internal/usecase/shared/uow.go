package shared

import (
	"context"
	"time"

	"github.com/enviofleett/smallchops-09-sub001/internal/domain/checkout"
	"github.com/enviofleett/smallchops-09-sub001/internal/domain/payment"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to reference data outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Completions() CompletionRepository
	Notifications() NotificationRepository
	Reads() CommandReads
}

type CommandReads interface {
	ZoneByID(ctx context.Context, id uuid.UUID) (*ZoneSnapshot, error)
	PickupPointByID(ctx context.Context, id uuid.UUID) (*PickupPointSnapshot, error)
	CompletionByReference(ctx context.Context, reference string) (*CompletionRecord, error)
}

// CompletionRepository is the durable at-most-once ledger of completed payments.
type CompletionRepository interface {
	// Claim returns false when the reference was already completed.
	Claim(ctx context.Context, rec CompletionRecord) (bool, error)
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]NotificationJob, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string, nextRunAt time.Time, dead bool) error
}

// SessionStore persists recovery snapshots and payment markers per checkout session.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
	Save(ctx context.Context, sessionID string, snap *Snapshot) error
	// Flush writes any pending debounced snapshot synchronously.
	Flush(ctx context.Context, sessionID string) error
	// AcquireInProgress marks a submission in flight; false means another one holds it.
	AcquireInProgress(ctx context.Context, sessionID string, attemptID uuid.UUID) (bool, error)
	ReleaseInProgress(ctx context.Context, sessionID string) error
	SetReference(ctx context.Context, sessionID, reference string) error
	SessionByReference(ctx context.Context, reference string) (string, error)
	// Reset removes every key of the session atomically.
	Reset(ctx context.Context, sessionID string) error
}

type CartStore interface {
	Items(ctx context.Context, sessionID string) ([]checkout.LineItem, error)
	Replace(ctx context.Context, sessionID string, items []checkout.LineItem) error
	Clear(ctx context.Context, sessionID string) error
}

// OrderBackend is the remote order API. Create and initialize return the raw body for normalization.
type OrderBackend interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) ([]byte, error)
	InitializePayment(ctx context.Context, req InitializePaymentRequest) ([]byte, error)
	VerifyPayment(ctx context.Context, reference string) (*payment.Verification, error)
}

type FulfillmentDirectory interface {
	ActiveZones(ctx context.Context) ([]ZoneSnapshot, error)
	ActivePickupPoints(ctx context.Context) ([]PickupPointSnapshot, error)
}
