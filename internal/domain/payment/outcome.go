package payment

type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeFailure OutcomeKind = "failure"
	OutcomeCancel  OutcomeKind = "cancel"
)

// Channel is how a gateway result reached us.
type Channel string

const (
	ChannelPopup    Channel = "popup"
	ChannelRedirect Channel = "redirect"
	ChannelVerify   Channel = "verify"
	ChannelRecovery Channel = "recovery"
)

// Outcome is the single terminal result of an attempt.
type Outcome struct {
	Kind       OutcomeKind `json:"kind"`
	Channel    Channel     `json:"channel"`
	Reference  string      `json:"reference,omitempty"`
	Category   string      `json:"category,omitempty"`
	Message    string      `json:"message,omitempty"`
	Retryable  bool        `json:"retryable"`
	NavigateTo string      `json:"navigateTo,omitempty"`
}

// Verification is the backend's view of a payment reference.
type Verification struct {
	Reference   string
	Status      VerificationStatus
	AmountKobo  int64
	OrderID     string
	OrderNumber string
	PaidAt      string
	Message     string
}

type VerificationStatus string

const (
	VerificationSuccess   VerificationStatus = "success"
	VerificationFailed    VerificationStatus = "failed"
	VerificationAbandoned VerificationStatus = "abandoned"
	VerificationPending   VerificationStatus = "pending"
)

func (v VerificationStatus) IsTerminal() bool {
	return v == VerificationSuccess || v == VerificationFailed || v == VerificationAbandoned
}
