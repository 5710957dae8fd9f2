package domain

import "time"

// AuthEventKind classifies an entry of the authentication audit trail.
type AuthEventKind string

const (
	AuthEventLogin       AuthEventKind = "login"
	AuthEventLoginFailed AuthEventKind = "login_failed"
	AuthEventLogout      AuthEventKind = "logout"
	AuthEventDenied      AuthEventKind = "denied"
	AuthEventRenewed     AuthEventKind = "renewed"
)

// AuthEvent records a single authentication or authorization decision.
type AuthEvent struct {
	Kind      AuthEventKind
	AccountID string
	Email     string
	Role      string
	Reason    string
	RemoteIP  string
	Path      string
	Timestamp time.Time
}

// ShardKey picks the value used to keep one actor's events in order.
func (e AuthEvent) ShardKey() string {
	if e.AccountID != "" {
		return e.AccountID
	}
	return e.Email
}
