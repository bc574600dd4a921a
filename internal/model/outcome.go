package model

import "time"

// SendStatus classifies one notification attempt.
type SendStatus string

const (
	SendStatusSent   SendStatus = "Sent"
	SendStatusFailed SendStatus = "Failed"
)

// Channel is the human-facing label for a contact type on the ledger.
type Channel string

const (
	ChannelCallSMS Channel = "Call/SMS"
	ChannelEmail   Channel = "Email"
)

// ChannelFor maps a contact type to its ledger label.
func ChannelFor(t ContactType) Channel {
	if t == ContactTypeEmail {
		return ChannelEmail
	}
	return ChannelCallSMS
}

// NotificationOutcome is one row of the dispatch ledger. Rows are append-only
// for the life of a batch and cleared only on workflow reset. The csv tags fix
// the exported report columns.
type NotificationOutcome struct {
	ID        string     `json:"id" csv:"id"`
	Name      string     `json:"name" csv:"name"`
	Contact   string     `json:"contact" csv:"contact"`
	Channel   Channel    `json:"type" csv:"type"`
	Timestamp string     `json:"timestamp" csv:"timestamp"`
	Status    SendStatus `json:"status" csv:"status"`
	Response  string     `json:"response" csv:"response"`
}

// LedgerTimestamp formats t the way the notification report expects.
func LedgerTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
