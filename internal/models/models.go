package models

// Header is a single name/value pair from a message's header list. Names are
// kept exactly as the provider returned them; "From", "FROM" and
// "Return-Path" all occur in real mailboxes.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MessageStub identifies a message in a listing page before the full message
// has been fetched.
type MessageStub struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
}

// Message is a fetched mail message reduced to what ingestion needs: the
// provider-assigned identifier and the ordered header list.
type Message struct {
	ID      string   `json:"id"`
	Headers []Header `json:"headers"`
}

// HeaderValue returns the value of the first header with the given name.
// The comparison is exact; callers that need case variants scan each variant
// separately.
func (m Message) HeaderValue(name string) (string, bool) {
	for _, h := range m.Headers {
		if h.Name == name {
			return h.Value, true
		}
	}
	return "", false
}

// SeenMail records a message identifier whose count has been durably applied.
// A row exists iff the message was processed exactly once; rows are never
// updated or deleted.
type SeenMail struct {
	MailID string `json:"mail_id" gorm:"column:mail_id;type:varchar(255);primaryKey"`
}

// TableName specifies the table name for SeenMail
func (SeenMail) TableName() string {
	return "seen_mails"
}

// Sender holds the cumulative message count for a canonical sender address.
type Sender struct {
	Sender    string `json:"sender" gorm:"column:sender;type:varchar(255);primaryKey"`
	MailsSent int64  `json:"mails_sent" gorm:"column:mails_sent;not null"`
}

// TableName specifies the table name for Sender
func (Sender) TableName() string {
	return "senders"
}
