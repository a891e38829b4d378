package domain

// Binding lifecycle states as stored in the shared document.
const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusBlocked = "bot_blocked"
)

// Binding links an application user to one Telegram conversation.
type Binding struct {
	ActivationID string `json:"activationId,omitempty"`
	Status       string `json:"status"`
	ChatID       int64  `json:"chatId,omitempty"`
	Username     string `json:"username,omitempty"`
}

// User is one user record owned by the shared document.
type User struct {
	UserID   string   `json:"userId"`
	Nickname string   `json:"nickname"`
	Binding  *Binding `json:"telegramBinding,omitempty"`
}

// Document is the single persisted aggregate holding all user records.
// It is always fetched and replaced as a whole, never patched field-wise.
type Document struct {
	Users []*User `json:"users"`
}

// NewDocument returns an empty document with a non-nil user list.
func NewDocument() *Document {
	return &Document{Users: []*User{}}
}
