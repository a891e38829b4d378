// Package registry holds the pure binding lookups and state transitions
// applied to an in-memory document. Persistence is the caller's job: every
// operation that mutates a binding re-reads the document first and writes
// it back through the document store.
package registry

import "device-relay-bot/internal/domain"

// FindByChatID returns the first user whose binding points at chatID, or nil.
func FindByChatID(doc *domain.Document, chatID int64) *domain.User {
	if doc == nil {
		return nil
	}

	for _, user := range doc.Users {
		if user == nil || user.Binding == nil {
			continue
		}
		if user.Binding.ChatID == chatID && chatID != 0 {
			return user
		}
	}

	return nil
}

// FindPendingByActivationID returns the first user with a pending binding
// matching activationID, or nil. A binding that already activated with this
// id is active and therefore never matches again: the id is single-use.
func FindPendingByActivationID(doc *domain.Document, activationID string) *domain.User {
	if doc == nil || activationID == "" {
		return nil
	}

	for _, user := range doc.Users {
		if user == nil || user.Binding == nil {
			continue
		}
		binding := user.Binding
		if binding.Status == domain.StatusPending && binding.ActivationID == activationID {
			return user
		}
	}

	return nil
}

// Activate transitions the user's binding from pending to active and
// records the conversation identity. It reports whether the transition was
// applied; non-pending bindings are left untouched.
func Activate(user *domain.User, chatID int64, username string) bool {
	if user == nil || user.Binding == nil {
		return false
	}
	if user.Binding.Status != domain.StatusPending {
		return false
	}

	user.Binding.Status = domain.StatusActive
	user.Binding.ChatID = chatID
	user.Binding.Username = username

	return true
}

// MarkBlocked transitions an active binding to bot_blocked. It reports
// whether the document changed; marking an already blocked binding is a
// no-op so repeated permanent failures cause at most one write.
func MarkBlocked(user *domain.User) bool {
	if user == nil || user.Binding == nil {
		return false
	}
	if user.Binding.Status == domain.StatusBlocked {
		return false
	}

	user.Binding.Status = domain.StatusBlocked

	return true
}
