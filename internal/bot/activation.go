package bot

import (
	"fmt"

	"device-relay-bot/internal/domain"
	"device-relay-bot/internal/registry"
)

// Replies sent by the /start flow. The activation outcome is decided purely
// on the in-memory document; persistence happens afterwards at the handler.
const (
	replyUseLink       = "To enable notifications, please use the personal link from your account page."
	replyAlreadyLinked = "This Telegram account is already linked to a profile. You cannot activate another code."
	replyInvalidCode   = "❌ Invalid or already used activation code."
	replyReadFailed    = "❌ Could not read the user database. Please try again later."
	replyWriteFailed   = "❌ Something went wrong while saving your data. Please try again later."
)

// startResult is the decision for one /start command. When User is non-nil
// the activation mutated the document and must be persisted; Reply is sent
// either way.
type startResult struct {
	Reply string
	User  *domain.User
}

// resolveStart applies the activation state machine to the document:
// pending → active on a matching single-use code, repeat activations are
// rejected without touching stored state.
func resolveStart(doc *domain.Document, chatID int64, username, activationID string) startResult {
	bound := registry.FindByChatID(doc, chatID)

	if bound != nil && activationID == "" {
		return startResult{Reply: fmt.Sprintf("👋 Hello, %s! Your account is already linked and active.", nicknameOf(bound))}
	}

	if activationID == "" {
		return startResult{Reply: replyUseLink}
	}

	if bound != nil {
		return startResult{Reply: replyAlreadyLinked}
	}

	user := registry.FindPendingByActivationID(doc, activationID)
	if user == nil {
		return startResult{Reply: replyInvalidCode}
	}

	registry.Activate(user, chatID, username)

	return startResult{
		Reply: fmt.Sprintf("✅ Welcome, %s! Notifications are now enabled.", user.Nickname),
		User:  user,
	}
}

func nicknameOf(user *domain.User) string {
	if user == nil || user.Nickname == "" {
		return "friend"
	}

	return user.Nickname
}
