package delivery

import (
	"errors"
	"strings"

	telebot "gopkg.in/telebot.v3"
)

// permanentSignatures is the allow-list of failure descriptions meaning the
// destination conversation is gone for good. Matching by substring couples
// to the Bot API error texts; that fragility is confined to this file so
// the retry logic never inspects error strings itself.
var permanentSignatures = []string{
	"bot was blocked by the user",
	"user is deactivated",
	"chat not found",
	"Forbidden: bot was blocked by the user",
}

// Permanent reports whether err denotes a permanently unreachable
// destination. Known telebot sentinels are checked first; the substring
// scan remains as a fallback for wrapped or re-stringified errors.
func Permanent(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, telebot.ErrBlockedByUser) ||
		errors.Is(err, telebot.ErrUserIsDeactivated) ||
		errors.Is(err, telebot.ErrChatNotFound) {
		return true
	}

	msg := err.Error()
	for _, signature := range permanentSignatures {
		if strings.Contains(msg, signature) {
			return true
		}
	}

	return false
}
