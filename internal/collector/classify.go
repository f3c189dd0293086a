// Package collector implements the update ingestion pipeline: duplicate
// suppression, user and chat resolution, update classification, and event
// persistence.
package collector

import (
	"github.com/go-telegram/bot/models"
)

// UpdateType labels the payload kind carried by a Telegram update.
type UpdateType string

// Update types, in classification priority order. The Bot API populates
// exactly one payload field per update; the fixed probe order below resolves
// any future overlap deterministically.
const (
	TypeMessage            UpdateType = "message"
	TypeEditedMessage      UpdateType = "edited_message"
	TypeChannelPost        UpdateType = "channel_post"
	TypeEditedChannelPost  UpdateType = "edited_channel_post"
	TypeCallbackQuery      UpdateType = "callback_query"
	TypeInlineQuery        UpdateType = "inline_query"
	TypeChosenInlineResult UpdateType = "chosen_inline_result"
	TypeShippingQuery      UpdateType = "shipping_query"
	TypePreCheckoutQuery   UpdateType = "pre_checkout_query"
	TypePoll               UpdateType = "poll"
	TypePollAnswer         UpdateType = "poll_answer"
	TypeMyChatMember       UpdateType = "my_chat_member"
	TypeChatMember         UpdateType = "chat_member"
	TypeChatJoinRequest    UpdateType = "chat_join_request"
	TypeUnknown            UpdateType = "unknown"
)

// Classify determines the update kind and extracts its textual payload, if
// any. It probes payload fields in a fixed priority order and returns the
// first match, or TypeUnknown when none is present (including a nil update).
//
// Text is extracted verbatim: message and edited_message yield the message
// text, callback_query yields its data string, every other kind yields nil.
// Classify is pure and never fails.
func Classify(u *models.Update) (UpdateType, *string) {
	if u == nil {
		return TypeUnknown, nil
	}

	switch {
	case u.Message != nil:
		return TypeMessage, textOrNil(u.Message.Text)
	case u.EditedMessage != nil:
		return TypeEditedMessage, textOrNil(u.EditedMessage.Text)
	case u.ChannelPost != nil:
		return TypeChannelPost, nil
	case u.EditedChannelPost != nil:
		return TypeEditedChannelPost, nil
	case u.CallbackQuery != nil:
		return TypeCallbackQuery, textOrNil(u.CallbackQuery.Data)
	case u.InlineQuery != nil:
		return TypeInlineQuery, nil
	case u.ChosenInlineResult != nil:
		return TypeChosenInlineResult, nil
	case u.ShippingQuery != nil:
		return TypeShippingQuery, nil
	case u.PreCheckoutQuery != nil:
		return TypePreCheckoutQuery, nil
	case u.Poll != nil:
		return TypePoll, nil
	case u.PollAnswer != nil:
		return TypePollAnswer, nil
	case u.MyChatMember != nil:
		return TypeMyChatMember, nil
	case u.ChatMember != nil:
		return TypeChatMember, nil
	case u.ChatJoinRequest != nil:
		return TypeChatJoinRequest, nil
	default:
		return TypeUnknown, nil
	}
}

func textOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
