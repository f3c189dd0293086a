package collector

import (
	"github.com/go-telegram/bot/models"
)

// ActorOf returns the user that originated the update, or nil when the
// update kind carries no sender (channel posts, polls).
func ActorOf(u *models.Update) *models.User {
	if u == nil {
		return nil
	}

	switch {
	case u.Message != nil:
		return u.Message.From
	case u.EditedMessage != nil:
		return u.EditedMessage.From
	case u.ChannelPost != nil:
		return u.ChannelPost.From
	case u.EditedChannelPost != nil:
		return u.EditedChannelPost.From
	case u.CallbackQuery != nil:
		return &u.CallbackQuery.From
	case u.InlineQuery != nil:
		return u.InlineQuery.From
	case u.ChosenInlineResult != nil:
		return &u.ChosenInlineResult.From
	case u.ShippingQuery != nil:
		return u.ShippingQuery.From
	case u.PreCheckoutQuery != nil:
		return u.PreCheckoutQuery.From
	case u.PollAnswer != nil:
		return u.PollAnswer.User
	case u.MyChatMember != nil:
		return &u.MyChatMember.From
	case u.ChatMember != nil:
		return &u.ChatMember.From
	case u.ChatJoinRequest != nil:
		return &u.ChatJoinRequest.From
	default:
		return nil
	}
}

// ChatOf returns the chat the update occurred in, or nil when the update
// kind has no chat context (inline queries, polls, payment queries).
func ChatOf(u *models.Update) *models.Chat {
	if u == nil {
		return nil
	}

	switch {
	case u.Message != nil:
		return &u.Message.Chat
	case u.EditedMessage != nil:
		return &u.EditedMessage.Chat
	case u.ChannelPost != nil:
		return &u.ChannelPost.Chat
	case u.EditedChannelPost != nil:
		return &u.EditedChannelPost.Chat
	case u.CallbackQuery != nil:
		if m := u.CallbackQuery.Message.Message; m != nil {
			return &m.Chat
		}
		if im := u.CallbackQuery.Message.InaccessibleMessage; im != nil {
			return &im.Chat
		}
		return nil
	case u.PollAnswer != nil:
		return u.PollAnswer.VoterChat
	case u.MyChatMember != nil:
		return &u.MyChatMember.Chat
	case u.ChatMember != nil:
		return &u.ChatMember.Chat
	case u.ChatJoinRequest != nil:
		return &u.ChatJoinRequest.Chat
	default:
		return nil
	}
}
