package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"izakayabot/internal/biz/domain"
	"izakayabot/internal/biz/repo"
)

// NumberEmojis is the ordered glyph table for num:N commands
var NumberEmojis = [10]string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣", "🔟"}

// AttendanceEmojis are the three fixed attendance reactions, in order
var AttendanceEmojis = [3]string{"⭕", "❌", "🔺"}

// ackEmoji acknowledges a date-range command on the triggering message
const ackEmoji = "✅"

// ReactionUsecase implements the mention-command side effects: the
// date-range day-label run and the reaction sets.
type ReactionUsecase struct {
	messageRepo repo.MessageRepo
	logger      *slog.Logger
	now         func() time.Time
}

// NewReactionUsecase creates a reaction usecase. now is injectable so
// date anchoring is deterministic in tests.
func NewReactionUsecase(messageRepo repo.MessageRepo, logger *slog.Logger, now func() time.Time) *ReactionUsecase {
	if now == nil {
		now = time.Now
	}
	return &ReactionUsecase{
		messageRepo: messageRepo,
		logger:      logger.With("component", "reactions"),
		now:         now,
	}
}

// PostDateRange acknowledges the triggering message, then posts one
// day-label message per day starting at the anchored date, attaching
// the three attendance reactions to each. Sends are not transactional:
// a failure leaves earlier days posted and is reported to the channel.
func (u *ReactionUsecase) PostDateRange(ctx context.Context, channelID, triggerMsgID string, cmd domain.Command) error {
	anchor, err := domain.AnchorDate(cmd.Month, cmd.Day, u.now())
	if err != nil {
		if ve, ok := err.(*domain.ValidationError); ok {
			u.logger.Info("date range rejected", "input", ve.Input)
			if _, serr := u.messageRepo.SendText(ctx, channelID, ve.Advice); serr != nil {
				u.logger.Error("failed to send validation reply", "error", serr)
			}
			return nil
		}
		return err
	}

	if rerr := u.messageRepo.AddReaction(ctx, channelID, triggerMsgID, ackEmoji); rerr != nil {
		u.logger.Warn("failed to ack date range", "error", rerr)
	}

	return u.PostDayLabels(ctx, channelID, anchor, cmd.Days)
}

// PostDayLabels posts `days` consecutive day-label messages starting at
// start, each followed by the three attendance reactions in order.
func (u *ReactionUsecase) PostDayLabels(ctx context.Context, channelID string, start time.Time, days int) error {
	for i := 0; i < days; i++ {
		label := domain.DayLabel(start.AddDate(0, 0, i))
		sent, err := u.messageRepo.SendText(ctx, channelID, label)
		if err != nil {
			u.logger.Error("failed to send day label", "label", label, "error", err)
			notice := fmt.Sprintf("メッセージの送信に失敗しました: `%s`", label)
			if _, serr := u.messageRepo.SendText(ctx, channelID, notice); serr != nil {
				u.logger.Error("failed to send failure notice", "error", serr)
			}
			return err
		}
		for _, emoji := range AttendanceEmojis {
			if rerr := u.messageRepo.AddReaction(ctx, sent.ChannelID, sent.ID, emoji); rerr != nil {
				u.logger.Warn("failed to add reaction", "emoji", emoji, "error", rerr)
			}
		}
	}
	return nil
}

// AddNumberedReactions attaches the first count glyphs of the number
// table, in table order, to the triggering message.
func (u *ReactionUsecase) AddNumberedReactions(ctx context.Context, channelID, msgID string, count int) error {
	for i := 0; i < count && i < len(NumberEmojis); i++ {
		if err := u.messageRepo.AddReaction(ctx, channelID, msgID, NumberEmojis[i]); err != nil {
			u.logger.Warn("failed to add numbered reaction", "emoji", NumberEmojis[i], "error", err)
			return err
		}
	}
	return nil
}

// AddDefaultReactions attaches the three attendance reactions to the
// triggering message without sending any new message.
func (u *ReactionUsecase) AddDefaultReactions(ctx context.Context, channelID, msgID string) error {
	for _, emoji := range AttendanceEmojis {
		if err := u.messageRepo.AddReaction(ctx, channelID, msgID, emoji); err != nil {
			u.logger.Warn("failed to add default reaction", "emoji", emoji, "error", err)
			return err
		}
	}
	return nil
}
