package service

import (
	"context"
	"errors"
	"log/slog"

	"izakayabot/internal/biz/domain"
	"izakayabot/internal/biz/repo"
	"izakayabot/internal/biz/usecase"
)

// Outcome classifies what Dispatch did with an event
type Outcome int

const (
	OutcomeIgnored Outcome = iota
	OutcomeArchivedForeign
	OutcomeArchivedRole
	OutcomeCommand
	OutcomeInvalid
	OutcomeUnrecognized
)

// Dispatcher classifies one inbound message and routes it to the
// matching handler. It holds no connection state, so it is directly
// testable without a live session.
type Dispatcher struct {
	botID       string
	archiveUC   *usecase.ArchiveUsecase
	reactionUC  *usecase.ReactionUsecase
	messageRepo repo.MessageRepo
	logger      *slog.Logger
}

// NewDispatcher creates a dispatcher. botID is the bot's own user ID,
// used both to drop self-authored messages and to strip mentions.
func NewDispatcher(botID string, archiveUC *usecase.ArchiveUsecase, reactionUC *usecase.ReactionUsecase, messageRepo repo.MessageRepo, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		botID:       botID,
		archiveUC:   archiveUC,
		reactionUC:  reactionUC,
		messageRepo: messageRepo,
		logger:      logger.With("component", "dispatcher"),
	}
}

// Dispatch handles a single inbound message: archive-trigger predicates
// first, then the mention-command path. Events failing the archive
// predicates fall through to the mention path untouched.
func (d *Dispatcher) Dispatch(ctx context.Context, msg *domain.Message) Outcome {
	if msg.Author.ID == d.botID {
		return OutcomeIgnored
	}

	if d.archiveUC.MatchesForeignTrigger(msg) {
		d.archiveUC.HandleForeignTrigger(ctx, msg)
		return OutcomeArchivedForeign
	}
	if d.archiveUC.MatchesRoleTrigger(ctx, msg) {
		d.archiveUC.HandleRoleTrigger(ctx, msg)
		return OutcomeArchivedRole
	}

	body, mentioned := domain.StripMention(msg.Content, d.botID)
	if !mentioned {
		return OutcomeIgnored
	}

	cmd, err := domain.ParseCommand(body)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			d.logger.Info("rejected command", "input", ve.Input)
			if _, serr := d.messageRepo.SendText(ctx, msg.ChannelID, ve.Advice); serr != nil {
				d.logger.Error("failed to send validation reply", "error", serr)
			}
			return OutcomeInvalid
		}
		d.logger.Error("parse error", "error", err)
		return OutcomeIgnored
	}

	switch cmd.Kind {
	case domain.KindDateRange:
		if err := d.reactionUC.PostDateRange(ctx, msg.ChannelID, msg.ID, cmd); err != nil {
			d.logger.Error("date range command failed", "error", err)
		}
		return OutcomeCommand
	case domain.KindNumberedReactions:
		if err := d.reactionUC.AddNumberedReactions(ctx, msg.ChannelID, msg.ID, cmd.Count); err != nil {
			d.logger.Error("numbered reactions failed", "error", err)
		}
		return OutcomeCommand
	case domain.KindDefaultReactions:
		if err := d.reactionUC.AddDefaultReactions(ctx, msg.ChannelID, msg.ID); err != nil {
			d.logger.Error("default reactions failed", "error", err)
		}
		return OutcomeCommand
	default:
		// unrecognized bodies are ignored on purpose
		return OutcomeUnrecognized
	}
}
