package relay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/m-g-r/relay/composer"
	"github.com/m-g-r/relay/delivery"
	"github.com/m-g-r/relay/embedder"
	"github.com/m-g-r/relay/generator"
	"github.com/m-g-r/relay/history"
	"github.com/m-g-r/relay/profile"
	"github.com/m-g-r/relay/retriever"
)

// Stage names a step of the turn pipeline, for logging.
type Stage string

const (
	StageRetrieving Stage = "retrieving"
	StageGenerating Stage = "generating"
	StageDelivering Stage = "delivering"
	StagePersisting Stage = "persisting"
	StageDone       Stage = "done"
)

// Apology is the only failure text a sender ever sees. Internal error detail
// stays in the logs.
const Apology = "Sorry, something went wrong on our side. Please try again in a moment."

// Pipeline sequences one inbound turn: retrieve similar history, generate a
// reply, deliver it, then persist the completed exchange. Delivery comes
// before persistence, and a failure in either of those two stages is logged
// without undoing the other.
type Pipeline struct {
	options   Options
	retriever *retriever.Retriever
	generator generator.Generator
	embedder  embedder.Embedder
	store     history.Store
	delivery  delivery.Client
	profiles  profile.Directory
}

func (p *Pipeline) Handle(ctx context.Context, userId string, message string) {
	turnId := uuid.NewString()

	log := slog.With("user_id", userId, "turn_id", turnId)

	rctx, cancel := context.WithTimeout(ctx, p.options.StageTimeout)
	exchanges, err := p.retriever.RetrieveContext(rctx, userId, message)
	cancel()
	if err != nil {
		p.fail(ctx, log, userId, StageRetrieving, err)
		return
	}

	prof := p.profiles.Lookup(userId)
	system, prompt := composer.Compose(prof, exchanges, message)

	gctx, cancel := context.WithTimeout(ctx, p.options.StageTimeout)
	reply, err := p.generator.Generate(gctx, system, prompt)
	cancel()
	if err != nil {
		p.fail(ctx, log, userId, StageGenerating, err)
		return
	}

	dctx, cancel := context.WithTimeout(ctx, p.options.StageTimeout)
	if err := p.delivery.Send(dctx, userId, reply); err != nil {
		log.ErrorContext(ctx, "failed to deliver reply", "stage", StageDelivering, "error", err)
	}
	cancel()

	if err := p.persist(ctx, userId, prof.DisplayName, message, reply); err != nil {
		log.ErrorContext(ctx, "failed to persist exchange", "stage", StagePersisting, "error", err)
	}

	log.InfoContext(ctx, "turn handled", "stage", StageDone)
}

func (p *Pipeline) persist(ctx context.Context, userId string, displayName string, message string, reply string) error {
	combined := fmt.Sprintf("User said: %s\nAI replied: %s", message, reply)

	ectx, cancel := context.WithTimeout(ctx, p.options.StageTimeout)
	vector, err := p.embedder.Embed(ectx, combined)
	cancel()
	if err != nil {
		return fmt.Errorf("embed turn: %w", err)
	}

	sctx, cancel := context.WithTimeout(ctx, p.options.StageTimeout)
	defer cancel()

	err = p.store.Append(sctx, history.Exchange{
		UserId:          userId,
		UserDisplayName: displayName,
		UserMessage:     message,
		AgentMessage:    reply,
		Embedding:       vector,
	})
	if err != nil {
		return fmt.Errorf("append exchange: %w", err)
	}

	return nil
}

func (p *Pipeline) fail(ctx context.Context, log *slog.Logger, userId string, stage Stage, cause error) {
	log.ErrorContext(ctx, "turn failed", "stage", stage, "error", cause)

	dctx, cancel := context.WithTimeout(ctx, p.options.StageTimeout)
	defer cancel()

	if err := p.delivery.Send(dctx, userId, Apology); err != nil {
		log.ErrorContext(ctx, "failed to deliver apology", "stage", stage, "error", err)
	}
}

func New(
	retriever *retriever.Retriever,
	generator generator.Generator,
	embedder embedder.Embedder,
	store history.Store,
	delivery delivery.Client,
	profiles profile.Directory,
	opts ...Option,
) *Pipeline {
	if retriever == nil {
		panic("retriever is required")
	}

	if generator == nil {
		panic("generator is required")
	}

	if embedder == nil {
		panic("embedder is required")
	}

	if store == nil {
		panic("store is required")
	}

	if delivery == nil {
		panic("delivery client is required")
	}

	options := NewOptions(opts...)

	return &Pipeline{
		options:   options,
		retriever: retriever,
		generator: generator,
		embedder:  embedder,
		store:     store,
		delivery:  delivery,
		profiles:  profiles,
	}
}
