package notify

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/trace"

	"messaging-service/internal/models"
	"messaging-service/internal/observability"
	"messaging-service/internal/rabbitmq"
	"messaging-service/internal/repositories"
)

// Notifier is the real-time transport contract: best-effort delivery to a
// user's connected sessions, reporting how many were reached.
type Notifier interface {
	Notify(userID int, event models.Event) int
}

// Fanout translates committed state changes into pushes to the affected
// participants. It owns what to send and to whom; delivery itself is the
// transport's problem and its failures are swallowed here.
type Fanout struct {
	notifier      Notifier
	publisher     rabbitmq.Publisher
	conversations repositories.ConversationRepository
}

// NewFanout constructs a Fanout.
func NewFanout(notifier Notifier, publisher rabbitmq.Publisher, conversations repositories.ConversationRepository) *Fanout {
	return &Fanout{notifier: notifier, publisher: publisher, conversations: conversations}
}

// MessageCreated notifies the counterpart of a new message.
func (f *Fanout) MessageCreated(ctx context.Context, conv models.Conversation, msg models.Message) {
	event := models.Event{
		Type:           models.EventMessageCreated,
		ConversationID: conv.ID,
		Message:        &msg,
	}
	f.deliver(event, conv.OtherParticipant(msg.SenderID))
	f.publish(ctx, "messages.created", event)
}

// MessageDeleted notifies the counterpart of a soft deletion.
func (f *Fanout) MessageDeleted(ctx context.Context, conv models.Conversation, messageID int, actorID int) {
	event := models.Event{
		Type:           models.EventMessageDeleted,
		ConversationID: conv.ID,
		MessageID:      messageID,
	}
	f.deliver(event, conv.OtherParticipant(actorID))
	f.publish(ctx, "messages.deleted", event)
}

// MessagesRead tells the counterpart (the sender whose messages were just
// read) that the reader caught up. The reader is not notified.
func (f *Fanout) MessagesRead(ctx context.Context, conv models.Conversation, readerID int) {
	event := models.Event{
		Type:           models.EventMessageRead,
		ConversationID: conv.ID,
		ReaderID:       readerID,
	}
	f.deliver(event, conv.OtherParticipant(readerID))
	f.publish(ctx, "messages.read", event)
}

// MessagePinned notifies the counterpart of a pin or unpin.
func (f *Fanout) MessagePinned(ctx context.Context, conv models.Conversation, messageID int, pinned bool, actorID int) {
	event := models.Event{
		Type:           models.EventMessagePinned,
		ConversationID: conv.ID,
		MessageID:      messageID,
		Pinned:         &pinned,
	}
	f.deliver(event, conv.OtherParticipant(actorID))
	f.publish(ctx, "messages.pinned", event)
}

// MessageReacted notifies the counterpart of a reaction change.
func (f *Fanout) MessageReacted(ctx context.Context, conv models.Conversation, reaction models.Reaction) {
	event := models.Event{
		Type:           models.EventMessageReacted,
		ConversationID: conv.ID,
		MessageID:      reaction.MessageID,
		Reaction:       &reaction,
	}
	f.deliver(event, conv.OtherParticipant(reaction.UserID))
	f.publish(ctx, "messages.reacted", event)
}

// PresenceChanged notifies every user sharing a conversation with the
// subject. Presence and typing are ws-only; they are too chatty for the
// event exchange.
func (f *Fanout) PresenceChanged(ctx context.Context, presence models.UserPresence) {
	audience, err := f.conversations.ListCounterparts(ctx, presence.UserID)
	if err != nil {
		log.Printf("fanout: resolve presence audience for user %d: %v", presence.UserID, err)
		return
	}
	event := models.Event{
		Type:     models.EventPresenceChanged,
		Presence: &presence,
	}
	f.deliver(event, audience...)
}

// TypingChanged notifies the other participant of the conversation the
// user is typing in (or stopped typing in).
func (f *Fanout) TypingChanged(ctx context.Context, conversationID int, userID int, typing bool) {
	conv, err := f.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		log.Printf("fanout: resolve typing audience for conversation %d: %v", conversationID, err)
		return
	}
	event := models.Event{
		Type:           models.EventTypingChanged,
		ConversationID: conversationID,
		TypingUserID:   userID,
		Typing:         &typing,
	}
	f.deliver(event, conv.OtherParticipant(userID))
}

func (f *Fanout) deliver(event models.Event, audience ...int) {
	observability.IncFanoutEvent(event.Type)
	delivered := 0
	for _, userID := range audience {
		delivered += f.notifier.Notify(userID, event)
	}
	if delivered == 0 {
		observability.IncFanoutDrop(event.Type)
	}
}

func (f *Fanout) publish(ctx context.Context, routingKey string, event models.Event) {
	if f.publisher == nil {
		return
	}
	traceID := ""
	if span := trace.SpanFromContext(ctx); span.SpanContext().HasTraceID() {
		traceID = span.SpanContext().TraceID().String()
	}
	if err := f.publisher.Publish(ctx, routingKey, event, observability.BuildHeaders("", traceID)); err != nil {
		log.Printf("fanout: publish %s failed: %v", routingKey, err)
	}
}
