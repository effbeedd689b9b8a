package service

import (
	"context"
	"encoding/json"

	"simple-notes-be/internal/dto"
	"simple-notes-be/internal/pkg/logger"
	"simple-notes-be/pkg/events"
)

// IEventDispatcher fans a domain event out to the in-process topic and,
// when configured, to the external bus. Delivery failures are logged and
// never fail the request.
//
// Local hooks run synchronously before anything is published, so state
// derived from storage is already fresh when the request returns.
type IEventDispatcher interface {
	Dispatch(ctx context.Context, event events.BaseEvent)
}

type eventDispatcher struct {
	publisherService IPublisherService
	eventPublisher   events.Publisher
	localHooks       []LocalHook
	logger           logger.ILogger
}

// LocalHook reacts to an event inside the request that caused it.
type LocalHook func(ctx context.Context, event events.BaseEvent)

func NewEventDispatcher(
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	log logger.ILogger,
	localHooks ...LocalHook,
) IEventDispatcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &eventDispatcher{
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		localHooks:       localHooks,
		logger:           log,
	}
}

func (d *eventDispatcher) Dispatch(ctx context.Context, event events.BaseEvent) {
	for _, hook := range d.localHooks {
		hook(ctx, event)
	}

	msg := dto.NoteEventMessage{
		Type:    event.Type,
		NoteId:  event.StringField("note_id"),
		BlobKey: event.StringField("blob_key"),
	}
	payload, err := json.Marshal(msg)
	if err == nil {
		err = d.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		d.logger.Warn("EventDispatcher", "Failed to publish in-process event", map[string]interface{}{
			"type":  event.Type,
			"error": err.Error(),
		})
	}

	if d.eventPublisher == nil {
		return
	}
	if err := d.eventPublisher.Publish(ctx, event); err != nil {
		d.logger.Warn("EventDispatcher", "Failed to publish event to NATS", map[string]interface{}{
			"type":  event.Type,
			"error": err.Error(),
		})
	}
}
