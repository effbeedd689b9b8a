// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"simple-notes-be/internal/dto"
	"simple-notes-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
	// HandleRemoteEvent processes an event delivered by the external bus.
	HandleRemoteEvent(ctx context.Context, event events.Event) error
}

type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	systemService ISystemService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	systemService ISystemService,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		systemService: systemService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.NoteEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal note event: %v", err)
		msg.Ack()
		return
	}

	cs.systemService.InvalidateStats()
	log.Printf("[INFO] Note event %s processed (note=%s blob=%s)", payload.Type, payload.NoteId, payload.BlobKey)
	msg.Ack()
}

// HandleRemoteEvent keeps this instance's stats fresh when another instance
// changes shared storage.
func (cs *consumerService) HandleRemoteEvent(ctx context.Context, event events.Event) error {
	cs.systemService.InvalidateStats()
	return nil
}
