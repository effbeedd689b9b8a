package bootstrap

import (
	"context"
	"log"

	"simple-notes-be/internal/config"
	"simple-notes-be/internal/controller"
	"simple-notes-be/internal/pkg/logger"
	"simple-notes-be/internal/repository/contract"
	"simple-notes-be/internal/service"
	"simple-notes-be/pkg/events"

	pktNats "simple-notes-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats.go"
)

type Container struct {
	// Controllers
	NoteController   controller.INoteController
	ImageController  controller.IImageController
	SystemController controller.ISystemController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	NatsSubscriber  *pktNats.Subscriber

	Backend contract.StorageBackend
	Logger  logger.ILogger

	pubSub   *gochannel.GoChannel
	natsConn *nats.Conn
}

func NewContainer(backend contract.StorageBackend, cfg *config.Config, sysLogger logger.ILogger) *Container {
	// 1. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2. NATS (optional)
	var (
		natsConn       *nats.Conn
		eventPublisher events.Publisher
		natsSub        *pktNats.Subscriber
	)
	if cfg.Events.NatsURL != "" {
		nc, err := pktNats.Connect(cfg.Events.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS: %v", err)
		} else {
			natsConn = nc
			if pub, err := pktNats.NewPublisher(nc); err != nil {
				log.Printf("[WARN] Failed to create NATS Publisher: %v", err)
			} else {
				eventPublisher = pub
			}
			if sub, err := pktNats.NewSubscriber(nc); err != nil {
				log.Printf("[WARN] Failed to create NATS Subscriber: %v", err)
			} else {
				natsSub = sub
			}
		}
	} else {
		log.Printf("[INFO] NATS_URL not set, note events stay in-process")
	}

	// 3. Services
	// The system service is assigned below; the hook only runs once requests arrive.
	var systemService service.ISystemService
	publisherService := service.NewPublisherService(cfg.Events.Topic, pubSub)
	dispatcher := service.NewEventDispatcher(publisherService, eventPublisher, sysLogger,
		func(context.Context, events.BaseEvent) { systemService.InvalidateStats() },
	)

	noteService := service.NewNoteService(backend, dispatcher, sysLogger)
	imageService := service.NewImageService(backend, dispatcher, sysLogger)
	systemService = service.NewSystemService(backend, dispatcher, cfg.App.StatsCacheTTL, sysLogger)

	consumerService := service.NewConsumerService(pubSub, cfg.Events.Topic, systemService)

	log.Printf("[INFO] Using storage backend: %s", backend.Name())

	// 4. Controllers
	return &Container{
		NoteController:   controller.NewNoteController(noteService, imageService),
		ImageController:  controller.NewImageController(imageService),
		SystemController: controller.NewSystemController(systemService),

		ConsumerService: consumerService,
		NatsSubscriber:  natsSub,

		Backend: backend,
		Logger:  sysLogger,

		pubSub:   pubSub,
		natsConn: natsConn,
	}
}

// StartBackground subscribes the consumer to the in-process topic and, when
// NATS is configured, to events from other instances.
func (c *Container) StartBackground(ctx context.Context) error {
	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}
	if c.NatsSubscriber != nil {
		if err := c.NatsSubscriber.Subscribe(ctx, "", c.ConsumerService.HandleRemoteEvent); err != nil {
			log.Printf("[WARN] Failed to subscribe to NATS note events: %v", err)
		}
	}
	return nil
}

func (c *Container) Close() error {
	if c.NatsSubscriber != nil {
		c.NatsSubscriber.Close()
	}
	if c.natsConn != nil {
		c.natsConn.Drain()
	}
	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	_ = c.Logger.Sync()
	return c.Backend.Close()
}
