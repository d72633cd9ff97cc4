package bootstrap

import (
	"context"
	"fmt"

	"placement-engine-be/internal/config"
	"placement-engine-be/internal/controller"
	"placement-engine-be/internal/handler"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/internal/pkg/mailer"
	"placement-engine-be/internal/pkg/offender"
	"placement-engine-be/internal/repository/memory"
	"placement-engine-be/internal/repository/unitofwork"
	"placement-engine-be/internal/service"
	internalWS "placement-engine-be/internal/websocket"
	"placement-engine-be/pkg/calendar"
	"placement-engine-be/pkg/events"
	"placement-engine-be/pkg/events/bus"
	pktNats "placement-engine-be/pkg/nats"
	"placement-engine-be/pkg/placement/conflict"
	"placement-engine-be/pkg/redisbus"

	"gorm.io/gorm"
)

const moduleBootstrap = "BOOTSTRAP"

const (
	SinkNats    = "nats"
	SinkRedis   = "redis"
	SinkChannel = "channel"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	OpsController controller.IOpsController

	// Services
	DomainEventService service.IDomainEventService
	ApplicationService service.IApplicationService
	AssessmentService  service.IAssessmentService
	PlacementService   service.IPlacementService
	BookingService     service.IBookingService
	WithdrawalService  service.IWithdrawalService
	PremisesService    service.IPremisesService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	EventHub           *internalWS.Hub
	EventStreamHandler *handler.EventStreamHandler

	closers []func() error
}

// NewContainer wires the engine. A nil db selects the in-memory store, which is only meant for
// local runs.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	// 1. Persistence
	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		sysLogger.Warn(moduleBootstrap, "No database configured, using in-memory store", nil)
		uowFactory = memory.NewStore()
	}

	// 2. Working day calendar
	holidays, err := calendar.ParseHolidays(cfg.Calendar.BankHolidays)
	if err != nil {
		return nil, err
	}
	weekend, err := calendar.ParseWeekdays(cfg.Calendar.WeekendDays)
	if err != nil {
		return nil, err
	}
	detector := conflict.NewDetector(calendar.New(
		calendar.WithWeekendDays(weekend...),
		calendar.WithHolidays(holidays...),
	))

	// 3. Event transport
	emitter, source, err := c.eventTransport(cfg.Events)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 4. Collaborators
	lookupClient := offender.NewClient(cfg.Lookup.CommunityAPIURL, cfg.Lookup.Timeout)
	lookup := offender.NewCachedLookup(lookupClient, lookupClient, cfg.Lookup.CacheTTL)

	var dispatcher mailer.NotificationDispatcher = mailer.NopDispatcher{}
	if cfg.SMTP.Host != "" {
		dispatcher = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			notifyTemplates(cfg.Notify),
		)
	} else {
		sysLogger.Info(moduleBootstrap, "SMTP host not set, booking e-mails are dropped", nil)
	}

	// 5. Services
	engineConfig := service.NewEngineConfig(cfg)

	c.DomainEventService = service.NewDomainEventService(uowFactory, emitter, engineConfig, sysLogger)
	recorder := service.NewEventRecorder(c.DomainEventService, lookup, lookup)
	notifier := service.NewBookingNotifier(dispatcher, engineConfig, sysLogger)

	c.ApplicationService = service.NewApplicationService(uowFactory, recorder, engineConfig, sysLogger)
	c.AssessmentService = service.NewAssessmentService(uowFactory, recorder, engineConfig, sysLogger)
	c.PlacementService = service.NewPlacementService(uowFactory, recorder, engineConfig, sysLogger)
	c.BookingService = service.NewBookingService(uowFactory, recorder, notifier, detector, engineConfig, sysLogger)
	c.WithdrawalService = service.NewWithdrawalService(uowFactory, c.BookingService, recorder, engineConfig, sysLogger)
	c.PremisesService = service.NewPremisesService(uowFactory, detector, engineConfig, sysLogger)

	journal := logger.NewIsolatedLogger(cfg.Events.JournalFilePath)
	c.ConsumerService = service.NewConsumerService(source, cfg.Events.ConsumerGroup, cfg.Events.DedupTTL, journal, sysLogger)

	// 6. Controllers & Handlers
	c.OpsController = controller.NewOpsController(c.DomainEventService, c.ApplicationService)
	c.EventHub = internalWS.NewHub(logger.NewIsolatedLogger("logs/event-stream.log"))
	c.EventStreamHandler = handler.NewEventStreamHandler(c.EventHub, sysLogger)

	sysLogger.Info(moduleBootstrap, "Container ready", map[string]interface{}{
		"sink":       cfg.Events.Sink,
		"persistent": db != nil,
	})
	return c, nil
}

func (c *Container) eventTransport(cfg config.EventsConfig) (events.Emitter, events.Source, error) {
	switch cfg.Sink {
	case SinkNats:
		pub, err := pktNats.NewPublisher(cfg.NatsURL, cfg.NatsSubjectPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS publisher: %w", err)
		}
		c.closers = append(c.closers, func() error { pub.Close(); return nil })

		sub, err := pktNats.NewSubscriber(cfg.NatsURL, cfg.NatsSubjectPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS subscriber: %w", err)
		}
		c.closers = append(c.closers, func() error { sub.Close(); return nil })
		return pub, sub, nil

	case SinkRedis:
		rb := redisbus.NewFromURL(cfg.RedisURL, cfg.RedisChannel)
		c.closers = append(c.closers, rb.Close)
		return rb, rb, nil

	case SinkChannel, "":
		b := bus.New(cfg.ChannelTopic, logger.NewWatermillAdapter(c.Logger, "EVENT_BUS"))
		c.closers = append(c.closers, b.Close)
		return b, b, nil
	}
	return nil, nil, fmt.Errorf("unknown domain event sink %q", cfg.Sink)
}

// StartEventStream runs the operator hub until ctx ends and feeds it every consumed event.
// Call before ConsumerService.Consume.
func (c *Container) StartEventStream(ctx context.Context) {
	go c.EventHub.Run(ctx)
	for _, t := range events.Types() {
		c.ConsumerService.On(t, c.EventHub.Publish)
	}
}

func notifyTemplates(cfg config.NotifyConfig) map[string]mailer.Template {
	return map[string]mailer.Template{
		cfg.BookingMadeTemplateId: {
			Subject: "Booking made for ((crn))",
			Intro:   "A booking has been made at ((premisesName)).",
		},
		cfg.BookingWithdrawnTemplateId: {
			Subject: "Booking withdrawn for ((crn))",
			Intro:   "The booking at ((premisesName)) has been withdrawn.",
		},
	}
}

// Close releases broker connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn(moduleBootstrap, "Failed to close resource", map[string]interface{}{"error": err.Error()})
		}
	}
	c.closers = nil
}
