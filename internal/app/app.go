package app

import (
	"context"

	"rigbook/config"
	"rigbook/internal/database"
	"rigbook/internal/events"
	"rigbook/internal/handlers/middleware"
	"rigbook/internal/jobs"
	"rigbook/internal/repositories"
	"rigbook/internal/services"

	assignmentController "rigbook/internal/controllers/assignment"
	bookingController "rigbook/internal/controllers/booking"

	logger "github.com/Bparsons0904/goLogger"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	EventBus   *events.EventBus
	Config     config.Config

	// Services
	TokenService      *services.TokenService
	QuoteSheetService *services.QuoteSheetService
	Mailer            services.Mailer
	Calendar          services.Calendar
	PaymentGateway    services.PaymentGateway
	SchedulerService  *services.SchedulerService

	// Repositories
	Repository repositories.Repository

	// Controllers
	BookingController    bookingController.BookingControllerInterface
	AssignmentController assignmentController.AssignmentControllerInterface
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.New()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	// Lifecycle events drive operational visibility; every instance hears
	// facts published by its peers.
	for _, channel := range []events.Channel{events.BOOKING_CHANNEL, events.ASSIGNMENT_CHANNEL} {
		if err := eventBus.Subscribe(channel, func(event events.Event) error {
			log.Info(
				"Lifecycle event",
				"channel", event.Channel,
				"type", event.Type,
				"bookingID", event.BookingID,
			)
			return nil
		}); err != nil {
			return &App{}, log.Err("failed to subscribe to lifecycle events", err)
		}
	}

	repos := repositories.New(db)

	tokenService := services.NewTokenService()
	quoteSheetService := services.NewQuoteSheetService(services.NewSheetDocumentReader(config))
	mailer, err := services.NewMailer(config)
	if err != nil {
		return &App{}, log.Err("failed to create mailer", err)
	}
	calendar := services.NewCalendar(config)
	paymentGateway, err := services.NewPaymentGateway(config)
	if err != nil {
		return &App{}, log.Err("failed to create payment gateway", err)
	}
	schedulerService := services.NewSchedulerService()

	middleware := middleware.New(db, eventBus, config)

	bookingController := bookingController.New(
		repos.Booking,
		repos.ClientApproval,
		tokenService,
		quoteSheetService,
		mailer,
		calendar,
		paymentGateway,
		eventBus,
		config,
	)
	assignmentController := assignmentController.New(
		repos.Booking,
		repos.Assignment,
		repos.Contractor,
		tokenService,
		mailer,
		calendar,
		eventBus,
		config,
	)

	if config.SchedulerEnabled {
		reminderJob := jobs.NewAssignmentReminderJob(
			repos.Assignment,
			mailer,
			config,
			services.Hourly,
		)
		if err := schedulerService.AddJob(reminderJob); err != nil {
			return &App{}, log.Err("failed to register assignment reminder job", err)
		}
		log.Info("Registered assignment reminder job with scheduler")
	}

	app := &App{
		Database:             db,
		Config:               config,
		Middleware:           middleware,
		EventBus:             eventBus,
		TokenService:         tokenService,
		QuoteSheetService:    quoteSheetService,
		Mailer:               mailer,
		Calendar:             calendar,
		PaymentGateway:       paymentGateway,
		SchedulerService:     schedulerService,
		Repository:           repos,
		BookingController:    bookingController,
		AssignmentController: assignmentController,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.EventBus,
		a.TokenService,
		a.QuoteSheetService,
		a.Mailer,
		a.Calendar,
		a.PaymentGateway,
		a.SchedulerService,
		a.Repository.Booking,
		a.Repository.ClientApproval,
		a.Repository.Assignment,
		a.Repository.Contractor,
		a.BookingController,
		a.AssignmentController,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Start(ctx context.Context) error {
	if a.Config.SchedulerEnabled {
		return a.SchedulerService.Start(ctx)
	}
	return nil
}

func (a *App) Close() (err error) {
	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.SchedulerService != nil {
		if closeErr := a.SchedulerService.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
