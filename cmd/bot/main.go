package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hydration_notification_bot/internal/app"
	"hydration_notification_bot/internal/domain/intake"
	"hydration_notification_bot/internal/domain/notification"
	"hydration_notification_bot/internal/domain/profile"
	"hydration_notification_bot/internal/infra/channel"
	"hydration_notification_bot/internal/infra/config"
	idb "hydration_notification_bot/internal/infra/database"
	"hydration_notification_bot/internal/infra/logger"
	"hydration_notification_bot/internal/infra/personalize"
	"hydration_notification_bot/internal/infra/scheduler"
	"hydration_notification_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const toastBuffer = 64

type stores struct {
	profiles      profile.Repository
	notifications notification.Repository
	intakes       intake.Repository
	close         func()
}

// openStores connects the configured backend. Postgres runs the embedded
// migrations, SQLite is migrated by gorm.
func openStores(cfg *config.AppConfig, log *logrus.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		database, err := idb.OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return &stores{
			profiles:      idb.NewGormProfileRepository(database),
			notifications: idb.NewGormNotificationRepository(database),
			intakes:       idb.NewGormIntakeRepository(database),
			close: func() {
				if sqlDB, err := database.DB(); err == nil {
					sqlDB.Close()
				}
			},
		}, nil
	default:
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := idb.MigratePostgres(db); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			profiles:      idb.NewPostgresProfileRepository(db),
			notifications: idb.NewPostgresNotificationRepository(db),
			intakes:       idb.NewPostgresIntakeRepository(db),
			close:         func() { db.Close() },
		}, nil
	}
}

func newPersonalizer(cfg *config.AppConfig, log *logrus.Logger) app.Personalizer {
	if cfg.GeminiAPIKey == "" {
		log.Info("GEMINI_API_KEY not set, reminders use built-in templates")
		return nil
	}
	return personalize.NewGeminiClient(personalize.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.PersonalizationTimeout,
	})
}

func main() {
	fmt.Println("Hydration Notification Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.WithFields(logrus.Fields{
		"log_level":    cfg.LogLevel,
		"environment":  cfg.Environment,
		"store_driver": cfg.StoreDriver,
	}).Info("Configuration loaded")

	loc, err := cfg.Location()
	if err != nil {
		log.WithError(err).Fatal("Could not resolve timezone")
	}

	st, err := openStores(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Could not open database")
	}
	defer st.close()
	log.Info("Repositories initialized")

	twilioCfg := channel.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioPhoneNumber,
		BaseURL:    cfg.TwilioBaseURL,
		Timeout:    cfg.DeliveryTimeout,
	}
	whatsAppCfg := twilioCfg
	whatsAppCfg.FromNumber = cfg.TwilioWhatsAppNumber

	dispatcher := app.NewDispatcher(
		log,
		channel.NewSMSSender(twilioCfg),
		channel.NewWhatsAppSender(whatsAppCfg),
		channel.NewEmailSender(channel.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SenderEmail,
			BaseURL:   cfg.SendGridBaseURL,
			Timeout:   cfg.DeliveryTimeout,
		}),
	)

	bus := app.NewEventBus(log)
	tracker := app.NewMilestoneTracker(loc, time.Now, log)
	composer := app.NewComposer(newPersonalizer(cfg, log), cfg.PersonalizationTimeout, log)
	notificationService := app.NewNotificationServiceImpl(st.profiles, st.notifications, tracker, composer, dispatcher, bus, log)
	profileService := app.NewProfileService(st.profiles)
	intakeService := app.NewIntakeService(st.intakes, st.profiles, notificationService, loc, log)
	log.Info("Services initialized")

	notifScheduler := scheduler.NewNotificationScheduler(
		notificationService,
		log.WithField("component", "scheduler"),
		loc,
		cfg.CronSpecRollover,
		cfg.CronSpecDailyTip,
	)
	if err := notifScheduler.Start(); err != nil {
		log.WithError(err).Fatal("Could not start scheduler")
	}

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) { // Global error handler
			entry := log.WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID, "text": c.Text()})
			}
			entry.Error("Telebot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.WithError(err).Fatal("Could not create Telegram bot")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handlerLogger := log.WithField("component", "telegram")
	telegram.RegisterBotCommands(ctx, bot, profileService, handlerLogger)
	telegram.RegisterSettingsHandlers(ctx, bot, profileService, notificationService, handlerLogger)
	telegram.RegisterIntakeHandlers(ctx, bot, intakeService, st.notifications, handlerLogger)
	log.Info("Telegram handlers registered")

	events, unsubscribe := bus.Subscribe(toastBuffer)
	forwarder := telegram.NewEventForwarder(telegram.NewTelebotAdapter(bot), handlerLogger)
	go forwarder.Run(ctx, events)

	log.Info("Application setup complete. Bot and Scheduler are starting...")

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	go bot.Start()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("Shutting down application...")
	bot.Stop()
	notifScheduler.Stop()
	// In-flight milestone notifications finish before the stores close.
	notificationService.Wait()
	cancel()
	unsubscribe()
	log.Info("Application shut down gracefully.")
}
