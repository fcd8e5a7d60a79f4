package main

import (
	"github.com/robfig/cron/v3"
	"github.com/saske7779/Web-app-granja/internal/config"
	"github.com/saske7779/Web-app-granja/internal/database"
	"github.com/saske7779/Web-app-granja/internal/farmbot"
	"github.com/saske7779/Web-app-granja/internal/repositories"
	"github.com/saske7779/Web-app-granja/internal/schedulers"
	"github.com/saske7779/Web-app-granja/internal/services"
)

func main() {
	logger := config.InitLogger()
	if err := config.InitConfig(); err != nil {
		logger.Fatalf("Failed to init config: %v", err)
	}

	logger.Infoln("Config initialized")

	psql := connectPostgres()
	defer func(db *database.Postgres) {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database: ", err)
		}
	}(psql)

	if err := psql.RunMigrations(config.MIGRATIONS_PATH); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	logger.Infoln("Database initialized")

	redisCli, err := database.InitRedisCli()
	if err != nil {
		logger.Error("Failed to init redis, snapshot cache disabled: ", err)
	}

	store := repositories.NewStore(psql.Db)
	cache := services.NewSnapshotCache(redisCli)
	notifier := farmbot.NewNotifier(config.ADMIN_CHAT_ID)

	referrals := services.NewReferralService(store, cache)
	accounts := services.NewAccountService(store, referrals, notifier, cache)
	ledger := services.NewLedgerService(store, notifier, cache)
	lots := services.NewLotService(store, cache)
	earnings := services.NewEarningsService(store, cache)

	c := cron.New()
	if _, err := c.AddFunc(config.EARNINGS_CRON, schedulers.DistributeEarnings(earnings)); err != nil {
		logger.Fatalf("Failed to schedule earnings distribution: %v", err)
	}
	if _, err := c.AddFunc(config.REFERRAL_REFRESH_CRON, schedulers.RefreshReferralIncome(referrals)); err != nil {
		logger.Fatalf("Failed to schedule referral refresh: %v", err)
	}
	if _, err := c.AddFunc(config.PURGE_CRON, schedulers.PurgeExpiredLots(lots)); err != nil {
		logger.Fatalf("Failed to schedule lot purge: %v", err)
	}
	c.Start()
	defer c.Stop()

	logger.Infoln("Schedulers started")

	bot := farmbot.NewFarmBot(config.BOT_TOKEN, config.ADMIN_CHAT_ID, accounts, ledger, lots, notifier)

	logger.Infoln("Telegram bot starting")
	if err := bot.StartBot(); err != nil {
		logger.Fatal("Failed to start bot: ", err)
	}
}

func connectPostgres() *database.Postgres {
	log := config.InitLogger()

	psqlConfig := config.LoadPostgresConfig()
	psql, err := database.NewPostgres(psqlConfig)
	if err != nil {
		log.Fatal("Failed to connect to database")
	}

	if err := psql.Ping(); err != nil {
		log.Fatal("Failed to ping database")
	}

	return psql
}
