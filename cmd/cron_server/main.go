package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" //postgres

	"github.com/billyproject/billy/config"
	"github.com/billyproject/billy/infra/audit"
	"github.com/billyproject/billy/infra/locker"
	"github.com/billyproject/billy/processor"
	_ "github.com/billyproject/billy/processor/balanced"
	reconcileUsecase "github.com/billyproject/billy/usecase/reconcile"
)

type CronWorkerConfig struct {
	Interval time.Duration
	Workers  int
}

func (cfg CronWorkerConfig) startPollWorker(uc reconcileUsecase.ReconcileUsecase, workerID int) {
	for {
		ctx := context.Background()
		moved, err := uc.PollOnce(ctx)
		if err != nil {
			log.Printf("[Worker %d] %s", workerID, err.Error())
		} else if moved == 0 {
			log.Printf("[Worker %d] no transaction settled", workerID)
		} else {
			log.Printf("[Worker %d] settled %d transactions", workerID, moved)
		}

		time.Sleep(cfg.Interval)
	}
}

type App struct {
	DB      *gorm.DB
	Locker  *locker.Locker
	Config  config.Config
	Archive *audit.Archive
}

func (a *App) startCronWorker(cfg CronWorkerConfig) {
	var wg sync.WaitGroup

	proc, err := processor.Resolve(a.Config.Processor.Name, processor.Config{
		APIBase: a.Config.Processor.APIBase,
		Timeout: a.Config.Processor.Timeout(),
	})
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	reconcileUc := reconcileUsecase.NewReconcileUsecase(
		a.DB, a.Locker, proc, a.Config.Processor.Name, a.Archive,
		a.Config.Poller.MinAgeInSec, a.Config.Poller.BatchSize,
	)

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			log.Printf("spawn [Worker %d]", workerID)
			cfg.startPollWorker(reconcileUc, workerID)
		}(i + 1)
	}
	wg.Wait()
}

func (a *App) Initialize(DbHost, DbPort, DbUser, DbName, DbPassword string) {
	var err error

	a.Config, err = config.Load(os.Getenv("BILLY_CONFIG"))
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	DBURI := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable password=%s", DbHost, DbPort, DbUser, DbName, DbPassword)

	a.DB, err = gorm.Open("postgres", DBURI)
	if err != nil {
		fmt.Printf("\n Cannot connect to database %s", DbName)
		log.Fatal("This is the error:", err)
	} else {
		fmt.Printf("We are connected to the database %s", DbName)
	}

	a.Archive, err = audit.Open(a.Config.Audit.Path)
	if err != nil {
		log.Fatal("Cannot open audit archive: ", err)
	}

	a.Locker = locker.New()
}

func (a *App) RunServer() {
	a.startCronWorker(CronWorkerConfig{
		Workers:  a.Config.Poller.Workers,
		Interval: a.Config.Poller.Interval(),
	})
}

func main() {
	app := App{}
	app.Initialize(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PASSWORD"))

	app.RunServer()
}
