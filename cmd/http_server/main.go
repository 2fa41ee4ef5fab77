package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" //postgres

	"github.com/billyproject/billy/config"
	"github.com/billyproject/billy/handler"
	"github.com/billyproject/billy/infra/audit"
	"github.com/billyproject/billy/infra/db/model"
	"github.com/billyproject/billy/infra/locker"
	"github.com/billyproject/billy/middlewares"
	"github.com/billyproject/billy/processor"
	_ "github.com/billyproject/billy/processor/balanced"
	billingUsecase "github.com/billyproject/billy/usecase/billing"
	companyUsecase "github.com/billyproject/billy/usecase/company"
	planUsecase "github.com/billyproject/billy/usecase/plan"
	reconcileUsecase "github.com/billyproject/billy/usecase/reconcile"
)

type App struct {
	DB      *gorm.DB
	Router  *mux.Router
	Config  config.Config
	Archive *audit.Archive
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

	a.DB.Debug().AutoMigrate(
		&model.Company{},
		&model.Transaction{},
		&model.CallbackEvent{},
		&model.ReconciliationRecord{},
		&model.PayoutPlan{},
	) //database migration

	a.Archive, err = audit.Open(a.Config.Audit.Path)
	if err != nil {
		log.Fatal("Cannot open audit archive: ", err)
	}

	a.Router = mux.NewRouter().StrictSlash(true)
	a.initializeRoutes()
}

func RegisterBillingRoutes(router *mux.Router, h *handler.BillingHandler) {
	router.HandleFunc("/v1/companies", h.CreateCompany).Methods("POST")
	router.HandleFunc("/v1/companies/{guid}", h.GetCompany).Methods("GET")
	router.HandleFunc("/v1/companies/{guid}/rotate_callback_key", h.RotateCallbackKey).Methods("POST")
	router.HandleFunc("/v1/companies/{guid}/callback", h.ProcessorCallback).Methods("POST")
	router.HandleFunc("/v1/companies/{guid}/plans", h.CreatePlan).Methods("POST")
	router.HandleFunc("/v1/companies/{guid}/plans", h.ListPlans).Methods("GET")
	router.HandleFunc("/v1/plans/{guid}", h.GetPlan).Methods("GET")
	router.HandleFunc("/v1/plans/{guid}", h.UpdatePlan).Methods("PUT")
	router.HandleFunc("/v1/plans/{guid}/disable", h.DisablePlan).Methods("POST")
	router.HandleFunc("/v1/transactions", h.CreateCharge).Methods("POST")
	router.HandleFunc("/v1/transactions/{guid}", h.GetTransaction).Methods("GET")
	router.HandleFunc("/v1/transactions/{guid}/submit", h.SubmitTransaction).Methods("POST")
	router.HandleFunc("/v1/transactions/{guid}/refund", h.RefundTransaction).Methods("POST")
}

func (a *App) initializeRoutes() {
	a.Router.Use(middlewares.SetContentTypeMiddleware)

	// Unrecognized processor name is fatal before the server accepts traffic.
	proc, err := processor.Resolve(a.Config.Processor.Name, processor.Config{
		APIBase: a.Config.Processor.APIBase,
		Timeout: a.Config.Processor.Timeout(),
	})
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	lk := locker.New()
	companyUc := companyUsecase.NewCompanyUsecase(a.DB)
	billingUc := billingUsecase.NewBillingUsecase(a.DB, proc)
	planUc := planUsecase.NewPlanUsecase(a.DB)
	reconcileUc := reconcileUsecase.NewReconcileUsecase(
		a.DB, lk, proc, a.Config.Processor.Name, a.Archive,
		a.Config.Poller.MinAgeInSec, a.Config.Poller.BatchSize,
	)

	h := handler.NewBillingHandler(companyUc, billingUc, planUc, reconcileUc, a.Config.API)
	RegisterBillingRoutes(a.Router, h)
}

func (a *App) RunServer() {
	port := os.Getenv("PORT")

	if port == "" {
		port = "8080"
	}

	log.Printf("\nServer starting on port %v", port)
	log.Fatal(http.ListenAndServe(":"+port, a.Router))
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
