package services

import (
	"fmt"
	"itam_platform/platform/auth"
	"itam_platform/platform/storage"
	"itam_platform/utils"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Platform aggregates the dashboard's services behind one router.
type Platform struct {
	user     UserService
	security SecurityService
	asset    AssetService
	employee EmployeeService
	simCard  SimCardService
	vendor   VendorService
	email    EmailService
	invoice  InvoiceService
	logs     LogService
	notice   NoticeService

	db *gorm.DB
}

func NewPlatform(
	db *gorm.DB, store storage.Storage, userAuth auth.IdentityProvider, masterPassword *auth.MasterPassword,
) (Platform, error) {
	noticeTemplates, err := loadNoticeTemplates()
	if err != nil {
		return Platform{}, fmt.Errorf("error loading notice templates: %w", err)
	}

	return Platform{
		user:     UserService{db: db, userAuth: userAuth},
		security: SecurityService{db: db, masterPassword: masterPassword, userAuth: userAuth},
		asset:    AssetService{db: db, userAuth: userAuth},
		employee: EmployeeService{db: db, userAuth: userAuth},
		simCard:  SimCardService{db: db, userAuth: userAuth},
		vendor:   VendorService{db: db, userAuth: userAuth},
		email:    EmailService{db: db, userAuth: userAuth},
		invoice:  InvoiceService{db: db, storage: store, userAuth: userAuth},
		logs:     LogService{db: db, userAuth: userAuth},
		notice:   NoticeService{db: db, userAuth: userAuth, templates: noticeTemplates},
		db:       db,
	}, nil
}

func (p *Platform) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger: log.New(os.Stderr, "", log.LstdFlags), NoColor: false,
	}))

	r.Mount("/user", p.user.Routes())
	r.Mount("/", p.security.Routes())
	r.Mount("/assets", p.asset.Routes())
	r.Mount("/users", p.employee.Routes())
	r.Mount("/simcard-users", p.simCard.Routes())
	r.Mount("/vendors", p.vendor.Routes())
	r.Mount("/emails", p.email.Routes())
	r.Mount("/invoices", p.invoice.Routes())
	r.Mount("/logs", p.logs.Routes())
	r.Mount("/compose-email", p.notice.Routes())

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w)
	})

	return r
}
