package httpserver

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/metrics"
	"hakey-storefront/internal/query"
	"hakey-storefront/internal/repository/localstore"
	"hakey-storefront/internal/service/account"
	"hakey-storefront/internal/service/admin"
	"hakey-storefront/internal/service/cart"
	"hakey-storefront/internal/service/product"
	"hakey-storefront/internal/service/session"
)

type catalogService interface {
	Browse(ctx context.Context, params query.Params) (*product.Listing, error)
	Featured(ctx context.Context) ([]domain.Game, error)
	Get(ctx context.Context, id domain.GameID) (*domain.Game, error)
}

type cartStore interface {
	State() cart.State
	AddItem(ctx context.Context, game domain.Game) cart.State
	RemoveItem(ctx context.Context, id domain.GameID) cart.State
	SetQuantity(ctx context.Context, id domain.GameID, quantity int) cart.State
	Clear(ctx context.Context) cart.State
}

type sessionStore interface {
	State() session.State
	Logout(ctx context.Context) session.State
	UpdateProfile(ctx context.Context, patch domain.ProfilePatch) session.State
}

type accountService interface {
	Login(ctx context.Context, in account.LoginInput) (*domain.UserProfile, error)
	Register(ctx context.Context, in account.RegisterInput) (*domain.UserProfile, error)
}

type adminService interface {
	List(ctx context.Context) ([]domain.Game, error)
	Create(ctx context.Context, form admin.GameForm) (*domain.Game, error)
	Replace(ctx context.Context, id domain.GameID, form admin.GameForm) (*domain.Game, error)
	Edit(ctx context.Context, id domain.GameID, form admin.EditForm) (*domain.Game, error)
	Delete(ctx context.Context, id domain.GameID) error
}

// Deps groups the services the router needs.
type Deps struct {
	CatalogSvc  catalogService
	Cart        cartStore
	Session     sessionStore
	AccountSvc  accountService
	AdminSvc    adminService
	Storage     localstore.Repository
	Metrics     *metrics.Registry
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	if deps.CatalogSvc == nil || deps.Cart == nil || deps.Session == nil || deps.AccountSvc == nil || deps.AdminSvc == nil {
		return nil, errors.New("httpserver: missing dependencies")
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.CORSOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Storage))
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	h := &handlers{deps: deps, logger: logger}
	api := router.Group("/api")

	api.GET("/catalog", h.listCatalog)
	api.GET("/catalog/:id", h.getGame)

	api.GET("/cart", h.getCart)
	api.POST("/cart/items", h.addCartItem)
	api.PATCH("/cart/items/:id", h.setCartQuantity)
	api.DELETE("/cart/items/:id", h.removeCartItem)
	api.DELETE("/cart", h.clearCart)

	api.GET("/session", h.getSession)
	api.POST("/session/login", h.login)
	api.POST("/session/register", h.register)
	api.PATCH("/session/profile", requireAuth(deps.Session), h.updateProfile)
	api.DELETE("/session", h.logout)

	adminGroup := api.Group("/admin", requireAdmin(deps.Session))
	adminGroup.GET("/options", h.adminOptions)
	adminGroup.GET("/games", h.adminListGames)
	adminGroup.POST("/games", h.adminCreateGame)
	adminGroup.PUT("/games/:id", h.adminReplaceGame)
	adminGroup.PATCH("/games/:id", h.adminEditGame)
	adminGroup.DELETE("/games/:id", h.adminDeleteGame)

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
