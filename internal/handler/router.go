package handler

import (
	"net/http"

	"github.com/Thegreatsura/merchant/internal/handler/api"
	"github.com/Thegreatsura/merchant/internal/handler/middleware"
	"github.com/Thegreatsura/merchant/internal/pkg/config"
	"github.com/Thegreatsura/merchant/internal/pkg/jwt"
	"github.com/Thegreatsura/merchant/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

type Handlers struct {
	Cart    *api.CartHandler
	Webhook *api.WebhookHandler
	Admin   *api.AdminHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware, m *metrics.Metrics) {
	setupMiddleware(engine, cfg, m)
	setupRoutes(engine, h, authMiddleware, m)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, m *metrics.Metrics) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.Metrics(m))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware, m *metrics.Metrics) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Signature verification replaces auth here.
	engine.POST("/webhooks/stripe", h.Webhook.Stripe)

	apiGroup := engine.Group("/api")
	{
		carts := apiGroup.Group("/stores/:storeId/carts")
		{
			addRoutes(carts, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Cart.Create},
				{Method: http.MethodGet, Path: "/:cartId", Handler: h.Cart.Get},
				{Method: http.MethodPut, Path: "/:cartId/items", Handler: h.Cart.ReplaceItems},
				{Method: http.MethodPost, Path: "/:cartId/discount", Handler: h.Cart.ApplyDiscount},
				{Method: http.MethodDelete, Path: "/:cartId/discount", Handler: h.Cart.RemoveDiscount},
				{Method: http.MethodPost, Path: "/:cartId/checkout", Handler: h.Cart.Checkout},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.RequireRoleAtLeast(jwt.RoleOperator))
		{
			adminOnly := []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast(jwt.RoleAdmin)}

			store := admin.Group("/stores/:storeId")
			addRoutes(store, []route{
				{Method: http.MethodGet, Path: "/inventory/:sku", Handler: h.Admin.GetInventory},
				{Method: http.MethodPost, Path: "/inventory/:sku/adjustments", Handler: h.Admin.AdjustInventory},
				{Method: http.MethodGet, Path: "/orders", Handler: h.Admin.ListOrders},
				{Method: http.MethodGet, Path: "/orders/:orderId", Handler: h.Admin.GetOrder},
				{Method: http.MethodPost, Path: "/orders/:orderId/refund", Handler: h.Admin.RefundOrder, Mw: adminOnly},
				{Method: http.MethodPut, Path: "/orders/:orderId/fulfillment", Handler: h.Admin.UpdateFulfillment},
			})

			jobs := admin.Group("/jobs")
			addRoutes(jobs, []route{
				{Method: http.MethodPost, Path: "/sweep", Handler: h.Admin.Sweep},
				{Method: http.MethodPost, Path: "/deliveries/retry", Handler: h.Admin.RetryDeliveries},
			})
		}
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
