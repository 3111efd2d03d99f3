// Package httpapi exposes the scrape invocation and the catalogue/alert endpoints over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const corsAllowHeaders = "authorization, x-client-info, apikey, content-type, x-user-id"

// NewRouter builds the gin engine with every route registered.
func NewRouter(log *slog.Logger, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), cors())

	r.POST("/scrape-products", h.Scrape)

	api := r.Group("/api")
	{
		api.GET("/sites", h.ListSites)

		api.GET("/shops", h.ListShops)
		api.POST("/shops", h.CreateShop)
		api.GET("/shops/:id/products", h.ListShopProducts)

		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.DELETE("/products/:id", h.DeleteProduct)
		api.GET("/products/:id/history", h.GetPriceHistory)

		api.GET("/categories", h.ListCategories)
		api.GET("/categories/:slug/products", h.ListCategoryProducts)

		api.GET("/alerts", h.ListAlerts)
		api.POST("/alerts", h.CreateAlert)
		api.DELETE("/alerts/:id", h.DeleteAlert)

		api.POST("/telegram/link", h.CreateChatLink)
	}

	return r
}

// cors adds permissive cross-origin headers and answers pre-flight requests with an empty 200.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		header.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.LogAttrs(c.Request.Context(), levelFor(c.Writer.Status()), "HTTP request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}
