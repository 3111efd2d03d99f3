package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/Houeta/pricewatch/internal/models"
	"github.com/Houeta/pricewatch/internal/repository"
	"github.com/Houeta/pricewatch/internal/services/alerts"
	"github.com/Houeta/pricewatch/internal/services/chatlink"
	"github.com/Houeta/pricewatch/internal/services/orchestrator"
	"github.com/Houeta/pricewatch/internal/sites"
	"github.com/gin-gonic/gin"
)

const invalidSiteMessage = "Invalid site parameter"

// Store is the read side of the catalogue plus the few user writes exposed over HTTP.
type Store interface {
	ListShops(ctx context.Context) ([]models.Shop, error)
	GetShop(ctx context.Context, id string) (*models.Shop, error)
	CreateShop(ctx context.Context, shop *models.Shop) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByShop(ctx context.Context, shopID string) ([]models.Product, error)
	ListProductsByCategory(ctx context.Context, slug string) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListHistory(ctx context.Context, productID string) ([]models.PriceHistoryEntry, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

type AlertService interface {
	Create(ctx context.Context, userID string, in alerts.NewAlert) (*models.Alert, error)
	ListForUser(ctx context.Context, userID string) ([]models.Alert, error)
	Delete(ctx context.Context, userID, id string) error
}

// ChatLinker issues codes that link a Telegram chat to the calling user.
type ChatLinker interface {
	Issue(ctx context.Context, userID string) (*chatlink.Code, error)
}

type SiteRegistry interface {
	Lookup(id string) (sites.Site, error)
	IDs() []string
}

// Identity resolves the calling user, returning an empty string for anonymous callers.
type Identity interface {
	UserID(r *http.Request) string
}

// HeaderIdentity trusts a user id header set by an upstream authenticating proxy.
type HeaderIdentity struct {
	Header string
}

func (h HeaderIdentity) UserID(r *http.Request) string {
	name := h.Header
	if name == "" {
		name = "X-User-ID"
	}

	return strings.TrimSpace(r.Header.Get(name))
}

// Handler holds the HTTP handlers.
type Handler struct {
	log      *slog.Logger
	pipeline orchestrator.Interface
	registry SiteRegistry
	store    Store
	alerts   AlertService
	identity Identity
	links    ChatLinker // nil when the bot is disabled
}

func NewHandler(
	log *slog.Logger,
	pipeline orchestrator.Interface,
	registry SiteRegistry,
	store Store,
	alertService AlertService,
	identity Identity,
	links ChatLinker,
) *Handler {
	return &Handler{
		log:      log,
		pipeline: pipeline,
		registry: registry,
		store:    store,
		alerts:   alertService,
		identity: identity,
		links:    links,
	}
}

// Scrape runs one scrape invocation.
func (h *Handler) Scrape(c *gin.Context) {
	const opn = "httpapi.Scrape"

	var req orchestrator.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.ErrorContext(c.Request.Context(), "Failed to decode scrape request", "op", opn, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if req.Site == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": invalidSiteMessage})
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, sites.ErrUnknownSite) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalidSiteMessage})
			return
		}
		h.log.ErrorContext(c.Request.Context(), "Scrape failed", "op", opn, "site", req.Site, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

type siteView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	BaseURL      string   `json:"base_url"`
	DefaultPaths []string `json:"default_paths"`
	Categories   []string `json:"categories"`
}

func (h *Handler) ListSites(c *gin.Context) {
	ids := h.registry.IDs()
	views := make([]siteView, 0, len(ids))
	for _, id := range ids {
		site, err := h.registry.Lookup(id)
		if err != nil {
			h.fail(c, err)
			return
		}
		views = append(views, siteView{
			ID:           id,
			Name:         site.Name,
			BaseURL:      site.BaseURL,
			DefaultPaths: site.DefaultPaths,
			Categories:   sortedKeys(site.Categories),
		})
	}

	c.JSON(http.StatusOK, views)
}

func (h *Handler) ListShops(c *gin.Context) {
	shops, err := h.store.ListShops(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(shops))
}

type createShopInput struct {
	Name    string `json:"name" binding:"required"`
	BaseURL string `json:"base_url"`
}

func (h *Handler) CreateShop(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var input createShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "shop name must not be blank"})
		return
	}

	shop := &models.Shop{Name: name, BaseURL: strings.TrimSpace(input.BaseURL), OwnerID: userID}
	if err := h.store.CreateShop(c.Request.Context(), shop); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, shop)
}

func (h *Handler) ListShopProducts(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.store.GetShop(ctx, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	products, err := h.store.ListProductsByShop(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(products))
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.store.ListProducts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(products))
}

func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.store.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}

	if err := h.store.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetPriceHistory(c *gin.Context) {
	ctx := c.Request.Context()
	if _, err := h.store.GetProduct(ctx, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	history, err := h.store.ListHistory(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(history))
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.store.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(categories))
}

func (h *Handler) ListCategoryProducts(c *gin.Context) {
	products, err := h.store.ListProductsByCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(products))
}

func (h *Handler) ListAlerts(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	owned, err := h.alerts.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(owned))
}

func (h *Handler) CreateAlert(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var input alerts.NewAlert
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	alert, err := h.alerts.Create(c.Request.Context(), userID, input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

func (h *Handler) DeleteAlert(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	if err := h.alerts.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateChatLink(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	if h.links == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "telegram bot is not configured"})
		return
	}

	code, err := h.links.Issue(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, code)
}

func (h *Handler) requireUser(c *gin.Context) (string, bool) {
	userID := h.identity.UserID(c.Request)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}

	return userID, true
}

// fail maps an error to a status code and writes it.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, repository.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, repository.ErrConflict):
		status, message = http.StatusConflict, "already exists"
	case errors.Is(err, models.ErrMissingAlertOwner), errors.Is(err, chatlink.ErrMissingUser):
		status, message = http.StatusUnauthorized, rootCause(err).Error()
	case errors.Is(err, models.ErrAlertTarget),
		errors.Is(err, models.ErrInvalidDirection),
		errors.Is(err, models.ErrInvalidThreshold),
		errors.Is(err, alerts.ErrTargetNotFound):
		status = http.StatusBadRequest
		message = rootCause(err).Error()
	default:
		h.log.ErrorContext(c.Request.Context(), "Request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	}

	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}

// nonNil keeps empty lists encoded as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}
