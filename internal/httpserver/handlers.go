package httpserver

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/query"
	"hakey-storefront/internal/service/account"
	"hakey-storefront/internal/service/admin"
	"hakey-storefront/internal/service/cart"
	"hakey-storefront/internal/service/session"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

type cartResponse struct {
	Items        []domain.LineItem    `json:"items"`
	Total        float64              `json:"total"`
	ItemCount    int                  `json:"itemCount"`
	Notification *domain.Notification `json:"notification,omitempty"`
}

func toCartResponse(st cart.State) cartResponse {
	return cartResponse{
		Items:        st.Items,
		Total:        st.Total(),
		ItemCount:    st.ItemCount(),
		Notification: st.Notification,
	}
}

type sessionResponse struct {
	User            *domain.UserProfile `json:"user"`
	IsAuthenticated bool                `json:"isAuthenticated"`
	IsLoading       bool                `json:"isLoading"`
}

func toSessionResponse(st session.State) sessionResponse {
	return sessionResponse{
		User:            st.User,
		IsAuthenticated: st.IsAuthenticated(),
		IsLoading:       st.Loading,
	}
}

type addItemRequest struct {
	ID domain.GameID `json:"id" binding:"required"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) listCatalog(c *gin.Context) {
	if isTrue(c.Query("featured")) {
		games, err := h.deps.CatalogSvc.Featured(c.Request.Context())
		if err != nil {
			h.writeError(c, "catalog featured", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"games": games})
		return
	}
	listing, err := h.deps.CatalogSvc.Browse(c.Request.Context(), query.Params{
		Category: c.Query("category"),
		Term:     c.Query("q"),
		SortBy:   c.Query("sort"),
	})
	if err != nil {
		h.writeError(c, "catalog list", err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *handlers) getGame(c *gin.Context) {
	game, err := h.deps.CatalogSvc.Get(c.Request.Context(), domain.GameID(c.Param("id")))
	if err != nil {
		h.writeError(c, "catalog get", err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(h.deps.Cart.State()))
}

// addCartItem resolves the game from the catalog and snapshots it into the
// cart.
func (h *handlers) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	game, err := h.deps.CatalogSvc.Get(c.Request.Context(), req.ID)
	if err != nil {
		h.writeError(c, "cart add", err)
		return
	}
	st := h.deps.Cart.AddItem(c.Request.Context(), *game)
	c.JSON(http.StatusOK, toCartResponse(st))
}

func (h *handlers) setCartQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	st := h.deps.Cart.SetQuantity(c.Request.Context(), domain.GameID(c.Param("id")), *req.Quantity)
	c.JSON(http.StatusOK, toCartResponse(st))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	st := h.deps.Cart.RemoveItem(c.Request.Context(), domain.GameID(c.Param("id")))
	c.JSON(http.StatusOK, toCartResponse(st))
}

func (h *handlers) clearCart(c *gin.Context) {
	st := h.deps.Cart.Clear(c.Request.Context())
	c.JSON(http.StatusOK, toCartResponse(st))
}

func (h *handlers) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, toSessionResponse(h.deps.Session.State()))
}

func (h *handlers) login(c *gin.Context) {
	var req account.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if _, err := h.deps.AccountSvc.Login(c.Request.Context(), req); err != nil {
		h.writeError(c, "session login", err)
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(h.deps.Session.State()))
}

func (h *handlers) register(c *gin.Context) {
	var req account.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if _, err := h.deps.AccountSvc.Register(c.Request.Context(), req); err != nil {
		h.writeError(c, "session register", err)
		return
	}
	c.JSON(http.StatusCreated, toSessionResponse(h.deps.Session.State()))
}

// updateProfile never lets the caller change the admin flag.
func (h *handlers) updateProfile(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}
	patch.IsAdmin = nil
	st := h.deps.Session.UpdateProfile(c.Request.Context(), patch)
	c.JSON(http.StatusOK, toSessionResponse(st))
}

func (h *handlers) logout(c *gin.Context) {
	st := h.deps.Session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, toSessionResponse(st))
}

func (h *handlers) adminOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories":      admin.Categories,
		"platforms":       admin.Platforms,
		"defaultPlatform": admin.DefaultPlatform,
	})
}

func (h *handlers) adminListGames(c *gin.Context) {
	games, err := h.deps.AdminSvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, "admin list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *handlers) adminCreateGame(c *gin.Context) {
	var form admin.GameForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	game, err := h.deps.AdminSvc.Create(c.Request.Context(), form)
	if err != nil {
		h.writeError(c, "admin create", err)
		return
	}
	c.JSON(http.StatusCreated, game)
}

func (h *handlers) adminReplaceGame(c *gin.Context) {
	var form admin.GameForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	game, err := h.deps.AdminSvc.Replace(c.Request.Context(), domain.GameID(c.Param("id")), form)
	if err != nil {
		h.writeError(c, "admin replace", err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *handlers) adminEditGame(c *gin.Context) {
	var form admin.EditForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c)
		return
	}
	game, err := h.deps.AdminSvc.Edit(c.Request.Context(), domain.GameID(c.Param("id")), form)
	if err != nil {
		h.writeError(c, "admin edit", err)
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *handlers) adminDeleteGame(c *gin.Context) {
	if err := h.deps.AdminSvc.Delete(c.Request.Context(), domain.GameID(c.Param("id"))); err != nil {
		h.writeError(c, "admin delete", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func isTrue(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
