package wishlist

import (
	"net/http"

	"shopora-be/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type toggleRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

func (h *Handler) Index(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	view, err := h.svc.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load wishlist"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) Toggle(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	added, err := h.svc.Toggle(c.Request.Context(), userID, req.ProductID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": added})
}

func (h *Handler) Destroy(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	productID, err := utils.ToUint(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "invalid product id"})
		return
	}

	if err := h.svc.Remove(c.Request.Context(), userID, productID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Removed from wishlist"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch err {
	case ErrProductNotFound, ErrItemNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "wishlist operation failed"})
	}
}
