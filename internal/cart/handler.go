package cart

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

type addItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Qty       int  `json:"qty" binding:"required,min=1"`
}

type updateItemRequest struct {
	Qty int `json:"qty" binding:"required,min=1"`
}

func (h *Handler) Show(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	view, err := h.svc.GetCart(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load cart"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) AddItem(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	view, err := h.svc.AddItem(c.Request.Context(), AddItemParams{
		UserID:    userID,
		ProductID: req.ProductID,
		Qty:       req.Qty,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	itemID, err := utils.ToUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "invalid cart item id"})
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	view, err := h.svc.UpdateItem(c.Request.Context(), UpdateItemParams{
		UserID: userID,
		ItemID: itemID,
		Qty:    req.Qty,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	itemID, err := utils.ToUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "invalid cart item id"})
		return
	}

	view, err := h.svc.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch err {
	case ErrProductNotFound, ErrCartItemNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case ErrInvalidQuantity, ErrInsufficientStock:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "cart operation failed"})
	}
}
