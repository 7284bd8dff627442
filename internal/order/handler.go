package order

import (
	"errors"
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

type checkoutRequest struct {
	FullName     string  `json:"full_name" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	AddressLine1 string  `json:"address_line1" binding:"required"`
	AddressLine2 *string `json:"address_line2"`
	City         string  `json:"city" binding:"required"`
	PostalCode   string  `json:"postal_code" binding:"required"`
	Country      string  `json:"country"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) Checkout(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	order, err := h.svc.Checkout(c.Request.Context(), userID, ShippingDetails{
		FullName:     req.FullName,
		Phone:        req.Phone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
	}, c.GetHeader("Idempotency-Key"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   order,
	})
}

func (h *Handler) Index(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	page := 1
	if p, err := utils.ToUint(c.Query("page")); err == nil && p > 0 {
		page = int(p)
	}

	orders, total, err := h.svc.GetOrders(c.Request.Context(), userID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to load orders"})
		return
	}

	if orders == nil {
		orders = []*Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"page":   page,
	})
}

func (h *Handler) Show(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	orderID, err := utils.ToUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "invalid order id"})
		return
	}

	order, err := h.svc.GetOrderDetail(c.Request.Context(), orderID, userID, utils.IsAdmin(c.Request.Context()))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	orderID, err := utils.ToUint(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "invalid order id"})
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	order, err := h.svc.UpdateOrderStatus(c.Request.Context(), orderID, Status(req.Status))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var validation *ValidationError
	var unavailable *ProductUnavailableError
	var stock *InsufficientStockError
	var transition *InvalidTransitionError

	switch {
	case errors.Is(err, ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, ErrCartEmpty),
		errors.As(err, &validation),
		errors.As(err, &unavailable),
		errors.As(err, &stock),
		errors.As(err, &transition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	case errors.Is(err, ErrCheckoutTimeout):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "order operation failed"})
	}
}
