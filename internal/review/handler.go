package review

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

type upsertRequest struct {
	Rating int     `json:"rating" binding:"required,min=1,max=5"`
	Title  *string `json:"title"`
	Body   *string `json:"body"`
}

func (h *Handler) Index(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	page := 1
	if p, err := utils.ToUint(c.Query("page")); err == nil && p > 0 {
		page = int(p)
	}

	view, err := h.svc.GetReviews(c.Request.Context(), c.Param("slug"), userID, page)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *Handler) Upsert(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	rv, err := h.svc.Upsert(c.Request.Context(), c.Param("slug"), userID, req.Rating, req.Title, req.Body)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": rv})
}

func (h *Handler) Destroy(c *gin.Context) {
	userID, _ := utils.GetUserIDFromContext(c.Request.Context())

	if err := h.svc.Delete(c.Request.Context(), c.Param("slug"), userID); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var validation *ValidationError

	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "review operation failed"})
	}
}
