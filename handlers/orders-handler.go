package handlers

import (
	"net/http"

	"order-management-service/internal/orders"
	"order-management-service/pkg/ctxmanage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return uuid.Nil, false
	}
	return id, true
}

// ListOrders serves the filtered, limit/offset paginated order list.
func (h *Handler) ListOrders(c *gin.Context) {
	f, err := orders.ParseFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	limit, offset := limitOffsetParams(c.Request)
	list, count, err := h.o.ListOrders(c.Request.Context(), f, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, limitOffsetEnvelope(c.Request, count, limit, offset, list))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.o.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateOrder persists a new order with its items atomically. Authenticated
// callers are recorded as the creator; anonymous creation is allowed.
func (h *Handler) CreateOrder(c *gin.Context) {
	var no orders.NewOrder
	if err := c.ShouldBindJSON(&no); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}

	order, err := h.o.CreateOrder(c.Request.Context(), principalID(c), no)
	if err != nil {
		respondError(c, err)
		return
	}

	h.publishOrderEvent(ctxmanage.GetTraceIdOfRequest(c), order.OrderID, "created")
	c.JSON(http.StatusCreated, order)
}

// ReplaceOrder overwrites the order and replaces its item set with exactly the
// payload items.
func (h *Handler) ReplaceOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var no orders.NewOrder
	if err := c.ShouldBindJSON(&no); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}

	order, err := h.o.ReplaceOrder(c.Request.Context(), id, no)
	if err != nil {
		respondError(c, err)
		return
	}

	h.publishOrderEvent(ctxmanage.GetTraceIdOfRequest(c), order.OrderID, "replaced")
	c.JSON(http.StatusOK, order)
}

// MergeOrder updates only the fields present in the payload. Payload items with
// a matching id overwrite the existing item, the rest are added, and items left
// out of the payload are kept.
func (h *Handler) MergeOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var po orders.PatchOrder
	if err := c.ShouldBindJSON(&po); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}

	order, err := h.o.MergeOrder(c.Request.Context(), id, po)
	if err != nil {
		respondError(c, err)
		return
	}

	h.publishOrderEvent(ctxmanage.GetTraceIdOfRequest(c), order.OrderID, "updated")
	c.JSON(http.StatusOK, order)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	if err := h.o.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	h.publishOrderEvent(ctxmanage.GetTraceIdOfRequest(c), id, "deleted")
	c.Status(http.StatusNoContent)
}

// MonthRevenue serves total revenue over the orders matching the filter.
func (h *Handler) MonthRevenue(c *gin.Context) {
	f, err := orders.ParseFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	total, err := h.o.Revenue(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, total)
}

// MonthlyRevenue serves the per-month revenue breakdown, ascending.
func (h *Handler) MonthlyRevenue(c *gin.Context) {
	result, err := h.o.MonthlyRevenue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// TopSelling serves the five products with the highest total quantity sold.
func (h *Handler) TopSelling(c *gin.Context) {
	result, err := h.o.TopSelling(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
