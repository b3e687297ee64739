package handlers

import (
	"net/http"
	"strconv"

	"order-management-service/internal/customers"

	"github.com/gin-gonic/gin"
)

func customerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return 0, false
	}
	return id, true
}

// ListCustomers serves all customers, optionally narrowed by the search term
// matched against id and name.
func (h *Handler) ListCustomers(c *gin.Context) {
	list, err := h.cst.ListCustomers(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	cust, err := h.cst.GetCustomerByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

// CreateCustomer records a new customer owned by the authenticated user.
func (h *Handler) CreateCustomer(c *gin.Context) {
	createdBy := principalID(c)
	if createdBy == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var nc customers.NewCustomer
	if err := c.ShouldBindJSON(&nc); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}
	if err := h.checkPayload(nc); err != nil {
		respondError(c, err)
		return
	}

	cust, err := h.cst.InsertCustomer(c.Request.Context(), *createdBy, nc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cust)
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	var nc customers.NewCustomer
	if err := c.ShouldBindJSON(&nc); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}
	if err := h.checkPayload(nc); err != nil {
		respondError(c, err)
		return
	}

	cust, err := h.cst.UpdateCustomer(c.Request.Context(), id, nc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *Handler) PatchCustomer(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	var uc customers.UpdateCustomer
	if err := c.ShouldBindJSON(&uc); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}
	if err := h.checkPayload(uc); err != nil {
		respondError(c, err)
		return
	}

	cust, err := h.cst.PatchCustomer(c.Request.Context(), id, uc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	if err := h.cst.DeleteCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
