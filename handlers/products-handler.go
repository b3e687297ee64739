package handlers

import (
	"net/http"
	"strconv"

	"order-management-service/internal/products"

	"github.com/gin-gonic/gin"
)

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return 0, false
	}
	return id, true
}

// ListProducts serves the filtered, page-number paginated catalog.
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	f, err := products.ParseFilter(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	page, pageSize := pageParams(c.Request)
	list, count, err := h.p.ListProducts(ctx, f, pageSize, (page-1)*pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageNumberEnvelope(c.Request, count, page, pageSize, list))
}

// ProductInfo serves the catalog summary (all products, count, max price).
func (h *Handler) ProductInfo(c *gin.Context) {
	info, err := h.p.ProductInfo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := h.p.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var np products.NewProduct
	if err := c.ShouldBindJSON(&np); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}
	if err := h.checkPayload(np); err != nil {
		respondError(c, err)
		return
	}

	product, err := h.p.InsertProduct(c.Request.Context(), np)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var np products.NewProduct
	if err := c.ShouldBindJSON(&np); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}
	if err := h.checkPayload(np); err != nil {
		respondError(c, err)
		return
	}

	product, err := h.p.UpdateProduct(c.Request.Context(), id, np)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) PatchProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var up products.UpdateProduct
	if err := c.ShouldBindJSON(&up); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}
	if err := h.checkPayload(up); err != nil {
		respondError(c, err)
		return
	}

	product, err := h.p.PatchProduct(c.Request.Context(), id, up)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	if err := h.p.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
