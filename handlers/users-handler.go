package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"order-management-service/internal/users"

	"github.com/gin-gonic/gin"
)

const tokenTTL = 24 * time.Hour

// Signup registers a new user. The response never carries the password hash.
func (h *Handler) Signup(c *gin.Context) {
	var nu users.NewUser
	if err := c.ShouldBindJSON(&nu); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}
	if err := h.checkPayload(nu); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.u.InsertUser(c.Request.Context(), nu)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and issues a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var login users.Login
	if err := c.ShouldBindJSON(&login); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body."})
		return
	}
	if err := h.checkPayload(login); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.u.Authenticate(c.Request.Context(), login.Email, login.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
			return
		}
		respondError(c, err)
		return
	}

	token, err := h.keys.GenerateToken(user.ID, user.Email, tokenTTL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) ListUsers(c *gin.Context) {
	list, err := h.u.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return
	}

	user, err := h.u.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
