// Package handlers wires the HTTP API. Handlers depend on small store interfaces
// so they can be exercised without a database.
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"order-management-service/internal/auth"
	"order-management-service/internal/customers"
	"order-management-service/internal/orders"
	"order-management-service/internal/products"
	"order-management-service/internal/stores/kafka"
	"order-management-service/internal/users"
	"order-management-service/middleware"
	"order-management-service/pkg/ctxmanage"
	"order-management-service/pkg/fielderrs"
	"order-management-service/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ProductsStore interface {
	InsertProduct(ctx context.Context, np products.NewProduct) (products.Product, error)
	GetProductByID(ctx context.Context, id int64) (products.Product, error)
	UpdateProduct(ctx context.Context, id int64, np products.NewProduct) (products.Product, error)
	PatchProduct(ctx context.Context, id int64, up products.UpdateProduct) (products.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListProducts(ctx context.Context, f products.Filter, limit, offset int) ([]products.Product, int, error)
	ProductInfo(ctx context.Context) (products.Info, error)
}

type OrdersStore interface {
	CreateOrder(ctx context.Context, createdBy *int64, no orders.NewOrder) (orders.Order, error)
	ReplaceOrder(ctx context.Context, orderID uuid.UUID, no orders.NewOrder) (orders.Order, error)
	MergeOrder(ctx context.Context, orderID uuid.UUID, po orders.PatchOrder) (orders.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (orders.Order, error)
	ListOrders(ctx context.Context, f orders.Filter, limit, offset int) ([]orders.Order, int, error)
	Revenue(ctx context.Context, f orders.Filter) (orders.MonthRevenueTotal, error)
	MonthlyRevenue(ctx context.Context) ([]orders.MonthRevenue, error)
	TopSelling(ctx context.Context) ([]orders.ProductSales, error)
}

type CustomersStore interface {
	InsertCustomer(ctx context.Context, createdBy int64, nc customers.NewCustomer) (customers.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, nc customers.NewCustomer) (customers.Customer, error)
	PatchCustomer(ctx context.Context, id int64, uc customers.UpdateCustomer) (customers.Customer, error)
	DeleteCustomer(ctx context.Context, id int64) error
	GetCustomerByID(ctx context.Context, id int64) (customers.Customer, error)
	ListCustomers(ctx context.Context, search string) ([]customers.Customer, error)
}

type UsersStore interface {
	InsertUser(ctx context.Context, nu users.NewUser) (users.User, error)
	Authenticate(ctx context.Context, email, password string) (users.User, error)
	GetUserByID(ctx context.Context, id int64) (users.User, error)
	ListUsers(ctx context.Context) ([]users.User, error)
}

type Handler struct {
	p        ProductsStore
	o        OrdersStore
	cst      CustomersStore
	u        UsersStore
	k        *kafka.Conf
	keys     *auth.Keys
	validate *validator.Validate
}

func NewHandler(p ProductsStore, o OrdersStore, cst CustomersStore, u UsersStore, k *kafka.Conf, keys *auth.Keys) *Handler {
	validate := validator.New()
	// report errors under the json field names, the way clients see them
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{p: p, o: o, cst: cst, u: u, k: k, keys: keys, validate: validate}
}

// API assembles the gin engine with all routes and middleware.
func API(p ProductsStore, o OrdersStore, cst CustomersStore, u UsersStore, k *kafka.Conf, keys *auth.Keys) *gin.Engine {
	r := gin.New()

	m, err := middleware.NewMid(keys)
	if err != nil {
		panic(err)
	}
	h := NewHandler(p, o, cst, u, k, keys)

	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)

	prods := r.Group("/products")
	{
		prods.GET("", h.ListProducts)
		prods.GET("/info", h.ProductInfo)
		prods.GET("/:id", h.GetProduct)
		prods.POST("", m.Authentication(), h.CreateProduct)
		prods.PUT("/:id", m.Authentication(), h.UpdateProduct)
		prods.PATCH("/:id", m.Authentication(), h.PatchProduct)
		prods.DELETE("/:id", m.Authentication(), h.DeleteProduct)
	}

	ords := r.Group("/orders")
	{
		ords.GET("", h.ListOrders)
		ords.GET("/month-revenue", h.MonthRevenue)
		ords.GET("/top-selling", h.TopSelling)
		ords.GET("/monthly-revenue", h.MonthlyRevenue)
		ords.GET("/:order_id", h.GetOrder)
		ords.POST("", m.AuthenticationOptional(), h.CreateOrder)
		ords.PUT("/:order_id", m.AuthenticationOptional(), h.ReplaceOrder)
		ords.PATCH("/:order_id", m.AuthenticationOptional(), h.MergeOrder)
		ords.DELETE("/:order_id", m.AuthenticationOptional(), h.DeleteOrder)
	}

	custs := r.Group("/customers")
	{
		custs.GET("", h.ListCustomers)
		custs.GET("/:id", h.GetCustomer)
		custs.POST("", m.Authentication(), h.CreateCustomer)
		custs.PUT("/:id", h.UpdateCustomer)
		custs.PATCH("/:id", h.PatchCustomer)
		custs.DELETE("/:id", h.DeleteCustomer)
	}

	usrs := r.Group("/users")
	{
		usrs.POST("", h.Signup)
		usrs.POST("/login", h.Login)
		usrs.GET("", m.Authentication(), h.ListUsers)
		usrs.GET("/:id", m.Authentication(), h.GetUser)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// respondError maps domain errors onto the HTTP error contract: field errors are
// 400 bodies keyed by field, missing rows are 404, everything else is an opaque 500.
func respondError(c *gin.Context, err error) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	if fe, ok := fielderrs.From(err); ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, fe)
		return
	}
	if errors.Is(err, sql.ErrNoRows) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found."})
		return
	}

	slog.Error("request failed", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.Error, err.Error()))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
}

// checkPayload runs struct validation and converts failures to field errors.
func (h *Handler) checkPayload(v any) error {
	err := h.validate.Struct(v)
	if err == nil {
		return nil
	}

	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	fe := fielderrs.FieldErrors{}
	for _, vErr := range vErrs {
		switch vErr.Tag() {
		case "required":
			fe.Add(vErr.Field(), "This field is required.")
		case "email":
			fe.Add(vErr.Field(), "Enter a valid email address.")
		case "min":
			if vErr.Kind() == reflect.String {
				fe.Add(vErr.Field(), "Ensure this field has at least "+vErr.Param()+" characters.")
			} else {
				fe.Add(vErr.Field(), "Ensure this value is greater than or equal to "+vErr.Param()+".")
			}
		default:
			fe.Add(vErr.Field(), "Invalid value.")
		}
	}
	return fe
}

// claimsFromRequest returns the verified claims stored by the authentication
// middleware, if any.
func claimsFromRequest(c *gin.Context) (auth.Claims, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	return claims, ok
}

// principalID returns the authenticated user's id, or nil for anonymous callers.
func principalID(c *gin.Context) *int64 {
	claims, ok := claimsFromRequest(c)
	if !ok {
		return nil
	}
	id, err := claims.UserID()
	if err != nil {
		return nil
	}
	return &id
}

// publishOrderEvent emits a lifecycle event when a producer is configured.
// Failures are logged and never surfaced to the client.
func (h *Handler) publishOrderEvent(traceId string, orderID uuid.UUID, action string) {
	if h.k == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		event := kafka.OrderEvent{OrderID: orderID.String(), Action: action, At: time.Now()}
		if err := h.k.PublishOrderEvent(ctx, event); err != nil {
			slog.Error("publishing order event", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.Error, err.Error()))
		}
	}()
}
