package handlers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"database/sql"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"order-management-service/internal/auth"
	"order-management-service/internal/customers"
	"order-management-service/internal/orders"
	"order-management-service/internal/products"
	"order-management-service/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T) *auth.Keys {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})

	keys, err := auth.NewKeys(privatePEM, publicPEM)
	require.NoError(t, err)
	return keys
}

type stubProducts struct {
	product  products.Product
	list     []products.Product
	count    int
	getErr   error
	inserted *products.NewProduct
}

func (s *stubProducts) InsertProduct(_ context.Context, np products.NewProduct) (products.Product, error) {
	s.inserted = &np
	return s.product, nil
}
func (s *stubProducts) GetProductByID(context.Context, int64) (products.Product, error) {
	return s.product, s.getErr
}
func (s *stubProducts) UpdateProduct(context.Context, int64, products.NewProduct) (products.Product, error) {
	return s.product, s.getErr
}
func (s *stubProducts) PatchProduct(context.Context, int64, products.UpdateProduct) (products.Product, error) {
	return s.product, s.getErr
}
func (s *stubProducts) DeleteProduct(context.Context, int64) error { return s.getErr }
func (s *stubProducts) ListProducts(context.Context, products.Filter, int, int) ([]products.Product, int, error) {
	return s.list, s.count, nil
}
func (s *stubProducts) ProductInfo(context.Context) (products.Info, error) {
	return products.Info{Products: s.list, Count: s.count}, nil
}

type stubOrders struct {
	order     orders.Order
	createdBy *int64
	getErr    error
	revenue   orders.MonthRevenueTotal
}

func (s *stubOrders) CreateOrder(_ context.Context, createdBy *int64, _ orders.NewOrder) (orders.Order, error) {
	s.createdBy = createdBy
	return s.order, nil
}
func (s *stubOrders) ReplaceOrder(context.Context, uuid.UUID, orders.NewOrder) (orders.Order, error) {
	return s.order, s.getErr
}
func (s *stubOrders) MergeOrder(context.Context, uuid.UUID, orders.PatchOrder) (orders.Order, error) {
	return s.order, s.getErr
}
func (s *stubOrders) DeleteOrder(context.Context, uuid.UUID) error { return s.getErr }
func (s *stubOrders) GetOrder(context.Context, uuid.UUID) (orders.Order, error) {
	return s.order, s.getErr
}
func (s *stubOrders) ListOrders(context.Context, orders.Filter, int, int) ([]orders.Order, int, error) {
	return []orders.Order{s.order}, 1, nil
}
func (s *stubOrders) Revenue(context.Context, orders.Filter) (orders.MonthRevenueTotal, error) {
	return s.revenue, nil
}
func (s *stubOrders) MonthlyRevenue(context.Context) ([]orders.MonthRevenue, error) {
	return []orders.MonthRevenue{}, nil
}
func (s *stubOrders) TopSelling(context.Context) ([]orders.ProductSales, error) {
	return []orders.ProductSales{}, nil
}

type stubCustomers struct {
	customer  customers.Customer
	createdBy int64
	getErr    error
}

func (s *stubCustomers) InsertCustomer(_ context.Context, createdBy int64, _ customers.NewCustomer) (customers.Customer, error) {
	s.createdBy = createdBy
	return s.customer, nil
}
func (s *stubCustomers) UpdateCustomer(context.Context, int64, customers.NewCustomer) (customers.Customer, error) {
	return s.customer, s.getErr
}
func (s *stubCustomers) PatchCustomer(context.Context, int64, customers.UpdateCustomer) (customers.Customer, error) {
	return s.customer, s.getErr
}
func (s *stubCustomers) DeleteCustomer(context.Context, int64) error { return s.getErr }
func (s *stubCustomers) GetCustomerByID(context.Context, int64) (customers.Customer, error) {
	return s.customer, s.getErr
}
func (s *stubCustomers) ListCustomers(context.Context, string) ([]customers.Customer, error) {
	return []customers.Customer{s.customer}, nil
}

type stubUsers struct {
	user    users.User
	authErr error
}

func (s *stubUsers) InsertUser(context.Context, users.NewUser) (users.User, error) {
	return s.user, nil
}
func (s *stubUsers) Authenticate(context.Context, string, string) (users.User, error) {
	return s.user, s.authErr
}
func (s *stubUsers) GetUserByID(context.Context, int64) (users.User, error) {
	return s.user, nil
}
func (s *stubUsers) ListUsers(context.Context) ([]users.User, error) {
	return []users.User{s.user}, nil
}

type testAPI struct {
	engine *gin.Engine
	keys   *auth.Keys
	p      *stubProducts
	o      *stubOrders
	cst    *stubCustomers
	u      *stubUsers
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	keys := testKeys(t)
	p := &stubProducts{product: products.Product{ID: 1, Name: "Mug", Price: decimal.RequireFromString("9.99")}}
	o := &stubOrders{order: orders.Order{OrderID: uuid.New(), Status: orders.StatusPending}}
	cst := &stubCustomers{customer: customers.Customer{ID: 7, Name: "Ana", Email: "ana@example.com"}}
	u := &stubUsers{user: users.User{ID: 42, Email: "ana@example.com"}}

	return &testAPI{
		engine: API(p, o, cst, u, nil, keys),
		keys:   keys,
		p:      p,
		o:      o,
		cst:    cst,
		u:      u,
	}
}

func (a *testAPI) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, r)
	return w
}

func (a *testAPI) token(t *testing.T, userID int64) string {
	t.Helper()
	token, err := a.keys.GenerateToken(userID, "ana@example.com", time.Hour)
	require.NoError(t, err)
	return token
}

func TestPing(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "GET", "/ping", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListProductsOpenToAnonymous(t *testing.T) {
	a := newTestAPI(t)
	a.p.list = []products.Product{a.p.product}
	a.p.count = 1

	w := a.do(t, "GET", "/products", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Count   int               `json:"count"`
		Results []products.Product `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, 1, env.Count)
	require.Len(t, env.Results, 1)
	assert.Equal(t, "Mug", env.Results[0].Name)
}

func TestCreateProductRequiresAuth(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "POST", "/products", `{"name":"Mug","price":"9.99"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, a.p.inserted)
}

func TestCreateProductWithToken(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "POST", "/products", `{"name":"Mug","price":"9.99","stock":3}`, a.token(t, 42))

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, a.p.inserted)
	assert.Equal(t, "Mug", a.p.inserted.Name)
	assert.Equal(t, 3, a.p.inserted.Stock)
}

func TestCreateProductValidationBody(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "POST", "/products", `{"price":"9.99"}`, a.token(t, 42))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"This field is required."}, body["name"])
	assert.Nil(t, a.p.inserted)
}

func TestGetProductNotFound(t *testing.T) {
	a := newTestAPI(t)
	a.p.getErr = sql.ErrNoRows

	w := a.do(t, "GET", "/products/99", "", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateOrderAnonymous(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "POST", "/orders", `{"items":[{"product":1,"quantity":2}]}`, "")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, a.o.createdBy)
}

func TestCreateOrderStampsAuthenticatedCreator(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "POST", "/orders", `{"items":[{"product":1,"quantity":2}]}`, a.token(t, 42))

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, a.o.createdBy)
	assert.Equal(t, int64(42), *a.o.createdBy)
}

func TestGetOrderBadUUIDIs404(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "GET", "/orders/not-a-uuid", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMonthRevenue(t *testing.T) {
	a := newTestAPI(t)
	a.o.revenue = orders.MonthRevenueTotal{TotalRevenue: decimal.RequireFromString("150.50")}

	w := a.do(t, "GET", "/orders/month-revenue?month=2", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "150.5", body["total_revenue"])
}

func TestMonthRevenueRejectsBadMonth(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "GET", "/orders/month-revenue?month=13", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCustomerRequiresAuth(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "POST", "/customers", `{"name":"Ana","email":"ana@example.com"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateCustomerStampsOwner(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "POST", "/customers", `{"name":"Ana","email":"ana@example.com"}`, a.token(t, 42))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(42), a.cst.createdBy)
}

func TestDeleteOrderNoContent(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "DELETE", "/orders/"+uuid.NewString(), "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLoginIssuesToken(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, "POST", "/users/login", `{"email":"ana@example.com","password":"secret123"}`, "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body["token"])

	claims, err := a.keys.ValidateToken(body["token"])
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestAPI(t)
	a.u.authErr = users.ErrInvalidCredentials

	w := a.do(t, "POST", "/users/login", `{"email":"ana@example.com","password":"wrong-pass"}`, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsersRequiresAuth(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, "GET", "/users", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, "GET", "/users", "", a.token(t, 42))
	assert.Equal(t, http.StatusOK, w.Code)
}
