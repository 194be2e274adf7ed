package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-backend/controllers"
	"storefront-backend/events"
	"storefront-backend/models"
	"storefront-backend/repository/repotest"
	"storefront-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type APISuite struct {
	suite.Suite
	store  *repotest.Store
	admins *services.AdminService
	engine *gin.Engine
	dbUp   bool
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.store = repotest.New()
	s.dbUp = true

	tokens := services.NewTokenService("0123456789abcdef0123456789abcdef", "jwt-secret", time.Hour)
	uploadDir := s.T().TempDir()
	media, err := services.NewLocalUploader(uploadDir, StaticPrefix)
	s.Require().NoError(err)

	s.admins = services.NewAdminService(s.store.Admins, tokens)
	ctrl := &controllers.Controller{
		Admins:    s.admins,
		Customers: services.NewCustomerService(s.store.Users, s.store.Carts, tokens),
		Products:  services.NewProductService(s.store.Products, nil, media),
		Carts:     services.NewCartService(s.store.Carts, s.store.Products),
		Orders:    services.NewOrderService(s.store.Orders, s.store.Products, s.store.Carts, s.store.PromoCodes, nil, events.Nop{}),
		Promos:    services.NewPromoService(s.store.PromoCodes),
		Stats:     services.NewStatsService(s.store.Admins, s.store.Users, s.store.Products, s.store.Orders),
		DB: controllers.PingFunc(func(context.Context) error {
			if !s.dbUp {
				return errors.New("down")
			}
			return nil
		}),
	}
	s.engine = Setup(ctrl, tokens, Options{Env: "test", UploadDir: uploadDir})

	created, err := s.admins.EnsureSuperAdmin(context.Background(), "root", "root@shop.test", "supersecret")
	s.Require().NoError(err)
	s.Require().True(created)
}

func (s *APISuite) do(method, path, token string, body any) (int, map[string]any) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(req)
}

func (s *APISuite) send(req *http.Request) (int, map[string]any) {
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	out := map[string]any{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w.Code, out
}

func (s *APISuite) adminToken(username, password string) string {
	code, body := s.do(http.MethodPost, "/api/admin/auth/login", "", gin.H{"username": username, "password": password})
	s.Require().Equal(http.StatusOK, code, body)
	return body["token"].(string)
}

func (s *APISuite) customerToken() string {
	code, body := s.do(http.MethodPost, "/api/client-auth/register", "", gin.H{
		"name": "Ana", "email": "ana@shop.test", "password": "Passw0rd!",
	})
	s.Require().Equal(http.StatusCreated, code, body)
	return body["token"].(string)
}

func (s *APISuite) createProduct(token string, stock int) string {
	code, body := s.do(http.MethodPost, "/api/admin/products", token, gin.H{
		"name": "Desk Lamp", "sku": "lamp-01", "category": "lighting", "price": 25.5, "stock": stock,
	})
	s.Require().Equal(http.StatusCreated, code, body)
	return body["product"].(map[string]any)["id"].(string)
}

func (s *APISuite) TestHealth() {
	code, body := s.do(http.MethodGet, "/api/health", "", nil)
	s.Equal(http.StatusOK, code)
	s.Equal("connected", body["database"])

	s.dbUp = false
	_, body = s.do(http.MethodGet, "/api/health", "", nil)
	s.Equal("disconnected", body["database"])
}

func (s *APISuite) TestUnknownRoute() {
	code, body := s.do(http.MethodGet, "/api/nope", "", nil)
	s.Equal(http.StatusNotFound, code)
	s.Equal("Endpoint not found", body["error"])
}

func (s *APISuite) TestAdminLoginFailures() {
	code, body := s.do(http.MethodPost, "/api/admin/auth/login", "", gin.H{"username": "root", "password": "wrong"})
	s.Equal(http.StatusUnauthorized, code)
	s.Equal("Invalid credentials", body["error"])

	code, _ = s.do(http.MethodPost, "/api/admin/auth/login", "", gin.H{"username": "root"})
	s.Equal(http.StatusBadRequest, code)
}

func (s *APISuite) TestAdminRoutesNeedToken() {
	code, _ := s.do(http.MethodGet, "/api/admin/stats", "", nil)
	s.Equal(http.StatusUnauthorized, code)

	customer := s.customerToken()
	code, _ = s.do(http.MethodGet, "/api/admin/stats", customer, nil)
	s.Equal(http.StatusUnauthorized, code)
}

func (s *APISuite) TestAdminManagementIsSuperadminOnly() {
	root := s.adminToken("root", "supersecret")
	code, body := s.do(http.MethodPost, "/api/admin/admins", root, gin.H{
		"username": "ops", "email": "ops@shop.test", "password": "opspassword",
	})
	s.Require().Equal(http.StatusCreated, code, body)

	ops := s.adminToken("ops", "opspassword")
	code, _ = s.do(http.MethodGet, "/api/admin/admins", ops, nil)
	s.Equal(http.StatusForbidden, code)

	code, body = s.do(http.MethodGet, "/api/admin/auth/me", ops, nil)
	s.Equal(http.StatusOK, code)
	s.Equal("ops", body["admin"].(map[string]any)["username"])
}

func (s *APISuite) TestProductCatalogue() {
	root := s.adminToken("root", "supersecret")
	id := s.createProduct(root, 3)

	code, body := s.do(http.MethodGet, "/api/products?category=lighting&sort=price_asc", "", nil)
	s.Equal(http.StatusOK, code)
	s.EqualValues(1, body["total"])

	code, body = s.do(http.MethodGet, "/api/products/"+id, "", nil)
	s.Equal(http.StatusOK, code)
	s.Equal("LAMP-01", body["product"].(map[string]any)["sku"])

	code, _ = s.do(http.MethodGet, "/api/products/not-an-id", "", nil)
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodGet, "/api/products?min_price=abc", "", nil)
	s.Equal(http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPut, "/api/admin/products/"+id, root, gin.H{"is_active": false})
	s.Equal(http.StatusOK, code)

	code, _ = s.do(http.MethodGet, "/api/products/"+id, "", nil)
	s.Equal(http.StatusNotFound, code, "hidden products are invisible to the storefront")

	code, body = s.do(http.MethodGet, "/api/admin/products", root, nil)
	s.Equal(http.StatusOK, code)
	s.EqualValues(1, body["total"])

	code, _ = s.do(http.MethodDelete, "/api/admin/products/"+id, root, nil)
	s.Equal(http.StatusOK, code)
	code, _ = s.do(http.MethodDelete, "/api/admin/products/"+id, root, nil)
	s.Equal(http.StatusNotFound, code)
}

func (s *APISuite) TestDuplicateRegistration() {
	s.customerToken()
	code, body := s.do(http.MethodPost, "/api/client-auth/register", "", gin.H{
		"name": "Ana", "email": "ANA@shop.test", "password": "Passw0rd!",
	})
	s.Equal(http.StatusConflict, code)
	s.Equal("Email is already registered", body["error"])
}

func (s *APISuite) TestRegisterRejectsOverlongPassword() {
	code, body := s.do(http.MethodPost, "/api/client-auth/register", "", gin.H{
		"name": "Ana", "email": "ana@shop.test", "password": "Aa1" + strings.Repeat("x", 80),
	})
	s.Equal(http.StatusBadRequest, code, body)
}

func (s *APISuite) TestCheckoutFlow() {
	root := s.adminToken("root", "supersecret")
	productID := s.createProduct(root, 3)
	code, _ := s.do(http.MethodPost, "/api/admin/promo-codes", root, gin.H{
		"code": "save10", "type": "percentage", "value": 10,
	})
	s.Require().Equal(http.StatusCreated, code)

	customer := s.customerToken()

	code, body := s.do(http.MethodPost, "/api/cart/items", customer, gin.H{"product_id": productID, "quantity": 4})
	s.Equal(http.StatusConflict, code, body)

	code, body = s.do(http.MethodPost, "/api/cart/items", customer, gin.H{"product_id": productID, "quantity": 2})
	s.Require().Equal(http.StatusOK, code, body)
	s.EqualValues(51, body["cart"].(map[string]any)["subtotal"])

	code, body = s.do(http.MethodPost, "/api/promo-codes/validate", "", gin.H{"code": "SAVE10", "subtotal": 51})
	s.Equal(http.StatusOK, code)
	s.Equal(true, body["valid"])
	s.EqualValues(5.1, body["discount"])

	code, body = s.do(http.MethodPost, "/api/orders", customer, gin.H{
		"shipping_address": gin.H{"street": "1 Main St", "city": "Lisbon", "postal_code": "1000", "country": "PT"},
		"payment_method":   "card",
		"promo_code":       "save10",
	})
	s.Require().Equal(http.StatusCreated, code, body)
	order := body["order"].(map[string]any)
	s.Equal("pending", order["status"])
	s.EqualValues(45.9, order["total"])
	orderID := order["id"].(string)

	code, body = s.do(http.MethodGet, "/api/cart", customer, nil)
	s.Equal(http.StatusOK, code)
	s.EqualValues(0, body["cart"].(map[string]any)["item_count"])

	code, body = s.do(http.MethodGet, "/api/admin/products/"+productID, root, nil)
	s.Equal(http.StatusOK, code)
	s.EqualValues(1, body["product"].(map[string]any)["stock"])

	code, body = s.do(http.MethodPut, "/api/admin/orders/"+orderID+"/status", root, gin.H{"status": "shipped"})
	s.Equal(http.StatusConflict, code, body)

	code, body = s.do(http.MethodPut, "/api/admin/orders/"+orderID+"/status", root, gin.H{"status": "paid"})
	s.Equal(http.StatusOK, code, body)

	code, _ = s.do(http.MethodPost, "/api/orders/"+orderID+"/cancel", customer, nil)
	s.Equal(http.StatusConflict, code, "only pending orders can be cancelled by the customer")

	code, body = s.do(http.MethodGet, "/api/admin/stats", root, nil)
	s.Equal(http.StatusOK, code)
	stats := body["stats"].(map[string]any)
	s.EqualValues(1, stats["total_orders"])
	s.EqualValues(45.9, stats["revenue"])
}

func (s *APISuite) TestCheckoutEmptyCart() {
	customer := s.customerToken()
	code, body := s.do(http.MethodPost, "/api/orders", customer, gin.H{
		"shipping_address": gin.H{"street": "1 Main St", "city": "Lisbon", "postal_code": "1000", "country": "PT"},
		"payment_method":   "cod",
	})
	s.Equal(http.StatusBadRequest, code)
	s.Equal("cart is empty", body["error"])
}

func (s *APISuite) TestUploadImage() {
	root := s.adminToken("root", "supersecret")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "photo.png")
	s.Require().NoError(err)
	_, err = part.Write(pngHeader)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+root)
	code, body := s.send(req)
	s.Require().Equal(http.StatusOK, code, body)

	url := body["url"].(string)
	s.Contains(url, StaticPrefix+"/")

	code, _ = s.send(httptest.NewRequest(http.MethodGet, url, nil))
	s.Equal(http.StatusOK, code)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/upload", bytes.NewReader(nil))
	req.Header.Set("Authorization", "Bearer "+root)
	code, _ = s.send(req)
	s.Equal(http.StatusBadRequest, code)
}

func (s *APISuite) TestUsersListHidesPasswords() {
	root := s.adminToken("root", "supersecret")
	s.customerToken()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+root)
	s.engine.ServeHTTP(w, req)
	s.Equal(http.StatusOK, w.Code)
	s.NotContains(w.Body.String(), "password")

	var list models.UserList
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &list))
	s.EqualValues(1, list.Total)
}
