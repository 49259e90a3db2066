package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"marketcart-be/internal/apperror"
	"marketcart-be/internal/auth"
	"marketcart-be/internal/cart"
	"marketcart-be/internal/checkout"
	"marketcart-be/internal/logger"
	"marketcart-be/internal/middleware"
	"marketcart-be/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret"

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) CartFor(ctx context.Context, userID uint) (cart.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(cart.Cart), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID uint, productID int64, quantity int) (*cart.CartItem, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.CartItem), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, cartID string, productID int64, quantity int) (*cart.CartItem, error) {
	args := m.Called(ctx, cartID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.CartItem), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, cartID string, productID int64) error {
	args := m.Called(ctx, cartID, productID)
	return args.Error(0)
}

func (m *MockCartService) ListCart(ctx context.Context, userID uint) (cart.CartView, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(cart.CartView), args.Error(1)
}

func (m *MockCartService) DrainForCheckout(ctx context.Context, cartID string, handoff cart.Handoff) ([]cart.CartItem, error) {
	args := m.Called(ctx, cartID, handoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.CartItem), args.Error(1)
}

func (m *MockCartService) ClearCart(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Checkout(ctx context.Context, userID uint) (checkout.Receipt, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(checkout.Receipt), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, userID uint) (user.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserService) DeleteAccount(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// stubRoles backs a real auth.Guard.
type stubRoles map[uint]auth.Role

func (s stubRoles) RoleOf(_ context.Context, userID uint) (auth.Role, error) {
	role, ok := s[userID]
	if !ok {
		return "", apperror.UserNotFound(userID)
	}
	return role, nil
}

type testAPI struct {
	handler  http.Handler
	carts    *MockCartService
	checkout *MockCheckoutService
	users    *MockUserService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	return newTestAPIWith(t, nil)
}

func newTestAPIWith(t *testing.T, configure func(*Deps)) *testAPI {
	t.Helper()
	api := &testAPI{
		carts:    new(MockCartService),
		checkout: new(MockCheckoutService),
		users:    new(MockUserService),
	}
	deps := Deps{
		Carts:          api.carts,
		Checkout:       api.checkout,
		Users:          api.users,
		Guard:          auth.NewGuard(stubRoles{1: auth.RoleUser, 2: auth.RoleAdmin}),
		JWTSecret:      testSecret,
		RequestTimeout: 5 * time.Second,
	}
	if configure != nil {
		configure(&deps)
	}
	api.handler = NewRouter(deps)
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, userID uint, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	if userID != 0 {
		token, err := auth.GenerateToken(testSecret, userID, auth.RoleUser, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/healthz", 0, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuth(t *testing.T) {
	api := newTestAPI(t)

	t.Run("Anonymous", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/cart", 0, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperror.CodeUserUnauthenticated, decodeBody(t, w)["code"])
	})

	t.Run("Bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		api.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Unknown user", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/cart", 99, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apperror.CodeUserNotFound, decodeBody(t, w)["code"])
	})

	t.Run("Admin route needs admin", func(t *testing.T) {
		w := api.do(t, http.MethodDelete, "/admin/users/5", 1, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, apperror.CodeUserForbidden, decodeBody(t, w)["code"])
		api.users.AssertNotCalled(t, "DeleteAccount", mock.Anything, mock.Anything)
	})
}

func TestGetCart(t *testing.T) {
	api := newTestAPI(t)
	now := time.Now()

	api.carts.On("ListCart", mock.Anything, uint(1)).Return(cart.CartView{
		Cart: cart.Cart{ID: "cart-1", UserID: 1, UpdatedAt: now},
		Items: []cart.CartItem{
			{ID: "i1", CartID: "cart-1", ProductID: 10, Quantity: 2, UnitPriceCents: 250},
			{ID: "i2", CartID: "cart-1", ProductID: 11, Quantity: 1, UnitPriceCents: 1000},
		},
	}, nil)

	w := api.do(t, http.MethodGet, "/cart", 1, "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "cart-1", body["id"])
	assert.Equal(t, float64(1500), body["total_cents"])
	assert.Equal(t, float64(3), body["item_count"])
	assert.Len(t, body["items"], 2)
}

func TestAddItem(t *testing.T) {
	t.Run("Created with default quantity", func(t *testing.T) {
		api := newTestAPI(t)
		api.carts.On("AddItem", mock.Anything, uint(1), int64(10), 1).
			Return(&cart.CartItem{ID: "i1", ProductID: 10, Quantity: 1, UnitPriceCents: 1999}, nil)

		w := api.do(t, http.MethodPost, "/cart/items", 1, `{"product_id":10}`)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, float64(1999), decodeBody(t, w)["unit_price_cents"])
	})

	t.Run("Already in cart carries existing item", func(t *testing.T) {
		api := newTestAPI(t)
		existing := cart.CartItem{ID: "i1", ProductID: 10, Quantity: 1}
		api.carts.On("AddItem", mock.Anything, uint(1), int64(10), 1).
			Return(nil, apperror.ProductAlreadyInCart(10, existing))

		w := api.do(t, http.MethodPost, "/cart/items", 1, `{"product_id":10,"quantity":1}`)
		require.Equal(t, http.StatusConflict, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, apperror.CodeCartProductAlreadyInCart, body["code"])
		details := body["details"].(map[string]any)
		assert.Equal(t, "i1", details["existing_item"].(map[string]any)["id"])
	})

	t.Run("Insufficient inventory", func(t *testing.T) {
		api := newTestAPI(t)
		api.carts.On("AddItem", mock.Anything, uint(1), int64(10), 9).
			Return(nil, apperror.InsufficientInventory(10, 9, 5))

		w := api.do(t, http.MethodPost, "/cart/items", 1, `{"product_id":10,"quantity":9}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		details := decodeBody(t, w)["details"].(map[string]any)
		assert.Equal(t, float64(5), details["available_quantity"])
	})

	t.Run("Malformed body", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(t, http.MethodPost, "/cart/items", 1, `{"product_id":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeRequestInvalid, decodeBody(t, w)["code"])
		api.carts.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Storage outage is a 500 without details", func(t *testing.T) {
		api := newTestAPI(t)
		api.carts.On("AddItem", mock.Anything, uint(1), int64(10), 1).
			Return(nil, errors.New("pq: connection refused"))

		w := api.do(t, http.MethodPost, "/cart/items", 1, `{"product_id":10}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestUpdateQuantity(t *testing.T) {
	t.Run("Updated", func(t *testing.T) {
		api := newTestAPI(t)
		api.carts.On("CartFor", mock.Anything, uint(1)).Return(cart.Cart{ID: "cart-1"}, nil)
		api.carts.On("UpdateQuantity", mock.Anything, "cart-1", int64(10), 3).
			Return(&cart.CartItem{ID: "i1", ProductID: 10, Quantity: 3}, nil)

		w := api.do(t, http.MethodPatch, "/cart/items/10", 1, `{"quantity":3}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(3), decodeBody(t, w)["quantity"])
	})

	t.Run("Zero removes", func(t *testing.T) {
		api := newTestAPI(t)
		api.carts.On("CartFor", mock.Anything, uint(1)).Return(cart.Cart{ID: "cart-1"}, nil)
		api.carts.On("UpdateQuantity", mock.Anything, "cart-1", int64(10), 0).Return(nil, nil)

		w := api.do(t, http.MethodPatch, "/cart/items/10", 1, `{"quantity":0}`)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Absent item", func(t *testing.T) {
		api := newTestAPI(t)
		api.carts.On("CartFor", mock.Anything, uint(1)).Return(cart.Cart{ID: "cart-1"}, nil)
		api.carts.On("UpdateQuantity", mock.Anything, "cart-1", int64(10), 2).
			Return(nil, apperror.CartItemNotFound("cart-1", 10))

		w := api.do(t, http.MethodPatch, "/cart/items/10", 1, `{"quantity":2}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apperror.CodeCartItemNotFound, decodeBody(t, w)["code"])
	})

	t.Run("Missing quantity", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(t, http.MethodPatch, "/cart/items/10", 1, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Bad product id", func(t *testing.T) {
		api := newTestAPI(t)

		w := api.do(t, http.MethodPatch, "/cart/items/abc", 1, `{"quantity":1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRemoveItem(t *testing.T) {
	api := newTestAPI(t)
	api.carts.On("CartFor", mock.Anything, uint(1)).Return(cart.Cart{ID: "cart-1"}, nil)
	api.carts.On("RemoveItem", mock.Anything, "cart-1", int64(10)).Return(nil).Twice()

	for i := 0; i < 2; i++ {
		w := api.do(t, http.MethodDelete, "/cart/items/10", 1, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	api.carts.AssertExpectations(t)
}

func TestClearCart(t *testing.T) {
	api := newTestAPI(t)
	api.carts.On("ClearCart", mock.Anything, uint(1)).Return(nil)

	w := api.do(t, http.MethodDelete, "/cart", 1, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCheckout(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		api := newTestAPI(t)
		api.checkout.On("Checkout", mock.Anything, uint(1)).Return(checkout.Receipt{
			OrderID: "order-1",
			Items:   []cart.CartItem{{ID: "i1", ProductID: 10, Quantity: 2, UnitPriceCents: 300}},
		}, nil)

		w := api.do(t, http.MethodPost, "/checkout", 1, "")
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "order-1", body["order_id"])
		assert.Equal(t, float64(600), body["total_cents"])
	})

	t.Run("Empty cart", func(t *testing.T) {
		api := newTestAPI(t)
		api.checkout.On("Checkout", mock.Anything, uint(1)).
			Return(checkout.Receipt{}, apperror.New(apperror.KindCartEmpty, ""))

		w := api.do(t, http.MethodPost, "/checkout", 1, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperror.CodeCartEmpty, decodeBody(t, w)["code"])
	})
}

func TestAccountDeletion(t *testing.T) {
	t.Run("Own account", func(t *testing.T) {
		api := newTestAPI(t)
		api.users.On("DeleteAccount", mock.Anything, uint(1)).Return(nil)

		w := api.do(t, http.MethodDelete, "/account", 1, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Admin deletes another user", func(t *testing.T) {
		api := newTestAPI(t)
		api.users.On("DeleteAccount", mock.Anything, uint(5)).Return(nil)

		w := api.do(t, http.MethodDelete, "/admin/users/5", 2, "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		api.users.AssertExpectations(t)
	})

	t.Run("Admin deletes unknown user", func(t *testing.T) {
		api := newTestAPI(t)
		api.users.On("DeleteAccount", mock.Anything, uint(7)).Return(apperror.UserNotFound(7))

		w := api.do(t, http.MethodDelete, "/admin/users/7", 2, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminMetrics(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/admin/metrics", 1, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodGet, "/admin/metrics", 2, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decodeBody(t, w), "cart_items_added")
}

func TestFailuresOutsideHandlersUseTaxonomy(t *testing.T) {
	t.Run("Panic is internal", func(t *testing.T) {
		api := newTestAPI(t)
		api.carts.On("ListCart", mock.Anything, uint(1)).Run(func(mock.Arguments) {
			panic("boom")
		})

		w := api.do(t, http.MethodGet, "/cart", 1, "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, apperror.CodeSystemInternal, body["code"])
		assert.NotContains(t, w.Body.String(), "boom")
	})

	t.Run("Request deadline is unavailable", func(t *testing.T) {
		api := newTestAPIWith(t, func(d *Deps) { d.RequestTimeout = 10 * time.Millisecond })
		api.carts.On("ListCart", mock.Anything, uint(1)).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return(cart.CartView{}, context.DeadlineExceeded)

		w := api.do(t, http.MethodGet, "/cart", 1, "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, apperror.CodeSystemUnavailable, decodeBody(t, w)["code"])
	})

	t.Run("Rate limit", func(t *testing.T) {
		api := newTestAPIWith(t, func(d *Deps) { d.Limiter = middleware.NewRateLimiter(1, 1) })
		api.carts.On("ListCart", mock.Anything, uint(1)).Return(cart.CartView{}, nil)

		first := api.do(t, http.MethodGet, "/cart", 1, "")
		second := api.do(t, http.MethodGet, "/cart", 1, "")

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Equal(t, apperror.CodeRequestRateLimited, decodeBody(t, second)["code"])
	})
}

func TestRequestLogCarriesUserID(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	original := logger.L()
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(original) })

	api := newTestAPI(t)
	api.carts.On("ListCart", mock.Anything, uint(1)).Return(cart.CartView{}, nil)

	w := api.do(t, http.MethodGet, "/cart", 1, "")
	require.Equal(t, http.StatusOK, w.Code)

	entries := observed.FilterMessage("incoming request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(1), entries[0].ContextMap()["user_id"])
}
