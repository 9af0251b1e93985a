package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"nature-animaux/internal/domain"
	cartrepo "nature-animaux/internal/repository/cart"
	userrepo "nature-animaux/internal/repository/user"
	cartsvc "nature-animaux/internal/service/cart"
	ordersvc "nature-animaux/internal/service/order"
	sessionsvc "nature-animaux/internal/service/session"
	usersvc "nature-animaux/internal/service/user"
)

// In-memory fakes backing the full router, so handler tests exercise the
// real middleware chain and response shapes without Postgres or Mongo.

type memCartRepo struct {
	seq   int
	carts map[string]*domain.Cart
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[string]*domain.Cart{}}
}

func ownerString(owner cartrepo.OwnerKey) string {
	if owner.UserID != nil {
		return "user:" + *owner.UserID
	}
	if owner.SessionID != nil {
		return "session:" + *owner.SessionID
	}
	return ""
}

func (r *memCartRepo) GetOrCreate(_ context.Context, owner cartrepo.OwnerKey) (*domain.Cart, error) {
	key := ownerString(owner)
	if c, ok := r.carts[key]; ok {
		return c, nil
	}
	r.seq++
	c := &domain.Cart{ID: fmt.Sprintf("cart-%d", r.seq), UserID: owner.UserID, SessionID: owner.SessionID}
	r.carts[key] = c
	return c, nil
}

func (r *memCartRepo) GetByID(_ context.Context, id string) (*domain.Cart, error) {
	for _, c := range r.carts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memCartRepo) AddItem(ctx context.Context, cartID string, in cartrepo.AddItemInput) (*domain.CartItem, error) {
	c, err := r.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	for i := range c.Items {
		item := &c.Items[i]
		if item.ProductID == in.ProductID && item.VariantID == in.VariantID {
			item.Quantity += in.Quantity
			return item, nil
		}
	}
	r.seq++
	c.Items = append(c.Items, domain.CartItem{
		ID:         fmt.Sprintf("item-%d", r.seq),
		CartID:     cartID,
		ProductID:  in.ProductID,
		VariantID:  in.VariantID,
		Title:      in.Title,
		UnitPrice:  in.UnitPrice,
		Quantity:   in.Quantity,
		UnitWeight: in.UnitWeight,
		ImageURL:   in.ImageURL,
	})
	return &c.Items[len(c.Items)-1], nil
}

func (r *memCartRepo) SetItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}
	c, err := r.GetByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			return &c.Items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memCartRepo) RemoveItem(ctx context.Context, cartID, itemID string) error {
	c, err := r.GetByID(ctx, cartID)
	if err != nil {
		return err
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type memOrders struct {
	seq    int
	orders map[string]*domain.Order
	byCart map[string]bool
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[string]*domain.Order{}, byCart: map[string]bool{}}
}

func (r *memOrders) Create(_ context.Context, userID, cartID string, total decimal.Decimal) (*domain.Order, error) {
	if r.byCart[cartID] {
		return nil, domain.ErrConflict
	}
	r.seq++
	o := &domain.Order{ID: fmt.Sprintf("order-%d", r.seq), UserID: userID, CartID: cartID, TotalPrice: total}
	r.orders[o.ID] = o
	r.byCart[cartID] = true
	return o, nil
}

func (r *memOrders) GetForUser(_ context.Context, id, userID string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok || o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (r *memOrders) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	out := []domain.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type memDeliveries struct {
	seq     int
	byCart  map[string]*domain.DeliveryChoice
	byOrder map[string]*domain.DeliveryChoice
	orders  *memOrders
	carts   *memCartRepo
}

func newMemDeliveries(orders *memOrders, carts *memCartRepo) *memDeliveries {
	return &memDeliveries{byCart: map[string]*domain.DeliveryChoice{}, byOrder: map[string]*domain.DeliveryChoice{}, orders: orders, carts: carts}
}

func (r *memDeliveries) UpsertForCart(_ context.Context, cartID string, mode domain.DeliveryMode, fee decimal.Decimal) (*domain.DeliveryChoice, error) {
	if c, ok := r.byCart[cartID]; ok {
		c.Mode, c.Fee = mode, fee
		return c, nil
	}
	r.seq++
	c := &domain.DeliveryChoice{ID: fmt.Sprintf("choice-%d", r.seq), CartID: &cartID, Mode: mode, Fee: fee}
	r.byCart[cartID] = c
	return c, nil
}

func (r *memDeliveries) ApplyToOrder(ctx context.Context, orderID string, mode domain.DeliveryMode, fee decimal.Decimal) (*domain.DeliveryChoice, decimal.Decimal, error) {
	o, ok := r.orders.orders[orderID]
	if !ok {
		return nil, decimal.Zero, domain.ErrNotFound
	}
	cart, err := r.carts.GetByID(ctx, o.CartID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	c, ok := r.byOrder[orderID]
	if ok {
		c.Mode, c.Fee = mode, fee
	} else {
		r.seq++
		c = &domain.DeliveryChoice{ID: fmt.Sprintf("choice-%d", r.seq), OrderID: &orderID, Mode: mode, Fee: fee}
		r.byOrder[orderID] = c
	}
	total := cart.Subtotal().Add(fee).Round(2)
	o.TotalPrice = total
	return c, total, nil
}

func (r *memDeliveries) GetForCart(_ context.Context, cartID string) (*domain.DeliveryChoice, error) {
	if c, ok := r.byCart[cartID]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memDeliveries) ListByUser(ctx context.Context, userID string) ([]domain.DeliveryChoice, error) {
	out := []domain.DeliveryChoice{}
	for orderID, c := range r.byOrder {
		if _, err := r.orders.GetForUser(ctx, orderID, userID); err == nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memDeliveries) DeleteForUser(ctx context.Context, id, userID string) error {
	for orderID, c := range r.byOrder {
		if c.ID != id {
			continue
		}
		o, err := r.orders.GetForUser(ctx, orderID, userID)
		if err != nil {
			return domain.ErrNotFound
		}
		delete(r.byOrder, orderID)
		cart, err := r.carts.GetByID(ctx, o.CartID)
		if err != nil {
			return err
		}
		o.TotalPrice = cart.Subtotal()
		return nil
	}
	return domain.ErrNotFound
}

type memUserRepo struct {
	seq     int
	byEmail map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byEmail: map[string]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, in userrepo.CreateUserInput) (*domain.User, error) {
	if _, ok := r.byEmail[in.Email]; ok {
		return nil, domain.ErrConflict
	}
	r.seq++
	u := &domain.User{
		ID:           fmt.Sprintf("user-%d", r.seq),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	r.byEmail[in.Email] = u
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeCatalog struct {
	products map[string]*domain.Product
	variants map[string]*domain.Variation
}

func (c *fakeCatalog) FindByID(_ context.Context, productID string) (*domain.Product, error) {
	if p, ok := c.products[productID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (c *fakeCatalog) FindVariant(_ context.Context, productID, variantID string) (*domain.Variation, error) {
	if v, ok := c.variants[productID+"/"+variantID]; ok {
		return v, nil
	}
	return nil, domain.ErrNotFound
}

type testEnv struct {
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	logger := log.New(io.Discard, "", 0)

	carts := newMemCartRepo()
	orders := newMemOrders()
	deliveries := newMemDeliveries(orders, carts)
	lookup := &fakeCatalog{
		products: map[string]*domain.Product{
			"croquettes-chien-saumon": {
				ID:    "croquettes-chien-saumon",
				Title: "Croquettes chien saumon",
				Price: decimal.RequireFromString("24.90"),
				Variations: []domain.Variation{
					{SKU: "CCS-3KG", Price: decimal.RequireFromString("24.90"), Weight: decimal.RequireFromString("3"), Stock: 40},
				},
			},
		},
		variants: map[string]*domain.Variation{},
	}

	deps := Deps{
		CartSvc:  cartsvc.New(carts, deliveries, lookup, logger),
		OrderSvc: ordersvc.New(orders, carts, deliveries),
		UserSvc:  usersvc.New(newMemUserRepo(), usersvc.NewTokenManager("test-secret", time.Hour)),
		Sessions: sessionsvc.New(redis.NewClient(&redis.Options{Addr: mr.Addr()})),
		Catalog:  lookup,
	}
	return &testEnv{router: buildRouter(logger, nil, deps)}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/healthz", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := decodeBody(t, w); body["status"] != "ok" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/products/croquettes-chien-saumon", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["title"] != "Croquettes chien saumon" || body["price"] != "24.90" {
		t.Fatalf("unexpected product %v", body)
	}
	variations := body["variations"].([]any)
	if len(variations) != 1 || variations[0].(map[string]any)["sku"] != "CCS-3KG" {
		t.Fatalf("unexpected variations %v", variations)
	}

	w = env.do(t, http.MethodGet, "/api/products/missing", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAnonymousSessionIssuedAndReused(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/cart", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	token := w.Header().Get("X-Session-Token")
	if token == "" {
		t.Fatal("expected a fresh session token header")
	}
	cartID := decodeBody(t, w)["id"]

	w = env.do(t, http.MethodGet, "/api/cart", nil, map[string]string{"X-Session-Token": token})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Header().Get("X-Session-Token"); got != "" {
		t.Fatalf("valid token should not be reissued, got header %q", got)
	}
	if decodeBody(t, w)["id"] != cartID {
		t.Fatal("same session should resolve the same cart")
	}
}

func TestCartItemFlow(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/cart", nil, nil)
	session := map[string]string{"X-Session-Token": w.Header().Get("X-Session-Token")}

	item := map[string]any{
		"product_id": "p1",
		"variant_id": "2kg",
		"quantity":   2,
		"unit_price": "12.50",
		"weight":     "1.5",
	}
	w = env.do(t, http.MethodPost, "/api/cart/items", item, session)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decodeBody(t, w)
	if created["total_price"] != "25.00" || created["weight"] != "3.00" {
		t.Fatalf("unexpected create response %v", created)
	}
	itemID := created["id"].(string)

	// Same variant again merges into the existing line.
	item["quantity"] = 1
	w = env.do(t, http.MethodPost, "/api/cart/items", item, session)
	if got := decodeBody(t, w)["quantity"]; got != float64(3) {
		t.Fatalf("expected merged quantity 3, got %v", got)
	}

	w = env.do(t, http.MethodGet, "/api/cart", nil, session)
	cart := decodeBody(t, w)
	if cart["subtotal"] != "37.50" || cart["total_weight"] != "4.50" {
		t.Fatalf("unexpected cart totals %v", cart)
	}
	if items := cart["items"].([]any); len(items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(items))
	}

	// Zero clamps to one instead of failing or deleting.
	w = env.do(t, http.MethodPatch, "/api/cart/items/"+itemID, map[string]any{"quantity": 0}, session)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["quantity"]; got != float64(1) {
		t.Fatalf("expected clamped quantity 1, got %v", got)
	}

	w = env.do(t, http.MethodDelete, "/api/cart/items/"+itemID, nil, session)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/api/cart/items/"+itemID, nil, session)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestAddItemValidation(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"variant_id": "2kg", "quantity": 1}, nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["field"] != "product_id" {
		t.Fatalf("unexpected validation body %v", body)
	}
}

func TestPatchRequiresQuantity(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPatch, "/api/cart/items/whatever", map[string]any{}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDeliveryOptionsEmptyCartUsesFloorWeight(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/delivery/options", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["subtotal"] != "0.00" || body["total_weight"] != "1.00" {
		t.Fatalf("unexpected estimate %v", body)
	}
	options := body["options"].([]any)
	if len(options) != 3 {
		t.Fatalf("expected three carrier options, got %d", len(options))
	}
	first := options[0].(map[string]any)
	if first["mode"] != "colissimo" || first["fee"] != "6.50" {
		t.Fatalf("unexpected first option %v", first)
	}
}

func TestSelectCartDelivery(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/cart", nil, nil)
	session := map[string]string{"X-Session-Token": w.Header().Get("X-Session-Token")}

	w = env.do(t, http.MethodPost, "/api/cart/delivery", map[string]any{"mode": "teleportation", "fee": 1}, session)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown mode, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/cart/delivery", map[string]any{"mode": "mondial_relay", "fee": 4.9}, session)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	delivery := decodeBody(t, w)["delivery"].(map[string]any)
	if delivery["mode"] != "mondial_relay" || delivery["fee"] != "4.90" {
		t.Fatalf("unexpected delivery %v", delivery)
	}
}

func TestOrdersRequireUser(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/orders", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthAndOrderFlow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email":      "Marie@Example.com",
		"password":   "s3cret-passphrase",
		"first_name": "Marie",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["email"]; got != "marie@example.com" {
		t.Fatalf("expected normalized email, got %v", got)
	}

	w = env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "marie@example.com",
		"password": "s3cret-passphrase",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	auth := map[string]string{"Authorization": "Bearer " + decodeBody(t, w)["access_token"].(string)}

	env.do(t, http.MethodPost, "/api/cart/items", map[string]any{
		"product_id": "p1",
		"variant_id": "2kg",
		"quantity":   2,
		"unit_price": "12.50",
		"weight":     "1.5",
	}, auth)
	w = env.do(t, http.MethodGet, "/api/cart", nil, auth)
	cartID := decodeBody(t, w)["id"].(string)

	w = env.do(t, http.MethodPost, "/api/orders", map[string]any{"cart_id": cartID}, auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	order := decodeBody(t, w)
	if order["total_price"] != "25.00" {
		t.Fatalf("expected snapshot total 25.00, got %v", order["total_price"])
	}
	orderID := order["order_id"].(string)

	// One order per cart.
	w = env.do(t, http.MethodPost, "/api/orders", map[string]any{"cart_id": cartID}, auth)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/orders/"+orderID+"/delivery", map[string]any{"mode": "colissimo", "fee": 6.5}, auth)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	applied := decodeBody(t, w)
	if applied["total_price"] != "31.50" {
		t.Fatalf("expected total with fee 31.50, got %v", applied["total_price"])
	}
	choiceID := applied["delivery_choice"].(map[string]any)["id"].(string)

	w = env.do(t, http.MethodGet, "/api/deliveries", nil, auth)
	if got := decodeBody(t, w)["deliveries"].([]any); len(got) != 1 {
		t.Fatalf("expected one delivery choice, got %d", len(got))
	}

	w = env.do(t, http.MethodDelete, "/api/deliveries/"+choiceID, nil, auth)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodGet, "/api/orders/"+orderID, nil, auth)
	if got := decodeBody(t, w)["total_price"]; got != "25.00" {
		t.Fatalf("expected total reset to 25.00, got %v", got)
	}
}
