package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockProducts struct {
	mu       sync.Mutex
	products map[gocql.UUID]models.Product
	readErr  error
}

func (m *mockProducts) GetProduct(_ context.Context, id gocql.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductGone
	}
	return &p, nil
}

func (m *mockProducts) setPrice(id gocql.UUID, price models.Cents) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.products[id]
	p.Price = price
	m.products[id] = p
}

type mockCart struct {
	mu    sync.Mutex
	lines map[string][]models.CartLine // userID → lignes
	err   error
}

func (m *mockCart) GetLines(_ context.Context, userID string) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.CartLine, len(m.lines[userID]))
	copy(out, m.lines[userID])
	return out, nil
}

func (m *mockCart) consume(userID string, ids []gocql.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gone := make(map[gocql.UUID]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	var kept []models.CartLine
	for _, line := range m.lines[userID] {
		if !gone[line.LineID] {
			kept = append(kept, line)
		}
	}
	m.lines[userID] = kept
}

// mockOrders émule la sémantique tout-ou-rien : soit l'erreur injectée est
// retournée et rien ne change, soit la commande est enregistrée et les
// lignes de panier consommées disparaissent, d'un seul coup.
type mockOrders struct {
	mu        sync.Mutex
	cart      *mockCart
	created   []*models.Order
	createErr error
	reserved  map[string]bool
	rejects   int // nombre de réservations refusées avant d'accepter
}

func (m *mockOrders) ReserveOrderNumber(_ context.Context, number string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejects > 0 {
		m.rejects--
		return false, nil
	}
	if m.reserved == nil {
		m.reserved = make(map[string]bool)
	}
	if m.reserved[number] {
		return false, nil
	}
	m.reserved[number] = true
	return true, nil
}

func (m *mockOrders) CreateOrder(_ context.Context, order *models.Order, consumed []gocql.UUID) error {
	m.mu.Lock()
	if m.createErr != nil {
		defer m.mu.Unlock()
		return m.createErr
	}
	m.created = append(m.created, order)
	m.mu.Unlock()

	m.cart.consume(order.UserID, consumed)
	return nil
}

type mutexLocker struct {
	mu sync.Mutex
}

func (l *mutexLocker) LockCart(_ context.Context, _ string) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}

// --- fixtures ---

var validReq = Request{
	RecipientName:    "Jean Kim",
	RecipientPhone:   "010-1234-5678",
	RecipientAddress: "12 rue des Livres, Séoul",
}

func newFixture(t *testing.T) (*Service, *mockProducts, *mockCart, *mockOrders, gocql.UUID, gocql.UUID) {
	t.Helper()

	bookA := gocql.TimeUUID()
	bookB := gocql.TimeUUID()

	products := &mockProducts{products: map[gocql.UUID]models.Product{
		bookA: {ID: bookA, Name: "Le Petit Prince", Price: 10000, Stock: 50},
		bookB: {ID: bookB, Name: "1984", Price: 20000, Stock: 50},
	}}
	cart := &mockCart{lines: map[string][]models.CartLine{}}
	orders := &mockOrders{cart: cart}

	svc := NewService(products, cart, orders, &mutexLocker{})
	return svc, products, cart, orders, bookA, bookB
}

func addLine(cart *mockCart, userID string, productID gocql.UUID, qty int) gocql.UUID {
	lineID := gocql.TimeUUID()
	cart.mu.Lock()
	defer cart.mu.Unlock()
	cart.lines[userID] = append(cart.lines[userID], models.CartLine{
		LineID:    lineID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	})
	return lineID
}

// --- tests ---

func TestCheckout_TotalConsistency(t *testing.T) {
	svc, _, cart, _, bookA, bookB := newFixture(t)

	lineA := addLine(cart, "u1", bookA, 2) // 2 × 10000
	lineB := addLine(cart, "u1", bookB, 1) // 1 × 20000

	req := validReq
	req.SelectedLineIDs = []string{lineA.String(), lineB.String()}

	order, err := svc.Checkout(context.Background(), "u1", req)
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.Equal(t, models.Cents(40000), order.TotalPrice)

	var sum models.Cents
	for _, item := range order.Items {
		assert.Equal(t, item.UnitPrice.MulQty(item.Quantity), item.TotalPrice)
		sum += item.TotalPrice
	}
	assert.Equal(t, order.TotalPrice, sum)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Regexp(t, `^ORD-[A-Z2-9]{10}$`, order.OrderNumber)
}

func TestCheckout_FreezesUnitPrice(t *testing.T) {
	svc, products, cart, _, bookA, _ := newFixture(t)

	lineA := addLine(cart, "u1", bookA, 1)
	req := validReq
	req.SelectedLineIDs = []string{lineA.String()}

	order, err := svc.Checkout(context.Background(), "u1", req)
	require.NoError(t, err)

	// Changement de prix catalogue après la commande : le prix figé ne bouge pas.
	products.setPrice(bookA, 20000)

	assert.Equal(t, models.Cents(10000), order.Items[0].UnitPrice)
	assert.Equal(t, models.Cents(10000), order.TotalPrice)
}

func TestCheckout_DrainsOnlySelectedLines(t *testing.T) {
	svc, _, cart, _, bookA, bookB := newFixture(t)

	lineA := addLine(cart, "u1", bookA, 1)
	addLine(cart, "u1", bookB, 3)

	req := validReq
	req.SelectedLineIDs = []string{lineA.String()}

	_, err := svc.Checkout(context.Background(), "u1", req)
	require.NoError(t, err)

	remaining, err := cart.GetLines(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, bookB, remaining[0].ProductID)
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _, _, _, _, _ := newFixture(t)

	req := validReq
	req.SelectedLineIDs = []string{gocql.TimeUUID().String()}

	_, err := svc.Checkout(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_NoValidSelection(t *testing.T) {
	svc, _, cart, _, bookA, _ := newFixture(t)

	// Le panier de u1 contient une ligne, mais la sélection référence
	// la ligne d'un autre utilisateur.
	addLine(cart, "u1", bookA, 1)
	otherLine := addLine(cart, "u2", bookA, 1)

	req := validReq
	req.SelectedLineIDs = []string{otherLine.String()}

	_, err := svc.Checkout(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrNoValidSelection)
}

func TestCheckout_RecipientValidation(t *testing.T) {
	svc, _, cart, _, bookA, _ := newFixture(t)
	lineA := addLine(cart, "u1", bookA, 1)

	cases := []struct {
		name   string
		mutate func(*Request)
	}{
		{"nom trop court", func(r *Request) { r.RecipientName = "K" }},
		{"nom trop long", func(r *Request) { r.RecipientName = "Nom beaucoup trop long" }},
		{"téléphone invalide", func(r *Request) { r.RecipientPhone = "02-1234-5678" }},
		{"adresse vide", func(r *Request) { r.RecipientAddress = "   " }},
		{"sélection vide", func(r *Request) { r.SelectedLineIDs = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validReq
			req.SelectedLineIDs = []string{lineA.String()}
			tc.mutate(&req)

			_, err := svc.Checkout(context.Background(), "u1", req)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestCheckout_InsufficientStock(t *testing.T) {
	svc, _, cart, _, bookA, _ := newFixture(t)
	lineA := addLine(cart, "u1", bookA, 999)

	req := validReq
	req.SelectedLineIDs = []string{lineA.String()}

	_, err := svc.Checkout(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCheckout_WriteFailureLeavesCartIntact(t *testing.T) {
	svc, _, cart, orders, bookA, _ := newFixture(t)
	lineA := addLine(cart, "u1", bookA, 1)

	orders.createErr = errors.New("write timeout")

	req := validReq
	req.SelectedLineIDs = []string{lineA.String()}

	_, err := svc.Checkout(context.Background(), "u1", req)
	require.Error(t, err)

	// Échec d'écriture : la ligne de panier est toujours là, aucune commande.
	remaining, _ := cart.GetLines(context.Background(), "u1")
	assert.Len(t, remaining, 1)
	assert.Empty(t, orders.created)
}

func TestCheckout_RetriesOrderNumberCollision(t *testing.T) {
	svc, _, cart, orders, bookA, _ := newFixture(t)
	lineA := addLine(cart, "u1", bookA, 1)

	orders.rejects = 2

	req := validReq
	req.SelectedLineIDs = []string{lineA.String()}

	order, err := svc.Checkout(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.True(t, orders.reserved[order.OrderNumber])
}

func TestCheckout_ConcurrentSameLine(t *testing.T) {
	svc, _, cart, orders, bookA, _ := newFixture(t)
	lineA := addLine(cart, "u1", bookA, 1)

	req := validReq
	req.SelectedLineIDs = []string{lineA.String()}

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Checkout(context.Background(), "u1", req)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, noValid int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrNoValidSelection):
			noValid++
		default:
			t.Fatalf("erreur inattendue: %v", err)
		}
	}

	// Exactement un checkout gagne la ligne, l'autre la trouve consommée.
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, noValid)
	assert.Len(t, orders.created, 1)
}

func TestCheckout_VanishedProduct(t *testing.T) {
	svc, products, cart, _, bookA, _ := newFixture(t)

	lineA := addLine(cart, "u1", bookA, 1)
	products.mu.Lock()
	delete(products.products, bookA)
	products.mu.Unlock()

	req := validReq
	req.SelectedLineIDs = []string{lineA.String()}

	_, err := svc.Checkout(context.Background(), "u1", req)
	assert.ErrorIs(t, err, ErrProductGone)
}

func TestCheckout_CatalogOutageIsNotProductGone(t *testing.T) {
	svc, products, cart, _, bookA, _ := newFixture(t)

	lineA := addLine(cart, "u1", bookA, 1)
	products.mu.Lock()
	products.readErr = errors.New("connexion perdue")
	products.mu.Unlock()

	req := validReq
	req.SelectedLineIDs = []string{lineA.String()}

	// Une panne catalogue doit remonter telle quelle (500 côté handler),
	// jamais comme un produit disparu (409).
	_, err := svc.Checkout(context.Background(), "u1", req)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProductGone)
	assert.NotErrorIs(t, err, ErrInsufficientStock)

	// Et le panier n'a pas bougé.
	remaining, err := cart.GetLines(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
