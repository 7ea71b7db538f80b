package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPayments struct {
	byID map[gocql.UUID]*models.Payment
}

func newMockPayments() *mockPayments {
	return &mockPayments{byID: make(map[gocql.UUID]*models.Payment)}
}

func (m *mockPayments) Create(_ context.Context, p *models.Payment) error {
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockPayments) Update(_ context.Context, p *models.Payment) error {
	if _, ok := m.byID[p.ID]; !ok {
		return errors.New("paiement inconnu")
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockPayments) GetByID(_ context.Context, id gocql.UUID) (*models.Payment, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, gocql.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPayments) ListByOrder(_ context.Context, orderID gocql.UUID) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.byID {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPayments) ListByUser(_ context.Context, userID string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type mockOrders struct {
	orders map[gocql.UUID]*models.Order
	paid   []gocql.UUID
}

func newMockOrders() *mockOrders {
	return &mockOrders{orders: make(map[gocql.UUID]*models.Order)}
}

func (m *mockOrders) addOrder(userID string, total models.Cents) gocql.UUID {
	id := gocql.TimeUUID()
	m.orders[id] = &models.Order{
		ID:          id,
		OrderNumber: "ORD-TESTNUMBER",
		UserID:      userID,
		TotalPrice:  total,
		Status:      models.OrderStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	return id
}

func (m *mockOrders) GetOrder(_ context.Context, orderID gocql.UUID) (*models.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, gocql.ErrNotFound
	}
	return o, nil
}

func (m *mockOrders) MarkOrderPaid(_ context.Context, order *models.Order) error {
	m.orders[order.ID].Status = models.OrderStatusPaid
	m.paid = append(m.paid, order.ID)
	return nil
}

func TestInitiate_SuccessFlow(t *testing.T) {
	payments := newMockPayments()
	orders := newMockOrders()
	orderID := orders.addOrder("user-1", models.Cents(45000))

	svc := NewService(payments, orders, NewMockGatewayWithSeed(1.0, 1))

	pay, err := svc.Initiate(context.Background(), "user-1", orderID, models.PaymentMethodCard)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentSuccess, pay.Status)
	assert.Equal(t, models.Cents(45000), pay.Amount, "montant copié du total commande")
	assert.Regexp(t, `^tx_[0-9a-f]{12}$`, pay.TransactionRef)

	// La commande passe en PAID.
	assert.Equal(t, []gocql.UUID{orderID}, orders.paid)

	// Le paiement persisté reflète l'état final.
	stored, err := payments.GetByID(context.Background(), pay.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentSuccess, stored.Status)
}

func TestInitiate_FailFlow(t *testing.T) {
	payments := newMockPayments()
	orders := newMockOrders()
	orderID := orders.addOrder("user-1", models.Cents(45000))

	svc := NewService(payments, orders, NewMockGatewayWithSeed(0.0, 1))

	pay, err := svc.Initiate(context.Background(), "user-1", orderID, models.PaymentMethodBank)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentFail, pay.Status)
	assert.Empty(t, orders.paid, "commande jamais marquée payée sur échec")

	// Un échec n'empêche pas une nouvelle tentative.
	retry, err := svc.Initiate(context.Background(), "user-1", orderID, models.PaymentMethodBank)
	require.NoError(t, err)
	assert.NotEqual(t, pay.ID, retry.ID)
}

func TestInitiate_RejectsDuplicateSuccess(t *testing.T) {
	payments := newMockPayments()
	orders := newMockOrders()
	orderID := orders.addOrder("user-1", models.Cents(10000))

	svc := NewService(payments, orders, NewMockGatewayWithSeed(1.0, 1))

	_, err := svc.Initiate(context.Background(), "user-1", orderID, models.PaymentMethodCard)
	require.NoError(t, err)

	_, err = svc.Initiate(context.Background(), "user-1", orderID, models.PaymentMethodCard)
	assert.ErrorIs(t, err, ErrDuplicatePayment)
}

func TestInitiate_OwnershipAndValidation(t *testing.T) {
	payments := newMockPayments()
	orders := newMockOrders()
	orderID := orders.addOrder("user-1", models.Cents(10000))

	svc := NewService(payments, orders, NewMockGatewayWithSeed(1.0, 1))

	_, err := svc.Initiate(context.Background(), "intrus", orderID, models.PaymentMethodCard)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Initiate(context.Background(), "user-1", gocql.TimeUUID(), models.PaymentMethodCard)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = svc.Initiate(context.Background(), "user-1", orderID, models.PaymentMethod("CHEQUE"))
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestInitiate_GatewayDownLeavesPending(t *testing.T) {
	payments := newMockPayments()
	orders := newMockOrders()
	orderID := orders.addOrder("user-1", models.Cents(10000))

	svc := NewService(payments, orders, downGateway{})

	pay, err := svc.Initiate(context.Background(), "user-1", orderID, models.PaymentMethodCard)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, pay.Status)
	assert.Empty(t, orders.paid)
}

type downGateway struct{}

func (downGateway) Charge(context.Context, models.Cents, models.PaymentMethod) (GatewayResult, error) {
	return GatewayResult{}, errors.New("passerelle injoignable")
}

func TestCancel_PendingAndSuccess(t *testing.T) {
	payments := newMockPayments()
	orders := newMockOrders()
	orderID := orders.addOrder("user-1", models.Cents(10000))

	svc := NewService(payments, orders, NewMockGatewayWithSeed(1.0, 1))

	pay, err := svc.Initiate(context.Background(), "user-1", orderID, models.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, models.PaymentSuccess, pay.Status)

	// SUCCESS → CANCEL autorisé (remboursement).
	cancelled, err := svc.Cancel(context.Background(), "user-1", pay.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCancel, cancelled.Status)

	// Deuxième annulation : refus défini avec la raison exacte.
	_, err = svc.Cancel(context.Background(), "user-1", pay.ID)
	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "paiement déjà annulé", invalid.Reason)
}

func TestCancel_RejectsFailedPayment(t *testing.T) {
	payments := newMockPayments()
	orders := newMockOrders()
	orderID := orders.addOrder("user-1", models.Cents(10000))

	svc := NewService(payments, orders, NewMockGatewayWithSeed(0.0, 1))

	pay, err := svc.Initiate(context.Background(), "user-1", orderID, models.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, models.PaymentFail, pay.Status)

	_, err = svc.Cancel(context.Background(), "user-1", pay.ID)
	var invalid *InvalidTransitionError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "un paiement échoué ne peut pas être annulé", invalid.Reason)
}

func TestCancel_Ownership(t *testing.T) {
	payments := newMockPayments()
	orders := newMockOrders()
	orderID := orders.addOrder("user-1", models.Cents(10000))

	svc := NewService(payments, orders, NewMockGatewayWithSeed(1.0, 1))

	pay, err := svc.Initiate(context.Background(), "user-1", orderID, models.PaymentMethodCard)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), "intrus", pay.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Cancel(context.Background(), "user-1", gocql.TimeUUID())
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestListForUser_StatusFilter(t *testing.T) {
	payments := newMockPayments()
	orders := newMockOrders()

	svc := NewService(payments, orders, NewMockGatewayWithSeed(1.0, 1))

	okOrder := orders.addOrder("user-1", models.Cents(10000))
	_, err := svc.Initiate(context.Background(), "user-1", okOrder, models.PaymentMethodCard)
	require.NoError(t, err)

	svc.gateway = NewMockGatewayWithSeed(0.0, 1)
	koOrder := orders.addOrder("user-1", models.Cents(20000))
	_, err = svc.Initiate(context.Background(), "user-1", koOrder, models.PaymentMethodCard)
	require.NoError(t, err)

	all, err := svc.ListForUser(context.Background(), "user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := svc.ListForUser(context.Background(), "user-1", models.PaymentFail)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, models.Cents(20000), failed[0].Amount)
}
