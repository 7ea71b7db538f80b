package payment

import (
	"context"
	"errors"
	"testing"

	"libro_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_AllowedTransitions(t *testing.T) {
	cases := []struct {
		name  string
		from  models.PaymentStatus
		event Event
		want  models.PaymentStatus
	}{
		{"pending resolves to success", models.PaymentPending, EventResolveSuccess, models.PaymentSuccess},
		{"pending resolves to fail", models.PaymentPending, EventResolveFail, models.PaymentFail},
		{"pending cancelled before resolution", models.PaymentPending, EventCancel, models.PaymentCancel},
		{"success cancelled (refund)", models.PaymentSuccess, EventCancel, models.PaymentCancel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Next(tc.from, tc.event)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNext_RejectedTransitions(t *testing.T) {
	cases := []struct {
		name       string
		from       models.PaymentStatus
		event      Event
		wantReason string
	}{
		{"cancel a failed payment", models.PaymentFail, EventCancel, "un paiement échoué ne peut pas être annulé"},
		{"cancel twice", models.PaymentCancel, EventCancel, "paiement déjà annulé"},
		{"resolve a successful payment again", models.PaymentSuccess, EventResolveSuccess, "transition non autorisée depuis l'état SUCCESS"},
		{"resolve a cancelled payment", models.PaymentCancel, EventResolveFail, "transition non autorisée depuis l'état CANCEL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Next(tc.from, tc.event)

			// L'état ne bouge pas sur refus.
			assert.Equal(t, tc.from, got)

			var invalid *InvalidTransitionError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tc.from, invalid.From)
			assert.Equal(t, tc.event, invalid.Event)
			assert.Equal(t, tc.wantReason, invalid.Reason)
		})
	}
}

func TestMockGateway_Deterministic(t *testing.T) {
	// Avec SuccessRate=1 tout passe, avec 0 tout échoue.
	always := NewMockGatewayWithSeed(1.0, 42)
	never := NewMockGatewayWithSeed(0.0, 42)

	for i := 0; i < 20; i++ {
		res, err := always.Charge(context.Background(), models.Cents(10000), models.PaymentMethodCard)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentSuccess, res.Status)
		assert.Regexp(t, `^tx_[0-9a-f]{12}$`, res.TransactionRef)

		res, err = never.Charge(context.Background(), models.Cents(10000), models.PaymentMethodCard)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentFail, res.Status)
	}
}

func TestMockGateway_RejectsNonPositiveAmount(t *testing.T) {
	g := NewMockGatewayWithSeed(1.0, 7)

	res, err := g.Charge(context.Background(), models.Cents(0), models.PaymentMethodCard)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFail, res.Status)
	assert.Empty(t, res.TransactionRef)
}
