package payment

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"libro_back_end/internal/models"

	"github.com/google/uuid"
)

// GatewayResult est la réponse d'une passerelle de paiement.
type GatewayResult struct {
	Status         models.PaymentStatus // SUCCESS ou FAIL
	TransactionRef string
}

// Gateway est la frontière remplaçable vers le prestataire de paiement.
// La version mock résout immédiatement ; une vraie passerelle renverrait
// PENDING puis résoudrait via webhook (événement Resolve du service).
type Gateway interface {
	Charge(ctx context.Context, amount models.Cents, method models.PaymentMethod) (GatewayResult, error)
}

// MockGateway simule un prestataire : ~90% de succès, référence opaque.
type MockGateway struct {
	SuccessRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		SuccessRate: 0.9,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewMockGatewayWithSeed fixe la graine pour des tests déterministes.
func NewMockGatewayWithSeed(successRate float64, seed int64) *MockGateway {
	return &MockGateway{
		SuccessRate: successRate,
		rnd:         rand.New(rand.NewSource(seed)),
	}
}

func (g *MockGateway) Charge(_ context.Context, amount models.Cents, _ models.PaymentMethod) (GatewayResult, error) {
	if amount <= 0 {
		return GatewayResult{Status: models.PaymentFail}, nil
	}

	g.mu.Lock()
	roll := g.rnd.Float64()
	g.mu.Unlock()

	status := models.PaymentSuccess
	if roll >= g.SuccessRate {
		status = models.PaymentFail
	}

	return GatewayResult{
		Status:         status,
		TransactionRef: newTransactionRef(),
	}, nil
}

// newTransactionRef génère une référence opaque, ex: "tx_3f9c01ab72de"
func newTransactionRef() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "tx_" + raw[:12]
}
