package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"libro_back_end/internal/models"
)

func TestProductUpdateAction(t *testing.T) {
	assert.Equal(t, ActionProductPriceChange, ProductUpdateAction(models.Cents(10000), models.Cents(12000)))
	assert.Equal(t, ActionProductUpdate, ProductUpdateAction(models.Cents(10000), models.Cents(10000)))
}

func TestMarshalAuditValue(t *testing.T) {
	assert.Empty(t, marshalAuditValue(nil))

	got := marshalAuditValue(map[string]int{"stock": 7})
	assert.JSONEq(t, `{"stock": 7}`, got)
}
