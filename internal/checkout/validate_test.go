package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRecipient(t *testing.T) {
	cases := []struct {
		name      string
		recipient [3]string // nom, téléphone, adresse
		wantField string    // "" si valide
	}{
		{"valide", [3]string{"Kim Minsu", "010-1234-5678", "Séoul"}, ""},
		{"valide sans tirets", [3]string{"Kim", "01012345678", "Séoul"}, ""},
		{"valide 7 chiffres", [3]string{"Kim", "010-123-4567", "Séoul"}, ""},
		{"nom 1 caractère", [3]string{"K", "010-1234-5678", "Séoul"}, "recipient_name"},
		{"nom 11 caractères", [3]string{"ABCDEFGHIJK", "010-1234-5678", "Séoul"}, "recipient_name"},
		{"nom 10 caractères ok", [3]string{"ABCDEFGHIJ", "010-1234-5678", "Séoul"}, ""},
		{"téléphone fixe", [3]string{"Kim", "02-1234-5678", "Séoul"}, "recipient_phone"},
		{"téléphone trop court", [3]string{"Kim", "010-12-34", "Séoul"}, "recipient_phone"},
		{"préfixe inconnu", [3]string{"Kim", "013-1234-5678", "Séoul"}, "recipient_phone"},
		{"adresse vide", [3]string{"Kim", "010-1234-5678", ""}, "recipient_address"},
		{"adresse blanche", [3]string{"Kim", "010-1234-5678", "   "}, "recipient_address"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRecipient(tc.recipient[0], tc.recipient[1], tc.recipient[2])
			if tc.wantField == "" {
				assert.Nil(t, err)
			} else {
				assert.NotNil(t, err)
				assert.Equal(t, tc.wantField, err.Field)
			}
		})
	}
}
