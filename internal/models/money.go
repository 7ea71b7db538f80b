package models

import "fmt"

// Cents représente un montant monétaire en centimes (virgule fixe).
// Jamais de float pour l'argent : stocké en bigint côté ScyllaDB,
// sérialisé en entier côté JSON.
type Cents int64

// MulQty calcule le total d'une ligne : prix unitaire × quantité.
func (c Cents) MulQty(qty int) Cents {
	return c * Cents(qty)
}

// Format rend le montant lisible, ex: "125.00€"
func (c Cents) Format() string {
	sign := ""
	v := c
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d€", sign, v/100, v%100)
}
