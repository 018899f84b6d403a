package models

// Provider страховая компания или служба эвакуации.
type Provider struct {
	ID        int64   `db:"id" json:"id"`
	Kind      string  `db:"kind" json:"-"`
	Name      string  `db:"name" json:"name"`
	Logo      string  `db:"logo" json:"logo"`
	Phone     string  `db:"phone" json:"phone"`
	CreatedAt *string `db:"created_at" json:"created_at"`
	UpdatedAt *string `db:"updated_at" json:"updated_at"`
}
