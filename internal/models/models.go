package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "Customer"
	RoleAdmin    = "Admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null"  json:"username"`
	PasswordHash string    `gorm:"not null"                      json:"-"`
	FullName     string    `gorm:"size:100;not null"             json:"full_name"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"size:15"                       json:"phone"`
	Address      string    `gorm:"size:200"                      json:"address"`
	Role         string    `gorm:"size:20;not null"              json:"role"`
	IsActive     bool      `gorm:"not null"                      json:"is_active"`
	CreatedAt    time.Time `                                     json:"created_at"`
	LastLogin    time.Time `                                     json:"last_login"`
}

type Product struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name          string          `gorm:"size:100;not null"          json:"name"`
	Description   string          `gorm:"size:500"                   json:"description"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	StockQuantity int             `gorm:"not null"                   json:"stock_quantity"`
	Category      string          `gorm:"size:50;index"              json:"category"`
	Manufacturer  string          `gorm:"size:100"                   json:"manufacturer"`
	DosageForm    string          `gorm:"size:50"                    json:"dosage_form"`
	Strength      string          `gorm:"size:50"                    json:"strength"`
	ImageURL      string          `                                  json:"image_url"`
	IsActive      bool            `gorm:"not null;index"             json:"is_active"`
	CreatedAt     time.Time       `                                  json:"created_at"`
	UpdatedAt     time.Time       `                                  json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                               json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"user_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;check:quantity > 0"              json:"quantity"`
	AddedAt   time.Time `gorm:"not null"                                 json:"added_at"`
	Product   *Product  `gorm:"foreignKey:ProductID"                     json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type Order struct {
	ID                  uint            `gorm:"primaryKey"                  json:"id"`
	UserID              uint            `gorm:"index;not null"              json:"user_id"`
	CustomerName        string          `gorm:"size:100;not null"           json:"customer_name"`
	CustomerEmail       string          `gorm:"size:100"                    json:"customer_email"`
	CustomerPhone       string          `gorm:"size:20;not null"            json:"customer_phone"`
	ShippingAddress     string          `gorm:"size:500;not null"           json:"shipping_address"`
	City                string          `gorm:"size:50;not null"            json:"city"`
	PostalCode          string          `gorm:"size:10;not null"            json:"postal_code"`
	PaymentMethod       string          `gorm:"size:50;not null"            json:"payment_method"`
	SpecialInstructions string          `gorm:"size:500"                    json:"special_instructions"`
	Subtotal            decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"subtotal"`
	TaxAmount           decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"tax_amount"`
	ShippingCost        decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"shipping_cost"`
	TotalAmount         decimal.Decimal `gorm:"type:numeric(12,4);not null" json:"total_amount"`
	Status              OrderStatus     `gorm:"size:20;not null;index"      json:"status"`
	OrderDate           time.Time       `gorm:"not null;index"              json:"order_date"`
	ShippedDate         *time.Time      `                                   json:"shipped_date"`
	DeliveredDate       *time.Time      `                                   json:"delivered_date"`
	Items               []OrderItem     `gorm:"foreignKey:OrderID"          json:"items,omitempty"`
}

type OrderItem struct {
	ID         uint            `gorm:"primaryKey"                  json:"id"`
	OrderID    uint            `gorm:"index;not null"              json:"order_id"`
	ProductID  uint            `gorm:"index;not null"              json:"product_id"`
	Quantity   int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	Product    *Product        `gorm:"foreignKey:ProductID"        json:"product,omitempty"`
}

// Session is the server-side state behind a session cookie.
type Session struct {
	ID         string    `gorm:"primaryKey;size:36"  json:"id"`
	UserID     uint      `gorm:"index;not null"      json:"user_id"`
	Username   string    `gorm:"size:50;not null"    json:"username"`
	Role       string    `gorm:"size:20;not null"    json:"role"`
	FullName   string    `gorm:"size:100"            json:"full_name"`
	CreatedAt  time.Time `                           json:"created_at"`
	LastSeenAt time.Time `gorm:"not null"            json:"last_seen_at"`
	ExpiresAt  time.Time `gorm:"not null"            json:"expires_at"`
	Revoked    bool      `gorm:"not null"            json:"revoked"`
}

// All lists every model for auto-migration, parents before children.
func All() []any {
	return []any{&User{}, &Session{}, &Product{}, &CartItem{}, &Order{}, &OrderItem{}}
}
