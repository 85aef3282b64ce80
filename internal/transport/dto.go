package transport

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Username        string `json:"username"         validate:"required,min=3,max=50"`
	Password        string `json:"password"         validate:"required,min=6,max=100"`
	ConfirmPassword string `json:"confirm_password" validate:"omitempty,eqfield=Password"`
	FullName        string `json:"full_name"        validate:"required,max=100"`
	Email           string `json:"email"            validate:"required,email,max=100"`
	Phone           string `json:"phone"            validate:"omitempty,max=15"`
	Address         string `json:"address"          validate:"omitempty,max=200"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

// CheckoutRequest carries the shipping snapshot. PaymentMethod is accepted
// for compatibility but only cash on delivery exists.
type CheckoutRequest struct {
	CustomerName        string `json:"customer_name"        validate:"required,max=100"`
	CustomerPhone       string `json:"customer_phone"       validate:"required,max=20"`
	ShippingAddress     string `json:"shipping_address"     validate:"required,max=500"`
	City                string `json:"city"                 validate:"required,max=50"`
	PostalCode          string `json:"postal_code"          validate:"required,max=10"`
	PaymentMethod       string `json:"payment_method"`
	SpecialInstructions string `json:"special_instructions" validate:"max=500"`
}

type CreateProductRequest struct {
	Name          string          `json:"name"           validate:"required,max=100"`
	Description   string          `json:"description"    validate:"max=500"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
	Category      string          `json:"category"       validate:"max=50"`
	Manufacturer  string          `json:"manufacturer"   validate:"max=100"`
	DosageForm    string          `json:"dosage_form"    validate:"max=50"`
	Strength      string          `json:"strength"       validate:"max=50"`
	ImageURL      string          `json:"image_url"`
	IsActive      *bool           `json:"is_active"`
}

type PatchProductRequest struct {
	Name          *string          `json:"name"           validate:"omitempty,min=1,max=100"`
	Description   *string          `json:"description"    validate:"omitempty,max=500"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity" validate:"omitempty,min=0"`
	Category      *string          `json:"category"       validate:"omitempty,max=50"`
	Manufacturer  *string          `json:"manufacturer"   validate:"omitempty,max=100"`
	DosageForm    *string          `json:"dosage_form"    validate:"omitempty,max=50"`
	Strength      *string          `json:"strength"       validate:"omitempty,max=50"`
	ImageURL      *string          `json:"image_url"`
	IsActive      *bool            `json:"is_active"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
