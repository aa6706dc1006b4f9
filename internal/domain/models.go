package domain

import "slices"

// Categories is the fixed catalogue taxonomy.
var Categories = []string{
	"Electronic Devices",
	"TV & Home Appliances",
	"Health & Beauty",
	"Babies & Toys",
	"Groceries & Pets",
	"Home & Lifestyle",
	"Women's Fashion",
	"Men's Fashion",
	"Watches & Accessories",
	"Sports & Outdoor",
}

// IsCategory reports whether c belongs to Categories.
func IsCategory(c string) bool {
	return slices.Contains(Categories, c)
}

// Product is a catalogue entry. SellerID is a loose tag, not a checked reference.
type Product struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice,omitempty"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Image         string  `json:"image"`
	Rating        float64 `json:"rating"`
	Reviews       int     `json:"reviews"`
	SellerID      string  `json:"sellerId"`
}

// HasDiscount reports whether an original price is shown next to the price.
func (p Product) HasDiscount() bool {
	return p.OriginalPrice > 0
}

// CartItem is a product snapshot taken when it was first added, plus a quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

// LineTotal is price times quantity.
func (it CartItem) LineTotal() float64 {
	return it.Price * float64(it.Quantity)
}

// Role of a logged in user
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleSeller
}

// User is the session identity. There is one fixed identity per role.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// OrderStatus of a placed order. New orders are pending.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// PaymentMethod accepted at checkout.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentBkash          PaymentMethod = "bkash"
	PaymentNagad          PaymentMethod = "nagad"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentBkash, PaymentNagad:
		return true
	}
	return false
}

// Order is an immutable purchase record. Date is an RFC 3339 UTC timestamp.
type Order struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Items         []CartItem    `json:"items"`
	Total         float64       `json:"total"`
	Status        OrderStatus   `json:"status"`
	Date          string        `json:"date"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// Subtotal sums price*quantity over items.
func Subtotal(items []CartItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.LineTotal()
	}
	return sum
}

// Total adds the flat shipping fee to the subtotal. An empty cart costs nothing.
func Total(items []CartItem, shippingFee float64) float64 {
	if len(items) == 0 {
		return 0
	}
	return Subtotal(items) + shippingFee
}

// ItemCount is the number of units across all line items.
func ItemCount(items []CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
