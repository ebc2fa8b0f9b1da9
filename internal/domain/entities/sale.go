package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type SaleStatus string

const (
	SaleStatusOpen      SaleStatus = "OPEN"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusOpen, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "CASH"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodPix        PaymentMethod = "PIX"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodPix:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// SaleItem is one line of a sale. UnitPrice is the price snapshot taken when the sale was made.
type SaleItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale is the sale aggregate.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (seller_id-index): seller_id
//
// Items are embedded in the sale record. Version is bumped on every persisted change and
// guards concurrent updates.
type Sale struct {
	ID               string          `json:"id"`
	ClientID         string          `json:"client_id,omitempty"`
	SellerID         string          `json:"seller_id"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	Status           SaleStatus      `json:"status"`
	Total            decimal.Decimal `json:"total"`
	Items            []SaleItem      `json:"items"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	IdempotencyKey   string          `json:"idempotency_key,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CancelledBy      string          `json:"cancelled_by,omitempty"`
	CancelNote       string          `json:"cancel_note,omitempty"`
	Version          int64           `json:"version"`
}

// ComputeTotal returns the sum of the item subtotals.
func (s Sale) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemIndex returns the position of the item with the given id, or -1.
func (s Sale) ItemIndex(itemID string) int {
	for i, it := range s.Items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}

// TransitionTo moves the sale to next. COMPLETED -> CANCELLED is the only allowed move.
func (s *Sale) TransitionTo(next SaleStatus) error {
	if s.Status == SaleStatusCompleted && next == SaleStatusCancelled {
		s.Status = next
		return nil
	}
	return &InvalidTransitionError{SaleID: s.ID, From: s.Status, To: next}
}

// MaxDistinctProductsPerSale keeps a sale's stock writes plus the sale record inside a single
// DynamoDB transaction, which holds at most 100 items.
const MaxDistinctProductsPerSale = 99

// SaleLine is one requested line of a create-sale command. A nil UnitPrice uses the catalog price.
type SaleLine struct {
	ProductID string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// CreateSaleCommand is the input of the sale creation.
type CreateSaleCommand struct {
	ClientID         string
	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	PaymentReference string
	IdempotencyKey   string
	Items            []SaleLine
}

// SaleFilter narrows sale listings. Empty fields match everything.
type SaleFilter struct {
	SellerID string
	Status   SaleStatus
}

func (f SaleFilter) Matches(s Sale) bool {
	if f.SellerID != "" && s.SellerID != f.SellerID {
		return false
	}
	if f.Status != "" && s.Status != f.Status {
		return false
	}
	return true
}
