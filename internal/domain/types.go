package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PushcardType string

const (
	PushcardStandard PushcardType = "pushcard"
	PushcardTopTop   PushcardType = "TopTop"
	PushcardOwner    PushcardType = "Owner"
)

// Purchase is a pushcard collection event recorded by a field agent.
type Purchase struct {
	ID           int64            `json:"id"`
	FirstName    string           `json:"first_name"`
	LastName     string           `json:"last_name"`
	FullName     string           `json:"full_name,omitempty"`
	Phone        string           `json:"phone"`
	Zone         string           `json:"zone"`
	Base         string           `json:"base"`
	PushcardType PushcardType     `json:"pushcard_type"`
	Amount       decimal.Decimal  `json:"amount"`
	Photo        string           `json:"photo,omitempty"`
	Latitude     *decimal.Decimal `json:"latitude,omitempty"`
	Longitude    *decimal.Decimal `json:"longitude,omitempty"`
	PurchaseDate time.Time        `json:"purchase_date"`
}

type POSType string

const (
	POSBoutique      POSType = "boutique"
	POSSupermarche   POSType = "supermarche"
	POSSuperette     POSType = "superette"
	POSEpicerie      POSType = "epicerie"
	POSDemiGrossiste POSType = "demi_grossiste"
	POSGrossiste     POSType = "grossiste"
)

type POSStatus string

const (
	POSPending  POSStatus = "en_attente"
	POSActive   POSStatus = "actif"
	POSInactive POSStatus = "inactif"
)

type PointOfSale struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Owner            string           `json:"owner"`
	Phone            string           `json:"phone"`
	Email            string           `json:"email,omitempty"`
	Address          string           `json:"address"`
	District         string           `json:"district"`
	Region           string           `json:"region"`
	Commune          string           `json:"commune"`
	Type             POSType          `json:"type"`
	Status           POSStatus        `json:"status"`
	RegistrationDate string           `json:"registration_date,omitempty"`
	Turnover         *decimal.Decimal `json:"turnover,omitempty"`
	MonthlyOrders    *int             `json:"monthly_orders,omitempty"`
	EvaluationScore  *decimal.Decimal `json:"evaluation_score,omitempty"`
	Avatar           string           `json:"avatar,omitempty"`
	Brander          bool             `json:"brander"`
	BrandName        string           `json:"marque_brander,omitempty"`
	BrandingImage    string           `json:"branding_image,omitempty"`
	Latitude         *decimal.Decimal `json:"latitude,omitempty"`
	Longitude        *decimal.Decimal `json:"longitude,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

type ActivityType string

const (
	ActivityStockReplenishment ActivityType = "stock_replenishment"
	ActivitySale               ActivityType = "sale"
)

// VendorActivity is a stock assignment or sale batch against product variants.
type VendorActivity struct {
	ID               int64           `json:"id"`
	ActivityType     ActivityType    `json:"activity_type"`
	QuantityAssigned int             `json:"quantity_assignes"`
	QuantitySold     int             `json:"quantity_sales"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	OrderItems       []OrderItem     `json:"order_items"`
}

type OrderItem struct {
	ID             int64           `json:"id"`
	ProductName    string          `json:"product_name,omitempty"`
	ProductVariant ProductVariant  `json:"product_variant"`
	Quantity       int             `json:"quantity"`
	Total          decimal.Decimal `json:"total"`
}

type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

type Format struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductVariant is a sellable SKU. CurrentStock is computed by the server
// (assigned minus sold) and is only ever read on the client.
type ProductVariant struct {
	ID           int64           `json:"id"`
	Product      Product         `json:"product"`
	Format       Format          `json:"format"`
	Price        decimal.Decimal `json:"price"`
	CurrentStock int             `json:"current_stock"`
	MinStock     int             `json:"min_stock"`
	MaxStock     int             `json:"max_stock"`
	Image        string          `json:"image,omitempty"`
}

type Sale struct {
	ID             int64            `json:"id"`
	ProductVariant int64            `json:"product_variant"`
	Customer       int64            `json:"customer"`
	Quantity       int              `json:"quantity"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	VendorActivity *int64           `json:"vendor_activity,omitempty"`
	Latitude       *decimal.Decimal `json:"latitude,omitempty"`
	Longitude      *decimal.Decimal `json:"longitude,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// SalesSummary is the server-side aggregate behind the sales report.
type SalesSummary struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalQuantity int             `json:"total_quantity"`
	PurchaseCount int             `json:"purchase_count"`
	SalesCount    int             `json:"sales_count"`
}

// Ville and Quartier feed the base and zone pickers of the purchase form.
type Ville struct {
	ID   int64  `json:"id"`
	Name string `json:"nom"`
}

type Quartier struct {
	ID   int64  `json:"id"`
	Name string `json:"nom"`
}

type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type UserData struct {
	Username  string    `json:"username"`
	LoginDate time.Time `json:"loginDate"`
}
