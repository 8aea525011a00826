package service

import (
	"github.com/shopspring/decimal"
	"github.com/vbonduro/fieldsales/internal/domain"
	"github.com/vbonduro/fieldsales/internal/form"
)

// PurchaseInput is the purchase form as the agent filled it in. Numeric
// fields are kept as typed so validation can name them when they do not parse.
type PurchaseInput struct {
	FirstName    string              `json:"first_name"`
	LastName     string              `json:"last_name"`
	Phone        string              `json:"phone"`
	Zone         string              `json:"zone"`
	Base         string              `json:"base"`
	PushcardType domain.PushcardType `json:"pushcard_type"`
	Amount       string              `json:"amount"`
	// PhotoKey references a photo saved with SavePhoto.
	PhotoKey  string           `json:"photo_key,omitempty"`
	Latitude  *decimal.Decimal `json:"latitude,omitempty"`
	Longitude *decimal.Decimal `json:"longitude,omitempty"`
}

func (in PurchaseInput) payload() *form.Payload {
	p := form.NewPayload().
		Set("first_name", in.FirstName).
		Set("last_name", in.LastName).
		Set("phone", in.Phone).
		Set("zone", in.Zone).
		Set("base", in.Base).
		Set("pushcard_type", string(in.PushcardType)).
		Set("amount", in.Amount)
	if in.PhotoKey != "" {
		p.Set("photo", form.Image{Key: in.PhotoKey})
	}
	setLocation(p, in.Latitude, in.Longitude)
	return p
}

type PointOfSaleInput struct {
	Name     string         `json:"name"`
	Owner    string         `json:"owner"`
	Phone    string         `json:"phone"`
	Email    string         `json:"email,omitempty"`
	Address  string         `json:"address"`
	District string         `json:"district"`
	Region   string         `json:"region"`
	Commune  string         `json:"commune"`
	Type     domain.POSType `json:"type"`
	// Status defaults to en_attente.
	Status domain.POSStatus `json:"status,omitempty"`
	// RegistrationDate is YYYY-MM-DD and defaults to today.
	RegistrationDate string           `json:"registration_date,omitempty"`
	Turnover         string           `json:"turnover,omitempty"`
	MonthlyOrders    string           `json:"monthly_orders,omitempty"`
	EvaluationScore  string           `json:"evaluation_score,omitempty"`
	AvatarKey        string           `json:"avatar_key,omitempty"`
	Brander          bool             `json:"brander"`
	BrandName        string           `json:"marque_brander,omitempty"`
	BrandingImageKey string           `json:"branding_image_key,omitempty"`
	Latitude         *decimal.Decimal `json:"latitude,omitempty"`
	Longitude        *decimal.Decimal `json:"longitude,omitempty"`
}

func (in PointOfSaleInput) payload(today string) *form.Payload {
	status := in.Status
	if status == "" {
		status = domain.POSPending
	}
	date := in.RegistrationDate
	if date == "" {
		date = today
	}

	p := form.NewPayload().
		Set("name", in.Name).
		Set("owner", in.Owner).
		Set("phone", in.Phone).
		Set("email", in.Email).
		Set("address", in.Address).
		Set("district", in.District).
		Set("region", in.Region).
		Set("commune", in.Commune).
		Set("type", string(in.Type)).
		Set("status", string(status)).
		Set("registration_date", date).
		Set("turnover", in.Turnover).
		Set("monthly_orders", in.MonthlyOrders).
		Set("evaluation_score", in.EvaluationScore).
		Set("brander", in.Brander)
	if in.Brander {
		p.Set("marque_brander", in.BrandName)
		if in.BrandingImageKey != "" {
			p.Set("branding_image", form.Image{Key: in.BrandingImageKey})
		}
	}
	if in.AvatarKey != "" {
		p.Set("avatar", form.Image{Key: in.AvatarKey})
	}
	setLocation(p, in.Latitude, in.Longitude)
	return p
}

// SaleInput records a sale of one variant to one customer.
type SaleInput struct {
	VariantID  int64            `json:"product_variant"`
	CustomerID int64            `json:"customer"`
	Quantity   string           `json:"quantity"`
	Latitude   *decimal.Decimal `json:"latitude,omitempty"`
	Longitude  *decimal.Decimal `json:"longitude,omitempty"`
}

// setLocation only sends coordinates when both are known.
func setLocation(p *form.Payload, lat, lng *decimal.Decimal) {
	if lat == nil || lng == nil {
		return
	}
	p.Set("latitude", *lat)
	p.Set("longitude", *lng)
}
