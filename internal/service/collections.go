package service

import (
	"github.com/vbonduro/fieldsales/internal/collection"
	"github.com/vbonduro/fieldsales/internal/domain"
	"github.com/vbonduro/fieldsales/internal/form"
	"github.com/vbonduro/fieldsales/internal/imaging"
)

// Cache keys. purchases and pointsOfSale keep the names older installs used.
const (
	KeyPurchases        = "purchases"
	KeyPointsOfSale     = "pointsOfSale"
	KeyVendorActivities = "vendorActivities"
	KeySales            = "sales"
	KeySalesSummary     = "salesSummary"
	KeyVilles           = "villes"
	KeyQuartiers        = "quartiers"
)

var purchaseSchema = form.Schema{
	Required: []string{"first_name", "last_name", "zone", "amount", "phone", "base", "pushcard_type"},
	Numeric:  []string{"amount"},
	Enums: map[string][]string{
		"pushcard_type": {string(domain.PushcardStandard), string(domain.PushcardTopTop), string(domain.PushcardOwner)},
	},
	Images:         map[string]string{"photo": "purchase_photo.jpg"},
	TimestampField: "purchase_date",
	Labels: map[string]string{
		"first_name":    "First name",
		"last_name":     "Last name",
		"zone":          "Zone",
		"amount":        "Amount",
		"phone":         "Phone",
		"base":          "Base",
		"pushcard_type": "Pushcard type",
	},
}

var pointOfSaleSchema = form.Schema{
	Required: []string{"name", "owner", "phone", "address", "district", "region", "commune", "type"},
	Numeric:  []string{"turnover", "evaluation_score"},
	Integer:  []string{"monthly_orders"},
	Enums: map[string][]string{
		"type": {
			string(domain.POSBoutique), string(domain.POSSupermarche), string(domain.POSSuperette),
			string(domain.POSEpicerie), string(domain.POSDemiGrossiste), string(domain.POSGrossiste),
		},
		"status": {string(domain.POSPending), string(domain.POSActive), string(domain.POSInactive)},
	},
	Images: map[string]string{
		"avatar":         "point_of_sale_avatar.jpg",
		"branding_image": "branding_image.jpg",
	},
	Labels: map[string]string{
		"name":             "Name",
		"owner":            "Owner",
		"phone":            "Phone",
		"address":          "Address",
		"district":         "District",
		"region":           "Region",
		"commune":          "Commune",
		"type":             "Type",
		"status":           "Status",
		"turnover":         "Turnover",
		"evaluation_score": "Evaluation score",
		"monthly_orders":   "Monthly orders",
	},
}

var saleSchema = form.Schema{
	Required: []string{"product_variant", "customer", "quantity", "total_amount"},
	Numeric:  []string{"total_amount"},
	Integer:  []string{"product_variant", "customer", "quantity", "vendor_activity"},
	Labels: map[string]string{
		"product_variant": "Product",
		"customer":        "Customer",
		"quantity":        "Quantity",
		"total_amount":    "Total amount",
	},
}

func specs(photos form.PhotoOpener, maxCached int) (purchases, pos, activities, sales, villes, quartiers collection.Spec) {
	multipart := form.Multipart{Photos: photos, Prepare: imaging.Normalize}

	purchases = collection.Spec{
		Name:      KeyPurchases,
		Path:      "/api/purchases/",
		Schema:    purchaseSchema,
		Encoder:   multipart,
		MaxCached: maxCached,
	}
	pos = collection.Spec{
		Name:      KeyPointsOfSale,
		Path:      "/api/points-vente/",
		Schema:    pointOfSaleSchema,
		Encoder:   multipart,
		MaxCached: maxCached,
	}
	activities = collection.Spec{Name: KeyVendorActivities, Path: "/api/vendor-activities/"}
	sales = collection.Spec{
		Name:      KeySales,
		Path:      "/api/sales/",
		Schema:    saleSchema,
		Encoder:   form.JSON{},
		MaxCached: maxCached,
	}
	villes = collection.Spec{Name: KeyVilles, Path: "/api/villes/"}
	quartiers = collection.Spec{Name: KeyQuartiers, Path: "/api/quartiers/"}
	return
}
