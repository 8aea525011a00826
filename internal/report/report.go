// Package report derives the stock and sales figures shown to an agent from
// the collections the service already holds.
package report

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/vbonduro/fieldsales/internal/domain"
)

type StockStatus string

const (
	StockOut    StockStatus = "out"
	StockLow    StockStatus = "low"
	StockMedium StockStatus = "medium"
	StockGood   StockStatus = "good"
)

var hundred = decimal.NewFromInt(100)

func (s StockStatus) priority() int {
	switch s {
	case StockOut:
		return 0
	case StockLow:
		return 1
	case StockMedium:
		return 2
	default:
		return 3
	}
}

// Status classifies a variant by its current stock relative to min_stock.
func Status(v domain.ProductVariant) StockStatus {
	switch {
	case v.CurrentStock <= 0:
		return StockOut
	case v.CurrentStock <= v.MinStock:
		return StockLow
	case v.CurrentStock <= 2*v.MinStock:
		return StockMedium
	default:
		return StockGood
	}
}

type StockLine struct {
	ProductName string                `json:"product_name"`
	Variant     domain.ProductVariant `json:"product_variant"`
	Status      StockStatus           `json:"status"`
}

// StockLines lists each variant appearing in activities once, most critical
// first. The first occurrence of a variant wins.
func StockLines(activities []domain.VendorActivity) []StockLine {
	seen := make(map[int64]bool)
	var lines []StockLine
	for _, a := range activities {
		for _, item := range a.OrderItems {
			id := item.ProductVariant.ID
			if seen[id] {
				continue
			}
			seen[id] = true

			name := item.ProductName
			if name == "" {
				name = item.ProductVariant.Product.Name
			}
			lines = append(lines, StockLine{
				ProductName: name,
				Variant:     item.ProductVariant,
				Status:      Status(item.ProductVariant),
			})
		}
	}

	slices.SortStableFunc(lines, func(a, b StockLine) int {
		return cmp.Compare(a.Status.priority(), b.Status.priority())
	})
	return lines
}

// FilterStock keeps lines matching tab ("all", "low", "medium", "good") and
// whose product name or SKU contains query. The low tab includes
// out-of-stock lines.
func FilterStock(lines []StockLine, tab, query string) []StockLine {
	query = strings.ToLower(strings.TrimSpace(query))
	out := []StockLine{}
	for _, l := range lines {
		if !matchesTab(l.Status, tab) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(l.ProductName), query) &&
			!strings.Contains(strings.ToLower(l.Variant.Product.SKU), query) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchesTab(s StockStatus, tab string) bool {
	switch tab {
	case "", "all":
		return true
	case "low":
		return s.priority() <= StockLow.priority()
	default:
		return string(s) == tab
	}
}

// Inventory compares what was assigned to the agent with what was sold.
type Inventory struct {
	AssignedQuantity  int             `json:"assigned_quantity"`
	AssignedAmount    decimal.Decimal `json:"assigned_amount"`
	SoldQuantity      int             `json:"sold_quantity"`
	SoldAmount        decimal.Decimal `json:"sold_amount"`
	RemainingQuantity int             `json:"remaining_quantity"`
	RemainingAmount   decimal.Decimal `json:"remaining_amount"`
	// SellRate is sold/assigned as a percentage, 0 when nothing is assigned.
	SellRate decimal.Decimal `json:"sell_rate"`
}

// Totals sums stock_replenishment order lines as the assigned stock and
// takes sold figures from the server summary. summary may be nil.
func Totals(activities []domain.VendorActivity, summary *domain.SalesSummary) Inventory {
	inv := Inventory{}
	for _, a := range activities {
		if a.ActivityType != domain.ActivityStockReplenishment {
			continue
		}
		for _, item := range a.OrderItems {
			inv.AssignedQuantity += item.Quantity
			inv.AssignedAmount = inv.AssignedAmount.Add(item.Total)
		}
	}

	if summary != nil {
		inv.SoldQuantity = summary.TotalQuantity
		inv.SoldAmount = summary.TotalRevenue
	}
	inv.RemainingQuantity = inv.AssignedQuantity - inv.SoldQuantity
	inv.RemainingAmount = inv.AssignedAmount.Sub(inv.SoldAmount)

	if inv.AssignedQuantity > 0 {
		inv.SellRate = decimal.NewFromInt(int64(inv.SoldQuantity)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(inv.AssignedQuantity))).
			Round(2)
	}
	return inv
}

type ZoneStat struct {
	Zone    string          `json:"zone"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Clients summarises recorded purchases.
type Clients struct {
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
	Average decimal.Decimal `json:"average"`
	Zones   []ZoneStat      `json:"zones"`
}

// PurchaseStats totals purchases overall and per zone. Zones are ordered by
// revenue, highest first.
func PurchaseStats(purchases []domain.Purchase) Clients {
	c := Clients{Zones: []ZoneStat{}}
	byZone := make(map[string]int)
	for _, p := range purchases {
		c.Count++
		c.Revenue = c.Revenue.Add(p.Amount)

		i, ok := byZone[p.Zone]
		if !ok {
			i = len(c.Zones)
			byZone[p.Zone] = i
			c.Zones = append(c.Zones, ZoneStat{Zone: p.Zone})
		}
		c.Zones[i].Count++
		c.Zones[i].Revenue = c.Zones[i].Revenue.Add(p.Amount)
	}

	if c.Count > 0 {
		c.Average = c.Revenue.Div(decimal.NewFromInt(int64(c.Count))).Round(2)
	}
	slices.SortStableFunc(c.Zones, func(a, b ZoneStat) int {
		return b.Revenue.Cmp(a.Revenue)
	})
	return c
}

type Report struct {
	Clients   Clients     `json:"clients"`
	Inventory Inventory   `json:"inventory"`
	Stock     []StockLine `json:"stock"`
}

func Build(purchases []domain.Purchase, activities []domain.VendorActivity, summary *domain.SalesSummary) Report {
	stock := StockLines(activities)
	if stock == nil {
		stock = []StockLine{}
	}
	return Report{
		Clients:   PurchaseStats(purchases),
		Inventory: Totals(activities, summary),
		Stock:     stock,
	}
}
