package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vbonduro/fieldsales/internal/collection"
	"github.com/vbonduro/fieldsales/internal/domain"
	"github.com/vbonduro/fieldsales/internal/form"
	"github.com/vbonduro/fieldsales/internal/imaging"
	"github.com/vbonduro/fieldsales/internal/kvstore"
	"github.com/vbonduro/fieldsales/internal/photostore"
	"github.com/vbonduro/fieldsales/internal/report"
)

// Collection names accepted by Focus.
const (
	FocusPurchases    = "purchases"
	FocusPointsOfSale = "points-of-sale"
	FocusActivities   = "activities"
	FocusSales        = "sales"
)

// ErrUnknownCollection is returned by Focus for a name it does not manage.
var ErrUnknownCollection = errors.New("unknown collection")

// sessionManager is the subset of session.Session that FieldService requires.
type sessionManager interface {
	Login(ctx context.Context, username, password string) (*domain.UserData, error)
	Logout(ctx context.Context) error
	User(ctx context.Context) (*domain.UserData, error)
	Token(ctx context.Context) (string, error)
}

type Options struct {
	// MaxCached bounds cached lists after an optimistic create. 0 is unbounded.
	MaxCached int
}

// FieldService is everything an agent's device does: one synced store per
// remote collection, the session, and the on-device photo store.
type FieldService struct {
	session    sessionManager
	kv         kvstore.Store
	photos     photostore.PhotoStore
	purchases  *collection.Store[domain.Purchase]
	pos        *collection.Store[domain.PointOfSale]
	activities *collection.Store[domain.VendorActivity]
	sales      *collection.Store[domain.Sale]
	villes     *collection.Store[domain.Ville]
	quartiers  *collection.Store[domain.Quartier]
	summary    *collection.Document[domain.SalesSummary]
	now        func() time.Time
	logger     *slog.Logger
}

func NewFieldService(
	api collection.API,
	sess sessionManager,
	kv kvstore.Store,
	photos photostore.PhotoStore,
	opts Options,
	logger *slog.Logger,
) *FieldService {
	purchases, pos, activities, sales, villes, quartiers := specs(photos, opts.MaxCached)
	return &FieldService{
		session:    sess,
		kv:         kv,
		photos:     photos,
		purchases:  collection.New[domain.Purchase](purchases, api, sess, kv, logger),
		pos:        collection.New[domain.PointOfSale](pos, api, sess, kv, logger),
		activities: collection.New[domain.VendorActivity](activities, api, sess, kv, logger),
		sales:      collection.New[domain.Sale](sales, api, sess, kv, logger),
		villes:     collection.New[domain.Ville](villes, api, sess, kv, logger),
		quartiers:  collection.New[domain.Quartier](quartiers, api, sess, kv, logger),
		summary:    collection.NewDocument[domain.SalesSummary](KeySalesSummary, "/api/sales/summary/", api, sess, kv, logger),
		now:        time.Now,
		logger:     logger,
	}
}

func (s *FieldService) Login(ctx context.Context, username, password string) (*domain.UserData, error) {
	return s.session.Login(ctx, username, password)
}

func (s *FieldService) Logout(ctx context.Context) error {
	return s.session.Logout(ctx)
}

// User returns the logged-in user, or nil when logged out.
func (s *FieldService) User(ctx context.Context) (*domain.UserData, error) {
	return s.session.User(ctx)
}

func (s *FieldService) Purchases(ctx context.Context) collection.Result[domain.Purchase] {
	return s.purchases.Refresh(ctx)
}

func (s *FieldService) CreatePurchase(ctx context.Context, in PurchaseInput) (*domain.Purchase, error) {
	if in.PushcardType == "" {
		in.PushcardType = domain.PushcardStandard
	}
	created, err := s.purchases.Create(ctx, in.payload())
	if err != nil {
		return nil, err
	}
	s.discardPhotos(ctx, in.PhotoKey)
	s.logger.Info("purchase recorded", "id", created.ID, "zone", created.Zone)
	return &created, nil
}

func (s *FieldService) PointsOfSale(ctx context.Context) collection.Result[domain.PointOfSale] {
	return s.pos.Refresh(ctx)
}

func (s *FieldService) CreatePointOfSale(ctx context.Context, in PointOfSaleInput) (*domain.PointOfSale, error) {
	created, err := s.pos.Create(ctx, in.payload(s.now().Format(time.DateOnly)))
	if err != nil {
		return nil, err
	}
	s.discardPhotos(ctx, in.AvatarKey, in.BrandingImageKey)
	s.logger.Info("point of sale registered", "id", created.ID, "name", created.Name)
	return &created, nil
}

func (s *FieldService) VendorActivities(ctx context.Context) collection.Result[domain.VendorActivity] {
	return s.activities.Refresh(ctx)
}

type StockResult struct {
	Lines  []report.StockLine
	Source collection.Source
}

// Stock refreshes the vendor activities and lists the variants they carry,
// filtered by status tab and a name/SKU query.
func (s *FieldService) Stock(ctx context.Context, tab, query string) StockResult {
	res := s.activities.Refresh(ctx)
	return StockResult{
		Lines:  report.FilterStock(report.StockLines(res.Items), tab, query),
		Source: res.Source,
	}
}

func (s *FieldService) Sales(ctx context.Context) collection.Result[domain.Sale] {
	return s.sales.Refresh(ctx)
}

// RecordSale checks the sale against the locally known stock, then posts it.
// Nothing is sent when a check fails.
func (s *FieldService) RecordSale(ctx context.Context, in SaleInput) (*domain.Sale, error) {
	known := s.activities.Snapshot(ctx).Items
	variant, activityID, ok := findVariant(known, in.VariantID)
	if !ok {
		return nil, &form.ValidationError{Field: "product_variant", Message: "unknown product"}
	}
	if variant.CurrentStock <= 0 {
		return nil, &form.ValidationError{Field: "quantity", Message: "out of stock"}
	}

	qty, err := strconv.Atoi(in.Quantity)
	if err != nil || qty <= 0 {
		return nil, &form.ValidationError{Field: "quantity", Message: "quantity must be a positive whole number"}
	}
	if qty > variant.CurrentStock {
		return nil, &form.ValidationError{Field: "quantity", Message: "quantity exceeds available stock"}
	}
	if in.CustomerID <= 0 {
		return nil, &form.ValidationError{Field: "customer", Message: "customer is required"}
	}

	total := variant.Price.Mul(decimal.NewFromInt(int64(qty)))
	p := form.NewPayload().
		Set("product_variant", variant.ID).
		Set("customer", in.CustomerID).
		Set("quantity", qty).
		Set("total_amount", total.StringFixed(2))
	if activityID > 0 {
		p.Set("vendor_activity", activityID)
	}
	setLocation(p, in.Latitude, in.Longitude)

	created, err := s.sales.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.activities.Invalidate()
	s.logger.Info("sale recorded", "id", created.ID, "variant", variant.ID, "quantity", qty)
	return &created, nil
}

func (s *FieldService) SalesSummary(ctx context.Context) collection.DocResult[domain.SalesSummary] {
	return s.summary.Refresh(ctx)
}

func (s *FieldService) Villes(ctx context.Context) collection.Result[domain.Ville] {
	return s.villes.Refresh(ctx)
}

func (s *FieldService) Quartiers(ctx context.Context) collection.Result[domain.Quartier] {
	return s.quartiers.Refresh(ctx)
}

type ReportResult struct {
	report.Report
	Source collection.Source `json:"source"`
}

// Report refreshes purchases, activities and the sales summary and derives
// the agent's figures. Source is cached when any input came from the cache.
func (s *FieldService) Report(ctx context.Context) ReportResult {
	purchases := s.purchases.Refresh(ctx)
	activities := s.activities.Refresh(ctx)
	summary := s.summary.Refresh(ctx)

	src := collection.Fresh
	if purchases.Source == collection.Cached || activities.Source == collection.Cached || summary.Source == collection.Cached {
		src = collection.Cached
	}
	return ReportResult{
		Report: report.Build(purchases.Items, activities.Items, summary.Value),
		Source: src,
	}
}

// Focus reconciles a collection when its screen comes back into view. It
// refetches only if a create happened since the last refresh.
func (s *FieldService) Focus(ctx context.Context, name string) (refreshed bool, err error) {
	switch name {
	case FocusPurchases:
		_, refreshed = s.purchases.Reconcile(ctx)
	case FocusPointsOfSale:
		_, refreshed = s.pos.Reconcile(ctx)
	case FocusActivities:
		_, refreshed = s.activities.Reconcile(ctx)
	case FocusSales:
		_, refreshed = s.sales.Reconcile(ctx)
	default:
		return false, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return refreshed, nil
}

// ResetLocalData drops every cached collection. The session survives.
func (s *FieldService) ResetLocalData(ctx context.Context) error {
	clearers := []interface{ Clear(context.Context) error }{
		s.purchases, s.pos, s.activities, s.sales, s.villes, s.quartiers, s.summary,
	}
	for _, c := range clearers {
		if err := c.Clear(ctx); err != nil {
			return err
		}
	}
	s.logger.Info("local data reset")
	return nil
}

// WipeDevice erases everything stored on the device, the session included,
// for handing the device over to another agent.
func (s *FieldService) WipeDevice(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		return fmt.Errorf("failed to wipe device: %w", err)
	}
	if err := s.ResetLocalData(ctx); err != nil {
		return err
	}
	s.logger.Info("device wiped")
	return nil
}

// SavePhoto keeps a captured JPEG or PNG on the device and returns its key.
// The photo is resized when a form referencing it is submitted.
func (s *FieldService) SavePhoto(ctx context.Context, data []byte) (string, error) {
	if _, err := imaging.Sniff(data); err != nil {
		return "", &form.ValidationError{Field: "image", Message: "Image must be a JPEG or PNG"}
	}
	key, err := s.photos.Save(ctx, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to save photo: %w", err)
	}
	s.logger.Debug("photo saved", "key", key, "bytes", len(data))
	return key, nil
}

// discardPhotos removes photos the server now holds. Photos of a failed
// submission stay on the device so the agent can retry.
func (s *FieldService) discardPhotos(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.photos.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete uploaded photo", "key", key, "error", err)
		}
	}
}

// findVariant looks a variant up across the known activities and returns the
// first activity carrying it.
func findVariant(activities []domain.VendorActivity, id int64) (domain.ProductVariant, int64, bool) {
	for _, a := range activities {
		for _, item := range a.OrderItems {
			if item.ProductVariant.ID == id {
				return item.ProductVariant, a.ID, true
			}
		}
	}
	return domain.ProductVariant{}, 0, false
}
