//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/pgEdge/pgedge-starload/internal/record"
)

// Order statuses and their relative frequency in a marketplace export.
var (
	orderStatuses = []string{"delivered", "shipped", "canceled", "invoiced", "processing", "approved", "unavailable", "created"}
	statusWeights = []int{89, 3, 2, 2, 1, 1, 1, 1}
)

// Payment types and their relative frequency.
var (
	paymentTypes   = []string{"credit_card", "boleto", "voucher", "debit_card"}
	paymentWeights = []int{74, 19, 5, 2}
)

var categories = []string{
	"bed_bath_table", "health_beauty", "sports_leisure", "furniture_decor",
	"computers_accessories", "housewares", "watches_gifts", "telephony",
	"garden_tools", "auto", "toys", "cool_stuff", "perfumery", "baby",
	"electronics", "stationery", "fashion_bags_accessories", "pet_shop",
}

// OrderOptions controls synthetic order generation.
type OrderOptions struct {
	// Orders is the number of distinct orders.
	Orders int

	// Seed makes the output reproducible; 0 picks a random seed.
	Seed int64

	// Start and End bound purchase timestamps.
	Start time.Time
	End   time.Time

	// Pattern weights purchase times; nil spreads them evenly.
	Pattern Pattern

	// ProgressInterval is how often to log progress, in orders.
	ProgressInterval int64
}

type customer struct {
	id, uniqueID string
	place        Place
}

type product struct {
	id       string
	category sql.NullString
	nameLen  sql.NullInt64
	descLen  sql.NullInt64
	photos   sql.NullInt64
	weight   sql.NullFloat64
	length   sql.NullFloat64
	height   sql.NullFloat64
	width    sql.NullFloat64
}

type seller struct {
	id    string
	place Place
}

type lineItem struct {
	product *product
	seller  *seller
	price   float64
	freight float64
}

type payment struct {
	kind         string
	installments int64
	value        float64
}

// OrderGenerator produces a flat order export: one record per line item and
// payment of every order. Customers, products and sellers repeat across
// orders; timestamps that a status has not reached yet are absent.
type OrderGenerator struct {
	opts  OrderOptions
	faker *Faker

	people   []string
	products []*product
	sellers  []*seller
}

// NewOrderGenerator creates a generator.
func NewOrderGenerator(opts OrderOptions) (*OrderGenerator, error) {
	if opts.Orders < 1 {
		return nil, errors.New("orders must be at least 1")
	}
	if opts.End.Before(opts.Start) {
		return nil, errors.New("end must not be before start")
	}

	f := NewFaker(uint64(opts.Seed))
	g := &OrderGenerator{opts: opts, faker: f}

	// A fifth of the shoppers order more than once.
	g.people = make([]string, max(1, opts.Orders*4/5))
	for i := range g.people {
		g.people[i] = f.HexID()
	}

	g.products = make([]*product, max(1, opts.Orders/3))
	for i := range g.products {
		g.products[i] = g.newProduct()
	}

	g.sellers = make([]*seller, max(1, opts.Orders/10))
	for i := range g.sellers {
		g.sellers[i] = &seller{id: f.HexID(), place: f.Place()}
	}

	return g, nil
}

func (g *OrderGenerator) newProduct() *product {
	f := g.faker
	p := &product{id: f.HexID()}

	// About one product in fifty has no catalogue data.
	if f.Chance(0.02) {
		return p
	}
	p.category = sql.NullString{String: Choose(f, categories), Valid: true}
	p.nameLen = sql.NullInt64{Int64: int64(f.Int(5, 76)), Valid: true}
	p.descLen = sql.NullInt64{Int64: int64(f.Int(4, 3992)), Valid: true}
	p.photos = sql.NullInt64{Int64: int64(f.Int(1, 8)), Valid: true}
	p.weight = sql.NullFloat64{Float64: float64(f.Int(50, 30000)), Valid: true}
	p.length = sql.NullFloat64{Float64: float64(f.Int(7, 105)), Valid: true}
	p.height = sql.NullFloat64{Float64: float64(f.Int(2, 105)), Valid: true}
	p.width = sql.NullFloat64{Float64: float64(f.Int(6, 118)), Valid: true}
	return p
}

// Generate returns the records of every order.
func (g *OrderGenerator) Generate(ctx context.Context) ([]record.Record, error) {
	progress := NewProgressReporter("orders", int64(g.opts.Orders), g.opts.ProgressInterval)
	out := make([]record.Record, 0, g.opts.Orders*2)

	for i := 0; i < g.opts.Orders; i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		out = append(out, g.order()...)
		progress.Update(1)
	}
	progress.Done()

	return out, nil
}

// order builds the records of one order.
func (g *OrderGenerator) order() []record.Record {
	f := g.faker

	c := customer{
		id:       f.HexID(),
		uniqueID: Choose(f, g.people),
		place:    f.Place(),
	}
	orderID := f.HexID()
	status := ChooseWeighted(f, orderStatuses, statusWeights)
	ts := g.timestamps(status)

	items := make([]lineItem, ChooseWeighted(f, []int{1, 2, 3}, []int{88, 9, 3}))
	var total float64
	for i := range items {
		items[i] = lineItem{
			product: Choose(f, g.products),
			seller:  Choose(f, g.sellers),
			price:   f.Money(5, 900),
			freight: f.Money(0, 60),
		}
		total += items[i].price + items[i].freight
	}
	payments := g.payments(total)

	recs := make([]record.Record, 0, len(items)*len(payments))
	for _, it := range items {
		for _, p := range payments {
			r := record.Record{
				OrderID:     orderID,
				OrderStatus: status,

				CustomerID:        c.id,
				CustomerUniqueID:  c.uniqueID,
				CustomerZipPrefix: c.place.ZipPrefix,
				CustomerCity:      c.place.City,
				CustomerState:     c.place.State,

				ProductID:                it.product.id,
				ProductCategory:          it.product.category,
				ProductNameLength:        it.product.nameLen,
				ProductDescriptionLength: it.product.descLen,
				ProductPhotosQty:         it.product.photos,
				ProductWeightG:           it.product.weight,
				ProductLengthCm:          it.product.length,
				ProductHeightCm:          it.product.height,
				ProductWidthCm:           it.product.width,

				SellerID:        it.seller.id,
				SellerZipPrefix: it.seller.place.ZipPrefix,
				SellerCity:      it.seller.place.City,
				SellerState:     it.seller.place.State,

				Price:        sql.NullFloat64{Float64: it.price, Valid: true},
				FreightValue: sql.NullFloat64{Float64: it.freight, Valid: true},

				PaymentType:         p.kind,
				PaymentInstallments: sql.NullInt64{Int64: p.installments, Valid: true},
				PaymentValue:        sql.NullFloat64{Float64: p.value, Valid: true},
			}
			for role, t := range ts {
				r.SetTimestamp(role, t)
			}
			recs = append(recs, r)
		}
	}
	return recs
}

// timestamps returns the timestamps a status has reached. The estimated
// delivery date is always set, at midnight.
func (g *OrderGenerator) timestamps(status string) map[record.Role]*time.Time {
	f := g.faker
	ts := make(map[record.Role]*time.Time, len(record.AllRoles))

	purchase := purchaseTime(f, g.opts.Pattern, g.opts.Start, g.opts.End.Add(24*time.Hour-time.Second))
	ts[record.RolePurchase] = &purchase

	est := purchase.AddDate(0, 0, f.Int(10, 40)).Truncate(24 * time.Hour)
	ts[record.RoleEstimatedDelivery] = &est

	if status == "created" || (status == "canceled" && f.Chance(0.5)) {
		return ts
	}
	approved := purchase.Add(time.Duration(f.Int(10, 48*60)) * time.Minute)
	ts[record.RoleApproved] = &approved

	if status != "shipped" && status != "delivered" {
		return ts
	}
	carrier := approved.Add(time.Duration(f.Int(12, 120)) * time.Hour)
	ts[record.RoleDeliveredCarrier] = &carrier

	if status != "delivered" {
		return ts
	}
	delivered := carrier.Add(time.Duration(f.Int(24, 360)) * time.Hour)
	ts[record.RoleDeliveredCustomer] = &delivered
	return ts
}

// payments splits total into one or two payments. A voucher may cover part
// of the amount.
func (g *OrderGenerator) payments(total float64) []payment {
	f := g.faker
	total = math.Round(total*100) / 100

	main := payment{kind: ChooseWeighted(f, paymentTypes, paymentWeights), installments: 1, value: total}
	if main.kind == "credit_card" {
		main.installments = int64(ChooseWeighted(f, []int{1, 2, 3, 4, 5, 6, 8, 10}, []int{50, 12, 10, 8, 6, 5, 4, 5}))
	}

	if main.kind == "voucher" || total < 20 || !f.Chance(0.05) {
		return []payment{main}
	}
	voucher := math.Round(f.Float64(5, total/2)*100) / 100
	main.value = math.Round((total-voucher)*100) / 100
	return []payment{main, {kind: "voucher", installments: 1, value: voucher}}
}
