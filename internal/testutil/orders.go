//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package testutil

import (
	"database/sql"
	"time"

	"github.com/pgEdge/pgedge-starload/internal/record"
)

// Expected distinct rows of SampleOrders per warehouse table.
const (
	SampleCustomers = 3
	SampleProducts  = 3
	SampleSellers   = 2
	SamplePayments  = 3
	SampleDates     = 7
	SampleFacts     = 3
)

// SampleOrderRecords is len(SampleOrders()).
const SampleOrderRecords = 5

// Ts returns a pointer to a UTC timestamp.
func Ts(year int, month time.Month, day, hour, minute, sec int) *time.Time {
	t := time.Date(year, month, day, hour, minute, sec, 0, time.UTC)
	return &t
}

func price(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: true} }
func count(v int64) sql.NullInt64     { return sql.NullInt64{Int64: v, Valid: true} }

// SampleOrders returns a small export covering the interesting shapes:
//
//   - o1 delivered, one item, paid in two parts (two records)
//   - o2 shipped, two items from two sellers (two records)
//   - o3 created, no payment, bought by o1's shopper under a new customer_id
//
// 2017-10-04 is o1's carrier date and o2's purchase date; 2017-10-18 is
// o1's estimated delivery and o3's purchase date.
func SampleOrders() []record.Record {
	c1 := record.Record{
		CustomerID:        "c1",
		CustomerUniqueID:  "u1",
		CustomerZipPrefix: "03149",
		CustomerCity:      "sao paulo",
		CustomerState:     "SP",
	}
	p1 := record.Record{
		ProductID:                "p1",
		ProductCategory:          sql.NullString{String: "housewares", Valid: true},
		ProductNameLength:        count(40),
		ProductDescriptionLength: count(268),
		ProductPhotosQty:         count(4),
		ProductWeightG:           price(500),
		ProductLengthCm:          price(19),
		ProductHeightCm:          price(8),
		ProductWidthCm:           price(13),
	}

	o1 := record.Record{
		OrderID:           "o1",
		OrderStatus:       "delivered",
		CustomerID:        c1.CustomerID,
		CustomerUniqueID:  c1.CustomerUniqueID,
		CustomerZipPrefix: c1.CustomerZipPrefix,
		CustomerCity:      c1.CustomerCity,
		CustomerState:     c1.CustomerState,

		Purchase:          Ts(2017, 10, 2, 10, 56, 33),
		Approved:          Ts(2017, 10, 2, 11, 7, 15),
		DeliveredCarrier:  Ts(2017, 10, 4, 19, 55, 0),
		DeliveredCustomer: Ts(2017, 10, 10, 21, 25, 13),
		EstimatedDelivery: Ts(2017, 10, 18, 0, 0, 0),

		ProductID:                p1.ProductID,
		ProductCategory:          p1.ProductCategory,
		ProductNameLength:        p1.ProductNameLength,
		ProductDescriptionLength: p1.ProductDescriptionLength,
		ProductPhotosQty:         p1.ProductPhotosQty,
		ProductWeightG:           p1.ProductWeightG,
		ProductLengthCm:          p1.ProductLengthCm,
		ProductHeightCm:          p1.ProductHeightCm,
		ProductWidthCm:           p1.ProductWidthCm,

		SellerID:        "s1",
		SellerZipPrefix: "09350",
		SellerCity:      "maua",
		SellerState:     "SP",

		Price:        price(29.99),
		FreightValue: price(8.72),

		PaymentType:         "credit_card",
		PaymentInstallments: count(1),
		PaymentValue:        price(18.12),
	}
	o1Voucher := o1
	o1Voucher.PaymentType = "voucher"
	o1Voucher.PaymentValue = price(20.59)

	o2 := record.Record{
		OrderID:           "o2",
		OrderStatus:       "shipped",
		CustomerID:        "c2",
		CustomerUniqueID:  "u2",
		CustomerZipPrefix: "47813",
		CustomerCity:      "barreiras",
		CustomerState:     "BA",

		Purchase:          Ts(2017, 10, 4, 8, 0, 0),
		Approved:          Ts(2017, 10, 4, 9, 0, 0),
		DeliveredCarrier:  Ts(2017, 10, 5, 14, 30, 0),
		EstimatedDelivery: Ts(2017, 10, 20, 0, 0, 0),

		ProductID:       "p2",
		ProductCategory: sql.NullString{String: "perfumery", Valid: true},
		ProductWeightG:  price(400),

		SellerID:        "s1",
		SellerZipPrefix: "09350",
		SellerCity:      "maua",
		SellerState:     "SP",

		Price:        price(60),
		FreightValue: price(10),

		PaymentType:         "boleto",
		PaymentInstallments: count(1),
		PaymentValue:        price(100),
	}
	o2Second := o2
	o2Second.ProductID = "p3"
	o2Second.ProductCategory = sql.NullString{}
	o2Second.ProductWeightG = sql.NullFloat64{}
	o2Second.SellerID = "s2"
	o2Second.SellerZipPrefix = "31570"
	o2Second.SellerCity = "belo horizonte"
	o2Second.SellerState = "MG"
	o2Second.Price = price(20)
	o2Second.FreightValue = price(10)

	o3 := record.Record{
		OrderID:           "o3",
		OrderStatus:       "created",
		CustomerID:        "c3",
		CustomerUniqueID:  c1.CustomerUniqueID,
		CustomerZipPrefix: c1.CustomerZipPrefix,
		CustomerCity:      c1.CustomerCity,
		CustomerState:     c1.CustomerState,

		Purchase:          Ts(2017, 10, 18, 13, 0, 0),
		EstimatedDelivery: Ts(2017, 11, 1, 0, 0, 0),

		ProductID:                p1.ProductID,
		ProductCategory:          p1.ProductCategory,
		ProductNameLength:        p1.ProductNameLength,
		ProductDescriptionLength: p1.ProductDescriptionLength,
		ProductPhotosQty:         p1.ProductPhotosQty,
		ProductWeightG:           p1.ProductWeightG,
		ProductLengthCm:          p1.ProductLengthCm,
		ProductHeightCm:          p1.ProductHeightCm,
		ProductWidthCm:           p1.ProductWidthCm,

		SellerID:        o2Second.SellerID,
		SellerZipPrefix: o2Second.SellerZipPrefix,
		SellerCity:      o2Second.SellerCity,
		SellerState:     o2Second.SellerState,

		Price:        price(29.99),
		FreightValue: price(15),
	}

	recs := []record.Record{o1, o1Voucher, o2, o2Second, o3}
	for i := range recs {
		recs[i].Line = i + 2
	}
	return recs
}
