//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package record defines the flat, denormalized order record read from an
// order export and the CSV codec for it.
package record

import (
	"database/sql"
	"time"
)

// Role identifies one of the timestamp columns of an order record.
type Role int

// Timestamp roles, in fact table column order.
const (
	RolePurchase Role = iota
	RoleApproved
	RoleDeliveredCarrier
	RoleDeliveredCustomer
	RoleEstimatedDelivery
)

// AllRoles lists every timestamp role.
var AllRoles = []Role{
	RolePurchase,
	RoleApproved,
	RoleDeliveredCarrier,
	RoleDeliveredCustomer,
	RoleEstimatedDelivery,
}

// Column returns the source column name for the role.
func (r Role) Column() string {
	switch r {
	case RolePurchase:
		return "order_purchase_timestamp"
	case RoleApproved:
		return "order_approved_at"
	case RoleDeliveredCarrier:
		return "order_delivered_carrier_date"
	case RoleDeliveredCustomer:
		return "order_delivered_customer_date"
	case RoleEstimatedDelivery:
		return "order_estimated_delivery_date"
	default:
		return "unknown"
	}
}

func (r Role) String() string {
	return r.Column()
}

// Record is one line of the order export: an order line item joined with
// its customer, product, seller and payment details.
type Record struct {
	// Line is the 1-based source line, zero for records not read from a file.
	Line int

	OrderID     string
	OrderStatus string

	CustomerID        string
	CustomerUniqueID  string
	CustomerZipPrefix string
	CustomerCity      string
	CustomerState     string

	// Timestamps; nil means the value is absent in the source.
	Purchase          *time.Time
	Approved          *time.Time
	DeliveredCarrier  *time.Time
	DeliveredCustomer *time.Time
	EstimatedDelivery *time.Time

	ProductID                string
	ProductCategory          sql.NullString
	ProductNameLength        sql.NullInt64
	ProductDescriptionLength sql.NullInt64
	ProductPhotosQty         sql.NullInt64
	ProductWeightG           sql.NullFloat64
	ProductLengthCm          sql.NullFloat64
	ProductHeightCm          sql.NullFloat64
	ProductWidthCm           sql.NullFloat64

	SellerID        string
	SellerZipPrefix string
	SellerCity      string
	SellerState     string

	Price        sql.NullFloat64
	FreightValue sql.NullFloat64

	PaymentType         string
	PaymentInstallments sql.NullInt64
	PaymentValue        sql.NullFloat64
}

// Timestamp returns the value of the given role, or nil when absent.
func (r *Record) Timestamp(role Role) *time.Time {
	switch role {
	case RolePurchase:
		return r.Purchase
	case RoleApproved:
		return r.Approved
	case RoleDeliveredCarrier:
		return r.DeliveredCarrier
	case RoleDeliveredCustomer:
		return r.DeliveredCustomer
	case RoleEstimatedDelivery:
		return r.EstimatedDelivery
	default:
		return nil
	}
}

// SetTimestamp sets the value of the given role.
func (r *Record) SetTimestamp(role Role, ts *time.Time) {
	switch role {
	case RolePurchase:
		r.Purchase = ts
	case RoleApproved:
		r.Approved = ts
	case RoleDeliveredCarrier:
		r.DeliveredCarrier = ts
	case RoleDeliveredCustomer:
		r.DeliveredCustomer = ts
	case RoleEstimatedDelivery:
		r.EstimatedDelivery = ts
	}
}
