//-------------------------------------------------------------------------
//
// pgEdge Star Schema Loader
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package postgres

// createSchemaSQL creates the star schema. Dimensions come first so the
// fact table can reference them.
const createSchemaSQL = `
CREATE TABLE IF NOT EXISTS dim_customers (
    customer_id              VARCHAR(64) PRIMARY KEY,
    customer_unique_id       VARCHAR(64),
    customer_zip_code_prefix VARCHAR(10),
    customer_city            VARCHAR(100),
    customer_state           VARCHAR(4)
);

CREATE TABLE IF NOT EXISTS dim_products (
    product_id                 VARCHAR(64) PRIMARY KEY,
    product_category_name      VARCHAR(100),
    product_name_length        INTEGER,
    product_description_length INTEGER,
    product_photos_qty         INTEGER,
    product_weight_g           DOUBLE PRECISION,
    product_length_cm          DOUBLE PRECISION,
    product_height_cm          DOUBLE PRECISION,
    product_width_cm           DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS dim_sellers (
    seller_id              VARCHAR(64) PRIMARY KEY,
    seller_zip_code_prefix VARCHAR(10),
    seller_city            VARCHAR(100),
    seller_state           VARCHAR(4)
);

CREATE TABLE IF NOT EXISTS dim_payments (
    payment_id           SERIAL PRIMARY KEY,
    order_id             VARCHAR(64) NOT NULL,
    payment_type         VARCHAR(32) NOT NULL,
    payment_installments INTEGER NOT NULL,
    payment_value        NUMERIC(12,2) NOT NULL,
    UNIQUE (order_id, payment_type, payment_installments, payment_value)
);

CREATE TABLE IF NOT EXISTS dim_dates (
    date_id SERIAL PRIMARY KEY,
    date    DATE NOT NULL UNIQUE,
    year    INTEGER NOT NULL,
    month   INTEGER NOT NULL,
    day     INTEGER NOT NULL,
    weekday VARCHAR(9) NOT NULL
);

CREATE TABLE IF NOT EXISTS fact_orders (
    order_id                   VARCHAR(64) PRIMARY KEY,
    customer_id                VARCHAR(64) REFERENCES dim_customers(customer_id),
    order_status               VARCHAR(20),
    purchase_date_id           INTEGER REFERENCES dim_dates(date_id),
    approved_date_id           INTEGER REFERENCES dim_dates(date_id),
    delivered_carrier_date_id  INTEGER REFERENCES dim_dates(date_id),
    delivered_customer_date_id INTEGER REFERENCES dim_dates(date_id),
    estimated_delivery_date_id INTEGER REFERENCES dim_dates(date_id),
    product_id                 VARCHAR(64) REFERENCES dim_products(product_id),
    seller_id                  VARCHAR(64) REFERENCES dim_sellers(seller_id),
    price                      NUMERIC(12,2),
    freight_value              NUMERIC(12,2)
);

CREATE INDEX IF NOT EXISTS idx_fact_orders_customer ON fact_orders(customer_id);
CREATE INDEX IF NOT EXISTS idx_fact_orders_purchase_date ON fact_orders(purchase_date_id);
`

// dropSchemaSQL drops the star schema, fact table first.
const dropSchemaSQL = `
DROP TABLE IF EXISTS fact_orders CASCADE;
DROP TABLE IF EXISTS dim_dates CASCADE;
DROP TABLE IF EXISTS dim_payments CASCADE;
DROP TABLE IF EXISTS dim_sellers CASCADE;
DROP TABLE IF EXISTS dim_products CASCADE;
DROP TABLE IF EXISTS dim_customers CASCADE;
`
