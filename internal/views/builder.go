// Package views defines the two denormalizing views the dashboard reads.
// They replicate, as warehouse-side SQL, the projections the retired BI tool
// computed client-side.
package views

import (
	"context"

	"northflake/internal/warehouse"
	"northflake/pkg/errors"
)

// OrderDetailsView joins order lines with orders, customers, employees,
// shippers, products and categories, and adds the four derived columns.
// An inner join on ORDERS preserves the order_details row count; everything
// else is a left join so missing dimension rows never drop order lines.
const OrderDetailsView = `CREATE OR REPLACE VIEW ORDER_DETAILS_VIEW AS
SELECT
    od.ORDER_ID,
    od.PRODUCT_ID,
    od.UNIT_PRICE,
    od.QUANTITY,
    od.DISCOUNT,
    o.ORDER_DATE,
    o.SHIPPED_DATE,
    o.CUSTOMER_ID,
    o.EMPLOYEE_ID,
    o.SHIP_VIA,
    c.COMPANY_NAME AS CUSTOMER_COMPANY,
    c.CONTACT_NAME AS CUSTOMER_CONTACT,
    c.CONTACT_TITLE AS CUSTOMER_TITLE,
    c.CITY AS CUSTOMER_CITY,
    c.COUNTRY AS CUSTOMER_COUNTRY,
    e.LAST_NAME AS EMPLOYEE_LAST_NAME,
    e.FIRST_NAME AS EMPLOYEE_NAME,
    e.TITLE AS EMPLOYEE_TITLE,
    e.HIRE_DATE,
    e.CITY AS EMPLOYEE_CITY,
    s.COMPANY_NAME AS SHIPPING_COMPANY,
    p.PRODUCT_NAME,
    p.CATEGORY_ID,
    cat.CATEGORY_NAME,
    (od.UNIT_PRICE * od.QUANTITY) AS GROSS_REVENUE,
    (od.UNIT_PRICE * od.QUANTITY * od.DISCOUNT) AS DISCOUNT_AMOUNT,
    (od.UNIT_PRICE * od.QUANTITY) - (od.UNIT_PRICE * od.QUANTITY * od.DISCOUNT) AS NET_REVENUE,
    DATEDIFF(day, o.ORDER_DATE, o.SHIPPED_DATE) AS DAYS_TO_SHIP
FROM ORDER_DETAILS od
JOIN ORDERS o ON od.ORDER_ID = o.ORDER_ID
LEFT JOIN CUSTOMERS c ON o.CUSTOMER_ID = c.CUSTOMER_ID
LEFT JOIN EMPLOYEES e ON o.EMPLOYEE_ID = e.EMPLOYEE_ID
LEFT JOIN SHIPPERS s ON o.SHIP_VIA = s.SHIPPER_ID
LEFT JOIN PRODUCTS p ON od.PRODUCT_ID = p.PRODUCT_ID
LEFT JOIN CATEGORIES cat ON p.CATEGORY_ID = cat.CATEGORY_ID`

// ProductView joins products with their category and supplier.
const ProductView = `CREATE OR REPLACE VIEW PRODUCT_VIEW AS
SELECT
    p.PRODUCT_ID,
    p.PRODUCT_NAME,
    p.SUPPLIER_ID,
    p.CATEGORY_ID,
    p.UNIT_PRICE,
    p.UNITS_IN_STOCK,
    p.UNITS_ON_ORDER,
    c.CATEGORY_NAME,
    c.DESCRIPTION AS CATEGORY_DESCRIPTION,
    s.COMPANY_NAME AS SUPPLIER_NAME,
    s.COUNTRY AS SUPPLIER_COUNTRY
FROM PRODUCTS p
LEFT JOIN CATEGORIES c ON p.CATEGORY_ID = c.CATEGORY_ID
LEFT JOIN SUPPLIERS s ON p.SUPPLIER_ID = s.SUPPLIER_ID`

// Build issues the view definitions against the warehouse. Views are
// recomputed per query by the engine; this only registers the DDL.
func Build(ctx context.Context, target *warehouse.Service) error {
	for _, stmt := range []struct {
		name string
		ddl  string
	}{
		{"ORDER_DETAILS_VIEW", OrderDetailsView},
		{"PRODUCT_VIEW", ProductView},
	} {
		if err := target.ExecuteSQL(ctx, stmt.ddl); err != nil {
			return errors.Wrap(err, errors.ErrCodeViewCreate, "Failed to create view "+stmt.name).
				WithContext("view", stmt.name)
		}
	}
	return nil
}
