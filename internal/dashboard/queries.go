package dashboard

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"northflake/internal/warehouse"
)

// Filter holds the user's filter selections. Zero values mean "All"; dates
// are inclusive yyyy-mm-dd bounds on ORDER_DATE.
type Filter struct {
	Category string `form:"category"`
	Product  string `form:"product"`
	Country  string `form:"country"`
	City     string `form:"city"`
	Employee string `form:"employee"`
	Title    string `form:"title"`
	From     string `form:"from"`
	To       string `form:"to"`
}

// whereClause renders the filter as a parameterized WHERE clause over
// ORDER_DETAILS_VIEW. User input only ever travels as bind parameters.
func (f Filter) whereClause() (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond, value string) {
		if value != "" {
			conds = append(conds, cond)
			args = append(args, value)
		}
	}

	add("CATEGORY_NAME = ?", f.Category)
	add("PRODUCT_NAME = ?", f.Product)
	add("CUSTOMER_COUNTRY = ?", f.Country)
	add("CUSTOMER_CITY = ?", f.City)
	add("EMPLOYEE_NAME = ?", f.Employee)
	add("EMPLOYEE_TITLE = ?", f.Title)
	add("ORDER_DATE >= ?", f.From)
	add("ORDER_DATE <= ?", f.To)

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// FilterOptions is the payload for populating the filter dropdowns.
type FilterOptions struct {
	Categories []string `json:"categories"`
	Products   []string `json:"products"`
	Countries  []string `json:"countries"`
	Cities     []string `json:"cities"`
	Employees  []string `json:"employees"`
	Titles     []string `json:"titles"`
	MinDate    string   `json:"min_date"`
	MaxDate    string   `json:"max_date"`
}

// KPISet is the Overview page KPI row.
type KPISet struct {
	GrossRevenue  float64 `json:"gross_revenue"`
	Discount      float64 `json:"discount"`
	NetRevenue    float64 `json:"net_revenue"`
	Orders        int64   `json:"orders"`
	Quantity      int64   `json:"quantity"`
	AvgDaysToShip float64 `json:"avg_days_to_ship"`
}

// NamedValue is a generic (label, value) chart point.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MonthlyPoint is one month of the orders-vs-revenue combo chart.
type MonthlyPoint struct {
	Month        string  `json:"month"`
	Orders       int64   `json:"orders"`
	GrossRevenue float64 `json:"gross_revenue"`
}

// PerformanceRow is one row of the pivot-style performance tables.
type PerformanceRow struct {
	Name         string  `json:"name"`
	Orders       int64   `json:"orders"`
	Quantity     int64   `json:"quantity"`
	GrossRevenue float64 `json:"gross_revenue"`
	Discount     float64 `json:"discount"`
	NetRevenue   float64 `json:"net_revenue"`
}

// StockRow is one row of the units-in-stock / on-order table.
type StockRow struct {
	Category     string `json:"category"`
	UnitsInStock int64  `json:"units_in_stock"`
	UnitsOnOrder int64  `json:"units_on_order"`
}

// OrderCount pairs a label with its distinct order count.
type OrderCount struct {
	Name   string `json:"name"`
	Orders int64  `json:"orders"`
}

// RevenuePerOrder is the per-employee efficiency metric.
type RevenuePerOrder struct {
	Name            string  `json:"name"`
	Orders          int64   `json:"orders"`
	NetRevenue      float64 `json:"net_revenue"`
	RevenuePerOrder float64 `json:"revenue_per_order"`
}

// Overview is the full Overview page payload.
type Overview struct {
	KPIs             KPISet         `json:"kpis"`
	RevenueByCountry []NamedValue   `json:"revenue_by_country"`
	Monthly          []MonthlyPoint `json:"monthly"`
	ShipDaysByCompany []NamedValue  `json:"ship_days_by_company"`
}

// Products is the Category and Product page payload.
type Products struct {
	TopProducts    []OrderCount     `json:"top_products"`
	BottomProducts []OrderCount     `json:"bottom_products"`
	Categories     []PerformanceRow `json:"categories"`
	CategoryTotal  PerformanceRow   `json:"category_total"`
	Stock          []StockRow       `json:"stock"`
	StockTotal     StockRow         `json:"stock_total"`
}

// Employees is the Employees page payload.
type Employees struct {
	TopEmployees    []OrderCount      `json:"top_employees"`
	BottomEmployees []OrderCount      `json:"bottom_employees"`
	Titles          []PerformanceRow  `json:"titles"`
	TitleTotal      PerformanceRow    `json:"title_total"`
	RevenueByTitle  []NamedValue      `json:"revenue_by_title"`
	RevenuePerOrder []RevenuePerOrder `json:"revenue_per_order"`
}

// Queries issues the dashboard's read-only aggregate queries.
type Queries struct {
	target *warehouse.Service
}

// NewQueries creates a query layer over a connected warehouse service.
func NewQueries(target *warehouse.Service) *Queries {
	return &Queries{target: target}
}

// FilterOptions loads the distinct values for every filter dropdown and the
// order date bounds.
func (q *Queries) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	opts := &FilterOptions{}

	lists := []struct {
		column string
		dest   *[]string
	}{
		{"CATEGORY_NAME", &opts.Categories},
		{"PRODUCT_NAME", &opts.Products},
		{"CUSTOMER_COUNTRY", &opts.Countries},
		{"CUSTOMER_CITY", &opts.Cities},
		{"EMPLOYEE_NAME", &opts.Employees},
		{"EMPLOYEE_TITLE", &opts.Titles},
	}

	for _, l := range lists {
		values, err := q.distinctValues(ctx, l.column)
		if err != nil {
			return nil, err
		}
		*l.dest = values
	}

	var minDate, maxDate sql.NullString
	err := q.target.QueryRow(ctx,
		"SELECT TO_CHAR(MIN(ORDER_DATE), 'YYYY-MM-DD'), TO_CHAR(MAX(ORDER_DATE), 'YYYY-MM-DD') FROM ORDER_DETAILS_VIEW",
		nil, &minDate, &maxDate)
	if err != nil {
		return nil, err
	}
	opts.MinDate = minDate.String
	opts.MaxDate = maxDate.String

	return opts, nil
}

func (q *Queries) distinctValues(ctx context.Context, column string) ([]string, error) {
	query := "SELECT DISTINCT " + column + " FROM ORDER_DETAILS_VIEW WHERE " + column + " IS NOT NULL ORDER BY 1"
	rows, err := q.target.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Overview computes the Overview page aggregates under the given filter.
func (q *Queries) Overview(ctx context.Context, f Filter) (*Overview, error) {
	where, args := f.whereClause()
	out := &Overview{}

	var avgShip sql.NullFloat64
	err := q.target.QueryRow(ctx,
		`SELECT COALESCE(SUM(GROSS_REVENUE), 0), COALESCE(SUM(DISCOUNT_AMOUNT), 0), `+
			`COALESCE(SUM(NET_REVENUE), 0), COUNT(DISTINCT ORDER_ID), COALESCE(SUM(QUANTITY), 0), `+
			`AVG(DAYS_TO_SHIP) FROM ORDER_DETAILS_VIEW`+where,
		args,
		&out.KPIs.GrossRevenue, &out.KPIs.Discount, &out.KPIs.NetRevenue,
		&out.KPIs.Orders, &out.KPIs.Quantity, &avgShip)
	if err != nil {
		return nil, err
	}
	out.KPIs.AvgDaysToShip = avgShip.Float64

	out.RevenueByCountry, err = q.namedSums(ctx,
		`SELECT CUSTOMER_COUNTRY, SUM(NET_REVENUE) FROM ORDER_DETAILS_VIEW`+
			andNotNull(where, "CUSTOMER_COUNTRY")+` GROUP BY CUSTOMER_COUNTRY ORDER BY 2 DESC`, args)
	if err != nil {
		return nil, err
	}

	out.Monthly, err = q.monthly(ctx, where, args)
	if err != nil {
		return nil, err
	}

	out.ShipDaysByCompany, err = q.namedSums(ctx,
		`SELECT SHIPPING_COMPANY, AVG(DAYS_TO_SHIP) FROM ORDER_DETAILS_VIEW`+
			andNotNull(where, "SHIPPING_COMPANY")+` GROUP BY SHIPPING_COMPANY ORDER BY 2`, args)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Products computes the Category and Product page aggregates.
func (q *Queries) Products(ctx context.Context, f Filter) (*Products, error) {
	where, args := f.whereClause()
	out := &Products{}

	counts, err := q.orderCounts(ctx,
		`SELECT PRODUCT_NAME, COUNT(DISTINCT ORDER_ID) FROM ORDER_DETAILS_VIEW`+
			andNotNull(where, "PRODUCT_NAME")+` GROUP BY PRODUCT_NAME`, args)
	if err != nil {
		return nil, err
	}
	out.TopProducts, out.BottomProducts = topBottom(counts, 5)

	out.Categories, out.CategoryTotal, err = q.performance(ctx,
		`SELECT CATEGORY_NAME, COUNT(DISTINCT ORDER_ID), COALESCE(SUM(QUANTITY), 0), `+
			`COALESCE(SUM(GROSS_REVENUE), 0), COALESCE(SUM(DISCOUNT_AMOUNT), 0), COALESCE(SUM(NET_REVENUE), 0) `+
			`FROM ORDER_DETAILS_VIEW`+andNotNull(where, "CATEGORY_NAME")+` GROUP BY CATEGORY_NAME ORDER BY 1`, args)
	if err != nil {
		return nil, err
	}

	// Stock levels come from PRODUCT_VIEW and are not affected by the
	// order-level filters.
	if err := q.stock(ctx, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (q *Queries) stock(ctx context.Context, out *Products) error {
	rows, err := q.target.Query(ctx,
		`SELECT CATEGORY_NAME, COALESCE(SUM(UNITS_IN_STOCK), 0), COALESCE(SUM(UNITS_ON_ORDER), 0) `+
			`FROM PRODUCT_VIEW WHERE CATEGORY_NAME IS NOT NULL GROUP BY CATEGORY_NAME ORDER BY 1`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r StockRow
		if err := rows.Scan(&r.Category, &r.UnitsInStock, &r.UnitsOnOrder); err != nil {
			return err
		}
		out.Stock = append(out.Stock, r)
		out.StockTotal.UnitsInStock += r.UnitsInStock
		out.StockTotal.UnitsOnOrder += r.UnitsOnOrder
	}
	out.StockTotal.Category = "Total"
	return rows.Err()
}

// Employees computes the Employees page aggregates.
func (q *Queries) Employees(ctx context.Context, f Filter) (*Employees, error) {
	where, args := f.whereClause()
	out := &Employees{}

	counts, err := q.orderCounts(ctx,
		`SELECT EMPLOYEE_NAME, COUNT(DISTINCT ORDER_ID) FROM ORDER_DETAILS_VIEW`+
			andNotNull(where, "EMPLOYEE_NAME")+` GROUP BY EMPLOYEE_NAME`, args)
	if err != nil {
		return nil, err
	}
	out.TopEmployees, out.BottomEmployees = topBottom(counts, 5)

	out.Titles, out.TitleTotal, err = q.performance(ctx,
		`SELECT EMPLOYEE_TITLE, COUNT(DISTINCT ORDER_ID), COALESCE(SUM(QUANTITY), 0), `+
			`COALESCE(SUM(GROSS_REVENUE), 0), COALESCE(SUM(DISCOUNT_AMOUNT), 0), COALESCE(SUM(NET_REVENUE), 0) `+
			`FROM ORDER_DETAILS_VIEW`+andNotNull(where, "EMPLOYEE_TITLE")+` GROUP BY EMPLOYEE_TITLE ORDER BY 1`, args)
	if err != nil {
		return nil, err
	}

	for _, t := range out.Titles {
		out.RevenueByTitle = append(out.RevenueByTitle, NamedValue{Name: t.Name, Value: t.NetRevenue})
	}
	sort.Slice(out.RevenueByTitle, func(i, j int) bool {
		return out.RevenueByTitle[i].Value < out.RevenueByTitle[j].Value
	})

	out.RevenuePerOrder, err = q.revenuePerOrder(ctx, where, args)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (q *Queries) revenuePerOrder(ctx context.Context, where string, args []interface{}) ([]RevenuePerOrder, error) {
	rows, err := q.target.Query(ctx,
		`SELECT EMPLOYEE_NAME, COUNT(DISTINCT ORDER_ID), COALESCE(SUM(NET_REVENUE), 0) `+
			`FROM ORDER_DETAILS_VIEW`+andNotNull(where, "EMPLOYEE_NAME")+` GROUP BY EMPLOYEE_NAME`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RevenuePerOrder
	for rows.Next() {
		var r RevenuePerOrder
		if err := rows.Scan(&r.Name, &r.Orders, &r.NetRevenue); err != nil {
			return nil, err
		}
		if r.Orders > 0 {
			r.RevenuePerOrder = r.NetRevenue / float64(r.Orders)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].RevenuePerOrder > result[j].RevenuePerOrder
	})
	return result, nil
}

// Query helpers

func (q *Queries) namedSums(ctx context.Context, query string, args []interface{}) ([]NamedValue, error) {
	rows, err := q.target.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []NamedValue
	for rows.Next() {
		var nv NamedValue
		var value sql.NullFloat64
		if err := rows.Scan(&nv.Name, &value); err != nil {
			return nil, err
		}
		nv.Value = value.Float64
		result = append(result, nv)
	}
	return result, rows.Err()
}

func (q *Queries) monthly(ctx context.Context, where string, args []interface{}) ([]MonthlyPoint, error) {
	rows, err := q.target.Query(ctx,
		`SELECT TO_CHAR(ORDER_DATE, 'YYYY-MM') AS MONTH, COUNT(DISTINCT ORDER_ID), COALESCE(SUM(GROSS_REVENUE), 0) `+
			`FROM ORDER_DETAILS_VIEW`+andNotNull(where, "ORDER_DATE")+` GROUP BY 1 ORDER BY 1`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MonthlyPoint
	for rows.Next() {
		var p MonthlyPoint
		if err := rows.Scan(&p.Month, &p.Orders, &p.GrossRevenue); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (q *Queries) orderCounts(ctx context.Context, query string, args []interface{}) ([]OrderCount, error) {
	rows, err := q.target.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []OrderCount
	for rows.Next() {
		var oc OrderCount
		if err := rows.Scan(&oc.Name, &oc.Orders); err != nil {
			return nil, err
		}
		result = append(result, oc)
	}
	return result, rows.Err()
}

func (q *Queries) performance(ctx context.Context, query string, args []interface{}) ([]PerformanceRow, PerformanceRow, error) {
	total := PerformanceRow{Name: "Total"}

	rows, err := q.target.Query(ctx, query, args...)
	if err != nil {
		return nil, total, err
	}
	defer rows.Close()

	var result []PerformanceRow
	for rows.Next() {
		var r PerformanceRow
		if err := rows.Scan(&r.Name, &r.Orders, &r.Quantity, &r.GrossRevenue, &r.Discount, &r.NetRevenue); err != nil {
			return nil, total, err
		}
		result = append(result, r)
		total.Orders += r.Orders
		total.Quantity += r.Quantity
		total.GrossRevenue += r.GrossRevenue
		total.Discount += r.Discount
		total.NetRevenue += r.NetRevenue
	}
	return result, total, rows.Err()
}

// andNotNull appends an IS NOT NULL guard for the grouping column to an
// existing WHERE clause (or starts one).
func andNotNull(where, column string) string {
	if where == "" {
		return " WHERE " + column + " IS NOT NULL"
	}
	return where + " AND " + column + " IS NOT NULL"
}

// topBottom returns the n highest and n lowest entries by order count, each
// sorted the way the charts display them.
func topBottom(counts []OrderCount, n int) (top, bottom []OrderCount) {
	sorted := make([]OrderCount, len(counts))
	copy(sorted, counts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Orders != sorted[j].Orders {
			return sorted[i].Orders > sorted[j].Orders
		}
		return sorted[i].Name < sorted[j].Name
	})

	if len(sorted) == 0 {
		return nil, nil
	}

	if len(sorted) <= n {
		top = append(top, sorted...)
	} else {
		top = append(top, sorted[:n]...)
	}

	start := len(sorted) - n
	if start < 0 {
		start = 0
	}
	bottom = append(bottom, sorted[start:]...)
	// Bottom list reads ascending
	sort.Slice(bottom, func(i, j int) bool {
		if bottom[i].Orders != bottom[j].Orders {
			return bottom[i].Orders < bottom[j].Orders
		}
		return bottom[i].Name < bottom[j].Name
	})
	return top, bottom
}
