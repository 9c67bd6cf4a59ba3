// Package verify compares the migrated warehouse against the source system:
// per-table row counts plus five aggregate business metrics. It is a
// standalone diagnostic; mismatches are recorded, not fatal.
package verify

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"northflake/internal/schema"
	"northflake/internal/source"
	"northflake/internal/warehouse"
)

// currencyTolerance absorbs float rounding in currency sums; counts must
// match exactly.
var currencyTolerance = decimal.NewFromFloat(0.01)

// sourceMetricsSQL computes the five metrics directly from the order_details
// base table, the same arithmetic the target view performs per row.
const sourceMetricsSQL = `SELECT
    COALESCE(SUM(od.unit_price * od.quantity), 0) AS gross_revenue,
    COALESCE(SUM(od.unit_price * od.quantity * od.discount), 0) AS discount,
    COALESCE(SUM(od.unit_price * od.quantity - od.unit_price * od.quantity * od.discount), 0) AS net_revenue,
    COUNT(DISTINCT od.order_id) AS orders,
    COALESCE(SUM(od.quantity), 0) AS total_quantity
FROM order_details od`

// targetMetricsSQL reads the same five metrics back through the derived
// columns of ORDER_DETAILS_VIEW.
const targetMetricsSQL = `SELECT
    COALESCE(SUM(GROSS_REVENUE), 0) AS gross_revenue,
    COALESCE(SUM(DISCOUNT_AMOUNT), 0) AS discount,
    COALESCE(SUM(NET_REVENUE), 0) AS net_revenue,
    COUNT(DISTINCT ORDER_ID) AS orders,
    COALESCE(SUM(QUANTITY), 0) AS total_quantity
FROM ORDER_DETAILS_VIEW`

// Metrics holds the five aggregate business metrics.
type Metrics struct {
	GrossRevenue  float64
	Discount      float64
	NetRevenue    float64
	Orders        int64
	TotalQuantity int64
}

// Check is one verification result.
type Check struct {
	Name   string
	Source string
	Target string
	Pass   bool
}

// Verifier re-queries both systems and compares the results.
type Verifier struct {
	source *source.Service
	target *warehouse.Service
}

// New creates a verifier over connected source and target services.
func New(src *source.Service, tgt *warehouse.Service) *Verifier {
	return &Verifier{source: src, target: tgt}
}

// Run executes all checks. A mismatch is a failed check, not an error;
// errors are reserved for queries that could not run at all.
func (v *Verifier) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	for _, table := range schema.Tables {
		srcCount, err := v.source.RowCount(ctx, table)
		if err != nil {
			return report, err
		}
		tgtCount, err := v.target.RowCount(ctx, table.TargetName())
		if err != nil {
			return report, err
		}
		report.add(Check{
			Name:   "rows: " + table.Name,
			Source: fmt.Sprintf("%d", srcCount),
			Target: fmt.Sprintf("%d", tgtCount),
			Pass:   srcCount == tgtCount,
		})
	}

	// The view must neither duplicate nor drop order lines.
	detailTable, _ := schema.Lookup("order_details")
	srcDetails, err := v.source.RowCount(ctx, detailTable)
	if err != nil {
		return report, err
	}
	viewCount, err := v.target.RowCount(ctx, "ORDER_DETAILS_VIEW")
	if err != nil {
		return report, err
	}
	report.add(Check{
		Name:   "rows: ORDER_DETAILS_VIEW",
		Source: fmt.Sprintf("%d", srcDetails),
		Target: fmt.Sprintf("%d", viewCount),
		Pass:   srcDetails == viewCount,
	})

	srcMetrics, err := v.sourceMetrics(ctx)
	if err != nil {
		return report, err
	}
	tgtMetrics, err := v.targetMetrics(ctx)
	if err != nil {
		return report, err
	}

	report.add(currencyCheck("metric: gross revenue", srcMetrics.GrossRevenue, tgtMetrics.GrossRevenue))
	report.add(currencyCheck("metric: discount", srcMetrics.Discount, tgtMetrics.Discount))
	report.add(currencyCheck("metric: net revenue", srcMetrics.NetRevenue, tgtMetrics.NetRevenue))
	report.add(Check{
		Name:   "metric: distinct orders",
		Source: fmt.Sprintf("%d", srcMetrics.Orders),
		Target: fmt.Sprintf("%d", tgtMetrics.Orders),
		Pass:   srcMetrics.Orders == tgtMetrics.Orders,
	})
	report.add(Check{
		Name:   "metric: total quantity",
		Source: fmt.Sprintf("%d", srcMetrics.TotalQuantity),
		Target: fmt.Sprintf("%d", tgtMetrics.TotalQuantity),
		Pass:   srcMetrics.TotalQuantity == tgtMetrics.TotalQuantity,
	})

	return report, nil
}

func (v *Verifier) sourceMetrics(ctx context.Context) (Metrics, error) {
	var m Metrics
	err := v.source.QueryRow(ctx, sourceMetricsSQL,
		&m.GrossRevenue, &m.Discount, &m.NetRevenue, &m.Orders, &m.TotalQuantity)
	return m, err
}

func (v *Verifier) targetMetrics(ctx context.Context) (Metrics, error) {
	var m Metrics
	err := v.target.QueryRow(ctx, targetMetricsSQL, nil,
		&m.GrossRevenue, &m.Discount, &m.NetRevenue, &m.Orders, &m.TotalQuantity)
	return m, err
}

// currencyCheck compares two currency sums within the rounding tolerance.
func currencyCheck(name string, src, tgt float64) Check {
	diff := decimal.NewFromFloat(src).Sub(decimal.NewFromFloat(tgt)).Abs()
	return Check{
		Name:   name,
		Source: fmt.Sprintf("%.2f", src),
		Target: fmt.Sprintf("%.2f", tgt),
		Pass:   diff.LessThanOrEqual(currencyTolerance),
	}
}
