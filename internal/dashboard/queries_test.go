package dashboard

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"northflake/internal/warehouse"
)

func newMockQueries(t *testing.T) (*Queries, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewQueries(warehouse.NewServiceFromDB(db)), mock
}

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    Filter
		wantWhere string
		wantArgs  []interface{}
	}{
		{
			name:      "no filters",
			filter:    Filter{},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "single filter",
			filter:    Filter{Category: "Beverages"},
			wantWhere: " WHERE CATEGORY_NAME = ?",
			wantArgs:  []interface{}{"Beverages"},
		},
		{
			name:      "date range",
			filter:    Filter{From: "1996-07-04", To: "1998-05-06"},
			wantWhere: " WHERE ORDER_DATE >= ? AND ORDER_DATE <= ?",
			wantArgs:  []interface{}{"1996-07-04", "1998-05-06"},
		},
		{
			name:   "combined filters keep declaration order",
			filter: Filter{Category: "Seafood", Country: "Germany", Employee: "Nancy"},
			wantWhere: " WHERE CATEGORY_NAME = ? AND CUSTOMER_COUNTRY = ?" +
				" AND EMPLOYEE_NAME = ?",
			wantArgs: []interface{}{"Seafood", "Germany", "Nancy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.whereClause()
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestAndNotNull(t *testing.T) {
	assert.Equal(t, " WHERE CATEGORY_NAME IS NOT NULL", andNotNull("", "CATEGORY_NAME"))
	assert.Equal(t,
		" WHERE ORDER_DATE >= ? AND CATEGORY_NAME IS NOT NULL",
		andNotNull(" WHERE ORDER_DATE >= ?", "CATEGORY_NAME"))
}

func TestTopBottom(t *testing.T) {
	counts := []OrderCount{
		{"Chai", 38}, {"Chang", 44}, {"Ikura", 33}, {"Konbu", 8},
		{"Tofu", 22}, {"Pavlova", 43}, {"Filo Mix", 6},
	}

	top, bottom := topBottom(counts, 5)

	require.Len(t, top, 5)
	assert.Equal(t, "Chang", top[0].Name)
	assert.Equal(t, "Pavlova", top[1].Name)
	assert.Equal(t, "Chai", top[2].Name)

	require.Len(t, bottom, 5)
	assert.Equal(t, "Filo Mix", bottom[0].Name)
	assert.Equal(t, "Konbu", bottom[1].Name)
}

func TestTopBottomFewerThanN(t *testing.T) {
	counts := []OrderCount{{"Chai", 3}, {"Chang", 5}}

	top, bottom := topBottom(counts, 5)
	assert.Len(t, top, 2)
	assert.Len(t, bottom, 2)
	assert.Equal(t, "Chang", top[0].Name)
	assert.Equal(t, "Chai", bottom[0].Name)
}

func TestTopBottomEmpty(t *testing.T) {
	top, bottom := topBottom(nil, 5)
	assert.Nil(t, top)
	assert.Nil(t, bottom)
}

func TestFilterOptions(t *testing.T) {
	queries, mock := newMockQueries(t)

	lists := map[string][]string{
		"CATEGORY_NAME":    {"Beverages", "Condiments"},
		"PRODUCT_NAME":     {"Chai", "Chang"},
		"CUSTOMER_COUNTRY": {"Germany", "USA"},
		"CUSTOMER_CITY":    {"Berlin", "Seattle"},
		"EMPLOYEE_NAME":    {"Andrew", "Nancy"},
		"EMPLOYEE_TITLE":   {"Sales Representative"},
	}

	for _, column := range []string{"CATEGORY_NAME", "PRODUCT_NAME", "CUSTOMER_COUNTRY", "CUSTOMER_CITY", "EMPLOYEE_NAME", "EMPLOYEE_TITLE"} {
		rows := sqlmock.NewRows([]string{column})
		for _, v := range lists[column] {
			rows.AddRow(v)
		}
		mock.ExpectQuery("SELECT DISTINCT " + column + " FROM ORDER_DETAILS_VIEW WHERE " + column + " IS NOT NULL ORDER BY 1").
			WillReturnRows(rows)
	}

	mock.ExpectQuery("SELECT TO_CHAR(MIN(ORDER_DATE), 'YYYY-MM-DD'), TO_CHAR(MAX(ORDER_DATE), 'YYYY-MM-DD') FROM ORDER_DETAILS_VIEW").
		WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).AddRow("1996-07-04", "1998-05-06"))

	opts, err := queries.FilterOptions(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Beverages", "Condiments"}, opts.Categories)
	assert.Equal(t, []string{"Germany", "USA"}, opts.Countries)
	assert.Equal(t, "1996-07-04", opts.MinDate)
	assert.Equal(t, "1998-05-06", opts.MaxDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverviewUnfiltered(t *testing.T) {
	queries, mock := newMockQueries(t)

	mock.ExpectQuery("SELECT COALESCE(SUM(GROSS_REVENUE), 0), COALESCE(SUM(DISCOUNT_AMOUNT), 0), " +
		"COALESCE(SUM(NET_REVENUE), 0), COUNT(DISTINCT ORDER_ID), COALESCE(SUM(QUANTITY), 0), " +
		"AVG(DAYS_TO_SHIP) FROM ORDER_DETAILS_VIEW").
		WillReturnRows(sqlmock.NewRows([]string{"gross", "discount", "net", "orders", "quantity", "avg_ship"}).
			AddRow(1354458.59, 88673.38, 1265793.04, 830, 51317, 8.49))

	mock.ExpectQuery("SELECT CUSTOMER_COUNTRY, SUM(NET_REVENUE) FROM ORDER_DETAILS_VIEW" +
		" WHERE CUSTOMER_COUNTRY IS NOT NULL GROUP BY CUSTOMER_COUNTRY ORDER BY 2 DESC").
		WillReturnRows(sqlmock.NewRows([]string{"country", "net"}).
			AddRow("USA", 245584.61).
			AddRow("Germany", 230284.63))

	mock.ExpectQuery("SELECT TO_CHAR(ORDER_DATE, 'YYYY-MM') AS MONTH, COUNT(DISTINCT ORDER_ID), COALESCE(SUM(GROSS_REVENUE), 0) " +
		"FROM ORDER_DETAILS_VIEW WHERE ORDER_DATE IS NOT NULL GROUP BY 1 ORDER BY 1").
		WillReturnRows(sqlmock.NewRows([]string{"month", "orders", "gross"}).
			AddRow("1996-07", 22, 30192.10).
			AddRow("1996-08", 25, 26609.40))

	mock.ExpectQuery("SELECT SHIPPING_COMPANY, AVG(DAYS_TO_SHIP) FROM ORDER_DETAILS_VIEW" +
		" WHERE SHIPPING_COMPANY IS NOT NULL GROUP BY SHIPPING_COMPANY ORDER BY 2").
		WillReturnRows(sqlmock.NewRows([]string{"company", "days"}).
			AddRow("Speedy Express", 8.57).
			AddRow("United Package", 9.23))

	overview, err := queries.Overview(context.Background(), Filter{})
	require.NoError(t, err)

	assert.InDelta(t, 1354458.59, overview.KPIs.GrossRevenue, 0.001)
	assert.Equal(t, int64(830), overview.KPIs.Orders)
	assert.InDelta(t, 8.49, overview.KPIs.AvgDaysToShip, 0.001)
	require.Len(t, overview.RevenueByCountry, 2)
	assert.Equal(t, "USA", overview.RevenueByCountry[0].Name)
	require.Len(t, overview.Monthly, 2)
	assert.Equal(t, "1996-07", overview.Monthly[0].Month)
	assert.Len(t, overview.ShipDaysByCompany, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOverviewFilterBindsArgs(t *testing.T) {
	queries, mock := newMockQueries(t)
	filter := Filter{Country: "Germany"}

	mock.ExpectQuery("SELECT COALESCE(SUM(GROSS_REVENUE), 0), COALESCE(SUM(DISCOUNT_AMOUNT), 0), " +
		"COALESCE(SUM(NET_REVENUE), 0), COUNT(DISTINCT ORDER_ID), COALESCE(SUM(QUANTITY), 0), " +
		"AVG(DAYS_TO_SHIP) FROM ORDER_DETAILS_VIEW WHERE CUSTOMER_COUNTRY = ?").
		WithArgs("Germany").
		WillReturnRows(sqlmock.NewRows([]string{"gross", "discount", "net", "orders", "quantity", "avg_ship"}).
			AddRow(244640.63, 14355.99, 230284.63, 122, 9308, 9.01))

	mock.ExpectQuery("SELECT CUSTOMER_COUNTRY, SUM(NET_REVENUE) FROM ORDER_DETAILS_VIEW" +
		" WHERE CUSTOMER_COUNTRY = ? AND CUSTOMER_COUNTRY IS NOT NULL GROUP BY CUSTOMER_COUNTRY ORDER BY 2 DESC").
		WithArgs("Germany").
		WillReturnRows(sqlmock.NewRows([]string{"country", "net"}).AddRow("Germany", 230284.63))

	mock.ExpectQuery("SELECT TO_CHAR(ORDER_DATE, 'YYYY-MM') AS MONTH, COUNT(DISTINCT ORDER_ID), COALESCE(SUM(GROSS_REVENUE), 0) " +
		"FROM ORDER_DETAILS_VIEW WHERE CUSTOMER_COUNTRY = ? AND ORDER_DATE IS NOT NULL GROUP BY 1 ORDER BY 1").
		WithArgs("Germany").
		WillReturnRows(sqlmock.NewRows([]string{"month", "orders", "gross"}))

	mock.ExpectQuery("SELECT SHIPPING_COMPANY, AVG(DAYS_TO_SHIP) FROM ORDER_DETAILS_VIEW" +
		" WHERE CUSTOMER_COUNTRY = ? AND SHIPPING_COMPANY IS NOT NULL GROUP BY SHIPPING_COMPANY ORDER BY 2").
		WithArgs("Germany").
		WillReturnRows(sqlmock.NewRows([]string{"company", "days"}))

	overview, err := queries.Overview(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, int64(122), overview.KPIs.Orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProducts(t *testing.T) {
	queries, mock := newMockQueries(t)

	mock.ExpectQuery("SELECT PRODUCT_NAME, COUNT(DISTINCT ORDER_ID) FROM ORDER_DETAILS_VIEW" +
		" WHERE PRODUCT_NAME IS NOT NULL GROUP BY PRODUCT_NAME").
		WillReturnRows(sqlmock.NewRows([]string{"product", "orders"}).
			AddRow("Chai", 38).
			AddRow("Chang", 44).
			AddRow("Konbu", 8))

	mock.ExpectQuery("SELECT CATEGORY_NAME, COUNT(DISTINCT ORDER_ID), COALESCE(SUM(QUANTITY), 0), " +
		"COALESCE(SUM(GROSS_REVENUE), 0), COALESCE(SUM(DISCOUNT_AMOUNT), 0), COALESCE(SUM(NET_REVENUE), 0) " +
		"FROM ORDER_DETAILS_VIEW WHERE CATEGORY_NAME IS NOT NULL GROUP BY CATEGORY_NAME ORDER BY 1").
		WillReturnRows(sqlmock.NewRows([]string{"category", "orders", "quantity", "gross", "discount", "net"}).
			AddRow("Beverages", 354, 9532, 286526.95, 18776.18, 267750.77).
			AddRow("Condiments", 193, 5298, 113694.75, 7172.55, 106522.20))

	mock.ExpectQuery("SELECT CATEGORY_NAME, COALESCE(SUM(UNITS_IN_STOCK), 0), COALESCE(SUM(UNITS_ON_ORDER), 0) " +
		"FROM PRODUCT_VIEW WHERE CATEGORY_NAME IS NOT NULL GROUP BY CATEGORY_NAME ORDER BY 1").
		WillReturnRows(sqlmock.NewRows([]string{"category", "in_stock", "on_order"}).
			AddRow("Beverages", 559, 60).
			AddRow("Condiments", 507, 170))

	products, err := queries.Products(context.Background(), Filter{})
	require.NoError(t, err)

	require.Len(t, products.TopProducts, 3)
	assert.Equal(t, "Chang", products.TopProducts[0].Name)
	assert.Equal(t, "Konbu", products.BottomProducts[0].Name)

	require.Len(t, products.Categories, 2)
	assert.Equal(t, "Total", products.CategoryTotal.Name)
	assert.Equal(t, int64(547), products.CategoryTotal.Orders)
	assert.InDelta(t, 400221.70, products.CategoryTotal.GrossRevenue, 0.01)

	assert.Equal(t, int64(1066), products.StockTotal.UnitsInStock)
	assert.Equal(t, int64(230), products.StockTotal.UnitsOnOrder)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployees(t *testing.T) {
	queries, mock := newMockQueries(t)

	mock.ExpectQuery("SELECT EMPLOYEE_NAME, COUNT(DISTINCT ORDER_ID) FROM ORDER_DETAILS_VIEW" +
		" WHERE EMPLOYEE_NAME IS NOT NULL GROUP BY EMPLOYEE_NAME").
		WillReturnRows(sqlmock.NewRows([]string{"employee", "orders"}).
			AddRow("Nancy", 123).
			AddRow("Andrew", 96).
			AddRow("Margaret", 156))

	mock.ExpectQuery("SELECT EMPLOYEE_TITLE, COUNT(DISTINCT ORDER_ID), COALESCE(SUM(QUANTITY), 0), " +
		"COALESCE(SUM(GROSS_REVENUE), 0), COALESCE(SUM(DISCOUNT_AMOUNT), 0), COALESCE(SUM(NET_REVENUE), 0) " +
		"FROM ORDER_DETAILS_VIEW WHERE EMPLOYEE_TITLE IS NOT NULL GROUP BY EMPLOYEE_TITLE ORDER BY 1").
		WillReturnRows(sqlmock.NewRows([]string{"title", "orders", "quantity", "gross", "discount", "net"}).
			AddRow("Sales Manager", 96, 5924, 141295.99, 7290.90, 134005.09).
			AddRow("Sales Representative", 554, 33301, 852967.46, 56032.62, 796934.84))

	mock.ExpectQuery("SELECT EMPLOYEE_NAME, COUNT(DISTINCT ORDER_ID), COALESCE(SUM(NET_REVENUE), 0) " +
		"FROM ORDER_DETAILS_VIEW WHERE EMPLOYEE_NAME IS NOT NULL GROUP BY EMPLOYEE_NAME").
		WillReturnRows(sqlmock.NewRows([]string{"employee", "orders", "net"}).
			AddRow("Nancy", 123, 191000.50).
			AddRow("Andrew", 96, 166537.75).
			AddRow("Margaret", 156, 222700.25))

	employees, err := queries.Employees(context.Background(), Filter{})
	require.NoError(t, err)

	assert.Equal(t, "Margaret", employees.TopEmployees[0].Name)
	assert.Equal(t, "Andrew", employees.BottomEmployees[0].Name)

	// Revenue by title reads ascending.
	require.Len(t, employees.RevenueByTitle, 2)
	assert.Equal(t, "Sales Manager", employees.RevenueByTitle[0].Name)

	// Revenue per order reads descending by the derived ratio.
	require.Len(t, employees.RevenuePerOrder, 3)
	assert.Equal(t, "Andrew", employees.RevenuePerOrder[0].Name)
	assert.InDelta(t, 166537.75/96, employees.RevenuePerOrder[0].RevenuePerOrder, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}
