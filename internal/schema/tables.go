// Package schema is the static registry of the Northwind tables that the
// replicator copies from PostgreSQL to Snowflake. Source identifiers are
// lowercase snake_case; the target uses the same identifiers upper-cased.
package schema

import (
	"fmt"
	"strings"
)

// Column describes one column of a replicated table.
type Column struct {
	Name string // source column name (lowercase)
	Type string // Snowflake column type
}

// Table describes one replicated table.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string
}

// Tables lists the eight Northwind tables in dependency order: no table
// appears before one it references.
var Tables = []Table{
	{
		Name: "categories",
		Columns: []Column{
			{"category_id", "INTEGER"},
			{"category_name", "VARCHAR(255)"},
			{"description", "TEXT"},
			{"picture", "BINARY"},
		},
		PrimaryKey: []string{"category_id"},
	},
	{
		Name: "customers",
		Columns: []Column{
			{"customer_id", "VARCHAR(10)"},
			{"company_name", "VARCHAR(255)"},
			{"contact_name", "VARCHAR(255)"},
			{"contact_title", "VARCHAR(255)"},
			{"address", "VARCHAR(255)"},
			{"city", "VARCHAR(255)"},
			{"region", "VARCHAR(255)"},
			{"postal_code", "VARCHAR(255)"},
			{"country", "VARCHAR(255)"},
			{"phone", "VARCHAR(255)"},
			{"fax", "VARCHAR(255)"},
		},
		PrimaryKey: []string{"customer_id"},
	},
	{
		Name: "employees",
		Columns: []Column{
			{"employee_id", "INTEGER"},
			{"last_name", "VARCHAR(255)"},
			{"first_name", "VARCHAR(255)"},
			{"title", "VARCHAR(255)"},
			{"title_of_courtesy", "VARCHAR(255)"},
			{"birth_date", "DATE"},
			{"hire_date", "DATE"},
			{"address", "VARCHAR(255)"},
			{"city", "VARCHAR(255)"},
			{"region", "VARCHAR(255)"},
			{"postal_code", "VARCHAR(255)"},
			{"country", "VARCHAR(255)"},
			{"home_phone", "VARCHAR(255)"},
			{"extension", "VARCHAR(255)"},
			{"photo", "BINARY"},
			{"notes", "TEXT"},
			{"reports_to", "INTEGER"},
			{"photo_path", "VARCHAR(255)"},
		},
		PrimaryKey: []string{"employee_id"},
	},
	{
		Name: "suppliers",
		Columns: []Column{
			{"supplier_id", "INTEGER"},
			{"company_name", "VARCHAR(255)"},
			{"contact_name", "VARCHAR(255)"},
			{"contact_title", "VARCHAR(255)"},
			{"address", "VARCHAR(255)"},
			{"city", "VARCHAR(255)"},
			{"region", "VARCHAR(255)"},
			{"postal_code", "VARCHAR(255)"},
			{"country", "VARCHAR(255)"},
			{"phone", "VARCHAR(255)"},
			{"fax", "VARCHAR(255)"},
			{"homepage", "TEXT"},
		},
		PrimaryKey: []string{"supplier_id"},
	},
	{
		Name: "shippers",
		Columns: []Column{
			{"shipper_id", "INTEGER"},
			{"company_name", "VARCHAR(255)"},
			{"phone", "VARCHAR(255)"},
		},
		PrimaryKey: []string{"shipper_id"},
	},
	{
		Name: "products",
		Columns: []Column{
			{"product_id", "INTEGER"},
			{"product_name", "VARCHAR(255)"},
			{"supplier_id", "INTEGER"},
			{"category_id", "INTEGER"},
			{"quantity_per_unit", "VARCHAR(255)"},
			{"unit_price", "FLOAT"},
			{"units_in_stock", "INTEGER"},
			{"units_on_order", "INTEGER"},
			{"reorder_level", "INTEGER"},
			{"discontinued", "INTEGER"},
		},
		PrimaryKey: []string{"product_id"},
	},
	{
		Name: "orders",
		Columns: []Column{
			{"order_id", "INTEGER"},
			{"customer_id", "VARCHAR(10)"},
			{"employee_id", "INTEGER"},
			{"order_date", "DATE"},
			{"required_date", "DATE"},
			{"shipped_date", "DATE"},
			{"ship_via", "INTEGER"},
			{"freight", "FLOAT"},
			{"ship_name", "VARCHAR(255)"},
			{"ship_address", "VARCHAR(255)"},
			{"ship_city", "VARCHAR(255)"},
			{"ship_region", "VARCHAR(255)"},
			{"ship_postal_code", "VARCHAR(255)"},
			{"ship_country", "VARCHAR(255)"},
		},
		PrimaryKey: []string{"order_id"},
	},
	{
		Name: "order_details",
		Columns: []Column{
			{"order_id", "INTEGER"},
			{"product_id", "INTEGER"},
			{"unit_price", "FLOAT"},
			{"quantity", "INTEGER"},
			{"discount", "FLOAT"},
		},
		PrimaryKey: []string{"order_id", "product_id"},
	},
}

// Lookup returns the table definition for a source table name.
func Lookup(name string) (Table, bool) {
	for _, t := range Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// TargetName returns the upper-cased table name used in the warehouse.
func (t Table) TargetName() string {
	return strings.ToUpper(t.Name)
}

// ColumnNames returns the source column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// TargetColumnNames returns the upper-cased column names used in the warehouse.
func (t Table) TargetColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = strings.ToUpper(c.Name)
	}
	return names
}

// SelectSQL returns the SELECT statement that reads the table from the
// source, with an explicit column list so row order matches the registry.
func (t Table) SelectSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(t.ColumnNames(), ", "), t.Name)
}

// CountSQL returns the source row-count query for the table.
func (t Table) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", t.Name)
}

// TargetCountSQL returns the target row-count query for the table.
func (t Table) TargetCountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", t.TargetName())
}

// CreateDDL returns the Snowflake CREATE TABLE statement for the table.
func (t Table) CreateDDL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.TargetName())
	for i, c := range t.Columns {
		fmt.Fprintf(&b, "    %s %s", strings.ToUpper(c.Name), c.Type)
		if i < len(t.Columns)-1 || len(t.PrimaryKey) > 0 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	if len(t.PrimaryKey) > 0 {
		keys := make([]string, len(t.PrimaryKey))
		for i, k := range t.PrimaryKey {
			keys[i] = strings.ToUpper(k)
		}
		fmt.Fprintf(&b, "    PRIMARY KEY (%s)\n", strings.Join(keys, ", "))
	}
	b.WriteString(")")
	return b.String()
}

// DropDDL returns the statement that removes a previous copy of the table.
// Dropping before every load is what makes re-running the migration
// idempotent.
func (t Table) DropDDL() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", t.TargetName())
}

// InsertSQL returns a multi-row INSERT statement for n rows of the table.
func (t Table) InsertSQL(n int) string {
	placeholders := make([]string, len(t.Columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	row := "(" + strings.Join(placeholders, ", ") + ")"

	rows := make([]string, n)
	for i := range rows {
		rows[i] = row
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		t.TargetName(),
		strings.Join(t.TargetColumnNames(), ", "),
		strings.Join(rows, ", "),
	)
}
