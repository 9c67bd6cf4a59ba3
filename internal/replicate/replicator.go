// Package replicate copies the Northwind tables from the source database to
// the warehouse, table by table, in dependency order.
package replicate

import (
	"context"
	"fmt"

	"northflake/internal/schema"
	"northflake/internal/source"
	"northflake/internal/ui"
	"northflake/internal/warehouse"
	"northflake/pkg/errors"
)

// Result records the outcome for one replicated table.
type Result struct {
	Table    string
	RowsRead int64
	RowsSent int64
}

// Replicator copies tables from source to target.
type Replicator struct {
	source *source.Service
	target *warehouse.Service
	quiet  bool
}

// New creates a replicator over connected source and target services.
func New(src *source.Service, tgt *warehouse.Service) *Replicator {
	return &Replicator{source: src, target: tgt}
}

// SetQuiet suppresses per-table progress output.
func (r *Replicator) SetQuiet(quiet bool) {
	r.quiet = quiet
}

// Run copies all registered tables in dependency order. Each table is
// dropped and recreated before loading, so re-running produces the same
// final state. The first failure aborts the run.
func (r *Replicator) Run(ctx context.Context) ([]Result, error) {
	results := make([]Result, 0, len(schema.Tables))

	for _, table := range schema.Tables {
		result, err := r.replicateTable(ctx, table)
		if err != nil {
			if !r.quiet {
				ui.ShowStepResult(table.Name, false, err.Error())
			}
			return results, err
		}
		results = append(results, result)
		if !r.quiet {
			ui.ShowStepResult(table.Name, true, fmt.Sprintf("%d rows", result.RowsSent))
		}
	}

	return results, nil
}

func (r *Replicator) replicateTable(ctx context.Context, table schema.Table) (Result, error) {
	result := Result{Table: table.Name}

	rows, err := r.source.ReadTable(ctx, table)
	if err != nil {
		return result, err
	}
	result.RowsRead = int64(len(rows))

	if err := r.target.ExecuteSQL(ctx, table.DropDDL()); err != nil {
		return result, errors.TypeMappingError(table.TargetName(), err)
	}
	if err := r.target.ExecuteSQL(ctx, table.CreateDDL()); err != nil {
		return result, errors.TypeMappingError(table.TargetName(), err)
	}

	if len(rows) == 0 {
		return result, nil
	}

	sent, err := r.target.InsertRows(ctx, table.TargetName(), table.InsertSQL, rows)
	result.RowsSent = sent
	if err != nil {
		return result, err
	}

	return result, nil
}
