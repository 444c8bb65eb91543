package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/freshtrace/freshtrace_backend/config"
)

// stock-audit prints every batch's on-hand quantity next to the debits still
// held against it (open shipment lines, active recall holds, processing
// inputs), and flags anything that violates the non-negativity rule.
//
// Example:
//
//	go run ./cmd/stock-audit/ -product-id=12 -verbose
func main() {
	productID := flag.Int("product-id", 0, "Limit the audit to one product (0 = all)")
	verbose := flag.Bool("verbose", false, "Print every batch, not just violations")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	type row struct {
		ID           int
		BatchNumber  string
		ProductName  string
		Quantity     string
		ShipmentHeld string
		RecallHeld   string
		ProcessHeld  string
	}

	sql := `
SELECT
  b.id,
  b.batch_number,
  p.name AS product_name,
  b.quantity,
  COALESCE((
    SELECT SUM(sl.quantity_shipped)
    FROM shipment_lines sl
    JOIN outbound_shipments s ON s.id = sl.shipment_id
    WHERE sl.batch_id = b.id AND s.status <> 'cancelled'
  ), 0) AS shipment_held,
  COALESCE((
    SELECT SUM(rb.quantity_affected)
    FROM recall_batches rb
    JOIN batch_recalls r ON r.id = rb.recall_id
    WHERE rb.batch_id = b.id AND r.status IN ('initiated', 'in_progress')
  ), 0) AS recall_held,
  COALESCE((
    SELECT SUM(pi.quantity_used)
    FROM processing_inputs pi
    WHERE pi.batch_id = b.id
  ), 0) AS process_held
FROM inventory_batches b
JOIN products p ON p.id = b.product_id
`
	args := []interface{}{}
	if *productID > 0 {
		sql += " WHERE b.product_id = ?"
		args = append(args, *productID)
	}
	sql += " ORDER BY b.id"

	var rows []row
	if err := db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
		os.Exit(1)
	}
	if len(rows) == 0 {
		fmt.Println("no batches found")
		return
	}

	violations := 0
	for _, r := range rows {
		negative := len(r.Quantity) > 0 && r.Quantity[0] == '-'
		if negative {
			violations++
		}
		if negative || *verbose {
			marker := " "
			if negative {
				marker = "!"
			}
			fmt.Printf("%s batch=%d number=%q product=%q on_hand=%s shipment_held=%s recall_held=%s processing_used=%s\n",
				marker, r.ID, r.BatchNumber, r.ProductName, r.Quantity, r.ShipmentHeld, r.RecallHeld, r.ProcessHeld)
		}
	}

	fmt.Printf("audited=%d violations=%d\n", len(rows), violations)
	if violations > 0 {
		os.Exit(2)
	}
}
