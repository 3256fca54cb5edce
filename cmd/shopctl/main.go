// shopctl is the offline admin tool for the bookshop data directory.
//
//	shopctl export       build a SQLite reporting snapshot from the flat files
//	shopctl import-users migrate a legacy 3-field user file into the store
package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"bookshop-management/shop"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Offline administration for the bookshop data directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var dataDir string
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (defaults to BOOKSHOP_DATA_DIR)")

	var dbPath string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export catalog and ledger into a SQLite reporting snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(dataDir)
			if err != nil {
				return err
			}
			return runExport(store, dbPath)
		},
	}
	exportCmd.Flags().StringVar(&dbPath, "db", "report.db", "path of the SQLite snapshot to create")

	var legacyPath string
	importCmd := &cobra.Command{
		Use:   "import-users",
		Short: "Import accounts from the legacy username,password,role file format",
		RunE: func(cmd *cobra.Command, args []string) error {
			if legacyPath == "" {
				return fmt.Errorf("--in is required")
			}
			store, err := openStore(dataDir)
			if err != nil {
				return err
			}
			return runImportUsers(store, legacyPath)
		},
	}
	importCmd.Flags().StringVar(&legacyPath, "in", "", "path of the legacy user file")

	root.AddCommand(exportCmd, importCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func openStore(dataDir string) (*shop.Store, error) {
	cfg, err := shop.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	files, err := shop.NewFileStore(cfg)
	if err != nil {
		return nil, err
	}
	return shop.NewStore(files)
}

// runExport rebuilds the snapshot from scratch so reporting queries always
// see exactly what the flat files contain.
func runExport(store *shop.Store, dbPath string) error {
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old snapshot: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	schema := []string{
		`CREATE TABLE books (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            category TEXT NOT NULL,
            price TEXT NOT NULL,
            stock INTEGER NOT NULL
        );`,
		`CREATE TABLE categories (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT NOT NULL
        );`,
		`CREATE TABLE sales (
            batch_id TEXT NOT NULL,
            book_id TEXT NOT NULL,
            title TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            unit_price TEXT NOT NULL,
            total TEXT NOT NULL,
            cashier TEXT NOT NULL,
            sold_at TEXT NOT NULL
        );`,
		`CREATE VIEW revenue_per_book AS
            SELECT book_id, title, SUM(quantity) AS units_sold, SUM(CAST(total AS REAL)) AS revenue
            FROM sales GROUP BY book_id, title ORDER BY revenue DESC;`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insBook, err := tx.Prepare(`INSERT INTO books(id,title,author,category,price,stock) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer insBook.Close()
	for _, b := range store.Books() {
		if _, err := insBook.Exec(b.ID, b.Title, b.Author, b.Category, b.Price.String(), b.Stock); err != nil {
			return fmt.Errorf("insert book %s: %w", b.ID, err)
		}
	}

	insCat, err := tx.Prepare(`INSERT INTO categories(id,name,description) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer insCat.Close()
	for _, c := range store.Categories() {
		if _, err := insCat.Exec(c.ID, c.Name, c.Description); err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}

	insSale, err := tx.Prepare(`INSERT INTO sales(batch_id,book_id,title,quantity,unit_price,total,cashier,sold_at) VALUES(?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer insSale.Close()
	txs := store.Transactions()
	for _, t := range txs {
		if _, err := insSale.Exec(t.ID, t.BookID, t.Title, t.Quantity, t.UnitPrice.String(), t.Total.String(), t.Cashier, t.Timestamp); err != nil {
			return fmt.Errorf("insert sale %s/%s: %w", t.ID, t.BookID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	fmt.Printf("Snapshot written to %s\n", dbPath)
	fmt.Printf("  books:      %d\n", len(store.Books()))
	fmt.Printf("  categories: %d\n", len(store.Categories()))
	fmt.Printf("  sales:      %d\n", len(txs))

	// Top sellers straight from the view, as a sanity check.
	rows, err := db.Query(`SELECT title, units_sold, revenue FROM revenue_per_book LIMIT 5`)
	if err != nil {
		return err
	}
	defer rows.Close()

	printedHeader := false
	for rows.Next() {
		var title string
		var units int
		var revenue float64
		if err := rows.Scan(&title, &units, &revenue); err != nil {
			return err
		}
		if !printedHeader {
			fmt.Println("\nTop sellers:")
			fmt.Printf("  %-40s %6s %12s\n", "Title", "Units", "Revenue")
			fmt.Println("  " + strings.Repeat("-", 60))
			printedHeader = true
		}
		fmt.Printf("  %-40s %6d %12.2f\n", title, units, revenue)
	}
	return rows.Err()
}

func runImportUsers(store *shop.Store, path string) error {
	accounts, err := shop.ReadLegacyAccounts(path)
	if err != nil {
		return fmt.Errorf("read legacy users: %w", err)
	}
	if len(accounts) == 0 {
		return fmt.Errorf("no importable rows in %s", path)
	}

	added, skipped := 0, 0
	for _, acc := range accounts {
		if err := store.AddAccount(acc); err != nil {
			if errors.Is(err, shop.ErrDuplicateKey) {
				fmt.Printf("Skipping %q: username already exists\n", acc.Username)
				skipped++
				continue
			}
			return fmt.Errorf("import %q: %w", acc.Username, err)
		}
		fmt.Printf("Imported %q (%s)\n", acc.Username, acc.Role)
		added++
	}

	fmt.Printf("\nImport complete: %d added, %d skipped\n", added, skipped)
	return nil
}
