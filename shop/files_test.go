package shop

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		DataDir:          t.TempDir(),
		BooksFile:        "books.csv",
		CategoriesFile:   "categories.csv",
		UsersFile:        "users.csv",
		TransactionsFile: "transactions.csv",
	}
}

func newTestFileStore(t *testing.T) (*FileStore, *Config) {
	t.Helper()
	cfg := newTestConfig(t)
	fs, err := NewFileStore(cfg)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return fs, cfg
}

func TestMissingFilesLoadEmpty(t *testing.T) {
	fs, _ := newTestFileStore(t)

	books, err := fs.LoadBooks()
	if err != nil {
		t.Fatalf("load books: %v", err)
	}
	if len(books) != 0 {
		t.Fatalf("want empty catalog, got %d books", len(books))
	}
	txs, err := fs.LoadTransactions()
	if err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("want empty ledger, got %d transactions", len(txs))
	}
}

func TestBookRoundTrip(t *testing.T) {
	fs, _ := newTestFileStore(t)

	in := []Book{
		{ID: "BK001", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Category: "Fiction", Price: decimal.NewFromInt(1500), Stock: 25},
		{ID: "BK002", Title: "Cosmos", Author: "Carl Sagan", Category: "Science", Price: decimal.RequireFromString("1899.50"), Stock: 12},
	}
	if err := fs.SaveBooks(in); err != nil {
		t.Fatalf("save books: %v", err)
	}

	out, err := fs.LoadBooks()
	if err != nil {
		t.Fatalf("load books: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("want %d books, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].ID != in[i].ID || out[i].Title != in[i].Title ||
			out[i].Author != in[i].Author || out[i].Category != in[i].Category {
			t.Fatalf("book %d text fields differ: %+v vs %+v", i, out[i], in[i])
		}
		if !out[i].Price.Equal(in[i].Price) {
			t.Fatalf("book %d price: want %s, got %s", i, in[i].Price, out[i].Price)
		}
		if out[i].Stock != in[i].Stock {
			t.Fatalf("book %d stock: want %d, got %d", i, in[i].Stock, out[i].Stock)
		}
	}
}

func TestLoadSkipsMalformedBookRows(t *testing.T) {
	fs, cfg := newTestFileStore(t)

	content := strings.Join([]string{
		"BookID,Title,Author,Category,Price,StockQuantity",
		"BK001,1984,George Orwell,Fiction,1100,35",
		"BK002,short row",
		"BK003,Sapiens,Yuval Noah Harari,History,not-a-price,20",
		"BK004,Becoming,Michelle Obama,Non-Fiction,2200,not-a-stock",
	}, "\n") + "\n"
	if err := os.WriteFile(cfg.BooksPath(), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	books, err := fs.LoadBooks()
	if err != nil {
		t.Fatalf("load books: %v", err)
	}
	if len(books) != 1 || books[0].ID != "BK001" {
		t.Fatalf("want only BK001 to survive, got %+v", books)
	}
}

func TestCategoryRoundTrip(t *testing.T) {
	fs, _ := newTestFileStore(t)

	in := []Category{
		{ID: "CAT001", Name: "Fiction", Description: "Fictional novels and stories"},
		{ID: "CAT002", Name: "Science", Description: "Science and technology books"},
	}
	if err := fs.SaveCategories(in); err != nil {
		t.Fatalf("save categories: %v", err)
	}
	out, err := fs.LoadCategories()
	if err != nil {
		t.Fatalf("load categories: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestAccountRoundTripAndUnknownRole(t *testing.T) {
	fs, cfg := newTestFileStore(t)

	in := []Account{
		{Role: RoleManager, Username: "manager", Password: "manager123", FullName: "John Smith"},
		{Role: RoleCashier, Username: "cashier", Password: "cashier123", FullName: "Jane Doe"},
	}
	if err := fs.SaveAccounts(in); err != nil {
		t.Fatalf("save accounts: %v", err)
	}
	out, err := fs.LoadAccounts()
	if err != nil {
		t.Fatalf("load accounts: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	// Any role other than Manager loads as Cashier.
	content := "Role,Username,Password,FullName\nAdmin,root,toor,Root User\n"
	if err := os.WriteFile(cfg.UsersPath(), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out, err = fs.LoadAccounts()
	if err != nil {
		t.Fatalf("load accounts: %v", err)
	}
	if len(out) != 1 || out[0].Role != RoleCashier {
		t.Fatalf("unknown role should load as Cashier, got %+v", out)
	}
}

func TestLedgerAppendPreservesHistory(t *testing.T) {
	fs, _ := newTestFileStore(t)

	tx1 := Transaction{
		ID: "TXN100", BookID: "BK001", Title: "1984", Quantity: 2,
		UnitPrice: decimal.NewFromInt(1100), Total: decimal.NewFromInt(2200),
		Cashier: "cashier", Timestamp: "2026-08-28 10:15:00",
	}
	tx2 := tx1
	tx2.ID, tx2.BookID, tx2.Title = "TXN101", "BK005", "The Cat in the Hat"

	if err := fs.AppendTransaction(tx1); err != nil {
		t.Fatalf("append tx1: %v", err)
	}
	if err := fs.AppendTransaction(tx2); err != nil {
		t.Fatalf("append tx2: %v", err)
	}

	txs, err := fs.LoadTransactions()
	if err != nil {
		t.Fatalf("load transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("want 2 transactions, got %d", len(txs))
	}
	if txs[0].ID != "TXN100" || txs[1].ID != "TXN101" {
		t.Fatalf("ledger order lost: %+v", txs)
	}
	if txs[0].Quantity != 2 || !txs[0].Total.Equal(decimal.NewFromInt(2200)) {
		t.Fatalf("tx1 fields mangled: %+v", txs[0])
	}
	if txs[0].Timestamp != "2026-08-28 10:15:00" {
		t.Fatalf("timestamp mangled: %q", txs[0].Timestamp)
	}

	// Appending more must not rewrite what is already there.
	tx3 := tx1
	tx3.ID = "TXN102"
	if err := fs.AppendTransaction(tx3); err != nil {
		t.Fatalf("append tx3: %v", err)
	}
	txs, err = fs.LoadTransactions()
	if err != nil {
		t.Fatalf("reload transactions: %v", err)
	}
	if len(txs) != 3 || txs[0].ID != "TXN100" {
		t.Fatalf("history not preserved: %+v", txs)
	}
}

func TestAtomicSaveLeavesNoTempFiles(t *testing.T) {
	fs, cfg := newTestFileStore(t)

	books := []Book{{ID: "BK001", Title: "1984", Author: "George Orwell", Category: "Fiction", Price: decimal.NewFromInt(1100), Stock: 35}}
	for i := 0; i < 3; i++ {
		if err := fs.SaveBooks(books); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(cfg.DataDir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}

	data, err := os.ReadFile(cfg.BooksPath())
	if err != nil {
		t.Fatalf("read books file: %v", err)
	}
	want := "BookID,Title,Author,Category,Price,StockQuantity\nBK001,1984,George Orwell,Fiction,1100,35\n"
	if string(data) != want {
		t.Fatalf("file content:\n%q\nwant:\n%q", data, want)
	}
}

func TestReadLegacyAccounts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users_legacy.csv")
	content := "alice,secret1,Manager\nbob,secret2,Cashier\nbroken-row\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	accounts, err := ReadLegacyAccounts(path)
	if err != nil {
		t.Fatalf("read legacy accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("want 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Role != RoleManager || accounts[0].Username != "alice" || accounts[0].Password != "secret1" {
		t.Fatalf("alice mangled: %+v", accounts[0])
	}
	// The legacy schema has no display name; it defaults to the username.
	if accounts[0].FullName != "alice" || accounts[1].FullName != "bob" {
		t.Fatalf("full name defaults wrong: %+v", accounts)
	}
	if accounts[1].Role != RoleCashier {
		t.Fatalf("bob should be a cashier: %+v", accounts[1])
	}
}
