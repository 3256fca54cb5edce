package shop

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Flat-file schema. Fields are comma-joined with no escaping: a value that
// itself contains a comma corrupts that row on the next load. Known
// limitation, kept as-is.
const (
	fieldSep = ","

	booksHeader      = "BookID,Title,Author,Category,Price,StockQuantity"
	categoriesHeader = "CategoryID,CategoryName,Description"
	usersHeader      = "Role,Username,Password,FullName"
)

// FileStore reads and writes the delimited flat files that back the shop.
// Whole-entity saves go through a temp-file-and-rename so a crash mid-write
// leaves either the old or the new file, never a truncated one. The ledger
// is the exception: it is append-only and prior lines are never rewritten.
type FileStore struct {
	cfg *Config
}

// NewFileStore binds a FileStore to cfg.DataDir, creating the directory so
// first-run saves succeed.
func NewFileStore(cfg *Config) (*FileStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{cfg: cfg}, nil
}

// ------------------ Books ------------------

// LoadBooks reads the book file. A missing file yields an empty catalog.
// Malformed rows (wrong field count, unparsable price or stock) are skipped
// with a warning rather than aborting the whole load.
func (fs *FileStore) LoadBooks() ([]Book, error) {
	rows, err := fs.readRows(fs.cfg.BooksPath(), true)
	if err != nil {
		return nil, err
	}
	var books []Book
	for _, row := range rows {
		p := strings.Split(row, fieldSep)
		if len(p) != 6 {
			log.Warn().Str("file", fs.cfg.BooksFile).Str("row", row).Msg("skipping malformed book row")
			continue
		}
		price, perr := decimal.NewFromString(p[4])
		stock, serr := strconv.Atoi(p[5])
		if perr != nil || serr != nil {
			log.Warn().Str("file", fs.cfg.BooksFile).Str("row", row).Msg("skipping book row with bad numeric field")
			continue
		}
		books = append(books, Book{
			ID:       p[0],
			Title:    p[1],
			Author:   p[2],
			Category: p[3],
			Price:    price,
			Stock:    stock,
		})
	}
	return books, nil
}

// SaveBooks rewrites the whole book file.
func (fs *FileStore) SaveBooks(books []Book) error {
	lines := make([]string, 0, len(books)+1)
	lines = append(lines, booksHeader)
	for _, b := range books {
		lines = append(lines, strings.Join([]string{
			b.ID, b.Title, b.Author, b.Category, b.Price.String(), strconv.Itoa(b.Stock),
		}, fieldSep))
	}
	return fs.writeAtomic(fs.cfg.BooksPath(), lines)
}

// ------------------ Categories ------------------

func (fs *FileStore) LoadCategories() ([]Category, error) {
	rows, err := fs.readRows(fs.cfg.CategoriesPath(), true)
	if err != nil {
		return nil, err
	}
	var cats []Category
	for _, row := range rows {
		p := strings.Split(row, fieldSep)
		if len(p) != 3 {
			log.Warn().Str("file", fs.cfg.CategoriesFile).Str("row", row).Msg("skipping malformed category row")
			continue
		}
		cats = append(cats, Category{ID: p[0], Name: p[1], Description: p[2]})
	}
	return cats, nil
}

func (fs *FileStore) SaveCategories(cats []Category) error {
	lines := make([]string, 0, len(cats)+1)
	lines = append(lines, categoriesHeader)
	for _, c := range cats {
		lines = append(lines, strings.Join([]string{c.ID, c.Name, c.Description}, fieldSep))
	}
	return fs.writeAtomic(fs.cfg.CategoriesPath(), lines)
}

// ------------------ Accounts ------------------

// LoadAccounts reads the canonical 4-field user file
// (Role,Username,Password,FullName). Any role other than Manager loads as
// Cashier.
func (fs *FileStore) LoadAccounts() ([]Account, error) {
	rows, err := fs.readRows(fs.cfg.UsersPath(), true)
	if err != nil {
		return nil, err
	}
	var accounts []Account
	for _, row := range rows {
		p := strings.Split(row, fieldSep)
		if len(p) != 4 {
			log.Warn().Str("file", fs.cfg.UsersFile).Str("row", row).Msg("skipping malformed user row")
			continue
		}
		role := RoleCashier
		if p[0] == string(RoleManager) {
			role = RoleManager
		}
		accounts = append(accounts, Account{Role: role, Username: p[1], Password: p[2], FullName: p[3]})
	}
	return accounts, nil
}

func (fs *FileStore) SaveAccounts(accounts []Account) error {
	lines := make([]string, 0, len(accounts)+1)
	lines = append(lines, usersHeader)
	for _, a := range accounts {
		lines = append(lines, strings.Join([]string{string(a.Role), a.Username, a.Password, a.FullName}, fieldSep))
	}
	return fs.writeAtomic(fs.cfg.UsersPath(), lines)
}

// ReadLegacyAccounts parses the older, headerless 3-field user schema
// (username,password,role) that predates display names. It is never applied
// automatically on load; callers migrate explicitly (see shopctl
// import-users). FullName defaults to the username.
func ReadLegacyAccounts(path string) ([]Account, error) {
	rows, err := readRowsFromPath(path, false)
	if err != nil {
		return nil, err
	}
	var accounts []Account
	for _, row := range rows {
		p := strings.Split(row, fieldSep)
		if len(p) != 3 {
			log.Warn().Str("file", path).Str("row", row).Msg("skipping malformed legacy user row")
			continue
		}
		role := RoleCashier
		if p[2] == string(RoleManager) {
			role = RoleManager
		}
		accounts = append(accounts, Account{Role: role, Username: p[0], Password: p[1], FullName: p[0]})
	}
	return accounts, nil
}

// ------------------ Ledger ------------------

// LoadTransactions reads the full sale history. The ledger file has no
// header row.
func (fs *FileStore) LoadTransactions() ([]Transaction, error) {
	rows, err := fs.readRows(fs.cfg.TransactionsPath(), false)
	if err != nil {
		return nil, err
	}
	var txs []Transaction
	for _, row := range rows {
		p := strings.Split(row, fieldSep)
		if len(p) != 8 {
			log.Warn().Str("file", fs.cfg.TransactionsFile).Str("row", row).Msg("skipping malformed transaction row")
			continue
		}
		qty, qerr := strconv.Atoi(p[3])
		price, perr := decimal.NewFromString(p[4])
		total, terr := decimal.NewFromString(p[5])
		if qerr != nil || perr != nil || terr != nil {
			log.Warn().Str("file", fs.cfg.TransactionsFile).Str("row", row).Msg("skipping transaction row with bad numeric field")
			continue
		}
		txs = append(txs, Transaction{
			ID:        p[0],
			BookID:    p[1],
			Title:     p[2],
			Quantity:  qty,
			UnitPrice: price,
			Total:     total,
			Cashier:   p[6],
			Timestamp: p[7],
		})
	}
	return txs, nil
}

// AppendTransaction durably appends one sale line to the ledger. It never
// rewrites prior history.
func (fs *FileStore) AppendTransaction(tx Transaction) error {
	f, err := os.OpenFile(fs.cfg.TransactionsPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open ledger: %v", ErrPersistence, err)
	}
	defer f.Close()

	line := strings.Join([]string{
		tx.ID, tx.BookID, tx.Title,
		strconv.Itoa(tx.Quantity), tx.UnitPrice.String(), tx.Total.String(),
		tx.Cashier, tx.Timestamp,
	}, fieldSep)
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: append ledger: %v", ErrPersistence, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: sync ledger: %v", ErrPersistence, err)
	}
	return nil
}

// ------------------ Low-level I/O ------------------

func (fs *FileStore) readRows(path string, skipHeader bool) ([]string, error) {
	return readRowsFromPath(path, skipHeader)
}

func readRowsFromPath(path string, skipHeader bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrPersistence, path, err)
	}
	defer f.Close()

	var rows []string
	sc := bufio.NewScanner(f)
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if first && skipHeader {
			first = false
			continue
		}
		first = false
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPersistence, path, err)
	}
	return rows, nil
}

// writeAtomic writes lines to a temp file in the target directory, fsyncs it
// and renames it over path.
func (fs *FileStore) writeAtomic(path string, lines []string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrPersistence, path, err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return fmt.Errorf("%w: write %s: %v", ErrPersistence, path, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: flush %s: %v", ErrPersistence, path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: sync %s: %v", ErrPersistence, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %v", ErrPersistence, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: rename %s: %v", ErrPersistence, path, err)
	}
	return nil
}
