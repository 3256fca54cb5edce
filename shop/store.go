package shop

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Store owns the book, category, account and transaction collections. All
// access goes through its methods behind a single mutex; the raw slices are
// never shared. One Store assumes one writer process: the flat files carry
// no cross-process locking.
type Store struct {
	mu    sync.Mutex
	files *FileStore
	now   func() time.Time // swapped out in tests

	books        []Book
	categories   []Category
	accounts     []Account
	transactions []Transaction
}

// NewStore loads all collections from the flat files. On first run (no
// accounts on disk) it seeds the default dataset and persists it immediately
// so the system is usable out of the box.
func NewStore(files *FileStore) (*Store, error) {
	s := &Store{files: files, now: time.Now}

	var err error
	if s.books, err = files.LoadBooks(); err != nil {
		return nil, err
	}
	if s.categories, err = files.LoadCategories(); err != nil {
		return nil, err
	}
	if s.accounts, err = files.LoadAccounts(); err != nil {
		return nil, err
	}
	if s.transactions, err = files.LoadTransactions(); err != nil {
		return nil, err
	}

	if len(s.accounts) == 0 {
		log.Info().Msg("no accounts on disk, seeding default dataset")
		s.accounts = defaultAccounts()
		s.categories = defaultCategories()
		s.books = defaultBooks()
		if err := files.SaveAccounts(s.accounts); err != nil {
			return nil, err
		}
		if err := files.SaveCategories(s.categories); err != nil {
			return nil, err
		}
		if err := files.SaveBooks(s.books); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ------------------ Read access ------------------

// Books returns a copy of the catalog in stored order.
func (s *Store) Books() []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Book(nil), s.books...)
}

// Categories returns a copy of the category list.
func (s *Store) Categories() []Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Category(nil), s.categories...)
}

// Accounts returns a copy of the account list.
func (s *Store) Accounts() []Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Account(nil), s.accounts...)
}

// Transactions returns a copy of the full sale history, oldest first.
func (s *Store) Transactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Transaction(nil), s.transactions...)
}

// BookByID looks a book up by id.
func (s *Store) BookByID(id string) (Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}

// HasBook reports whether a book with the given id exists. AddBook does not
// enforce id uniqueness itself; callers check here first.
func (s *Store) HasBook(id string) bool {
	_, ok := s.BookByID(id)
	return ok
}

// NextBookID derives the next free BK id from the current catalog.
func (s *Store) NextBookID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.books))
	for _, b := range s.books {
		ids = append(ids, b.ID)
	}
	return NextID(BookIDPrefix, ids)
}

// NextCategoryID derives the next free CAT id.
func (s *Store) NextCategoryID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.categories))
	for _, c := range s.categories {
		ids = append(ids, c.ID)
	}
	return NextID(CategoryIDPrefix, ids)
}

// ------------------ Book mutations ------------------

func validateBook(b Book) error {
	switch {
	case strings.TrimSpace(b.ID) == "":
		return &ValidationError{Field: "book id", Reason: "must not be empty"}
	case strings.TrimSpace(b.Title) == "":
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	case strings.TrimSpace(b.Author) == "":
		return &ValidationError{Field: "author", Reason: "must not be empty"}
	case b.Price.IsNegative():
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	case b.Stock < 0:
		return &ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	return nil
}

// AddBook appends a book to the catalog and saves the book file. It does not
// check id uniqueness; that contract rests with the caller (see HasBook).
func (s *Store) AddBook(b Book) error {
	if err := validateBook(b); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = append(s.books, b)
	return s.saveBooksLocked()
}

// UpdateBook overwrites every field of the book at the stored position.
// A stale index is a no-op reported as ErrNotFound.
func (s *Store) UpdateBook(index int, b Book) error {
	if err := validateBook(b); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.books) {
		return ErrNotFound
	}
	s.books[index] = b
	return s.saveBooksLocked()
}

// DeleteBook removes the book at the stored position.
func (s *Store) DeleteBook(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.books) {
		return ErrNotFound
	}
	s.books = append(s.books[:index], s.books[index+1:]...)
	return s.saveBooksLocked()
}

// saveBooksLocked persists the catalog. On failure the in-memory mutation is
// NOT rolled back; memory and disk diverge until the next successful save.
func (s *Store) saveBooksLocked() error {
	if err := s.files.SaveBooks(s.books); err != nil {
		log.Error().Err(err).Msg("saving book file failed, in-memory catalog not rolled back")
		return err
	}
	return nil
}

// ------------------ Category mutations ------------------

// AddCategory appends a category and saves the category file.
func (s *Store) AddCategory(c Category) error {
	switch {
	case strings.TrimSpace(c.ID) == "":
		return &ValidationError{Field: "category id", Reason: "must not be empty"}
	case strings.TrimSpace(c.Name) == "":
		return &ValidationError{Field: "category name", Reason: "must not be empty"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, c)
	if err := s.files.SaveCategories(s.categories); err != nil {
		log.Error().Err(err).Msg("saving category file failed, in-memory list not rolled back")
		return err
	}
	return nil
}

// ------------------ Accounts ------------------

// Authenticate returns the first account matching both username and
// password, or nil. Comparison is exact plain text; there is no hashing and
// no rate limiting.
func (s *Store) Authenticate(username, password string) *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts {
		if s.accounts[i].Username == username && s.accounts[i].Password == password {
			acc := s.accounts[i]
			return &acc
		}
	}
	return nil
}

// AddAccount registers a new user. The username must be unique across the
// store; the role is fixed at creation.
func (s *Store) AddAccount(acc Account) error {
	switch {
	case strings.TrimSpace(acc.Username) == "":
		return &ValidationError{Field: "username", Reason: "must not be empty"}
	case acc.Password == "":
		return &ValidationError{Field: "password", Reason: "must not be empty"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Username == acc.Username {
			return ErrDuplicateKey
		}
	}
	s.accounts = append(s.accounts, acc)
	if err := s.files.SaveAccounts(s.accounts); err != nil {
		log.Error().Err(err).Msg("saving user file failed, in-memory list not rolled back")
		return err
	}
	return nil
}

// ------------------ Search ------------------
//
// Searches are read-only: each returns a fresh slice of matches preserving
// catalog order and never mutates the store.

// SearchByTitle matches a case-insensitive title substring.
func (s *Store) SearchByTitle(q string) []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	q = strings.ToLower(q)
	var out []Book
	for _, b := range s.books {
		if strings.Contains(strings.ToLower(b.Title), q) {
			out = append(out, b)
		}
	}
	return out
}

// SearchByCategory matches a case-insensitive category-label substring.
func (s *Store) SearchByCategory(q string) []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	q = strings.ToLower(q)
	var out []Book
	for _, b := range s.books {
		if strings.Contains(strings.ToLower(b.Category), q) {
			out = append(out, b)
		}
	}
	return out
}

// SearchByMaxPrice returns books with price <= max, boundary inclusive.
func (s *Store) SearchByMaxPrice(max decimal.Decimal) []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Book
	for _, b := range s.books {
		if b.Price.LessThanOrEqual(max) {
			out = append(out, b)
		}
	}
	return out
}

// SearchByMinStock returns books with stock >= min, boundary inclusive.
func (s *Store) SearchByMinStock(min int) []Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Book
	for _, b := range s.books {
		if b.Stock >= min {
			out = append(out, b)
		}
	}
	return out
}
