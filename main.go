package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"bookshop-management/shop"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

const maxLoginAttempts = 3

// readPassword reads a password with terminal masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // newline after masked input
	return strings.TrimSpace(string(bytePassword)), nil
}

// login prompts for credentials until they match or attempts run out.
func login(sc *bufio.Scanner, store *shop.Store) *shop.Account {
	for attempt := 1; attempt <= maxLoginAttempts; attempt++ {
		fmt.Print("Username: ")
		if !sc.Scan() {
			return nil
		}
		username := strings.TrimSpace(sc.Text())

		password, err := readPassword("Password: ")
		if err != nil {
			fmt.Printf("Error reading password: %v\n", err)
			return nil
		}

		if username == "" || password == "" {
			fmt.Println("Username and password cannot be empty.")
			continue
		}

		if acc := store.Authenticate(username, password); acc != nil {
			fmt.Printf("Welcome, %s (%s)!\n", acc.FullName, acc.Role)
			return acc
		}
		fmt.Printf("Invalid username or password (%d/%d attempts).\n", attempt, maxLoginAttempts)
	}
	return nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	cfg, err := shop.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	files, err := shop.NewFileStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data directory: %v\n", err)
		os.Exit(1)
	}
	store, err := shop.NewStore(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading shop data: %v\n", err)
		os.Exit(1)
	}

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome to the City Bookshop Management System!")
	fmt.Println("Default credentials: manager/manager123, cashier/cashier123")
	fmt.Println()

	user := login(scanner, store)
	if user == nil {
		fmt.Println("Login failed. Goodbye!")
		os.Exit(1)
	}

	cart := shop.NewCart()

	fmt.Println()
	fmt.Println("Available commands:")
	fmt.Println("  Catalog: list books, search books, list categories")
	if user.Role.Can(shop.ActionManageBooks) {
		fmt.Println("  Manage:  add book, update book, delete book, add category, add user")
	}
	fmt.Println("  Sales:   add to cart, view cart, remove from cart, clear cart, checkout")
	fmt.Println("  Ledger:  transactions")
	fmt.Println("  System:  exit")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		cmd := strings.TrimSpace(scanner.Text())

		switch cmd {
		case "list books":
			handleListBooks(store)
		case "search books":
			handleSearchBooks(scanner, store)
		case "list categories":
			handleListCategories(store)
		case "add book":
			requirePermission(user, shop.ActionManageBooks, func() { handleAddBook(scanner, store) })
		case "update book":
			requirePermission(user, shop.ActionManageBooks, func() { handleUpdateBook(scanner, store) })
		case "delete book":
			requirePermission(user, shop.ActionManageBooks, func() { handleDeleteBook(scanner, store) })
		case "add category":
			requirePermission(user, shop.ActionManageCategories, func() { handleAddCategory(scanner, store) })
		case "add user":
			requirePermission(user, shop.ActionManageAccounts, func() { handleAddUser(scanner, store) })
		case "add to cart":
			handleAddToCart(scanner, store, cart)
		case "view cart":
			handleViewCart(cart)
		case "remove from cart":
			handleRemoveFromCart(scanner, cart)
		case "clear cart":
			cart.Clear()
			fmt.Println("Cart cleared.")
		case "checkout":
			handleCheckout(store, cart, user)
		case "transactions":
			requirePermission(user, shop.ActionViewLedger, func() { handleTransactions(store) })
		case "exit":
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}
	}
}

func requirePermission(user *shop.Account, action shop.Action, fn func()) {
	if !user.Role.Can(action) {
		fmt.Println("Permission denied: this action requires a Manager account.")
		return
	}
	fn()
}

func printBookTable(books []shop.Book) {
	fmt.Printf("%-6s %-32s %-24s %-14s %10s %6s\n", "ID", "Title", "Author", "Category", "Price", "Stock")
	fmt.Println(strings.Repeat("-", 98))
	for _, b := range books {
		fmt.Printf("%-6s %-32s %-24s %-14s %10s %6d\n",
			b.ID,
			truncateString(b.Title, 32),
			truncateString(b.Author, 24),
			truncateString(b.Category, 14),
			b.Price.StringFixed(2),
			b.Stock)
	}
}

func handleListBooks(store *shop.Store) {
	books := store.Books()
	if len(books) == 0 {
		fmt.Println("No books in the catalog.")
		return
	}
	printBookTable(books)
	totalStock := 0
	for _, b := range books {
		totalStock += b.Stock
	}
	fmt.Printf("Total: %d books | %d items in stock\n", len(books), totalStock)
}

func handleSearchBooks(sc *bufio.Scanner, store *shop.Store) {
	fmt.Println("Search by: [1] title  [2] category  [3] max price  [4] min stock")
	fmt.Print("Choice: ")
	if !sc.Scan() {
		return
	}
	choice := strings.TrimSpace(sc.Text())

	fmt.Print("Query: ")
	if !sc.Scan() {
		return
	}
	query := strings.TrimSpace(sc.Text())

	var results []shop.Book
	switch choice {
	case "1":
		results = store.SearchByTitle(query)
	case "2":
		results = store.SearchByCategory(query)
	case "3":
		max, err := decimal.NewFromString(query)
		if err != nil {
			fmt.Printf("Invalid price: %s\n", query)
			return
		}
		results = store.SearchByMaxPrice(max)
	case "4":
		min, err := strconv.Atoi(query)
		if err != nil {
			fmt.Printf("Invalid stock count: %s\n", query)
			return
		}
		results = store.SearchByMinStock(min)
	default:
		fmt.Println("Unknown search type.")
		return
	}

	if len(results) == 0 {
		fmt.Printf("No books found matching '%s'.\n", query)
		return
	}
	fmt.Printf("Found %d book(s):\n", len(results))
	printBookTable(results)
}

func handleListCategories(store *shop.Store) {
	cats := store.Categories()
	if len(cats) == 0 {
		fmt.Println("No categories defined.")
		return
	}
	fmt.Printf("%-8s %-20s %s\n", "ID", "Name", "Description")
	fmt.Println(strings.Repeat("-", 70))
	for _, c := range cats {
		fmt.Printf("%-8s %-20s %s\n", c.ID, truncateString(c.Name, 20), c.Description)
	}
}

func handleAddBook(sc *bufio.Scanner, store *shop.Store) {
	id := store.NextBookID()
	fmt.Printf("New book ID: %s\n", id)

	fmt.Print("Title: ")
	if !sc.Scan() {
		return
	}
	title := strings.TrimSpace(sc.Text())

	fmt.Print("Author: ")
	if !sc.Scan() {
		return
	}
	author := strings.TrimSpace(sc.Text())

	fmt.Print("Category: ")
	if !sc.Scan() {
		return
	}
	category := strings.TrimSpace(sc.Text())

	fmt.Print("Price: ")
	if !sc.Scan() {
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(sc.Text()))
	if err != nil {
		fmt.Println("Invalid price.")
		return
	}

	fmt.Print("Stock quantity: ")
	if !sc.Scan() {
		return
	}
	stock, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		fmt.Println("Invalid stock quantity.")
		return
	}

	// The store does not enforce book-id uniqueness; the caller checks.
	if store.HasBook(id) {
		fmt.Printf("Book ID %s already exists!\n", id)
		return
	}
	book := shop.Book{ID: id, Title: title, Author: author, Category: category, Price: price, Stock: stock}
	if err := store.AddBook(book); err != nil {
		fmt.Printf("Error adding book: %v\n", err)
		return
	}
	fmt.Printf("Added book %s: %s by %s\n", id, title, author)
}

// selectBookIndex shows the catalog and reads a 1-based row selection.
func selectBookIndex(sc *bufio.Scanner, store *shop.Store) (int, bool) {
	books := store.Books()
	if len(books) == 0 {
		fmt.Println("No books in the catalog.")
		return 0, false
	}
	printBookTable(books)
	fmt.Print("Row number: ")
	if !sc.Scan() {
		return 0, false
	}
	row, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil || row < 1 || row > len(books) {
		fmt.Println("Invalid row number.")
		return 0, false
	}
	return row - 1, true
}

func handleUpdateBook(sc *bufio.Scanner, store *shop.Store) {
	index, ok := selectBookIndex(sc, store)
	if !ok {
		return
	}
	current := store.Books()[index]

	readField := func(label, current string) (string, bool) {
		fmt.Printf("%s [%s]: ", label, current)
		if !sc.Scan() {
			return "", false
		}
		v := strings.TrimSpace(sc.Text())
		if v == "" {
			return current, true
		}
		return v, true
	}

	title, ok := readField("Title", current.Title)
	if !ok {
		return
	}
	author, ok := readField("Author", current.Author)
	if !ok {
		return
	}
	category, ok := readField("Category", current.Category)
	if !ok {
		return
	}
	priceStr, ok := readField("Price", current.Price.String())
	if !ok {
		return
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		fmt.Println("Invalid price.")
		return
	}
	stockStr, ok := readField("Stock", strconv.Itoa(current.Stock))
	if !ok {
		return
	}
	stock, err := strconv.Atoi(stockStr)
	if err != nil {
		fmt.Println("Invalid stock quantity.")
		return
	}

	updated := shop.Book{ID: current.ID, Title: title, Author: author, Category: category, Price: price, Stock: stock}
	if err := store.UpdateBook(index, updated); err != nil {
		fmt.Printf("Error updating book: %v\n", err)
		return
	}
	fmt.Printf("Updated book %s.\n", current.ID)
}

func handleDeleteBook(sc *bufio.Scanner, store *shop.Store) {
	index, ok := selectBookIndex(sc, store)
	if !ok {
		return
	}
	book := store.Books()[index]

	fmt.Printf("Delete '%s' by %s? (y/N): ", book.Title, book.Author)
	if !sc.Scan() {
		return
	}
	if strings.ToLower(strings.TrimSpace(sc.Text())) != "y" {
		fmt.Println("Delete cancelled.")
		return
	}
	if err := store.DeleteBook(index); err != nil {
		fmt.Printf("Error deleting book: %v\n", err)
		return
	}
	fmt.Printf("Deleted book %s.\n", book.ID)
}

func handleAddCategory(sc *bufio.Scanner, store *shop.Store) {
	id := store.NextCategoryID()
	fmt.Printf("New category ID: %s\n", id)

	fmt.Print("Name: ")
	if !sc.Scan() {
		return
	}
	name := strings.TrimSpace(sc.Text())

	fmt.Print("Description: ")
	if !sc.Scan() {
		return
	}
	description := strings.TrimSpace(sc.Text())

	if err := store.AddCategory(shop.Category{ID: id, Name: name, Description: description}); err != nil {
		fmt.Printf("Error adding category: %v\n", err)
		return
	}
	fmt.Printf("Added category %s: %s\n", id, name)
}

func handleAddUser(sc *bufio.Scanner, store *shop.Store) {
	fmt.Print("Username: ")
	if !sc.Scan() {
		return
	}
	username := strings.TrimSpace(sc.Text())

	password, err := readPassword(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}

	fmt.Print("Full name: ")
	if !sc.Scan() {
		return
	}
	fullName := strings.TrimSpace(sc.Text())

	fmt.Print("Role (Manager/Cashier): ")
	if !sc.Scan() {
		return
	}
	role := shop.RoleCashier
	if strings.EqualFold(strings.TrimSpace(sc.Text()), string(shop.RoleManager)) {
		role = shop.RoleManager
	}

	acc := shop.Account{Role: role, Username: username, Password: password, FullName: fullName}
	if err := store.AddAccount(acc); err != nil {
		fmt.Printf("Error adding user: %v\n", err)
		return
	}
	fmt.Printf("Added %s account '%s'.\n", role, username)
}

func handleAddToCart(sc *bufio.Scanner, store *shop.Store, cart *shop.Cart) {
	fmt.Print("Book ID: ")
	if !sc.Scan() {
		return
	}
	id := strings.TrimSpace(sc.Text())

	book, ok := store.BookByID(id)
	if !ok {
		fmt.Printf("No book with ID %s.\n", id)
		return
	}

	fmt.Print("Quantity: ")
	if !sc.Scan() {
		return
	}
	qty, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		fmt.Println("Invalid quantity.")
		return
	}

	if err := cart.AddItem(book, qty); err != nil {
		fmt.Printf("Cannot add to cart: %v\n", err)
		return
	}
	fmt.Printf("Added %d x '%s' to cart. Cart total: %s\n", qty, book.Title, cart.Total().StringFixed(2))
}

func handleViewCart(cart *shop.Cart) {
	items := cart.Items()
	if len(items) == 0 {
		fmt.Println("Cart is empty.")
		return
	}
	fmt.Printf("%-4s %-6s %-32s %6s %10s %12s\n", "Row", "ID", "Title", "Qty", "Price", "Line Total")
	fmt.Println(strings.Repeat("-", 76))
	for i, item := range items {
		fmt.Printf("%-4d %-6s %-32s %6d %10s %12s\n",
			i+1, item.BookID, truncateString(item.Title, 32),
			item.Quantity, item.UnitPrice.StringFixed(2), item.LineTotal().StringFixed(2))
	}
	fmt.Printf("Cart total: %s\n", cart.Total().StringFixed(2))
}

func handleRemoveFromCart(sc *bufio.Scanner, cart *shop.Cart) {
	if cart.Len() == 0 {
		fmt.Println("Cart is empty.")
		return
	}
	fmt.Print("Row number: ")
	if !sc.Scan() {
		return
	}
	row, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		fmt.Println("Invalid row number.")
		return
	}
	if err := cart.RemoveItem(row - 1); err != nil {
		fmt.Printf("Cannot remove item: %v\n", err)
		return
	}
	fmt.Println("Item removed.")
}

func handleCheckout(store *shop.Store, cart *shop.Cart, user *shop.Account) {
	result, err := store.Checkout(cart, user.Username)
	if result == nil {
		fmt.Printf("Checkout failed: %v\n", err)
		return
	}

	if len(result.Committed) > 0 {
		fmt.Printf("Transaction completed!\nTransaction ID: %s\nTotal: %s\n",
			result.BatchID, result.Total.StringFixed(2))
	}
	for _, f := range result.Failed {
		fmt.Printf("Line NOT sold: %s x%d (%v)\n", f.Item.Title, f.Item.Quantity, f.Err)
	}
	if err != nil && len(result.Committed) > 0 {
		fmt.Printf("Warning: %v\n", err)
	}
}

func handleTransactions(store *shop.Store) {
	txs := store.Transactions()
	if len(txs) == 0 {
		fmt.Println("No transactions recorded.")
		return
	}
	fmt.Printf("%-18s %-6s %-28s %4s %10s %12s %-10s %s\n",
		"Transaction", "Book", "Title", "Qty", "Price", "Total", "Cashier", "Date & Time")
	fmt.Println(strings.Repeat("-", 112))
	for _, tx := range txs {
		fmt.Printf("%-18s %-6s %-28s %4d %10s %12s %-10s %s\n",
			tx.ID, tx.BookID, truncateString(tx.Title, 28), tx.Quantity,
			tx.UnitPrice.StringFixed(2), tx.Total.StringFixed(2), tx.Cashier, tx.Timestamp)
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
