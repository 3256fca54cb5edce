package shop

import "github.com/shopspring/decimal"

// Default dataset written on first run (files absent or user list empty) so
// the shop is usable out of the box. The credentials below are intentionally
// well known; see the login screen of whatever front end ships.

func defaultAccounts() []Account {
	return []Account{
		{Role: RoleManager, Username: "manager", Password: "manager123", FullName: "John Smith"},
		{Role: RoleCashier, Username: "cashier", Password: "cashier123", FullName: "Jane Doe"},
	}
}

func defaultCategories() []Category {
	return []Category{
		{ID: "CAT001", Name: "Fiction", Description: "Fictional novels and stories"},
		{ID: "CAT002", Name: "Non-Fiction", Description: "Non-fictional books and biographies"},
		{ID: "CAT003", Name: "Science", Description: "Science and technology books"},
		{ID: "CAT004", Name: "History", Description: "Historical books and references"},
		{ID: "CAT005", Name: "Children", Description: "Books for children"},
	}
}

func defaultBooks() []Book {
	price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	return []Book{
		{ID: "BK001", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Category: "Fiction", Price: price(1500), Stock: 25},
		{ID: "BK002", Title: "To Kill a Mockingbird", Author: "Harper Lee", Category: "Fiction", Price: price(1200), Stock: 30},
		{ID: "BK003", Title: "A Brief History of Time", Author: "Stephen Hawking", Category: "Science", Price: price(2000), Stock: 15},
		{ID: "BK004", Title: "Sapiens", Author: "Yuval Noah Harari", Category: "History", Price: price(1800), Stock: 20},
		{ID: "BK005", Title: "The Cat in the Hat", Author: "Dr. Seuss", Category: "Children", Price: price(800), Stock: 40},
		{ID: "BK006", Title: "1984", Author: "George Orwell", Category: "Fiction", Price: price(1100), Stock: 35},
		{ID: "BK007", Title: "Becoming", Author: "Michelle Obama", Category: "Non-Fiction", Price: price(2200), Stock: 18},
		{ID: "BK008", Title: "Cosmos", Author: "Carl Sagan", Category: "Science", Price: price(1900), Stock: 12},
		{ID: "BK009", Title: "The Diary of a Young Girl", Author: "Anne Frank", Category: "History", Price: price(950), Stock: 28},
		{ID: "BK010", Title: "Charlotte's Web", Author: "E.B. White", Category: "Children", Price: price(750), Stock: 45},
	}
}
