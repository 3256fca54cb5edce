package shop

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds runtime configuration loaded from environment variables.
type Config struct {
	// DataDir is where the flat files live. Created on first use.
	DataDir string `mapstructure:"BOOKSHOP_DATA_DIR"`

	BooksFile        string `mapstructure:"BOOKSHOP_BOOKS_FILE"`
	CategoriesFile   string `mapstructure:"BOOKSHOP_CATEGORIES_FILE"`
	UsersFile        string `mapstructure:"BOOKSHOP_USERS_FILE"`
	TransactionsFile string `mapstructure:"BOOKSHOP_TRANSACTIONS_FILE"`
}

// LoadConfig reads configuration from environment variables (and an optional
// .env file in the working directory).
func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("BOOKSHOP_DATA_DIR", "data")
	viper.SetDefault("BOOKSHOP_BOOKS_FILE", "books.csv")
	viper.SetDefault("BOOKSHOP_CATEGORIES_FILE", "categories.csv")
	viper.SetDefault("BOOKSHOP_USERS_FILE", "users.csv")
	viper.SetDefault("BOOKSHOP_TRANSACTIONS_FILE", "transactions.csv")

	// Optional .env for local development; missing file is fine.
	_ = viper.ReadInConfig()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path helpers resolve each flat file inside DataDir.

func (c *Config) BooksPath() string        { return filepath.Join(c.DataDir, c.BooksFile) }
func (c *Config) CategoriesPath() string   { return filepath.Join(c.DataDir, c.CategoriesFile) }
func (c *Config) UsersPath() string        { return filepath.Join(c.DataDir, c.UsersFile) }
func (c *Config) TransactionsPath() string { return filepath.Join(c.DataDir, c.TransactionsFile) }
