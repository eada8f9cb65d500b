package store

import (
	"context"
	"fmt"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS account_categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL CHECK (type IN ('debito', 'credito')),
		specific_type TEXT NOT NULL,
		specific_subtype TEXT NOT NULL DEFAULT '',
		category_id INTEGER REFERENCES account_categories(id),
		balance TEXT NOT NULL DEFAULT '0'
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		debit_account INTEGER NOT NULL REFERENCES accounts(id),
		credit_account INTEGER NOT NULL REFERENCES accounts(id),
		amount TEXT NOT NULL,
		CHECK (debit_account <> credit_account)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_debit ON transactions(debit_account)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_credit ON transactions(credit_account)`,
	`CREATE TABLE IF NOT EXISTS fiscal_periods (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		interval_days INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS depreciation_methods (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		annual_rate TEXT NOT NULL DEFAULT '0'
	)`,
	`CREATE TABLE IF NOT EXISTS assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		acquisition_date TEXT NOT NULL,
		acquisition_value TEXT NOT NULL,
		depreciation_method_id INTEGER NOT NULL REFERENCES depreciation_methods(id),
		useful_life_years INTEGER NOT NULL,
		salvage_value TEXT NOT NULL DEFAULT '0',
		start_depreciation_date TEXT NOT NULL,
		account_id INTEGER NOT NULL REFERENCES accounts(id),
		is_active INTEGER NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS transaction_templates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		details TEXT NOT NULL
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS account_categories (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		normalized_name VARCHAR(255) NOT NULL UNIQUE,
		description TEXT NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	"CREATE TABLE IF NOT EXISTS accounts (" +
		"id INT AUTO_INCREMENT PRIMARY KEY," +
		"name VARCHAR(255) NOT NULL," +
		"normalized_name VARCHAR(255) NOT NULL UNIQUE," +
		"`type` VARCHAR(16) NOT NULL CHECK (`type` IN ('debito', 'credito'))," +
		"specific_type VARCHAR(32) NOT NULL," +
		"specific_subtype VARCHAR(32) NOT NULL DEFAULT ''," +
		"category_id INT NULL," +
		"balance DECIMAL(18,2) NOT NULL DEFAULT 0," +
		"FOREIGN KEY (category_id) REFERENCES account_categories(id)" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
	"CREATE TABLE IF NOT EXISTS transactions (" +
		"id INT AUTO_INCREMENT PRIMARY KEY," +
		"`date` DATE NOT NULL," +
		"description VARCHAR(512) NOT NULL DEFAULT ''," +
		"debit_account INT NOT NULL," +
		"credit_account INT NOT NULL," +
		"amount DECIMAL(18,2) NOT NULL," +
		"INDEX idx_transactions_date (`date`)," +
		"FOREIGN KEY (debit_account) REFERENCES accounts(id)," +
		"FOREIGN KEY (credit_account) REFERENCES accounts(id)," +
		"CHECK (debit_account <> credit_account)" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
	`CREATE TABLE IF NOT EXISTS fiscal_periods (
		id INT AUTO_INCREMENT PRIMARY KEY,
		start_date DATE NOT NULL,
		end_date DATE NOT NULL,
		interval_days INT NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS depreciation_methods (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(64) NOT NULL UNIQUE,
		description TEXT NOT NULL,
		annual_rate DECIMAL(10,4) NOT NULL DEFAULT 0
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS assets (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		acquisition_date DATE NOT NULL,
		acquisition_value DECIMAL(18,2) NOT NULL,
		depreciation_method_id INT NOT NULL,
		useful_life_years INT NOT NULL,
		salvage_value DECIMAL(18,2) NOT NULL DEFAULT 0,
		start_depreciation_date DATE NOT NULL,
		account_id INT NOT NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		FOREIGN KEY (depreciation_method_id) REFERENCES depreciation_methods(id),
		FOREIGN KEY (account_id) REFERENCES accounts(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS transaction_templates (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		details TEXT NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

type seedMethod struct {
	name, description, rate string
}

var seedMethods = []seedMethod{
	{"Straight-Line", "Equal depreciation every year of the useful life", "0"},
	{"Declining-Balance", "Fixed multiple of the straight-line rate applied to the remaining book value", "2"},
	{"Sum-of-Years-Digits", "Accelerated depreciation weighted by the remaining years of life", "0"},
}

// Migrate creates missing tables and seeds the depreciation methods. It is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	stmts, insert := sqliteSchema, "INSERT OR IGNORE"
	if db.driver == DriverMySQL {
		stmts, insert = mysqlSchema, "INSERT IGNORE"
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return Error("migrating schema", err)
		}
	}

	q := insert + " INTO depreciation_methods (name, description, annual_rate) VALUES (?, ?, ?)"
	for _, m := range seedMethods {
		if _, err := db.ExecContext(ctx, q, m.name, m.description, m.rate); err != nil {
			return fmt.Errorf("seeding depreciation method %s: %w", m.name, Error("seeding", err))
		}
	}
	return nil
}
