package models

// BankAccount is the DB row for the bank_accounts table.
// The (user_id, sequence) unique constraint is DEFERRABLE INITIALLY DEFERRED
// so the delete/reorder range shifts can pass through intermediate states
// within a transaction.
type BankAccount struct {
	BankAccountID string  `db:"bank_account_id"`
	UserID        string  `db:"user_id"`
	Name          string  `db:"name"`
	HolderName    string  `db:"holder_name"`
	CurrencyCode  string  `db:"currency_code"`
	IBAN          *string `db:"iban"`
	SwiftBIC      string  `db:"swift_bic"`
	Direction     string  `db:"direction"`
	Sequence      int     `db:"sequence"`
	Note          string  `db:"note"`
	AuditFields
}
