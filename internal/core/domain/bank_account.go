package domain

// BankAccountDirection classifies how an account participates in receipts.
type BankAccountDirection string

const (
	DirectionSender   BankAccountDirection = "SENDER"
	DirectionReceiver BankAccountDirection = "RECEIVER"
	DirectionBoth     BankAccountDirection = "BOTH"
)

// BankAccount is a named payment source/destination owned by a user.
//
// Sequence is a dense 1..N per-user display ordering with no gaps. It is
// maintained exclusively by the create/delete/reorder paths; the generic
// update path never touches it. Accounts referenced by receipts cannot be
// deleted (FK RESTRICT).
type BankAccount struct {
	BankAccountID string               `json:"bankAccountID"` // Primary Key (UUID)
	UserID        string               `json:"userID"`
	Name          string               `json:"name"`
	HolderName    string               `json:"holderName"`
	CurrencyCode  string               `json:"currencyCode"`
	IBAN          *string              `json:"iban,omitempty"` // Optional
	SwiftBIC      string               `json:"swiftBIC"`       // Required
	Direction     BankAccountDirection `json:"direction"`
	Sequence      int                  `json:"sequence"`
	Note          string               `json:"note"`
	AuditFields
}
