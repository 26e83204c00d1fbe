package dto

import (
	"time"

	"github.com/velmora/wallet_ledger_app/internal/core/domain"
)

// CreateBankAccountRequest defines the structure for registering a bank account.
// The new account is always appended at the end of the user's ordering.
type CreateBankAccountRequest struct {
	Name         string                      `json:"name" binding:"required,max=128"`
	HolderName   string                      `json:"holderName" binding:"required,max=128"`
	CurrencyCode string                      `json:"currencyCode" binding:"required,len=3,uppercase"`
	IBAN         *string                     `json:"iban" binding:"omitempty,max=34"`
	SwiftBIC     string                      `json:"swiftBIC" binding:"required,max=11"`
	Direction    domain.BankAccountDirection `json:"direction" binding:"required,oneof=SENDER RECEIVER BOTH"`
	Note         string                      `json:"note" binding:"max=512"`
}

// UpdateBankAccountRequest defines the data allowed for updating a bank account.
// Sequence is deliberately absent: ordering changes only via the reorder endpoint.
type UpdateBankAccountRequest struct {
	Name         *string                      `json:"name" binding:"omitempty,max=128"`
	HolderName   *string                      `json:"holderName" binding:"omitempty,max=128"`
	CurrencyCode *string                      `json:"currencyCode" binding:"omitempty,len=3,uppercase"`
	IBAN         *string                      `json:"iban" binding:"omitempty,max=34"`
	SwiftBIC     *string                      `json:"swiftBIC" binding:"omitempty,max=11"`
	Direction    *domain.BankAccountDirection `json:"direction" binding:"omitempty,oneof=SENDER RECEIVER BOTH"`
	Note         *string                      `json:"note" binding:"omitempty,max=512"`
}

// ReorderBankAccountRequest moves an account to a new position in the user's ordering.
type ReorderBankAccountRequest struct {
	NewPosition int `json:"newPosition" binding:"required,min=1"`
}

// BankAccountResponse defines the structure for API responses containing bank account details.
type BankAccountResponse struct {
	BankAccountID string                      `json:"bankAccountID"`
	UserID        string                      `json:"userID"`
	Name          string                      `json:"name"`
	HolderName    string                      `json:"holderName"`
	CurrencyCode  string                      `json:"currencyCode"`
	IBAN          *string                     `json:"iban,omitempty"`
	SwiftBIC      string                      `json:"swiftBIC"`
	Direction     domain.BankAccountDirection `json:"direction"`
	Sequence      int                         `json:"sequence"`
	Note          string                      `json:"note"`
	CreatedAt     time.Time                   `json:"createdAt"`
	LastUpdatedAt time.Time                   `json:"lastUpdatedAt"`
}

// ToBankAccountResponse converts a domain.BankAccount to BankAccountResponse DTO
func ToBankAccountResponse(account *domain.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		BankAccountID: account.BankAccountID,
		UserID:        account.UserID,
		Name:          account.Name,
		HolderName:    account.HolderName,
		CurrencyCode:  account.CurrencyCode,
		IBAN:          account.IBAN,
		SwiftBIC:      account.SwiftBIC,
		Direction:     account.Direction,
		Sequence:      account.Sequence,
		Note:          account.Note,
		CreatedAt:     account.CreatedAt,
		LastUpdatedAt: account.LastUpdatedAt,
	}
}

// ToListBankAccountResponse converts a slice of domain.BankAccount to response DTOs,
// preserving sequence order.
func ToListBankAccountResponse(accounts []domain.BankAccount) []BankAccountResponse {
	responses := make([]BankAccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToBankAccountResponse(&accounts[i])
	}
	return responses
}
