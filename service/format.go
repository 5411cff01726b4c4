package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"paystack-mcp-server/models"
)

// NoTransactionData is rendered when a response carries no usable transaction
const NoTransactionData = "No valid transaction data available."

const notAvailable = "N/A"

// FormatTransaction renders a transaction response as human-readable text
func FormatTransaction(resp *models.TransactionResponse) string {
	if resp == nil || !resp.Status || resp.Data == nil {
		return NoTransactionData
	}

	tx := resp.Data
	customer := tx.Customer
	if customer == nil {
		customer = &models.Customer{}
	}

	id := notAvailable
	if tx.ID != 0 {
		id = strconv.FormatInt(tx.ID, 10)
	}

	currency := tx.Currency
	if currency == "" {
		currency = "NGN"
	}

	var b strings.Builder
	b.WriteString("\nTransaction Details:\n")
	fmt.Fprintf(&b, "ID: %s\n", id)
	fmt.Fprintf(&b, "Reference: %s\n", orNA(tx.Reference))
	fmt.Fprintf(&b, "Amount: %s %s\n", decimal.New(tx.Amount, -2).StringFixed(2), currency)
	fmt.Fprintf(&b, "Status: %s\n", orNA(tx.Status))
	fmt.Fprintf(&b, "Channel: %s\n", orNA(tx.Channel))
	fmt.Fprintf(&b, "Paid At: %s\n", orNA(tx.PaidAt))
	fmt.Fprintf(&b, "Created At: %s\n", orNA(tx.CreatedAt))
	b.WriteString("Customer:\n")
	fmt.Fprintf(&b, "  Email: %s\n", orNA(customer.Email))
	fmt.Fprintf(&b, "  Name: %s %s\n", customer.FirstName, customer.LastName)

	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
