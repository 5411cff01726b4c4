package models

// TransactionResponse is the envelope Paystack wraps every transaction lookup in
type TransactionResponse struct {
	Status  bool         `json:"status"`
	Message string       `json:"message"`
	Data    *Transaction `json:"data"`
}

// Transaction represents a Paystack transaction record
type Transaction struct {
	ID        int64     `json:"id"`
	Reference string    `json:"reference"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Channel   string    `json:"channel"`
	PaidAt    string    `json:"paid_at"`
	CreatedAt string    `json:"created_at"`
	Customer  *Customer `json:"customer"`
}

// Customer represents the customer attached to a transaction
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
