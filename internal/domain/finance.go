package domain

import "time"

// Transaction statuses.
const (
	StatusProcessing = "Processing"
	StatusCompleted  = "Completed"
)

type Category struct {
	CategoryID string    `json:"id" dynamodbav:"category_id"`
	Name       string    `json:"name" dynamodbav:"name"`
	Default    bool      `json:"default" dynamodbav:"default"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CategoryInput struct {
	Name      string `json:"name" validate:"required"`
	IsDefault *bool  `json:"isDefault"`
}

// Transaction belongs to at most one category. CategoryID is cleared when its
// category is deleted.
type Transaction struct {
	TransactionID string    `json:"id" dynamodbav:"transaction_id"`
	CategoryID    *string   `json:"category" dynamodbav:"category_id,omitempty"`
	Description   string    `json:"description" dynamodbav:"description"`
	Amount        float64   `json:"amount" dynamodbav:"amount"`
	Status        string    `json:"status" dynamodbav:"status"`
	Date          time.Time `json:"date" dynamodbav:"date"`
}

type TransactionInput struct {
	CategoryID  *string  `json:"category"`
	Description string   `json:"description" validate:"required"`
	Amount      *float64 `json:"amount" validate:"required"`
	Status      string   `json:"status" validate:"required,oneof=Processing Completed"`
	Date        string   `json:"date"` // RFC 3339 or YYYY-MM-DD; defaults to now
}
