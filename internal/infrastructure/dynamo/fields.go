package dynamo

// DynamoDB attribute names used in key and update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID        = "user_id"
	fieldEmail         = "email"
	fieldKind          = "kind"
	fieldVerified      = "verified"
	fieldPasswordHash  = "password_hash"
	fieldUpdatedAt     = "updated_at"
	fieldCategoryID    = "category_id"
	fieldTransactionID = "transaction_id"
	fieldDate          = "date"
	fieldOwnerID       = "owner_id"
	fieldTokenHash     = "token_hash"
)

// emailClaimPrefix marks items in the users table that reserve an email.
const emailClaimPrefix = "email#"

// Index names created by Bootstrap.
const (
	indexEmail          = "email-index"
	indexCategoryIDDate = "category_id-date-index"
)
