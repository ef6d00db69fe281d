package models

// Subscription is a single email subscription record
type Subscription struct {
	Email     string `json:"email" db:"email"`
	CreatedAt int64  `json:"created_at" db:"created_at"` // epoch milliseconds
}

// SubscribeRequest is the body of POST /subscriptions
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,min=1,max=256,email"`
}
