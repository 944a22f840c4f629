package models

import "time"

// Approval status constants
const (
	ApprovalPending  = "pending"
	ApprovalAccepted = "accepted"
	ApprovalRejected = "rejected"
)

// Message status constants
const (
	MessageUnread = "unread"
	MessageRead   = "read"
)

// Payment status constants
const (
	PaymentPending    = "pending"
	PaymentSuccessful = "successful"
	PaymentCancelled  = "cancelled"
	PaymentFailed     = "failed"
)

// Request types

// Field names follow the browser client (camelCase).
type CreatePaymentRequest struct {
	ContestantID string `json:"contestantId"`
	Votes        int    `json:"votes"`
	Phone        string `json:"phone"`
	Name         string `json:"name"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateApprovalRequest struct {
	Status string `json:"status"`
}

// Response types

type PaymentLink struct {
	Link string `json:"link"`
}

type CreatePaymentResponse struct {
	Status        string      `json:"status"`
	Data          PaymentLink `json:"data"`
	TxRef         string      `json:"tx_ref"`
	Amount        int64       `json:"amount"`
	AmountDisplay string      `json:"amount_display"`
}

type WebhookResponse struct {
	OK        bool   `json:"ok"`
	TxRef     string `json:"tx_ref"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type VoteStatusResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	TxRef         string `json:"tx_ref,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

type CountdownResponse struct {
	Now              time.Time `json:"now"`
	Target           time.Time `json:"target"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	Hours            int64     `json:"hours"`
	Minutes          int64     `json:"minutes"`
	Seconds          int64     `json:"seconds"`
	Ended            bool      `json:"ended"`
}

type ContestantListResponse struct {
	Contestants []Contestant `json:"contestants"`
	TotalVotes  int64        `json:"total_votes"`
}

type CreatedResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type RegistrationInfoResponse struct {
	Open      bool `json:"open"`
	EventYear int  `json:"event_year"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RegistrationYearGroup struct {
	Year int            `json:"year"`
	Data []Registration `json:"data"`
}

type RegistrationDashboard struct {
	Counts   map[string]int          `json:"counts"`
	Pending  []RegistrationYearGroup `json:"pending"`
	Accepted []RegistrationYearGroup `json:"accepted"`
	Rejected []RegistrationYearGroup `json:"rejected"`
}

type MessageDashboard struct {
	Counts map[string]int `json:"counts"`
	Unread []Message      `json:"unread"`
	Read   []Message      `json:"read"`
}

type AdminSummary struct {
	Registrations      map[string]int `json:"registrations"`
	Messages           map[string]int `json:"messages"`
	TotalVotes         int64          `json:"total_votes"`
	SuccessfulPayments int            `json:"successful_payments"`
	Revenue            int64          `json:"revenue"`
	RevenueDisplay     string         `json:"revenue_display"`
}

type StatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type GalleryImage struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type GalleryResponse struct {
	Images []GalleryImage `json:"images"`
}

type GalleryUploadResponse struct {
	Uploaded []string `json:"uploaded"`
	Skipped  []string `json:"skipped"`
}

type PageResponse struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// Domain types

type Contestant struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ContestantNumber int       `json:"contestant_number"`
	State            string    `json:"state"`
	ImageURL         *string   `json:"image,omitempty"`
	Votes            int64     `json:"votes"`
	EventYear        int       `json:"event_year"`
	CreatedAt        time.Time `json:"created_at"`
}

type Registration struct {
	ID              string     `json:"id"`
	FullName        string     `json:"full_name"`
	Email           string     `json:"email"`
	WhatsappNumber  string     `json:"whatsapp_number"`
	Instagram       string     `json:"instagram"`
	Tiktok          string     `json:"tiktok"`
	Facebook        string     `json:"facebook"`
	Age             string     `json:"age"`
	Height          string     `json:"height"`
	WinnerResponse  string     `json:"winner_response"`
	State           string     `json:"state"`
	DOB             string     `json:"dob"`
	Address         string     `json:"address"`
	LGA             string     `json:"lga"`
	Student         string     `json:"student"`
	Health          string     `json:"health"`
	AddedInfo       string     `json:"added_info"`
	PortraitURL     string     `json:"portrait_url"`
	PaymentProofURL string     `json:"payment_proof_url"`
	ApprovalStatus  string     `json:"approval_status"`
	EventYear       int        `json:"event_year"`
	CreatedAt       time.Time  `json:"created_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

type Message struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Message   string     `json:"message"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

type Payment struct {
	TxRef        string     `json:"tx_ref"`
	ContestantID string     `json:"contestant_id"`
	Votes        int        `json:"votes"`
	Amount       int64      `json:"amount"`
	Currency     string     `json:"currency"`
	PayerName    *string    `json:"payer_name,omitempty"`
	PayerPhone   *string    `json:"payer_phone,omitempty"`
	Provider     string     `json:"provider"`
	ProviderTxID *string    `json:"provider_tx_id,omitempty"`
	Status       string     `json:"status"`
	IPHash       *string    `json:"-"` // Never expose in JSON
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
