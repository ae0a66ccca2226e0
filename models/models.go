package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Роль пользователя в системе
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleBuyer     Role = "Buyer"
	RoleBidder    Role = "Bidder"
	RoleEvaluator Role = "Evaluator"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleBuyer, RoleBidder, RoleEvaluator:
		return true
	default:
		return false
	}
}

// Статус тендера
type TenderStatus string

const (
	TenderDraft           TenderStatus = "Draft"
	TenderPendingApproval TenderStatus = "Pending Approval"
	TenderPublished       TenderStatus = "Published"
	TenderRejected        TenderStatus = "Rejected"
	TenderArchived        TenderStatus = "Archived"
)

// ValidTenderTarget проверяет, что статус допустим как цель явного перевода.
// Draft существует только как значение в БД, явно в него не переводят.
func ValidTenderTarget(s TenderStatus) bool {
	switch s {
	case TenderPendingApproval, TenderPublished, TenderRejected, TenderArchived:
		return true
	default:
		return false
	}
}

// Статус предложения
type BidStatus string

const (
	BidSubmitted BidStatus = "Submitted"
	BidLocked    BidStatus = "Locked"
)

// Cents — денежная сумма в минорных единицах (копейках),
// чтобы избежать накопления ошибок двоичной плавающей точки.
// В JSON сериализуется как десятичное число с двумя знаками.
type Cents int64

// Максимальная сумма предложения: 1 млрд в мажорных единицах.
const MaxBidAmount Cents = 100_000_000_000

func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%d.%02d", c/100, c%100)), nil
}

func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := ParseCents(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCents разбирает десятичную строку в минорные единицы.
// Допускается не более двух знаков после точки.
func ParseCents(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty amount")
	}
	whole, frac, _ := strings.Cut(s, ".")
	var major int64
	for _, ch := range whole {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		major = major*10 + int64(ch-'0')
		if major > 10_000_000_000 {
			return 0, fmt.Errorf("amount %q out of range", s)
		}
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	var minor int64
	for _, ch := range frac {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		minor = minor*10 + int64(ch-'0')
	}
	if len(frac) == 1 {
		minor *= 10
	}
	return Cents(major*100 + minor), nil
}

// Сущность Пользователя
type User struct {
	ID            int       `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	PasswordHash  string    `db:"password_hash" json:"-"`
	Role          Role      `db:"role" json:"role"`
	ContactNumber string    `db:"contact_number" json:"contactNumber"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// Сущность Организации (создается для покупателей при регистрации)
type Organization struct {
	ID           int    `db:"id" json:"id"`
	UserID       int    `db:"user_id" json:"userId"`
	Name         string `db:"name" json:"name"`
	ContactPhone string `db:"contact_phone" json:"contactPhone"`
	Address      string `db:"address" json:"address"`
}

// Сущность Тендера
type Tender struct {
	ID          int          `db:"id" json:"id"`
	UserID      int          `db:"user_id" json:"userId"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	IssueDate   time.Time    `db:"issue_date" json:"issueDate"`
	Deadline    time.Time    `db:"deadline" json:"deadline"`
	Status      TenderStatus `db:"status" json:"status"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
	BuyerName   string       `db:"buyer_name" json:"buyerName,omitempty"`
	Bids        []Bid        `db:"-" json:"bids,omitempty"`
}

// Сущность Предложения
type Bid struct {
	ID             int       `db:"id" json:"id"`
	TenderID       int       `db:"tender_id" json:"tenderId"`
	BidderID       int       `db:"bidder_id" json:"bidderId"`
	Amount         Cents     `db:"amount_cents" json:"amount"`
	SubmissionDate time.Time `db:"submission_date" json:"submissionDate"`
	Status         BidStatus `db:"status" json:"status"`
	TenderTitle    string    `db:"tender_title" json:"tenderTitle,omitempty"`
}

// Сущность Оценки. После создания неизменяема.
type Evaluation struct {
	ID          int       `db:"id" json:"id"`
	BidID       int       `db:"bid_id" json:"bidId"`
	EvaluatorID int       `db:"evaluator_id" json:"evaluatorId"`
	Score       int       `db:"score" json:"score"`
	EvaluatedAt time.Time `db:"evaluated_at" json:"evaluatedAt"`
	BidAmount   Cents     `db:"bid_amount" json:"bidAmount,omitempty"`
	TenderTitle string    `db:"tender_title" json:"tenderTitle,omitempty"`
}

// Победитель — производная проекция: предложение со статусом Locked
// вместе с тендером, участником и средним баллом оценок.
// Единственное авторитетное представление победителя — Bid.Status == Locked.
type Winner struct {
	TenderID    int       `db:"tender_id" json:"tenderId"`
	TenderTitle string    `db:"tender_title" json:"tenderTitle"`
	Deadline    time.Time `db:"deadline" json:"deadline"`
	BidID       int       `db:"bid_id" json:"bidId"`
	Amount      Cents     `db:"amount_cents" json:"amount"`
	BidderID    int       `db:"bidder_id" json:"bidderId"`
	BidderName  string    `db:"bidder_name" json:"bidderName"`
	AvgScore    float64   `db:"avg_score" json:"avgScore"`
}

// Результат выбора победителя, возвращаемый клиенту.
type WinningBid struct {
	BidID      int     `db:"id" json:"bidId"`
	BidderID   int     `db:"bidder_id" json:"bidderId"`
	BidderName string  `db:"bidder_name" json:"bidderName"`
	Amount     Cents   `db:"amount_cents" json:"amount"`
	AvgScore   float64 `db:"-" json:"avgScore"`
}
