package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"tenderhub/models"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// User (Пользователь)

func (s *Storage) CreateUser(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO users (name, email, password_hash, role, contact_number)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query,
		u.Name, u.Email, u.PasswordHash, u.Role, u.ContactNumber).
		Scan(&u.ID, &u.CreatedAt)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	query := `SELECT * FROM users WHERE email=$1`
	err := s.db.GetContext(ctx, u, query, email)
	return u, err
}

func (s *Storage) GetUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	query := `SELECT id, name, email, password_hash, role, contact_number, created_at FROM users ORDER BY id ASC`
	err := s.db.SelectContext(ctx, &users, query)
	return users, err
}

func (s *Storage) UpdateUserRole(ctx context.Context, id int, role models.Role) error {
	query := `UPDATE users SET role=$1 WHERE id=$2`
	_, err := s.db.ExecContext(ctx, query, role, id)
	return err
}

func (s *Storage) DeleteUser(ctx context.Context, id int) error {
	query := `DELETE FROM users WHERE id=$1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}

// Organization (Организация)

func (s *Storage) CreateOrganization(ctx context.Context, o *models.Organization) error {
	query := `
        INSERT INTO organization (user_id, name, contact_phone, address)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	return s.db.QueryRowContext(ctx, query,
		o.UserID, o.Name, o.ContactPhone, o.Address).Scan(&o.ID)
}

// Tender (Тендер)

func (s *Storage) CreateTender(ctx context.Context, t *models.Tender) error {
	query := `
        INSERT INTO tender (user_id, title, description, issue_date, deadline, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	return s.db.QueryRowContext(ctx, query,
		t.UserID, t.Title, t.Description, t.IssueDate, t.Deadline, t.Status).
		Scan(&t.ID, &t.CreatedAt)
}

func (s *Storage) GetTender(ctx context.Context, id int) (*models.Tender, error) {
	t := &models.Tender{}
	query := `SELECT id, user_id, title, description, issue_date, deadline, status, created_at FROM tender WHERE id=$1`
	err := s.db.GetContext(ctx, t, query, id)
	return t, err
}

func (s *Storage) GetTendersByUser(ctx context.Context, userID int) ([]models.Tender, error) {
	tenders := []models.Tender{}
	query := `
        SELECT id, user_id, title, description, issue_date, deadline, status, created_at
        FROM tender
        WHERE user_id = $1
        ORDER BY created_at DESC`
	err := s.db.SelectContext(ctx, &tenders, query, userID)
	return tenders, err
}

// GetAvailableTenders возвращает опубликованные тендеры с именем покупателя.
func (s *Storage) GetAvailableTenders(ctx context.Context) ([]models.Tender, error) {
	tenders := []models.Tender{}
	query := `
        SELECT t.id, t.user_id, t.title, t.description, t.issue_date, t.deadline, t.status, t.created_at,
               u.name AS buyer_name
        FROM tender t
        JOIN users u ON t.user_id = u.id
        WHERE t.status = $1
        ORDER BY t.created_at DESC`
	err := s.db.SelectContext(ctx, &tenders, query, models.TenderPublished)
	return tenders, err
}

func (s *Storage) GetAllTenders(ctx context.Context) ([]models.Tender, error) {
	tenders := []models.Tender{}
	query := `
        SELECT t.id, t.user_id, t.title, t.description, t.issue_date, t.deadline, t.status, t.created_at,
               u.name AS buyer_name
        FROM tender t
        JOIN users u ON t.user_id = u.id
        ORDER BY t.created_at DESC`
	err := s.db.SelectContext(ctx, &tenders, query)
	return tenders, err
}

// UpdateTenderStatus переводит тендер в указанный статус.
// Возвращает false, если тендер не найден.
func (s *Storage) UpdateTenderStatus(ctx context.Context, id int, status models.TenderStatus) (bool, error) {
	query := `UPDATE tender SET status=$1 WHERE id=$2`
	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetExpiredPublishedTenders возвращает опубликованные тендеры,
// дедлайн которых уже прошел. Используется фоновой архивацией.
func (s *Storage) GetExpiredPublishedTenders(ctx context.Context, now time.Time) ([]models.Tender, error) {
	tenders := []models.Tender{}
	query := `
        SELECT id, user_id, title, description, issue_date, deadline, status, created_at
        FROM tender
        WHERE status = $1 AND deadline < $2
        ORDER BY deadline ASC`
	err := s.db.SelectContext(ctx, &tenders, query, models.TenderPublished, now)
	return tenders, err
}

// Bid (Предложение)

func (s *Storage) CreateBid(ctx context.Context, b *models.Bid) error {
	query := `
        INSERT INTO bid (tender_id, bidder_id, amount_cents, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, submission_date`
	return s.db.QueryRowContext(ctx, query,
		b.TenderID, b.BidderID, b.Amount, b.Status).
		Scan(&b.ID, &b.SubmissionDate)
}

func (s *Storage) GetBid(ctx context.Context, id int) (*models.Bid, error) {
	b := &models.Bid{}
	query := `SELECT id, tender_id, bidder_id, amount_cents, submission_date, status FROM bid WHERE id=$1`
	err := s.db.GetContext(ctx, b, query, id)
	return b, err
}

func (s *Storage) GetBidsByBidder(ctx context.Context, bidderID int) ([]models.Bid, error) {
	bids := []models.Bid{}
	query := `
        SELECT b.id, b.tender_id, b.bidder_id, b.amount_cents, b.submission_date, b.status,
               t.title AS tender_title
        FROM bid b
        JOIN tender t ON b.tender_id = t.id
        WHERE b.bidder_id = $1
        ORDER BY b.submission_date DESC`
	err := s.db.SelectContext(ctx, &bids, query, bidderID)
	return bids, err
}

func (s *Storage) GetBidsByTender(ctx context.Context, tenderID int) ([]models.Bid, error) {
	bids := []models.Bid{}
	query := `
        SELECT id, tender_id, bidder_id, amount_cents, submission_date, status
        FROM bid
        WHERE tender_id = $1
        ORDER BY submission_date DESC`
	err := s.db.SelectContext(ctx, &bids, query, tenderID)
	return bids, err
}

// GetBidForTender возвращает предложение вместе с именем участника,
// только если оно принадлежит указанному тендеру.
func (s *Storage) GetBidForTender(ctx context.Context, bidID, tenderID int) (*models.WinningBid, error) {
	wb := &models.WinningBid{}
	query := `
        SELECT b.id, b.bidder_id, b.amount_cents, u.name AS bidder_name
        FROM bid b
        JOIN users u ON b.bidder_id = u.id
        WHERE b.id = $1 AND b.tender_id = $2`
	err := s.db.GetContext(ctx, wb, query, bidID, tenderID)
	return wb, err
}

// Evaluation (Оценка)

func (s *Storage) CreateEvaluation(ctx context.Context, e *models.Evaluation) error {
	query := `
        INSERT INTO evaluation (bid_id, evaluator_id, score)
        VALUES ($1, $2, $3)
        RETURNING id, evaluated_at`
	return s.db.QueryRowContext(ctx, query,
		e.BidID, e.EvaluatorID, e.Score).
		Scan(&e.ID, &e.EvaluatedAt)
}

func (s *Storage) GetEvaluationsByEvaluator(ctx context.Context, evaluatorID int) ([]models.Evaluation, error) {
	evals := []models.Evaluation{}
	query := `
        SELECT e.id, e.bid_id, e.evaluator_id, e.score, e.evaluated_at,
               b.amount_cents AS bid_amount, t.title AS tender_title
        FROM evaluation e
        JOIN bid b ON e.bid_id = b.id
        JOIN tender t ON b.tender_id = t.id
        WHERE e.evaluator_id = $1
        ORDER BY e.evaluated_at DESC`
	err := s.db.SelectContext(ctx, &evals, query, evaluatorID)
	return evals, err
}

func (s *Storage) GetEvaluationsByBid(ctx context.Context, bidID int) ([]models.Evaluation, error) {
	evals := []models.Evaluation{}
	query := `
        SELECT id, bid_id, evaluator_id, score, evaluated_at
        FROM evaluation
        WHERE bid_id = $1
        ORDER BY evaluated_at DESC`
	err := s.db.SelectContext(ctx, &evals, query, bidID)
	return evals, err
}

// GetBidAverageScore возвращает средний балл оценок предложения,
// 0 — если оценок еще нет.
func (s *Storage) GetBidAverageScore(ctx context.Context, bidID int) (float64, error) {
	var avg float64
	query := `SELECT COALESCE(AVG(score), 0) FROM evaluation WHERE bid_id = $1`
	err := s.db.GetContext(ctx, &avg, query, bidID)
	return avg, err
}

// Winner (Победитель)

// SelectWinningBid атомарно фиксирует победителя: предложение переводится
// в Locked, тендер — в Archived. Обе записи выполняются в одной транзакции;
// при любой ошибке происходит полный откат, частичное состояние невозможно.
func (s *Storage) SelectWinningBid(ctx context.Context, tenderID, bidID int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE bid SET status=$1 WHERE id=$2`, models.BidLocked, bidID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE tender SET status=$1 WHERE id=$2`, models.TenderArchived, tenderID); err != nil {
		return err
	}
	return tx.Commit()
}

// GetAllWinners возвращает всех победителей с агрегированным средним баллом,
// упорядоченных по дедлайну тендера. Пустой список ошибкой не считается.
func (s *Storage) GetAllWinners(ctx context.Context) ([]models.Winner, error) {
	winners := []models.Winner{}
	query := `
        SELECT t.id AS tender_id, t.title AS tender_title, t.deadline,
               b.id AS bid_id, b.amount_cents,
               u.id AS bidder_id, u.name AS bidder_name,
               COALESCE((SELECT AVG(score) FROM evaluation e WHERE e.bid_id = b.id), 0) AS avg_score
        FROM tender t
        JOIN bid b ON t.id = b.tender_id
        JOIN users u ON b.bidder_id = u.id
        WHERE b.status = $1
        ORDER BY t.deadline DESC`
	err := s.db.SelectContext(ctx, &winners, query, models.BidLocked)
	return winners, err
}

// GetTenderWinner возвращает победителя одного тендера.
// sql.ErrNoRows — победитель еще не выбран.
func (s *Storage) GetTenderWinner(ctx context.Context, tenderID int) (*models.Winner, error) {
	w := &models.Winner{}
	query := `
        SELECT t.id AS tender_id, t.title AS tender_title, t.deadline,
               b.id AS bid_id, b.amount_cents,
               u.id AS bidder_id, u.name AS bidder_name,
               COALESCE((SELECT AVG(score) FROM evaluation e WHERE e.bid_id = b.id), 0) AS avg_score
        FROM tender t
        JOIN bid b ON t.id = b.tender_id
        JOIN users u ON b.bidder_id = u.id
        WHERE b.tender_id = $1 AND b.status = $2`
	err := s.db.GetContext(ctx, w, query, tenderID, models.BidLocked)
	return w, err
}

// IsNotFound сообщает, что запрошенной строки не существует.
func IsNotFound(err error) bool {
	return err == sql.ErrNoRows
}
