package handlers_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"tenderhub/internal/handlers"
	"tenderhub/models"
)

// MockStorage реализует StorageInterface. Поведение каждого метода
// можно переопределить в тесте через соответствующее поле.
type MockStorage struct {
	CreateUserFunc         func(ctx context.Context, u *models.User) error
	GetUserByEmailFunc     func(ctx context.Context, email string) (*models.User, error)
	GetUsersFunc           func(ctx context.Context) ([]models.User, error)
	UpdateUserRoleFunc     func(ctx context.Context, id int, role models.Role) error
	DeleteUserFunc         func(ctx context.Context, id int) error
	CreateOrganizationFunc func(ctx context.Context, o *models.Organization) error

	CreateTenderFunc        func(ctx context.Context, t *models.Tender) error
	GetTenderFunc           func(ctx context.Context, id int) (*models.Tender, error)
	GetTendersByUserFunc    func(ctx context.Context, userID int) ([]models.Tender, error)
	GetAvailableTendersFunc func(ctx context.Context) ([]models.Tender, error)
	GetAllTendersFunc       func(ctx context.Context) ([]models.Tender, error)
	UpdateTenderStatusFunc  func(ctx context.Context, id int, status models.TenderStatus) (bool, error)

	CreateBidFunc       func(ctx context.Context, b *models.Bid) error
	GetBidFunc          func(ctx context.Context, id int) (*models.Bid, error)
	GetBidsByBidderFunc func(ctx context.Context, bidderID int) ([]models.Bid, error)
	GetBidsByTenderFunc func(ctx context.Context, tenderID int) ([]models.Bid, error)
	GetBidForTenderFunc func(ctx context.Context, bidID, tenderID int) (*models.WinningBid, error)

	CreateEvaluationFunc          func(ctx context.Context, e *models.Evaluation) error
	GetEvaluationsByEvaluatorFunc func(ctx context.Context, evaluatorID int) ([]models.Evaluation, error)
	GetEvaluationsByBidFunc       func(ctx context.Context, bidID int) ([]models.Evaluation, error)
	GetBidAverageScoreFunc        func(ctx context.Context, bidID int) (float64, error)

	SelectWinningBidFunc func(ctx context.Context, tenderID, bidID int) error
	GetAllWinnersFunc    func(ctx context.Context) ([]models.Winner, error)
	GetTenderWinnerFunc  func(ctx context.Context, tenderID int) (*models.Winner, error)
}

func (m *MockStorage) CreateUser(ctx context.Context, u *models.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, u)
	}
	u.ID = 1
	return nil
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	return nil, sql.ErrNoRows
}

func (m *MockStorage) GetUsers(ctx context.Context) ([]models.User, error) {
	if m.GetUsersFunc != nil {
		return m.GetUsersFunc(ctx)
	}
	return []models.User{{ID: 1, Name: "Admin", Role: models.RoleAdmin}}, nil
}

func (m *MockStorage) UpdateUserRole(ctx context.Context, id int, role models.Role) error {
	if m.UpdateUserRoleFunc != nil {
		return m.UpdateUserRoleFunc(ctx, id, role)
	}
	return nil
}

func (m *MockStorage) DeleteUser(ctx context.Context, id int) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return nil
}

func (m *MockStorage) CreateOrganization(ctx context.Context, o *models.Organization) error {
	if m.CreateOrganizationFunc != nil {
		return m.CreateOrganizationFunc(ctx, o)
	}
	o.ID = 1
	return nil
}

func (m *MockStorage) CreateTender(ctx context.Context, t *models.Tender) error {
	if m.CreateTenderFunc != nil {
		return m.CreateTenderFunc(ctx, t)
	}
	t.ID = 1
	return nil
}

func (m *MockStorage) GetTender(ctx context.Context, id int) (*models.Tender, error) {
	if m.GetTenderFunc != nil {
		return m.GetTenderFunc(ctx, id)
	}
	return &models.Tender{
		ID:       id,
		UserID:   1,
		Title:    "Test Tender",
		Status:   models.TenderPublished,
		Deadline: time.Now().AddDate(0, 0, 14),
	}, nil
}

func (m *MockStorage) GetTendersByUser(ctx context.Context, userID int) ([]models.Tender, error) {
	if m.GetTendersByUserFunc != nil {
		return m.GetTendersByUserFunc(ctx, userID)
	}
	return []models.Tender{{ID: 1, UserID: userID, Title: "User Tender"}}, nil
}

func (m *MockStorage) GetAvailableTenders(ctx context.Context) ([]models.Tender, error) {
	if m.GetAvailableTendersFunc != nil {
		return m.GetAvailableTendersFunc(ctx)
	}
	return []models.Tender{{ID: 1, Title: "Available Tender", Status: models.TenderPublished}}, nil
}

func (m *MockStorage) GetAllTenders(ctx context.Context) ([]models.Tender, error) {
	if m.GetAllTendersFunc != nil {
		return m.GetAllTendersFunc(ctx)
	}
	return []models.Tender{{ID: 1, Title: "Some Tender"}}, nil
}

func (m *MockStorage) UpdateTenderStatus(ctx context.Context, id int, status models.TenderStatus) (bool, error) {
	if m.UpdateTenderStatusFunc != nil {
		return m.UpdateTenderStatusFunc(ctx, id, status)
	}
	return true, nil
}

func (m *MockStorage) CreateBid(ctx context.Context, b *models.Bid) error {
	if m.CreateBidFunc != nil {
		return m.CreateBidFunc(ctx, b)
	}
	b.ID = 1
	return nil
}

func (m *MockStorage) GetBid(ctx context.Context, id int) (*models.Bid, error) {
	if m.GetBidFunc != nil {
		return m.GetBidFunc(ctx, id)
	}
	return &models.Bid{
		ID:       id,
		TenderID: 1,
		BidderID: 2,
		Amount:   500_00,
		Status:   models.BidSubmitted,
	}, nil
}

func (m *MockStorage) GetBidsByBidder(ctx context.Context, bidderID int) ([]models.Bid, error) {
	if m.GetBidsByBidderFunc != nil {
		return m.GetBidsByBidderFunc(ctx, bidderID)
	}
	return []models.Bid{{ID: 1, BidderID: bidderID, TenderTitle: "User Bid Tender"}}, nil
}

func (m *MockStorage) GetBidsByTender(ctx context.Context, tenderID int) ([]models.Bid, error) {
	if m.GetBidsByTenderFunc != nil {
		return m.GetBidsByTenderFunc(ctx, tenderID)
	}
	return []models.Bid{{ID: 2, TenderID: tenderID}}, nil
}

func (m *MockStorage) GetBidForTender(ctx context.Context, bidID, tenderID int) (*models.WinningBid, error) {
	if m.GetBidForTenderFunc != nil {
		return m.GetBidForTenderFunc(ctx, bidID, tenderID)
	}
	return &models.WinningBid{BidID: bidID, BidderID: 2, BidderName: "bidder", Amount: 500_00}, nil
}

func (m *MockStorage) CreateEvaluation(ctx context.Context, e *models.Evaluation) error {
	if m.CreateEvaluationFunc != nil {
		return m.CreateEvaluationFunc(ctx, e)
	}
	e.ID = 1
	return nil
}

func (m *MockStorage) GetEvaluationsByEvaluator(ctx context.Context, evaluatorID int) ([]models.Evaluation, error) {
	if m.GetEvaluationsByEvaluatorFunc != nil {
		return m.GetEvaluationsByEvaluatorFunc(ctx, evaluatorID)
	}
	return []models.Evaluation{{ID: 1, EvaluatorID: evaluatorID, Score: 7}}, nil
}

func (m *MockStorage) GetEvaluationsByBid(ctx context.Context, bidID int) ([]models.Evaluation, error) {
	if m.GetEvaluationsByBidFunc != nil {
		return m.GetEvaluationsByBidFunc(ctx, bidID)
	}
	return []models.Evaluation{{ID: 1, BidID: bidID, Score: 7}}, nil
}

func (m *MockStorage) GetBidAverageScore(ctx context.Context, bidID int) (float64, error) {
	if m.GetBidAverageScoreFunc != nil {
		return m.GetBidAverageScoreFunc(ctx, bidID)
	}
	return 0, nil
}

func (m *MockStorage) SelectWinningBid(ctx context.Context, tenderID, bidID int) error {
	if m.SelectWinningBidFunc != nil {
		return m.SelectWinningBidFunc(ctx, tenderID, bidID)
	}
	return nil
}

func (m *MockStorage) GetAllWinners(ctx context.Context) ([]models.Winner, error) {
	if m.GetAllWinnersFunc != nil {
		return m.GetAllWinnersFunc(ctx)
	}
	return []models.Winner{}, nil
}

func (m *MockStorage) GetTenderWinner(ctx context.Context, tenderID int) (*models.Winner, error) {
	if m.GetTenderWinnerFunc != nil {
		return m.GetTenderWinnerFunc(ctx, tenderID)
	}
	return nil, sql.ErrNoRows
}

const testSecret = "test-secret-key"

func newTestHandler(store *MockStorage) *handlers.Handler {
	return handlers.NewHandler(store, testSecret)
}

// authRequest создает запрос от имени пользователя с указанной ролью.
func authRequest(method, target, body string, userID int, role models.Role) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return handlers.WithUser(req, handlers.AuthUser{UserID: userID, Role: role})
}
