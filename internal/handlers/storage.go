package handlers

import (
	"context"

	"tenderhub/models"
)

type StorageInterface interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id int, role models.Role) error
	DeleteUser(ctx context.Context, id int) error
	CreateOrganization(ctx context.Context, o *models.Organization) error

	CreateTender(ctx context.Context, t *models.Tender) error
	GetTender(ctx context.Context, id int) (*models.Tender, error)
	GetTendersByUser(ctx context.Context, userID int) ([]models.Tender, error)
	GetAvailableTenders(ctx context.Context) ([]models.Tender, error)
	GetAllTenders(ctx context.Context) ([]models.Tender, error)
	UpdateTenderStatus(ctx context.Context, id int, status models.TenderStatus) (bool, error)

	CreateBid(ctx context.Context, b *models.Bid) error
	GetBid(ctx context.Context, id int) (*models.Bid, error)
	GetBidsByBidder(ctx context.Context, bidderID int) ([]models.Bid, error)
	GetBidsByTender(ctx context.Context, tenderID int) ([]models.Bid, error)
	GetBidForTender(ctx context.Context, bidID, tenderID int) (*models.WinningBid, error)

	CreateEvaluation(ctx context.Context, e *models.Evaluation) error
	GetEvaluationsByEvaluator(ctx context.Context, evaluatorID int) ([]models.Evaluation, error)
	GetEvaluationsByBid(ctx context.Context, bidID int) ([]models.Evaluation, error)
	GetBidAverageScore(ctx context.Context, bidID int) (float64, error)

	SelectWinningBid(ctx context.Context, tenderID, bidID int) error
	GetAllWinners(ctx context.Context) ([]models.Winner, error)
	GetTenderWinner(ctx context.Context, tenderID int) (*models.Winner, error)
}
