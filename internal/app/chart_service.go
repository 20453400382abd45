package app

import (
	"context"

	"healthvault/internal/chart"
	"healthvault/internal/domain"
)

// ChartService builds the BMI history plot for a user.
type ChartService struct {
	repo domain.BmiRepository
}

// NewChartService creates a ChartService backed by the given repository.
func NewChartService(repo domain.BmiRepository) *ChartService {
	return &ChartService{repo: repo}
}

// Graph returns the plot descriptor for the user's full BMI history.
func (s *ChartService) Graph(ctx context.Context, userID int64) (chart.Graph, error) {
	entries, err := s.repo.List(ctx, userID)
	if err != nil {
		return chart.Graph{}, err
	}
	return chart.Build(entries), nil
}
