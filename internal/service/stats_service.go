package service

import (
	"context"

	"flight-booking/internal/model"
	"flight-booking/internal/repository"
)

type StatsService interface {
	// Overview 後台儀表板用的營收總覽
	Overview(ctx context.Context) (*model.Statistics, error)
}

type StatsServiceImpl struct {
	repository repository.StatsRepository
}

func NewStatsService(repository repository.StatsRepository) StatsService {
	return &StatsServiceImpl{
		repository: repository,
	}
}

func (s *StatsServiceImpl) Overview(ctx context.Context) (*model.Statistics, error) {
	monthTotal, err := s.repository.CurrentMonthRevenue(ctx)
	if err != nil {
		return nil, err
	}
	yearTotal, err := s.repository.CurrentYearRevenue(ctx)
	if err != nil {
		return nil, err
	}
	daily, err := s.repository.DailyRevenue(ctx, 30)
	if err != nil {
		return nil, err
	}
	monthly, err := s.repository.MonthlyRevenue(ctx, 12)
	if err != nil {
		return nil, err
	}
	yearly, err := s.repository.YearlyRevenue(ctx)
	if err != nil {
		return nil, err
	}

	return &model.Statistics{
		TotalRevenueCurrentMonth: monthTotal,
		TotalRevenueCurrentYear:  yearTotal,
		DailyRevenueLast30Days:   daily,
		MonthlyRevenue:           monthly,
		YearlyRevenue:            yearly,
	}, nil
}
