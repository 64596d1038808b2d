package service

import (
	"context"
	"fmt"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/logger"
	"equipshare-backend/internal/repository"
)

type categoryLimitService struct {
	limitRepo    repository.CategoryLimitRepository
	loanRepo     repository.LoanRepository
	settingsRepo repository.SettingsRepository
}

func NewCategoryLimitService(
	limitRepo repository.CategoryLimitRepository,
	loanRepo repository.LoanRepository,
	settingsRepo repository.SettingsRepository,
) CategoryLimitService {
	return &categoryLimitService{
		limitRepo:    limitRepo,
		loanRepo:     loanRepo,
		settingsRepo: settingsRepo,
	}
}

// Check resolves the effective limit (explicit record, else the
// system-wide default) and compares it against the user's current
// borrowed count in the category. Infrastructure errors fail open:
// borrowing must not be blocked by a transient read failure, so the check
// allows and surfaces the error in Message.
func (s *categoryLimitService) Check(ctx context.Context, userID, category string) (*LimitCheckResult, error) {
	limit, err := s.effectiveLimit(ctx, category)
	if err != nil {
		logger.Warn("Category limit check failed open", "user", userID, "category", category, "error", err)
		return &LimitCheckResult{
			Allowed: true,
			Limit:   -1,
			Message: fmt.Sprintf("limit check unavailable: %v", err),
		}, nil
	}

	if limit == 0 {
		return &LimitCheckResult{
			Allowed: false,
			Limit:   0,
			Message: fmt.Sprintf("borrowing is disabled for category %q", category),
		}, nil
	}

	count, err := s.loanRepo.CountBorrowedInCategory(ctx, userID, category)
	if err != nil {
		logger.Warn("Category limit check failed open", "user", userID, "category", category, "error", err)
		return &LimitCheckResult{
			Allowed: true,
			Limit:   limit,
			Message: fmt.Sprintf("limit check unavailable: %v", err),
		}, nil
	}

	if count >= limit {
		return &LimitCheckResult{
			Allowed:      false,
			CurrentCount: count,
			Limit:        limit,
			Message:      fmt.Sprintf("category limit reached: %d of %d items borrowed", count, limit),
		}, nil
	}
	return &LimitCheckResult{Allowed: true, CurrentCount: count, Limit: limit}, nil
}

func (s *categoryLimitService) effectiveLimit(ctx context.Context, category string) (int, error) {
	cl, err := s.limitRepo.Get(ctx, category)
	if err == nil {
		return cl.Limit, nil
	}
	if !domain.IsNotFound(err) {
		return 0, err
	}
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.DefaultSettings().DefaultCategoryLimit, nil
		}
		return 0, err
	}
	return settings.DefaultCategoryLimit, nil
}
