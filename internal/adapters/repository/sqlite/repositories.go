package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/comitanigiacomo/neko-engine/internal/core/domain"
)

func (s *Store) Progress() domain.ProgressRepository        { return progressRepo{s.db} }
func (s *Store) Streaks() domain.StreakRepository           { return streakRepo{s.db} }
func (s *Store) Achievements() domain.AchievementRepository { return achievementRepo{s.db} }
func (s *Store) Tradelines() domain.TradelineRepository     { return tradelineRepo{s.db} }
func (s *Store) Layouts() domain.LayoutRepository           { return layoutRepo{s.db} }
func (s *Store) Profiles() domain.ProfileRepository         { return profileRepo{s.db} }

type progressRepo struct{ db *gorm.DB }

func (r progressRepo) ListByUser(ctx context.Context, userID string) ([]*domain.ProgressRecord, error) {
	var rows []progressRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("module, created_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sqlite: list progress: %w", err)
	}

	out := make([]*domain.ProgressRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toProgress(row))
	}
	return out, nil
}

func (r progressRepo) Get(ctx context.Context, userID string, module domain.ModuleID, step string) (*domain.ProgressRecord, error) {
	var row progressRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND module = ? AND step = ?", userID, string(module), step).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProgressNotFound
		}
		return nil, fmt.Errorf("sqlite: get progress: %w", err)
	}
	return toProgress(row), nil
}

func (r progressRepo) Upsert(ctx context.Context, record *domain.ProgressRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	row := fromProgress(record)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module"}, {Name: "step"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "notes", "metadata", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("sqlite: upsert progress: %w", err)
	}

	stored, err := r.Get(ctx, record.UserID, record.Module, record.Step)
	if err != nil {
		return err
	}
	record.ID = stored.ID
	record.CreatedAt = stored.CreatedAt
	return nil
}

type streakRepo struct{ db *gorm.DB }

func (r streakRepo) Get(ctx context.Context, userID string) (*domain.StreakState, error) {
	var row streakRow
	if err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrStreakNotFound
		}
		return nil, fmt.Errorf("sqlite: get streak: %w", err)
	}
	return toStreak(row), nil
}

func (r streakRepo) Save(ctx context.Context, state *domain.StreakState) error {
	row := fromStreak(state)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("sqlite: save streak: %w", err)
	}
	return nil
}

type achievementRepo struct{ db *gorm.DB }

func (r achievementRepo) ListEarned(ctx context.Context, userID string) ([]*domain.EarnedAchievement, error) {
	var rows []achievementRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("earned_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sqlite: list achievements: %w", err)
	}

	out := make([]*domain.EarnedAchievement, 0, len(rows))
	for _, row := range rows {
		meta := domain.Metadata{}
		_ = meta.Scan(row.Metadata)
		out = append(out, &domain.EarnedAchievement{
			ID:            row.ID,
			UserID:        row.UserID,
			AchievementID: row.AchievementID,
			EarnedAt:      row.EarnedAt,
			Metadata:      meta,
		})
	}
	return out, nil
}

func (r achievementRepo) Insert(ctx context.Context, e *domain.EarnedAchievement) (bool, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	row := achievementRow{
		ID:            e.ID,
		UserID:        e.UserID,
		AchievementID: e.AchievementID,
		EarnedAt:      e.EarnedAt,
		Metadata:      encodeJSON(e.Metadata, "{}"),
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("sqlite: insert achievement: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

type tradelineRepo struct{ db *gorm.DB }

func (r tradelineRepo) Create(ctx context.Context, t *domain.Tradeline) error {
	row := tradelineRow{
		ID:          t.ID,
		UserID:      t.UserID,
		VendorName:  t.VendorName,
		CreditLimit: t.CreditLimit,
		ReportsTo:   encodeJSON(t.ReportsTo, "[]"),
		OpenedAt:    t.OpenedAt,
		CreatedAt:   t.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("sqlite: create tradeline: %w", err)
	}
	return nil
}

func (r tradelineRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Tradeline, error) {
	var rows []tradelineRow
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sqlite: list tradelines: %w", err)
	}

	out := make([]*domain.Tradeline, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTradeline(row))
	}
	return out, nil
}

func (r tradelineRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&tradelineRow{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("sqlite: count tradelines: %w", err)
	}
	return int(n), nil
}

type layoutRepo struct{ db *gorm.DB }

func (r layoutRepo) Get(ctx context.Context, userID string) (*domain.WidgetLayout, error) {
	var row layoutRow
	if err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("sqlite: get layout: %w", err)
	}
	return toLayout(row), nil
}

func (r layoutRepo) Save(ctx context.Context, l *domain.WidgetLayout) error {
	row := layoutRow{
		UserID:        l.UserID,
		WidgetOrder:   encodeJSON(l.WidgetOrder, "[]"),
		HiddenWidgets: encodeJSON(l.HiddenWidgets, "[]"),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("sqlite: save layout: %w", err)
	}
	return nil
}

type profileRepo struct{ db *gorm.DB }

func (r profileRepo) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	var row profileRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("sqlite: get profile: %w", err)
	}
	return &domain.Profile{
		ID:        row.ID,
		Email:     row.Email,
		FullName:  row.FullName,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (r profileRepo) Upsert(ctx context.Context, p *domain.Profile) error {
	row := profileRow{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"email":      p.Email,
			"full_name":  gorm.Expr("COALESCE(excluded.full_name, profiles.full_name)"),
			"updated_at": p.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("sqlite: upsert profile: %w", err)
	}

	stored, err := r.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	p.FullName = stored.FullName
	p.CreatedAt = stored.CreatedAt
	return nil
}
