package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/a2n2k3p4/paysoncheckout-backend/models"
)

func (s *Store) LoadOption(ctx context.Context, name string) (*models.Option, error) {
	var opt models.Option
	if err := s.DB.WithContext(ctx).Where("name = ?", name).First(&opt).Error; err != nil {
		return nil, err
	}
	return &opt, nil
}

func (s *Store) SaveOption(ctx context.Context, opt *models.Option) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(opt).Error
}

// LoadSettings reads the gateway settings option. The first time it runs the
// option does not exist yet, so seed is persisted and returned.
func (s *Store) LoadSettings(ctx context.Context, seed models.GatewaySettings) (models.GatewaySettings, error) {
	opt, err := s.LoadOption(ctx, models.SettingsOptionName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.SaveOption(ctx, &models.Option{Name: models.SettingsOptionName, Value: seed.Option()}); err != nil {
			return models.GatewaySettings{}, err
		}
		return seed, nil
	}
	if err != nil {
		return models.GatewaySettings{}, err
	}
	return models.SettingsFromOption(opt.Value), nil
}
