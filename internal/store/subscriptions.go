package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-console-backend/internal/model"
	"hotel-console-backend/internal/parse"
)

// PutSubscription creates or replaces a subscription and its watch list.
// Vehicle numbers are stored in canonical form.
func (s *gormStore) PutSubscription(ctx context.Context, sub model.PushSubscription, vehicleNumbers []string) error {
	seen := make(map[string]bool, len(vehicleNumbers))
	watched := make([]model.WatchedVehicle, 0, len(vehicleNumbers))
	for _, raw := range vehicleNumbers {
		vn := parse.NormalizeVehicleNumber(raw)
		if vn == "" || seen[vn] {
			continue
		}
		seen[vn] = true
		watched = append(watched, model.WatchedVehicle{Endpoint: sub.Endpoint, VehicleNumber: vn})
	}
	sub.WatchedVehicles = nil

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "all_exits"}),
		}).Create(&sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}
		if err := tx.Where("endpoint = ?", sub.Endpoint).Delete(&model.WatchedVehicle{}).Error; err != nil {
			return fmt.Errorf("failed to clear watch list: %w", err)
		}
		if len(watched) > 0 {
			if err := tx.Create(&watched).Error; err != nil {
				return fmt.Errorf("failed to save watch list: %w", err)
			}
		}
		return nil
	})
}

// GetSubscription loads a subscription with its watch list.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("WatchedVehicles").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	return &sub, nil
}

// DeleteSubscription removes a subscription and its watch list.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint = ?", endpoint).Delete(&model.WatchedVehicle{}).Error; err != nil {
			return err
		}
		return tx.Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error
	})
}

// SubscribersFor returns the subscriptions to notify when vehicleNumber exits.
func (s *gormStore) SubscribersFor(ctx context.Context, vehicleNumber string) ([]model.PushSubscription, error) {
	db := s.db.WithContext(ctx)
	watching := db.Model(&model.WatchedVehicle{}).
		Select("endpoint").
		Where("vehicle_number = ?", parse.NormalizeVehicleNumber(vehicleNumber))

	var subs []model.PushSubscription
	if err := db.Where("all_exits = ?", true).Or("endpoint IN (?)", watching).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscribers for %s: %w", vehicleNumber, err)
	}
	return subs, nil
}
