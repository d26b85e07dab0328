package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hotel-console-backend/internal/logger"
	"hotel-console-backend/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store defines the interface for all database operations.
type Store interface {
	ReplaceActivities(ctx context.Context, now time.Time, records []model.VehicleActivity) ([]model.ExitEvent, error)
	ListActivities(ctx context.Context) ([]model.VehicleActivity, error)

	PutSubscription(ctx context.Context, sub model.PushSubscription, vehicleNumbers []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscribersFor(ctx context.Context, vehicleNumber string) ([]model.PushSubscription, error)

	Ping(ctx context.Context) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// ReplaceActivities makes the snapshot equal to records in one transaction:
// unchanged rows are left alone, changed rows are updated, new rows are
// inserted and rows missing from records are deleted. It returns the
// vehicles that were parked in the previous snapshot and are now exited.
func (s *gormStore) ReplaceActivities(ctx context.Context, now time.Time, records []model.VehicleActivity) ([]model.ExitEvent, error) {
	current, err := s.fetchAllActivities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stored activities: %w", err)
	}

	var (
		exits   []model.ExitEvent
		created []model.ActivityRow
		changed []model.ActivityRow
	)
	for _, v := range records {
		row := model.NewActivityRow(v, now)
		old, exists := current[row.ID]
		if !exists {
			created = append(created, row)
			continue
		}
		delete(current, row.ID)

		if old.SameAs(row) {
			continue
		}
		changed = append(changed, row)
		if old.Status == string(model.StatusParked) && row.Status == string(model.StatusExited) {
			exits = append(exits, model.ExitEvent{
				ActivityID:    v.ID,
				VehicleNumber: v.VehicleNumber,
				GuestRoom:     v.GuestRoom,
				TotalAmount:   v.TotalAmount,
			})
		}
	}

	removed := make([]string, 0, len(current))
	for id := range current {
		removed = append(removed, id)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(created) > 0 {
			if err := tx.CreateInBatches(&created, 200).Error; err != nil {
				return fmt.Errorf("failed to insert %d activities: %w", len(created), err)
			}
		}
		for i := range changed {
			if err := tx.Save(&changed[i]).Error; err != nil {
				return fmt.Errorf("failed to update activity %s: %w", changed[i].ID, err)
			}
		}
		if len(removed) > 0 {
			if err := tx.Where("id IN ?", removed).Delete(&model.ActivityRow{}).Error; err != nil {
				return fmt.Errorf("failed to delete %d activities: %w", len(removed), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get(ctx).Infof("Snapshot updated: %d new, %d changed, %d removed, %d exits",
		len(created), len(changed), len(removed), len(exits))
	return exits, nil
}

// ListActivities returns the snapshot, newest entry first.
func (s *gormStore) ListActivities(ctx context.Context) ([]model.VehicleActivity, error) {
	var rows []model.ActivityRow
	if err := s.db.WithContext(ctx).Order("entry_time DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	out := make([]model.VehicleActivity, len(rows))
	for i, r := range rows {
		out[i] = r.Activity()
	}
	return out, nil
}

// Ping checks the database connection.
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *gormStore) fetchAllActivities(ctx context.Context) (map[string]model.ActivityRow, error) {
	var rows []model.ActivityRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	rowMap := make(map[string]model.ActivityRow, len(rows))
	for _, r := range rows {
		rowMap[r.ID] = r
	}
	return rowMap, nil
}
