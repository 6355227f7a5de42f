package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/center_scheduler/internal/model"
	"github.com/Freeeeeet/center_scheduler/internal/repository"
	"go.uber.org/zap"
)

// SlotService manages the time slot and duration catalogs.
type SlotService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewSlotService(store repository.Store, logger *zap.Logger) *SlotService {
	return &SlotService{
		store:  store,
		logger: logger,
	}
}

// CreateSlot возвращает существующий слот, если время уже есть в каталоге.
func (s *SlotService) CreateSlot(ctx context.Context, at model.TimeOfDay) (*model.TimeSlot, error) {
	if !at.Valid() {
		return nil, invalidArg("time of day %d out of range", int(at))
	}

	slot := &model.TimeSlot{Time: at}
	if err := s.store.UpsertTimeSlot(ctx, slot); err != nil {
		return nil, fmt.Errorf("upsert time slot: %w", err)
	}

	s.logger.Info("Time slot saved", zap.Int64("slot_id", slot.ID), zap.Stringer("time", slot.Time))
	return slot, nil
}

func (s *SlotService) ListSlots(ctx context.Context) ([]*model.TimeSlot, error) {
	slots, err := s.store.ListTimeSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

func (s *SlotService) CreateDuration(ctx context.Context, name string, length time.Duration) (*model.Duration, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArg("duration name is required")
	}
	if length <= 0 {
		return nil, invalidArg("duration must be positive")
	}

	d := &model.Duration{Name: name, Length: length.Truncate(time.Second)}
	if d.Length <= 0 {
		return nil, invalidArg("duration must be at least one second")
	}
	if err := s.store.CreateDuration(ctx, d); err != nil {
		return nil, fmt.Errorf("create duration: %w", err)
	}

	s.logger.Info("Duration created", zap.Int64("duration_id", d.ID), zap.Duration("length", d.Length))
	return d, nil
}

func (s *SlotService) ListDurations(ctx context.Context) ([]*model.Duration, error) {
	durations, err := s.store.ListDurations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list durations: %w", err)
	}
	return durations, nil
}
