package dao

import (
	"fmt"
	"time"

	"github.com/jinzhu/gorm"

	"github.com/billyproject/billy/infra/db/model"
)

// CreateCallbackEvent inserts a callback event. The unique index on
// (processor, processor_event_id) is the backstop against two concurrent
// deliveries of the same event: the losing insert comes back as
// ErrDuplicateEvent.
func (d *dao) CreateCallbackEvent(payload *model.CallbackEvent) error {
	if err := d.db.Create(payload).Error; err != nil {
		if _, lookupErr := d.GetCallbackEventByProcessorID(payload.Processor, payload.ProcessorEventID); lookupErr == nil {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("failed to create callback event: %v", err)
	}
	return nil
}

func (d *dao) GetCallbackEventByProcessorID(processorName, processorEventID string) (model.CallbackEvent, error) {
	var event model.CallbackEvent
	err := d.db.
		Where("processor = ? AND processor_event_id = ?", processorName, processorEventID).
		First(&event).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return event, fmt.Errorf("event %s/%s: %w", processorName, processorEventID, ErrNotFound)
		}
		return event, fmt.Errorf("failed to fetch callback event: %w", err)
	}
	return event, nil
}

func (d *dao) GetCallbackEventByGUID(guid string) (model.CallbackEvent, error) {
	var event model.CallbackEvent
	if err := d.db.Where("guid = ?", guid).First(&event).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return event, fmt.Errorf("event %s: %w", guid, ErrNotFound)
		}
		return event, fmt.Errorf("failed to fetch callback event: %w", err)
	}
	return event, nil
}

func (d *dao) SetCallbackEventOutcome(guid, outcome string) error {
	err := d.db.Model(&model.CallbackEvent{}).
		Where("guid = ?", guid).
		Updates(map[string]interface{}{
			"outcome":      outcome,
			"process_time": time.Now().Unix(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set event outcome: %w", err)
	}
	return nil
}
