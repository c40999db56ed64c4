package validate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ntarasov/cloudpipe/internal/domain"
	"github.com/ntarasov/cloudpipe/internal/ports"
)

// Проверка, что EventValidator удовлетворяет порту EventValidator.
var _ ports.EventValidator = (*EventValidator)(nil)

// ErrInvalidEvent — базовая (sentinel error) ошибка валидации события.
// Консьюмер по ней отличает «мусор навсегда» от временных сбоев.
var ErrInvalidEvent = errors.New("event validation failed")

// EventValidator — валидация событий пайплайна.
type EventValidator struct{}

func NewEventValidator() *EventValidator { return &EventValidator{} }

// Validate — проверяет корректность полей события.
// Возвращает ErrInvalidEvent (с обёрнутой причиной) при любой проблеме.
func (v *EventValidator) Validate(_ context.Context, ev *domain.Event) error {
	if ev == nil {
		return fmt.Errorf("%w: событие не может быть nil", ErrInvalidEvent)
	}
	if ev.Type == "" {
		return fmt.Errorf("%w: event_type обязателен", ErrInvalidEvent)
	}
	if !ev.KnownType() {
		return fmt.Errorf("%w: неизвестный event_type %q", ErrInvalidEvent, ev.Type)
	}
	if ev.Timestamp.IsZero() || ev.Timestamp.Before(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)) {
		return fmt.Errorf("%w: timestamp некорректен", ErrInvalidEvent)
	}

	switch ev.Type {
	case domain.EventRawDataUploaded, domain.EventNewS3File:
		if ev.Bucket == "" {
			return fmt.Errorf("%w: bucket обязателен для %s", ErrInvalidEvent, ev.Type)
		}
		if strings.TrimSpace(ev.Filename) == "" {
			return fmt.Errorf("%w: filename обязателен для %s", ErrInvalidEvent, ev.Type)
		}
	case domain.EventDataProcessed:
		if ev.InputFile == "" || ev.OutputFile == "" {
			return fmt.Errorf("%w: input_file/output_file обязательны для %s", ErrInvalidEvent, ev.Type)
		}
	}

	if ev.RecordCount < 0 {
		return fmt.Errorf("%w: record_count не может быть отрицательным", ErrInvalidEvent)
	}
	return nil
}
