package validate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ntarasov/cloudpipe/internal/domain"
	"github.com/ntarasov/cloudpipe/pkg/validate"
)

func validRawUpload() *domain.Event {
	return &domain.Event{
		EventID:     "evt-1",
		Type:        domain.EventRawDataUploaded,
		Bucket:      "raw-data-bucket",
		Filename:    "raw/employees_20240101_120000.csv",
		Timestamp:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		RecordCount: 50,
	}
}

func TestValidate_OK(t *testing.T) {
	v := validate.NewEventValidator()

	if err := v.Validate(context.Background(), validRawUpload()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NilEvent(t *testing.T) {
	v := validate.NewEventValidator()

	err := v.Validate(context.Background(), nil)
	if !errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("want ErrInvalidEvent, got %v", err)
	}
}

func TestValidate_UnknownType(t *testing.T) {
	v := validate.NewEventValidator()

	ev := validRawUpload()
	ev.Type = "SOMETHING_ELSE"

	if err := v.Validate(context.Background(), ev); !errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("want ErrInvalidEvent, got %v", err)
	}
}

func TestValidate_RawUpload_RequiresBucketAndFilename(t *testing.T) {
	v := validate.NewEventValidator()

	noBucket := validRawUpload()
	noBucket.Bucket = ""
	if err := v.Validate(context.Background(), noBucket); !errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("missing bucket: want ErrInvalidEvent, got %v", err)
	}

	noFile := validRawUpload()
	noFile.Filename = "   "
	if err := v.Validate(context.Background(), noFile); !errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("missing filename: want ErrInvalidEvent, got %v", err)
	}
}

func TestValidate_DataProcessed_RequiresFiles(t *testing.T) {
	v := validate.NewEventValidator()

	ev := &domain.Event{
		EventID:   "evt-2",
		Type:      domain.EventDataProcessed,
		InputFile: "raw/in.csv",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := v.Validate(context.Background(), ev); !errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("missing output_file: want ErrInvalidEvent, got %v", err)
	}

	ev.OutputFile = "processed/out.csv"
	if err := v.Validate(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_BadTimestampAndCount(t *testing.T) {
	v := validate.NewEventValidator()

	ev := validRawUpload()
	ev.Timestamp = time.Time{}
	if err := v.Validate(context.Background(), ev); !errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("zero timestamp: want ErrInvalidEvent, got %v", err)
	}

	ev = validRawUpload()
	ev.RecordCount = -1
	if err := v.Validate(context.Background(), ev); !errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("negative record_count: want ErrInvalidEvent, got %v", err)
	}
}
