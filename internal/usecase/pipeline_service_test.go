package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	memcache "github.com/ntarasov/cloudpipe/internal/cache/memory"
	"github.com/ntarasov/cloudpipe/internal/domain"
	"github.com/ntarasov/cloudpipe/internal/pipeline"
	"github.com/ntarasov/cloudpipe/internal/ports"
	"github.com/ntarasov/cloudpipe/internal/ports/mocks"
	"github.com/ntarasov/cloudpipe/internal/usecase"
	"github.com/ntarasov/cloudpipe/pkg/validate"
)

const processedBucket = "processed-bucket"

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

type deps struct {
	repo      *mocks.MockEventRepository
	storage   *mocks.MockObjectStorage
	queue     *mocks.MockMessageQueue
	validator *mocks.MockEventValidator
}

func newService(t *testing.T) (*usecase.PipelineService, deps) {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := deps{
		repo:      mocks.NewMockEventRepository(ctrl),
		storage:   mocks.NewMockObjectStorage(ctrl),
		queue:     mocks.NewMockMessageQueue(ctrl),
		validator: mocks.NewMockEventValidator(ctrl),
	}
	// Настоящий кэш вместо мока: дешёвый, детерминированный, без внешних зависимостей.
	svc := usecase.NewPipelineService(d.repo, memcache.NewDedupCache(128, time.Minute),
		d.storage, d.queue, noopLogger{}, d.validator, processedBucket)
	return svc, d
}

func rawUploadEvent(t *testing.T) (domain.Event, []byte) {
	t.Helper()
	ev := domain.Event{
		EventID:   "evt-1",
		Type:      domain.EventRawDataUploaded,
		Bucket:    "raw-bucket",
		Filename:  "raw/employees_20240101_120000.csv",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return ev, raw
}

func sampleCSV(t *testing.T) []byte {
	t.Helper()
	raw, err := pipeline.EncodeEmployees([]domain.Employee{
		{EmployeeID: 1, Name: "Alice", Department: "IT", Salary: 45000, JoinDate: "2021-03-15", PerformanceScore: 4.5},
		{EmployeeID: 2, Name: "Bob", Department: "HR", Salary: 85000, JoinDate: "2019-06-01", PerformanceScore: 3.2},
	})
	if err != nil {
		t.Fatalf("encode csv: %v", err)
	}
	return raw
}

func TestProcessMessage_InvalidJson(t *testing.T) {
	svc, _ := newService(t)

	err := svc.ProcessMessage(context.Background(), []byte("{not json"))
	if !errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("want ErrInvalidEvent, got %v", err)
	}
}

func TestProcessMessage_UnknownField(t *testing.T) {
	svc, _ := newService(t)

	raw := []byte(`{"event_id":"e1","event_type":"RAW_DATA_UPLOADED","timestamp":"2024-01-01T00:00:00Z","extra":"field"}`)
	err := svc.ProcessMessage(context.Background(), raw)
	if !errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("want ErrInvalidEvent, got %v", err)
	}
}

func TestProcessMessage_TrailingData(t *testing.T) {
	svc, _ := newService(t)

	raw := []byte(`{"event_id":"e1","event_type":"RAW_DATA_UPLOADED","timestamp":"2024-01-01T00:00:00Z"}{"x":1}`)
	err := svc.ProcessMessage(context.Background(), raw)
	if err == nil || !strings.Contains(err.Error(), "trailing data") {
		t.Fatalf("want trailing data error, got %v", err)
	}
}

func TestProcessMessage_ValidationFailed(t *testing.T) {
	svc, d := newService(t)
	_, raw := rawUploadEvent(t)

	d.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(validate.ErrInvalidEvent)

	err := svc.ProcessMessage(context.Background(), raw)
	if !errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("want ErrInvalidEvent, got %v", err)
	}
}

func TestProcessMessage_DuplicateSkipsWork(t *testing.T) {
	svc, d := newService(t)
	_, raw := rawUploadEvent(t)

	d.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(nil)
	d.repo.EXPECT().AlreadyProcessed(gomock.Any(), "evt-1").Return(true, nil)
	// Никаких обращений к storage/queue/Apply — дубль подтверждается без работы.

	if err := svc.ProcessMessage(context.Background(), raw); err != nil {
		t.Fatalf("duplicate must be acked without error, got %v", err)
	}
}

func TestProcessMessage_RawUpload_Success(t *testing.T) {
	svc, d := newService(t)
	ev, raw := rawUploadEvent(t)

	d.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(nil)
	d.repo.EXPECT().AlreadyProcessed(gomock.Any(), "evt-1").Return(false, nil)
	d.storage.EXPECT().Get(gomock.Any(), ev.Bucket, ev.Filename).Return(sampleCSV(t), nil)

	outKey := pipeline.ProcessedKeyFor(ev.Filename)
	d.storage.EXPECT().Put(gomock.Any(), processedBucket, outKey, gomock.Any(), "text/csv").Return(nil)
	d.storage.EXPECT().Put(gomock.Any(), processedBucket, pipeline.StatsObjectKey, gomock.Any(), "text/csv").Return(nil)

	// Производное событие: детерминированный id и тип DATA_PROCESSED.
	d.queue.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, body []byte) (string, error) {
			var derived domain.Event
			if err := json.Unmarshal(body, &derived); err != nil {
				t.Fatalf("derived event is not json: %v", err)
			}
			if derived.EventID != "processed-evt-1" {
				t.Fatalf("derived event id: %s", derived.EventID)
			}
			if derived.Type != domain.EventDataProcessed {
				t.Fatalf("derived event type: %s", derived.Type)
			}
			if derived.OutputFile != outKey {
				t.Fatalf("derived output file: %s", derived.OutputFile)
			}
			return "msg-id", nil
		})

	d.repo.EXPECT().Apply(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, applied *domain.Event, stats []domain.DepartmentStat) (bool, error) {
			if applied.EventID != "evt-1" {
				t.Fatalf("apply event id: %s", applied.EventID)
			}
			if applied.RecordCount != 2 {
				t.Fatalf("apply record count: %d", applied.RecordCount)
			}
			if len(stats) != 2 {
				t.Fatalf("want 2 departments, got %d", len(stats))
			}
			return true, nil
		})

	if err := svc.ProcessMessage(context.Background(), raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProcessMessage_RawUpload_ObjectMissing_Retryable(t *testing.T) {
	svc, d := newService(t)
	ev, raw := rawUploadEvent(t)

	d.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(nil)
	d.repo.EXPECT().AlreadyProcessed(gomock.Any(), "evt-1").Return(false, nil)
	d.storage.EXPECT().Get(gomock.Any(), ev.Bucket, ev.Filename).Return(nil, ports.ErrObjectNotFound)

	err := svc.ProcessMessage(context.Background(), raw)
	if err == nil {
		t.Fatal("want error for missing source object")
	}
	// Отсутствие объекта — временная проблема, не повод для DLQ.
	if errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("missing object must stay retryable, got %v", err)
	}
}

func TestProcessMessage_RawUpload_MalformedCSV_Permanent(t *testing.T) {
	svc, d := newService(t)
	ev, raw := rawUploadEvent(t)

	d.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(nil)
	d.repo.EXPECT().AlreadyProcessed(gomock.Any(), "evt-1").Return(false, nil)
	d.storage.EXPECT().Get(gomock.Any(), ev.Bucket, ev.Filename).Return([]byte("definitely,not\nemployees,csv\n"), nil)

	err := svc.ProcessMessage(context.Background(), raw)
	if !errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("malformed csv must be permanent, got %v", err)
	}
}

func TestProcessMessage_RawUpload_LostRace_AcksQuietly(t *testing.T) {
	svc, d := newService(t)
	ev, raw := rawUploadEvent(t)

	d.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(nil)
	d.repo.EXPECT().AlreadyProcessed(gomock.Any(), "evt-1").Return(false, nil)
	d.storage.EXPECT().Get(gomock.Any(), ev.Bucket, ev.Filename).Return(sampleCSV(t), nil)
	d.storage.EXPECT().Put(gomock.Any(), processedBucket, gomock.Any(), gomock.Any(), "text/csv").Return(nil).Times(2)
	d.queue.EXPECT().Send(gomock.Any(), gomock.Any()).Return("msg-id", nil)
	// Параллельный воркер успел первым — Apply сообщает, что запись уже есть.
	d.repo.EXPECT().Apply(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	if err := svc.ProcessMessage(context.Background(), raw); err != nil {
		t.Fatalf("lost race must still ack, got %v", err)
	}
}

func TestProcessMessage_RawUpload_ApplyError_NoAck(t *testing.T) {
	svc, d := newService(t)
	ev, raw := rawUploadEvent(t)

	d.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(nil)
	d.repo.EXPECT().AlreadyProcessed(gomock.Any(), "evt-1").Return(false, nil)
	d.storage.EXPECT().Get(gomock.Any(), ev.Bucket, ev.Filename).Return(sampleCSV(t), nil)
	d.storage.EXPECT().Put(gomock.Any(), processedBucket, gomock.Any(), gomock.Any(), "text/csv").Return(nil).Times(2)
	d.queue.EXPECT().Send(gomock.Any(), gomock.Any()).Return("msg-id", nil)
	d.repo.EXPECT().Apply(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("db down"))

	err := svc.ProcessMessage(context.Background(), raw)
	if err == nil || errors.Is(err, validate.ErrInvalidEvent) {
		t.Fatalf("apply failure must stay retryable, got %v", err)
	}
}

func TestProcessMessage_DataProcessed_RecordsOnly(t *testing.T) {
	svc, d := newService(t)

	ev := domain.Event{
		EventID:     "processed-evt-1",
		Type:        domain.EventDataProcessed,
		Bucket:      processedBucket,
		InputFile:   "raw/employees.csv",
		OutputFile:  "processed/processed_employees.csv",
		Timestamp:   time.Date(2024, 1, 1, 12, 0, 5, 0, time.UTC),
		RecordCount: 100,
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	d.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(nil)
	d.repo.EXPECT().AlreadyProcessed(gomock.Any(), "processed-evt-1").Return(false, nil)
	d.repo.EXPECT().Apply(gomock.Any(), gomock.Any(), gomock.Nil()).Return(true, nil)
	// Никаких обращений к storage — событие только фиксируется.

	if err := svc.ProcessMessage(context.Background(), raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProcessMessage_NoEventID_HashFallback(t *testing.T) {
	svc, d := newService(t)

	raw := []byte(`{"event_type":"NEW_S3_FILE","bucket":"raw-bucket","filename":"raw/x.csv","timestamp":"2024-01-01T00:00:00Z"}`)

	var gotID string
	d.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ev *domain.Event) error {
			gotID = ev.EventID
			return nil
		})
	d.repo.EXPECT().AlreadyProcessed(gomock.Any(), gomock.Any()).Return(false, nil)
	d.repo.EXPECT().Apply(gomock.Any(), gomock.Any(), gomock.Nil()).Return(true, nil)

	if err := svc.ProcessMessage(context.Background(), raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// sha256 в hex — 64 символа; одно и то же тело даёт один и тот же id.
	if len(gotID) != 64 {
		t.Fatalf("want sha256 hex id, got %q", gotID)
	}

	// Повторная доставка того же тела даёт тот же id — дубль отсекается
	// кэшем, без повторного похода в репозиторий.
	d.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(nil)
	if err := svc.ProcessMessage(context.Background(), raw); err != nil {
		t.Fatalf("unexpected error on redelivery: %v", err)
	}
}

func TestProcessMessage_CacheHit_SkipsRepo(t *testing.T) {
	svc, d := newService(t)
	_, raw := rawUploadEvent(t)

	// Первая доставка: дубль по данным БД — id попадает в кэш.
	d.validator.EXPECT().Validate(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	d.repo.EXPECT().AlreadyProcessed(gomock.Any(), "evt-1").Return(true, nil)

	if err := svc.ProcessMessage(context.Background(), raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Вторая доставка: репозиторий больше не трогаем.
	if err := svc.ProcessMessage(context.Background(), raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
