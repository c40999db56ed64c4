package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ntarasov/cloudpipe/internal/domain"
	"github.com/ntarasov/cloudpipe/internal/pipeline"
	"github.com/ntarasov/cloudpipe/internal/ports"
	"github.com/ntarasov/cloudpipe/pkg/metrics"
	"github.com/ntarasov/cloudpipe/pkg/validate"
)

// PipelineService — прикладная логика пайплайна (без знаний о транспорте).
// Обработка сообщения идемпотентна: ключи выходных объектов детерминированы,
// а фиксация в БД — атомарный check-and-set по event_id, поэтому повторная
// доставка того же сообщения не даёт дублей эффектов.
type PipelineService struct {
	repo      ports.EventRepository // прямой доступ к хранилищу
	cache     ports.DedupCache      // быстрый путь дедупликации
	storage   ports.ObjectStorage   // прямой доступ к объектному хранилищу
	queue     ports.MessageQueue    // публикация производных событий
	log       ports.Logger          // прямой доступ к логгеру
	validator ports.EventValidator  // прямой доступ к валидатору

	processedBucket string
}

// NewPipelineService — DI-конструктор.
func NewPipelineService(
	repo ports.EventRepository,
	cache ports.DedupCache,
	storage ports.ObjectStorage,
	queue ports.MessageQueue,
	log ports.Logger,
	validator ports.EventValidator,
	processedBucket string,
) *PipelineService {
	return &PipelineService{
		repo:            repo,
		cache:           cache,
		storage:         storage,
		queue:           queue,
		log:             log,
		validator:       validator,
		processedBucket: processedBucket,
	}
}

// ProcessMessage — обработать событие, пришедшее из очереди (raw JSON).
// Шаги:
//  1. строгий парсинг JSON (DisallowUnknownFields) —> отлавливаем незадокументированные поля;
//  2. идентичность: event_id из события, при отсутствии — sha256 тела;
//  3. доменная валидация (вернёт validate.ErrInvalidEvent при проблемах);
//  4. дедупликация: сперва LRU-кэш недавних id, затем inbox в БД —
//     дубль пропускаем без побочных эффектов;
//  5. побочные эффекты по типу события (все идемпотентные);
//  6. транзакционная фиксация в БД — финальный арбитр «обработано/нет».
//
// Ошибка возвращается только когда сообщение НЕ должно подтверждаться:
// вызывающая сторона по ней решает, удалять сообщение или оставить на повтор.
func (s *PipelineService) ProcessMessage(ctx context.Context, raw []byte) error {
	// Строгое декодирование: запрещаем неизвестные поля.
	var ev domain.Event
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		s.log.Warnf(ctx, "invalid json err=%v", err)
		return fmt.Errorf("invalid json: %w: %v", validate.ErrInvalidEvent, err)
	}

	// Убеждаемся, что после объекта нет лишних данных.
	if err := dec.Decode(new(struct{})); err != io.EOF {
		s.log.Warnf(ctx, "invalid json: trailing data")
		return fmt.Errorf("invalid json: trailing data: %w", validate.ErrInvalidEvent)
	}

	// Стабильная идентичность события: без event_id берём хэш тела,
	// чтобы повторная доставка того же сообщения узнавалась как дубль.
	if ev.EventID == "" {
		sum := sha256.Sum256(raw)
		ev.EventID = hex.EncodeToString(sum[:])
	}

	// Доменная валидация (известный тип, обязательные поля по типу).
	if err := s.validator.Validate(ctx, &ev); err != nil {
		s.log.Warnf(ctx, "validation failed event_id=%s err=%v", ev.EventID, err)
		return fmt.Errorf("validation failed: %w", err)
	}

	// Самый быстрый путь: событие недавно обрабатывалось этим процессом.
	if s.cache.Seen(ctx, ev.EventID) {
		s.log.Infof(ctx, "duplicate event skipped (cache) event_id=%s type=%s", ev.EventID, ev.Type)
		metrics.EventsDuplicate.WithLabelValues(string(ev.Type)).Inc()
		return nil
	}

	// Быстрый путь: событие уже учтено в БД — подтверждаем без работы.
	processed, err := s.repo.AlreadyProcessed(ctx, ev.EventID)
	if err != nil {
		s.log.Errorf(ctx, "repo.AlreadyProcessed failed event_id=%s err=%v", ev.EventID, err)
		return fmt.Errorf("check processed: %w", err)
	}
	if processed {
		s.cache.Mark(ctx, ev.EventID)
		s.log.Infof(ctx, "duplicate event skipped event_id=%s type=%s", ev.EventID, ev.Type)
		metrics.EventsDuplicate.WithLabelValues(string(ev.Type)).Inc()
		return nil
	}

	var handleErr error
	switch ev.Type {
	case domain.EventRawDataUploaded:
		handleErr = s.handleRawUpload(ctx, &ev)
	case domain.EventDataProcessed, domain.EventNewS3File:
		handleErr = s.recordEvent(ctx, &ev)
	default:
		// Валидатор пропускает только известные типы, сюда попадать не должны.
		return fmt.Errorf("unknown event type %q: %w", ev.Type, validate.ErrInvalidEvent)
	}
	if handleErr == nil {
		// Обработано (нами или параллельным воркером) — помечаем в кэше.
		s.cache.Mark(ctx, ev.EventID)
	}
	return handleErr
}

// handleRawUpload — основная ветка пайплайна: скачать сырой CSV,
// посчитать производные поля и агрегаты, выложить результаты,
// опубликовать DATA_PROCESSED и зафиксировать событие в БД.
func (s *PipelineService) handleRawUpload(ctx context.Context, ev *domain.Event) error {
	start := time.Now()

	body, err := s.storage.Get(ctx, ev.Bucket, ev.Filename)
	if err != nil {
		if errors.Is(err, ports.ErrObjectNotFound) {
			// Объект может ещё не успеть появиться — оставляем на повтор.
			s.log.Warnf(ctx, "source object not found yet bucket=%s key=%s", ev.Bucket, ev.Filename)
		} else {
			s.log.Errorf(ctx, "storage.Get failed bucket=%s key=%s err=%v", ev.Bucket, ev.Filename, err)
		}
		return fmt.Errorf("get source object: %w", err)
	}

	employees, err := pipeline.DecodeEmployees(body)
	if err != nil {
		// Битый файл не станет валидным от повторной доставки.
		s.log.Warnf(ctx, "malformed csv bucket=%s key=%s err=%v", ev.Bucket, ev.Filename, err)
		return fmt.Errorf("decode csv: %w: %v", validate.ErrInvalidEvent, err)
	}

	refYear := time.Now().UTC().Year()
	if !ev.Timestamp.IsZero() {
		refYear = ev.Timestamp.UTC().Year()
	}
	processed, stats, err := pipeline.Transform(employees, refYear)
	if err != nil {
		s.log.Warnf(ctx, "transform failed key=%s err=%v", ev.Filename, err)
		return fmt.Errorf("transform: %w: %v", validate.ErrInvalidEvent, err)
	}

	// Ключи выходных объектов детерминированы — повторная доставка
	// перезапишет те же объекты тем же содержимым.
	outKey := pipeline.ProcessedKeyFor(ev.Filename)
	processedCSV, err := pipeline.EncodeProcessed(processed)
	if err != nil {
		return fmt.Errorf("encode processed csv: %w", err)
	}
	if err := s.storage.Put(ctx, s.processedBucket, outKey, processedCSV, "text/csv"); err != nil {
		s.log.Errorf(ctx, "storage.Put failed bucket=%s key=%s err=%v", s.processedBucket, outKey, err)
		return fmt.Errorf("put processed object: %w", err)
	}

	statsCSV, err := pipeline.EncodeDepartmentStats(stats)
	if err != nil {
		return fmt.Errorf("encode stats csv: %w", err)
	}
	if err := s.storage.Put(ctx, s.processedBucket, pipeline.StatsObjectKey, statsCSV, "text/csv"); err != nil {
		s.log.Errorf(ctx, "storage.Put failed bucket=%s key=%s err=%v", s.processedBucket, pipeline.StatsObjectKey, err)
		return fmt.Errorf("put stats object: %w", err)
	}

	// Производное событие публикуем ДО фиксации в БД и с детерминированным
	// event_id: если упадём между публикацией и коммитом, повторная доставка
	// опубликует тот же id, и потребитель отсеет его как дубль.
	derived := domain.Event{
		EventID:     "processed-" + ev.EventID,
		Type:        domain.EventDataProcessed,
		Bucket:      s.processedBucket,
		InputFile:   ev.Filename,
		OutputFile:  outKey,
		Timestamp:   time.Now().UTC(),
		RecordCount: len(processed),
	}
	payload, err := json.Marshal(derived)
	if err != nil {
		return fmt.Errorf("marshal derived event: %w", err)
	}
	if _, err := s.queue.Send(ctx, payload); err != nil {
		s.log.Errorf(ctx, "queue.Send failed event_id=%s err=%v", derived.EventID, err)
		return fmt.Errorf("publish derived event: %w", err)
	}

	ev.RecordCount = len(processed)
	applied, err := s.repo.Apply(ctx, ev, stats)
	if err != nil {
		s.log.Errorf(ctx, "repo.Apply failed event_id=%s err=%v", ev.EventID, err)
		return fmt.Errorf("apply event: %w", err)
	}
	if !applied {
		// Параллельный воркер успел раньше — эффекты у него, у нас дубль.
		metrics.EventsDuplicate.WithLabelValues(string(ev.Type)).Inc()
		s.log.Infof(ctx, "event applied by another worker event_id=%s", ev.EventID)
		return nil
	}

	metrics.EventsApplied.WithLabelValues(string(ev.Type)).Inc()
	s.log.Infof(ctx, "raw file processed key=%s records=%d out=%s took=%s",
		ev.Filename, len(processed), outKey, time.Since(start))
	return nil
}

// recordEvent — события без тяжёлых побочных эффектов (DATA_PROCESSED,
// NEW_S3_FILE) просто фиксируются в inbox'е и каталоге.
func (s *PipelineService) recordEvent(ctx context.Context, ev *domain.Event) error {
	applied, err := s.repo.Apply(ctx, ev, nil)
	if err != nil {
		s.log.Errorf(ctx, "repo.Apply failed event_id=%s err=%v", ev.EventID, err)
		return fmt.Errorf("apply event: %w", err)
	}
	if !applied {
		metrics.EventsDuplicate.WithLabelValues(string(ev.Type)).Inc()
		s.log.Infof(ctx, "duplicate event skipped event_id=%s type=%s", ev.EventID, ev.Type)
		return nil
	}

	metrics.EventsApplied.WithLabelValues(string(ev.Type)).Inc()
	s.log.Infof(ctx, "event recorded event_id=%s type=%s", ev.EventID, ev.Type)
	return nil
}

// RecentEvents — проксирование в репозиторий (лимит уже валидирован на верхнем уровне).
func (s *PipelineService) RecentEvents(ctx context.Context, limit int) ([]*domain.Event, error) {
	return s.repo.RecentEvents(ctx, limit)
}

// DepartmentStats — текущие агрегаты по отделам из БД.
func (s *PipelineService) DepartmentStats(ctx context.Context) ([]domain.DepartmentStat, error) {
	return s.repo.DepartmentStats(ctx)
}

// ListFiles — список объектов в бакете по префиксу.
func (s *PipelineService) ListFiles(ctx context.Context, bucket, prefix string) ([]string, error) {
	return s.storage.List(ctx, bucket, prefix)
}
