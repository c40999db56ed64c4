package domain

import "time"

// EventType — тип события пайплайна (поле event_type в JSON).
type EventType string

const (
	// EventRawDataUploaded — в raw-bucket загружен новый CSV с сырыми данными.
	EventRawDataUploaded EventType = "RAW_DATA_UPLOADED"
	// EventDataProcessed — сырые данные обработаны и выгружены в processed-bucket.
	EventDataProcessed EventType = "DATA_PROCESSED"
	// EventNewS3File — монитор хранилища обнаружил новый файл в bucket'е.
	EventNewS3File EventType = "NEW_S3_FILE"
)

// Event — событие пайплайна, приходящее из очереди (тело сообщения).
// EventID — стабильный бизнес-ключ события: одно и то же логическое событие
// при повторной доставке приходит с тем же EventID (receipt handle при этом
// будет другой — он живёт только в рамках одной доставки).
type Event struct {
	EventID     string    `json:"event_id"`
	Type        EventType `json:"event_type"`
	Bucket      string    `json:"bucket,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	InputFile   string    `json:"input_file,omitempty"`
	OutputFile  string    `json:"output_file,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	RecordCount int       `json:"record_count,omitempty"`
}

// KnownType — true для событий, которые сервис умеет обрабатывать.
func (e *Event) KnownType() bool {
	switch e.Type {
	case EventRawDataUploaded, EventDataProcessed, EventNewS3File:
		return true
	default:
		return false
	}
}
