//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ntarasov/cloudpipe/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// UniqueName — уникальное имя для бакета/очереди на основе базового префикса.
// Только строчные буквы, цифры и дефисы — годится и для S3, и для SQS.
func UniqueName(base string) string {
	s := time.Now().UTC().Format("20060102T150405.000000000")
	s = strings.ReplaceAll(s, ".", "")
	return fmt.Sprintf("%s-%s", strings.ToLower(base), strings.ToLower(s))
}

// Мини-генератор валидного события загрузки сырых данных
func MakeEvent(opts ...func(*domain.Event)) domain.Event {
	now := time.Now().UTC().Truncate(time.Second)

	ev := domain.Event{
		EventID:     "evt-" + UniqSuffix(),
		Type:        domain.EventRawDataUploaded,
		Bucket:      "raw-data-bucket",
		Filename:    "raw/employees_" + now.Format("20060102_150405") + ".csv",
		Timestamp:   now,
		RecordCount: 10,
	}

	for _, fn := range opts {
		fn(&ev)
	}
	return ev
}

// Доп. опции для переопределения полей в тестах
func WithType(t domain.EventType) func(*domain.Event) {
	return func(ev *domain.Event) { ev.Type = t }
}

func WithEventID(id string) func(*domain.Event) {
	return func(ev *domain.Event) { ev.EventID = id }
}

func WithFile(bucket, filename string) func(*domain.Event) {
	return func(ev *domain.Event) {
		ev.Bucket = bucket
		ev.Filename = filename
	}
}

// MakeStats — пара агрегатов по отделам для проверки upsert'ов.
func MakeStats() []domain.DepartmentStat {
	return []domain.DepartmentStat{
		{Department: "HR", AvgSalary: 52000, MinSalary: 40000, MaxSalary: 64000, AvgPerformance: 3.4},
		{Department: "IT", AvgSalary: 67500, MinSalary: 45000, MaxSalary: 90000, AvgPerformance: 4.0},
	}
}
