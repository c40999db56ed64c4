package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/ntarasov/cloudpipe/config"
	"github.com/ntarasov/cloudpipe/internal/awsx"
	"github.com/ntarasov/cloudpipe/internal/domain"
	"github.com/ntarasov/cloudpipe/internal/pipeline"
	sqsqueue "github.com/ntarasov/cloudpipe/internal/queue/sqs"
	s3storage "github.com/ntarasov/cloudpipe/internal/storage/s3"
)

// CLI-приложение для прогона пайплайна: генерирует тестовый CSV,
// кладёт его в raw-bucket и публикует событие RAW_DATA_UPLOADED.
func main() {
	n := flag.Int("n", 100, "number of employee records to generate")
	seed := flag.Int64("seed", 0, "random seed (0 = current time)")
	flag.Parse()

	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		fail("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	awsCfg, err := awsx.LoadConfig(ctx, cfg.Queue.Region, cfg.Queue.AccessKey, cfg.Queue.SecretKey)
	if err != nil {
		fail("aws config: %v", err)
	}

	store := s3storage.New(s3storage.NewClient(awsCfg, cfg.Storage.Endpoint))
	if err := store.EnsureBucket(ctx, cfg.Storage.RawBucket); err != nil {
		fail("ensure bucket: %v", err)
	}

	sqsClient := sqsqueue.NewClient(awsCfg, cfg.Queue.Endpoint)
	queueURL, err := sqsqueue.EnsureQueue(ctx, sqsClient, cfg.Queue.Name, cfg.Queue.VisibilityTimeout)
	if err != nil {
		fail("ensure queue: %v", err)
	}
	q := sqsqueue.New(sqsClient, queueURL, cfg.Queue.VisibilityTimeout)

	src := *seed
	if src == 0 {
		src = time.Now().UnixNano()
	}
	employees := pipeline.GenerateEmployees(*n, rand.New(rand.NewSource(src)))

	raw, err := pipeline.EncodeEmployees(employees)
	if err != nil {
		fail("encode csv: %v", err)
	}

	now := time.Now().UTC()
	key := pipeline.RawKeyFor(now)
	if err := store.Put(ctx, cfg.Storage.RawBucket, key, raw, "text/csv"); err != nil {
		fail("upload csv: %v", err)
	}

	ev := domain.Event{
		EventID:     uuid.New().String(),
		Type:        domain.EventRawDataUploaded,
		Bucket:      cfg.Storage.RawBucket,
		Filename:    key,
		Timestamp:   now,
		RecordCount: len(employees),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		fail("marshal event: %v", err)
	}
	msgID, err := q.Send(ctx, body)
	if err != nil {
		fail("send event: %v", err)
	}

	fmt.Printf("uploaded %d records to s3://%s/%s\n", len(employees), cfg.Storage.RawBucket, key)
	fmt.Printf("published %s event_id=%s message_id=%s\n", ev.Type, ev.EventID, msgID)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
