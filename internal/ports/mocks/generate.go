//go:generate mockgen -source=../message_queue.go    -destination=./mock_message_queue.go    -package=mocks
//go:generate mockgen -source=../object_storage.go   -destination=./mock_object_storage.go   -package=mocks
//go:generate mockgen -source=../event_repository.go -destination=./mock_event_repository.go -package=mocks
//go:generate mockgen -source=../validator.go        -destination=./mock_validator.go        -package=mocks
//go:generate mockgen -source=../logger.go           -destination=./mock_logger.go           -package=mocks
//go:generate mockgen -source=../message_consumer.go -destination=./mock_message_consumer.go -package=mocks
//go:generate mockgen -source=../pipeline_read_service.go -destination=mock_pipeline_read_service.go -package=mocks
//go:generate mockgen -source=../dedup_cache.go      -destination=./mock_dedup_cache.go      -package=mocks

package mocks
