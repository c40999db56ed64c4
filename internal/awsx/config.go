// Пакет awsx — загрузка конфигурации AWS SDK для реального облака и
// LocalStack. Выбор окружения происходит здесь, на этапе конфигурации:
// дальше все слои работают через одни и те же клиенты без ветвлений
// «эмулятор или реальный сервис».
package awsx

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// LoadConfig — aws.Config с регионом и, при заданных ключах, статическими
// кредами (LocalStack принимает любые). Пустые ключи — стандартная цепочка
// провайдеров SDK (env, профиль, IMDS).
func LoadConfig(ctx context.Context, region, accessKey, secretKey string) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}
