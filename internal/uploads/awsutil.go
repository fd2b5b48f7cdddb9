package uploads

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	configv2 "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// NewAWSConfig loads AWS config for the region. When a LocalStack endpoint
// is set, static dummy creds are used (LocalStack accepts these).
func NewAWSConfig(ctx context.Context, region, localstackEndpoint string) (aws.Config, error) {
	opts := []func(*configv2.LoadOptions) error{
		configv2.WithRegion(region),
	}
	if localstackEndpoint != "" {
		opts = append(opts, configv2.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", ""),
		))
	}
	return configv2.LoadDefaultConfig(ctx, opts...)
}

func NewS3Client(cfg aws.Config, localstackEndpoint string) *s3.Client {
	if localstackEndpoint != "" {
		return s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(localstackEndpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(cfg)
}

func NewSQSClient(cfg aws.Config, localstackEndpoint string) *sqs.Client {
	if localstackEndpoint != "" {
		return sqs.NewFromConfig(cfg, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(localstackEndpoint)
		})
	}
	return sqs.NewFromConfig(cfg)
}
