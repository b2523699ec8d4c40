package sweeper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
	sc "github.com/dmitrijs2005/gophnotes/internal/server/config"
)

// AuditSink receives a report for every sweep run.
type AuditSink interface {
	Name() string
	Record(ctx context.Context, r Report) error
}

// LogSink writes reports to the structured log.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger.With("audit", "sweep")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Record(ctx context.Context, r Report) error {
	ids := make([]string, 0, len(r.DeletedNotes))
	for _, n := range r.DeletedNotes {
		ids = append(ids, n.ID)
	}
	args := []any{
		"trigger", r.Trigger,
		"started_at", r.StartedAt,
		"duration_ms", r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
		"deleted", r.DeletedCount,
		"note_ids", ids,
	}
	if r.Error != "" {
		s.logger.Error(ctx, "sweep audit", append(args, "error", r.Error)...)
		return nil
	}
	s.logger.Info(ctx, "sweep audit", args...)
	return nil
}

// ObjectPutter is the part of the S3 client S3Sink uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads every report as a JSON object.
type S3Sink struct {
	client ObjectPutter
	bucket string
	newKey func(r Report) string
}

func NewS3Sink(client ObjectPutter, bucket string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, newKey: reportKey}
}

// loadDefaultAWSConfig is a seam for tests.
var loadDefaultAWSConfig = config.LoadDefaultConfig

// NewS3Client builds an S3 client for an S3-compatible endpoint using static
// credentials from cfg.
func NewS3Client(ctx context.Context, cfg *sc.Config) (*s3.Client, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func reportKey(r Report) string {
	d := r.StartedAt.UTC()
	return fmt.Sprintf("sweeps/%04d/%02d/%02d/%s-%s.json", d.Year(), d.Month(), d.Day(), d.Format("150405"), uuid.NewString())
}

func (s *S3Sink) Name() string { return "s3" }

func (s *S3Sink) Record(ctx context.Context, r Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.newKey(r)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put report: %w", err)
	}
	return nil
}
