// Package archive persists monitoring run reports to object storage so runs
// can be audited after the fact.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/digiclimate/supplyrisk/internal/models"
)

// Archiver uploads run report JSON to object storage.
type Archiver interface {
	ArchiveRun(ctx context.Context, report models.RunReport) (string, error)
}

type uploaderAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Archiver writes run reports to S3 paths like:
//
//	s3://<bucket>/<prefix>/runs/YYYY/MM/DD/<runID>.json
type S3Archiver struct {
	bucket   string
	prefix   string
	uploader uploaderAPI
}

// NewS3Archiver creates an S3Archiver. Region and credentials come from the
// environment (AWS_REGION, AWS_PROFILE, AWS_ACCESS_KEY_ID/SECRET etc.). The
// prefix may be empty.
func NewS3Archiver(ctx context.Context, bucket string, prefix string) (*S3Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Archiver{
		bucket:   bucket,
		prefix:   prefix,
		uploader: manager.NewUploader(client),
	}, nil
}

func (s *S3Archiver) objectKey(report models.RunReport) string {
	ts := report.StartedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	year, month, day := ts.Date()
	return path.Join(s.prefix, "runs",
		fmt.Sprintf("%04d", year),
		fmt.Sprintf("%02d", int(month)),
		fmt.Sprintf("%02d", day),
		fmt.Sprintf("%s.json", report.RunID),
	)
}

// ArchiveRun marshals the report and uploads it, returning the object key so
// callers can persist the pointer.
func (s *S3Archiver) ArchiveRun(ctx context.Context, report models.RunReport) (string, error) {
	if report.RunID == "" {
		return "", fmt.Errorf("run id required")
	}
	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal run report: %w", err)
	}

	key := s.objectKey(report)
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(body),
		ContentType:          aws.String("application/json"),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	return key, nil
}
