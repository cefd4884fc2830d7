package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"titanic_chat_backend/config"
	"titanic_chat_backend/pkg/logging"
	"titanic_chat_backend/utils"
)

// Service archives rendered chart PNGs to MinIO or S3. Archiving is
// best-effort; the chat path never depends on it.
type Service struct {
	Client      *minio.Client
	Bucket      string
	Region      string
	StorageType string
	keys        *utils.ChartKeyGenerator
}

func InitStorageService(cfg *config.Config) (*Service, error) {
	var minioClient *minio.Client
	var err error

	// local vs s3
	switch cfg.StorageType {
	case "minio":
		minioClient, err = utils.CreateMinIOClient(cfg)
	case "s3":
		minioClient, err = utils.CreateS3Client(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}
	if err != nil {
		logging.Logger.Error("fail InitStorageService", zap.Error(err))
		return nil, err
	}

	ss := &Service{
		Client:      minioClient,
		Bucket:      cfg.BucketName,
		Region:      cfg.BucketRegion,
		StorageType: cfg.StorageType,
		keys:        utils.NewChartKeyGenerator("charts"),
	}
	if err := ss.EnsureBucketExists(); err != nil {
		logging.Logger.Error("fail InitStorageService", zap.Error(err))
		return nil, err
	}
	logging.Logger.Info("storage service initialized",
		zap.String("type", cfg.StorageType),
		zap.String("bucket", cfg.BucketName),
	)
	return ss, nil
}

func (ss *Service) EnsureBucketExists() error {
	ctx := context.Background()
	exists, err := ss.Client.BucketExists(ctx, ss.Bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = ss.Client.MakeBucket(ctx, ss.Bucket, minio.MakeBucketOptions{Region: ss.Region})
	if err != nil {
		if ss.StorageType == "s3" {
			logging.Logger.Warn("could not create S3 bucket (might exist or no permission)",
				zap.String("bucket", ss.Bucket), zap.Error(err))
			return nil
		}
		return err
	}
	logging.Logger.Info("bucket created", zap.String("bucket", ss.Bucket))
	return nil
}

// ArchiveChart uploads a rendered chart and returns its object key.
func (ss *Service) ArchiveChart(ctx context.Context, png []byte) (string, error) {
	key := ss.keys.GenerateKey()
	_, err := ss.Client.PutObject(ctx, ss.Bucket, key, bytes.NewReader(png), int64(len(png)),
		minio.PutObjectOptions{ContentType: "image/png"})
	if err != nil {
		return "", fmt.Errorf("archive chart: %w", err)
	}
	return key, nil
}

// ChartURL returns a presigned GET for an archived chart.
func (ss *Service) ChartURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := ss.Client.PresignedGetObject(ctx, ss.Bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign chart url: %w", err)
	}
	return u.String(), nil
}
