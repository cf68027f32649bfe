package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/trailfield/trailfield/internal/server/config"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// BlobService issues presigned PUT URLs for photo uploads against an
// S3-compatible store (MinIO in development).
type BlobService struct {
	config *sc.Config
}

func NewBlobService(config *sc.Config) *BlobService {
	return &BlobService{config: config}
}

// PresignedUpload is what a client needs to upload one blob: the storage key,
// a time-limited PUT URL, and the public URL the blob will be readable at.
type PresignedUpload struct {
	Key       string
	PutURL    string
	PublicURL string
}

func storageKey(ownerID string) string {
	return fmt.Sprintf("users/%s/%v", ownerID, uuid.New())
}

func (s *BlobService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,     // MINIO_ROOT_USER
			s.config.S3RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// GetPresignedPutURL returns an upload target for ownerID. The PUT URL is
// valid for 15 minutes.
func (s *BlobService) GetPresignedPutURL(ctx context.Context, ownerID string) (*PresignedUpload, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := storageKey(ownerID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return nil, err
	}

	return &PresignedUpload{
		Key:       key,
		PutURL:    req.URL,
		PublicURL: strings.TrimSuffix(s.config.S3PublicBaseURL, "/") + "/" + key,
	}, nil
}
