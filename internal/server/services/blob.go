package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	sc "github.com/dmitrijs2005/moodnotes/internal/server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
	listObjects = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return c.ListObjectsV2(ctx, in, optFns...)
	}

	// nowMillis is a seam so key-generation tests are deterministic.
	nowMillis = func() int64 { return time.Now().UnixMilli() }
)

// BlobService presigns uploads/downloads against the S3-compatible image
// store and performs server-side deletes. Keys follow the convention
// images/{userId}/{fileName}-{epochMillis}.{ext}.
type BlobService struct {
	config *sc.Config
}

func NewBlobService(config *sc.Config) *BlobService {
	return &BlobService{config: config}
}

// extensionFromContentType maps a reported content type to a file extension,
// defaulting to jpg when the type is unknown.
func extensionFromContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/jpeg", "image/jpg":
		return "jpg"
	default:
		return "jpg"
	}
}

// BuildKey computes the storage key for a new image. The original file name
// keeps only its base (no directories, no extension).
func BuildKey(userID, fileName, contentType string) string {
	base := fileName
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	if base == "" {
		base = "image"
	}
	return fmt.Sprintf("images/%s/%s-%d.%s", userID, base, nowMillis(), extensionFromContentType(contentType))
}

// UserPrefix is the key prefix under which all of a user's images live.
func UserPrefix(userID string) string {
	return fmt.Sprintf("images/%s/", userID)
}

func (s *BlobService) getClient() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

func (s *BlobService) getPresignClient() (*s3.PresignClient, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	return newS3PresignClient(client), nil
}

// GetPresignedPutURL presigns an upload for the given key.
func (s *BlobService) GetPresignedPutURL(ctx context.Context, key string) (string, error) {

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// GetPresignedGetURL presigns a download for the given key.
func (s *BlobService) GetPresignedGetURL(ctx context.Context, key string) (string, error) {

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// Delete removes a single object.
func (s *BlobService) Delete(ctx context.Context, key string) error {

	client, err := s.getClient()
	if err != nil {
		return err
	}

	bucket := s.config.S3Bucket

	_, err = deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("error deleting object: %w", err)
	}
	return nil
}

// List returns all keys under the user's image prefix.
func (s *BlobService) List(ctx context.Context, userID string) ([]string, error) {

	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	prefix := UserPrefix(userID)

	out, err := listObjects(client, ctx, &s3.ListObjectsV2Input{
		Bucket: &bucket,
		Prefix: &prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing objects: %w", err)
	}

	keys := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		if obj.Key != nil {
			keys = append(keys, *obj.Key)
		}
	}
	return keys, nil
}
