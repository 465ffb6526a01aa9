package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/recipevault/internal/common"
	sc "github.com/dmitrijs2005/recipevault/internal/server/config"
	"github.com/dmitrijs2005/recipevault/internal/server/repositories/repomanager"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// seams for testing the AWS SDK calls
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
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

var allowedImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// ImageService attaches images to recipes. The image bytes never pass through
// the API server: the client uploads directly to object storage through a
// presigned PUT URL, and reads come back as presigned GET URLs.
type ImageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewImageService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *ImageService {
	return &ImageService{db: db, repomanager: m, config: cfg}
}

// imageStorageKey builds a collision-free object key preserving the original
// file extension, e.g. "uploads/recipe/9f2d…-….png".
func imageStorageKey(ext string) string {
	return fmt.Sprintf("uploads/recipe/%s%s", uuid.New(), ext)
}

func (s *ImageService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
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

// AttachImage validates the file name, stores a fresh object key on the
// caller's recipe, and returns the key plus a presigned PUT URL the client
// uploads to. An unsupported extension is a field-keyed validation error; a
// recipe that is missing or not owned by the caller is ErrorNotFound.
func (s *ImageService) AttachImage(ctx context.Context, userID, recipeID, fileName string) (string, string, error) {
	if uuid.Validate(recipeID) != nil {
		return "", "", common.ErrorNotFound
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if _, ok := allowedImageExtensions[ext]; !ok {
		ve := common.NewValidationError()
		ve.Add("image", "unsupported file extension")
		return "", "", ve
	}

	key := imageStorageKey(ext)

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", fmt.Errorf("building presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PresignValidityDuration))
	if err != nil {
		return "", "", fmt.Errorf("presigning put: %w", err)
	}

	if err := s.repomanager.Recipes(s.db).SetImageKey(ctx, recipeID, userID, key); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", "", common.ErrorNotFound
		}
		return "", "", fmt.Errorf("storing image key: %w", err)
	}

	return key, req.URL, nil
}

// DownloadURL returns a presigned GET URL for a stored image key.
func (s *ImageService) DownloadURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", fmt.Errorf("building presign client: %w", err)
	}

	bucket := s.config.S3Bucket
	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PresignValidityDuration))
	if err != nil {
		return "", fmt.Errorf("presigning get: %w", err)
	}

	return req.URL, nil
}
