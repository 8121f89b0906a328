package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
	"github.com/flexprice/docforge/internal/config"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/h2non/filetype"
)

const (
	defaultPresignExpiryDuration = 30 * time.Minute
)

// Service archives exported PDFs in a bucket
type Service interface {
	// UploadArchive stores a.Data and returns the object key
	UploadArchive(ctx context.Context, a *Archive) (string, error)
	GetPresignedUrl(ctx context.Context, key string) (string, error)
	GetArchive(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

type s3ServiceImpl struct {
	client *s3.Client
	config *config.S3Config
}

// NewService returns nil when archiving is disabled
func NewService(config *config.Configuration) (Service, error) {
	if !config.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(config.S3.Region),
	)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load aws config").
			Mark(ierr.ErrHTTPClient)
	}

	return &s3ServiceImpl{
		config: &config.S3,
		client: s3.NewFromConfig(awsCfg),
	}, nil
}

// ObjectKey is prefix/user/type/id.pdf
func ObjectKey(prefix string, a *Archive) (string, error) {
	if a.ID == "" || a.UserID == "" {
		return "", ierr.NewError("archive id and user are required").
			WithHint("Archive needs an owner and an id").
			Mark(ierr.ErrValidation)
	}
	if err := a.Type.Validate(); err != nil {
		return "", err
	}
	user := strings.ReplaceAll(a.UserID, "/", "_")
	return path.Join(prefix, user, string(a.Type), a.ID+".pdf"), nil
}

// ContentType sniffs the payload, falling back to octet-stream
func ContentType(data []byte) string {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return "application/octet-stream"
}

func (s *s3ServiceImpl) bucket() string {
	return s.config.Bucket
}

// Exists implements Service.
func (s *s3ServiceImpl) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket()),
		Key:    aws.String(key),
	})

	if err != nil {
		var nsk *s3types.NoSuchKey
		var nske *s3types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nske) {
			return false, nil
		}
		return false, ierr.WithError(err).
			WithHint("failed to check if archive exists").
			Mark(ierr.ErrHTTPClient)
	}

	return true, nil
}

// GetPresignedUrl implements Service.
func (s *s3ServiceImpl) GetPresignedUrl(ctx context.Context, key string) (string, error) {
	duration, err := time.ParseDuration(s.config.PresignExpiryDuration)
	if err != nil {
		duration = defaultPresignExpiryDuration
	}

	presigner := s3.NewPresignClient(s.client)
	result, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket()),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", ierr.WithError(err).WithHint("failed to get presigned url").
			WithMessagef("bucket:%s, key:%s", s.bucket(), key).
			Mark(ierr.ErrHTTPClient)
	}

	return result.URL, nil
}

// UploadArchive implements Service.
func (s *s3ServiceImpl) UploadArchive(ctx context.Context, a *Archive) (string, error) {
	key, err := ObjectKey(s.config.KeyPrefix, a)
	if err != nil {
		return "", err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket()),
		Key:         aws.String(key),
		Body:        bytes.NewReader(a.Data),
		ContentType: aws.String(ContentType(a.Data)),
	}
	if a.Name != "" {
		input.ContentDisposition = aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	}

	if _, err = s.client.PutObject(ctx, input); err != nil {
		return "", ierr.WithError(err).WithHint("failed to upload archive").
			WithMessagef("bucket:%s, key:%s", s.bucket(), key).
			Mark(ierr.ErrHTTPClient)
	}

	return key, nil
}

// GetArchive implements Service.
func (s *s3ServiceImpl) GetArchive(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket()),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to get archive").
			WithMessagef("bucket:%s, key:%s", s.bucket(), key).
			Mark(ierr.ErrHTTPClient)
	}

	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint(fmt.Sprintf("failed to read archive %s", key)).
			Mark(ierr.ErrHTTPClient)
	}
	return data, nil
}
