package objectclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	appconfig "github.com/markdave123-py/sermonchat/internal/config"
	"github.com/markdave123-py/sermonchat/internal/core"
	"github.com/markdave123-py/sermonchat/internal/models"
)

const maxPutAttempts = 5

// ObjectAPI is the subset of *s3.Client the sermon store needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3SermonStore keeps the sermon JSON array as one object. Every rewrite is
// a conditional PUT against the ETag that was read, so a concurrent writer
// forces a reload instead of being silently overwritten.
type S3SermonStore struct {
	client ObjectAPI
	bucket string
	key    string
}

// NewS3Client builds an S3 client from static credentials, or the default
// chain when none are set. S3Endpoint targets S3-compatible services.
func NewS3Client(ctx context.Context, cfg *appconfig.Config) (*s3.Client, error) {
	if cfg.AwsRegion == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("S3 bucket name not set")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.AwsRegion)}
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AwsAccessKey, cfg.AwsSecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	slog.Info("s3 client ready", "bucket", cfg.BucketName, "region", cfg.AwsRegion)
	return client, nil
}

func NewS3SermonStore(client ObjectAPI, bucket, key string) (*S3SermonStore, error) {
	if client == nil {
		return nil, errors.New("nil s3 client")
	}
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("bucket and key are required")
	}
	return &S3SermonStore{client: client, bucket: bucket, key: key}, nil
}

func (s *S3SermonStore) Close() error { return nil }

// ListSermons reads the whole object. A missing object is an empty library;
// an unparseable one is logged and served as empty.
func (s *S3SermonStore) ListSermons(ctx context.Context) ([]models.Sermon, error) {
	snap, err := s.load(ctx)
	if errors.Is(err, core.ErrCorruptStore) {
		slog.WarnContext(ctx, "sermons object unparseable, serving empty list", "bucket", s.bucket, "key", s.key, "error", err)
		return []models.Sermon{}, nil
	}
	if err != nil {
		return nil, err
	}
	return snap.sermons, nil
}

func (s *S3SermonStore) GetSermonByID(ctx context.Context, id string) (*models.Sermon, error) {
	sermons, err := s.ListSermons(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sermons {
		if sermons[i].ID == id {
			return &sermons[i], nil
		}
	}
	return nil, core.ErrSermonNotFound
}

func (s *S3SermonStore) CreateSermon(ctx context.Context, sermon *models.Sermon) error {
	if sermon == nil {
		return errors.New("nil sermon")
	}
	return s.modify(ctx, func(sermons []models.Sermon) ([]models.Sermon, error) {
		return append(sermons, *sermon), nil
	})
}

func (s *S3SermonStore) UpdateSermonStatus(ctx context.Context, id string, from, to models.SermonStatus) (*models.Sermon, error) {
	var updated models.Sermon
	err := s.modify(ctx, func(sermons []models.Sermon) ([]models.Sermon, error) {
		for i := range sermons {
			if sermons[i].ID != id {
				continue
			}
			if sermons[i].Status != from {
				return nil, fmt.Errorf("%w: sermon %s is %s", core.ErrInvalidTransition, id, sermons[i].Status)
			}
			sermons[i].Status = to
			updated = sermons[i]
			return sermons, nil
		}
		return nil, core.ErrSermonNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

type snapshot struct {
	sermons []models.Sermon
	etag    string
	exists  bool
}

// modify runs a read-modify-conditional-write loop.
func (s *S3SermonStore) modify(ctx context.Context, change func([]models.Sermon) ([]models.Sermon, error)) error {
	for attempt := 1; attempt <= maxPutAttempts; attempt++ {
		snap, err := s.load(ctx)
		if err != nil {
			return err
		}
		next, err := change(snap.sermons)
		if err != nil {
			return err
		}
		err = s.save(ctx, next, snap)
		if err == nil {
			return nil
		}
		if !isPreconditionFailed(err) {
			return err
		}
		slog.DebugContext(ctx, "sermons object changed underneath, retrying", "attempt", attempt)
	}
	return fmt.Errorf("%w: s3://%s/%s", core.ErrWriteConflict, s.bucket, s.key)
}

func (s *S3SermonStore) load(ctx context.Context) (snapshot, error) {
	ctxGet, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := s.client.GetObject(ctxGet, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if isNotFound(err) {
		return snapshot{sermons: []models.Sermon{}}, nil
	}
	if err != nil {
		return snapshot{}, fmt.Errorf("s3 get failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return snapshot{}, fmt.Errorf("read body: %w", err)
	}

	snap := snapshot{sermons: []models.Sermon{}, etag: aws.ToString(resp.ETag), exists: true}
	if len(bytes.TrimSpace(body)) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(body, &snap.sermons); err != nil {
		return snapshot{}, fmt.Errorf("%w: s3://%s/%s: %v", core.ErrCorruptStore, s.bucket, s.key, err)
	}
	if snap.sermons == nil {
		snap.sermons = []models.Sermon{}
	}
	return snap, nil
}

func (s *S3SermonStore) save(ctx context.Context, sermons []models.Sermon, prev snapshot) error {
	data, err := json.MarshalIndent(sermons, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sermons: %w", err)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}
	if prev.exists {
		input.IfMatch = aws.String(prev.etag)
	} else {
		input.IfNoneMatch = aws.String("*")
	}

	ctxPut, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if _, err := s.client.PutObject(ctxPut, input); err != nil {
		return fmt.Errorf("s3 put failed: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "PreconditionFailed", "ConditionalRequestConflict":
		return true
	}
	return false
}

var _ core.SermonStore = (*S3SermonStore)(nil)
