package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3Store хранит файлы в S3-совместимом бакете (AWS S3 или MinIO).
// Имя исходного файла переносится через пользовательские метаданные объекта
type s3Store struct {
	client *s3.Client
	bucket string
}

const metaFileNameKey = "file-name"

// NewS3Store создает S3-хранилище. При пустых ключах доступа используется
// стандартная цепочка учетных данных AWS
func NewS3Store(ctx context.Context, cfg Config) (BlobStore, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 archive requires a bucket name")
	}

	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3PathStyle {
			o.UsePathStyle = true
		}
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})

	return &s3Store{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *s3Store) Backend() Backend { return BackendS3 }

func (s *s3Store) Save(ctx context.Context, key string, r io.Reader, opts SaveOptions) (FileInfo, error) {
	// Ключ - хеш содержимого, существующий объект не перезаписывается
	if info, err := s.Stat(ctx, key); err == nil {
		return info, nil
	} else if !errors.Is(err, ErrNotFound) {
		return FileInfo{}, err
	}

	input := &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   r,
	}
	if opts.ContentType != "" {
		input.ContentType = &opts.ContentType
	}
	if opts.FileName != "" {
		input.Metadata = map[string]string{metaFileNameKey: url.QueryEscape(opts.FileName)}
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return FileInfo{}, fmt.Errorf("failed to put archive object: %w", err)
	}

	return s.Stat(ctx, key)
}

func (s *s3Store) Open(ctx context.Context, key string) (FileInfo, io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isS3NotFound(err) {
			return FileInfo{}, nil, ErrNotFound
		}
		return FileInfo{}, nil, fmt.Errorf("failed to get archive object: %w", err)
	}

	info := s.objectInfo(key, out.ContentLength, out.ContentType, out.ETag, out.Metadata, out.LastModified)
	return info, out.Body, nil
}

func (s *s3Store) Stat(ctx context.Context, key string) (FileInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isS3NotFound(err) {
			return FileInfo{}, ErrNotFound
		}
		return FileInfo{}, fmt.Errorf("failed to head archive object: %w", err)
	}

	return s.objectInfo(key, out.ContentLength, out.ContentType, out.ETag, out.Metadata, out.LastModified), nil
}

func (s *s3Store) Delete(ctx context.Context, key string) (bool, error) {
	if _, err := s.Stat(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return false, fmt.Errorf("failed to delete archive object: %w", err)
	}

	return true, nil
}

func (s *s3Store) List(ctx context.Context, prefix string) ([]FileInfo, error) {
	infos := make([]FileInfo, 0)
	var token *string

	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.bucket,
			Prefix:            &prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list archive objects: %w", err)
		}

		for _, obj := range out.Contents {
			infos = append(infos, FileInfo{
				Key:      aws.ToString(obj.Key),
				Size:     aws.ToInt64(obj.Size),
				ETag:     strings.Trim(aws.ToString(obj.ETag), `"`),
				StoredAt: aws.ToTime(obj.LastModified),
			})
		}

		if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *s3Store) objectInfo(key string, size *int64, contentType, etag *string, metadata map[string]string, lastModified *time.Time) FileInfo {
	info := FileInfo{
		Key:         key,
		Size:        aws.ToInt64(size),
		ContentType: aws.ToString(contentType),
		ETag:        strings.Trim(aws.ToString(etag), `"`),
		StoredAt:    time.Now().UTC(),
	}
	if lastModified != nil {
		info.StoredAt = *lastModified
	}
	if encoded, ok := metadata[metaFileNameKey]; ok {
		if name, err := url.QueryUnescape(encoded); err == nil {
			info.FileName = name
		}
	}
	return info
}

func isS3NotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
