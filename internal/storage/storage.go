package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/rs/zerolog/log"
)

// Storage persists archival snapshots. Snapshots are write-once backups of a
// sync run's full batch; nothing in the serving path ever reads them back.
type Storage interface {
	SaveSnapshot(key string, data []byte) (string, error)
}

type LocalStorage struct {
	backupDir string
}

type SpacesStorage struct {
	client   *s3.S3
	bucket   string
	endpoint string
}

func NewLocalStorage(backupDir string) *LocalStorage {
	return &LocalStorage{backupDir: backupDir}
}

func NewSpacesStorage(endpoint, region, bucket, accessKey, secretKey string) (*SpacesStorage, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &SpacesStorage{
		client:   s3.New(sess),
		bucket:   bucket,
		endpoint: endpoint,
	}, nil
}

func (ls *LocalStorage) SaveSnapshot(key string, data []byte) (string, error) {
	path := filepath.Join(ls.backupDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	log.Debug().Str("path", path).Msg("snapshot written")
	return path, nil
}

func (ss *SpacesStorage) SaveSnapshot(key string, data []byte) (string, error) {
	_, err := ss.client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(ss.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to upload snapshot to Spaces")
		return "", fmt.Errorf("failed to upload to Spaces: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", ss.bucket, key), nil
}
