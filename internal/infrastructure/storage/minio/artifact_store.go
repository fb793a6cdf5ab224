package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/Resonance-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Resonance-Intelligence/pkg/errors"
)

const (
	defaultArtifactPrefix = "artifacts/"
	versionObjectPrefix   = "v"
	metaArtifactKey       = "artifact-key"
	metaArtifactVersion   = "artifact-version"
)

// ArtifactStore keeps every saved blob as its own object,
// <prefix><key>/v<zero-padded version>, so older versions stay readable.
// Version numbers are assigned per key starting at 1.
type ArtifactStore struct {
	client *Client
	logger logging.Logger
	prefix string

	// Serializes version assignment within this process.
	mu sync.Mutex
}

type ArtifactStoreOption func(*ArtifactStore)

func WithObjectPrefix(prefix string) ArtifactStoreOption {
	return func(s *ArtifactStore) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		s.prefix = prefix
	}
}

func NewArtifactStore(client *Client, log logging.Logger, opts ...ArtifactStoreOption) *ArtifactStore {
	if log == nil {
		log = logging.NewNopLogger()
	}
	s := &ArtifactStore{client: client, logger: log.Named("artifacts"), prefix: defaultArtifactPrefix}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *ArtifactStore) keyPrefix(key string) string { return s.prefix + key + "/" }

func (s *ArtifactStore) objectName(key string, version int) string {
	return fmt.Sprintf("%s%s%06d", s.keyPrefix(key), versionObjectPrefix, version)
}

// Save uploads data as the next version of key and returns that version.
func (s *ArtifactStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New(errors.ErrCodeValidation, "artifact key is required")
	}
	api, err := s.client.API()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	versions, err := s.versions(ctx, api, key)
	if err != nil {
		return "", err
	}
	next := 1
	if len(versions) > 0 {
		next = versions[len(versions)-1] + 1
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	name := s.objectName(key, next)
	_, err = api.PutObject(ctx, s.client.Bucket(), name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			metaArtifactKey:     key,
			metaArtifactVersion: strconv.Itoa(next),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("failed to store artifact %s", key))
	}
	s.logger.Debug("artifact stored",
		logging.AnalysisKey(key),
		logging.Int("version", next),
		logging.Int("bytes", len(data)))
	return strconv.Itoa(next), nil
}

// Load returns the latest version of key.
func (s *ArtifactStore) Load(ctx context.Context, key string) ([]byte, error) {
	api, err := s.client.API()
	if err != nil {
		return nil, err
	}
	versions, err := s.versions(ctx, api, key)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, errors.Newf(errors.ErrCodeNotFound, "artifact %q not found", key)
	}
	return s.read(ctx, api, key, versions[len(versions)-1])
}

// LoadVersion returns a specific version of key.
func (s *ArtifactStore) LoadVersion(ctx context.Context, key, version string) ([]byte, error) {
	n, err := strconv.Atoi(version)
	if err != nil || n < 1 {
		return nil, errors.Newf(errors.ErrCodeValidation, "invalid artifact version %q", version)
	}
	api, err := s.client.API()
	if err != nil {
		return nil, err
	}
	return s.read(ctx, api, key, n)
}

// Versions lists the stored versions of key in ascending order.
func (s *ArtifactStore) Versions(ctx context.Context, key string) ([]string, error) {
	api, err := s.client.API()
	if err != nil {
		return nil, err
	}
	versions, err := s.versions(ctx, api, key)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = strconv.Itoa(v)
	}
	return out, nil
}

func (s *ArtifactStore) versions(ctx context.Context, api ObjectAPI, key string) ([]int, error) {
	prefix := s.keyPrefix(key)
	var out []int
	for obj := range api.ListObjects(ctx, s.client.Bucket(), minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorageError, fmt.Sprintf("failed to list artifact %s", key))
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if !strings.HasPrefix(name, versionObjectPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(name, versionObjectPrefix))
		if err != nil || n < 1 {
			s.logger.Warn("ignoring unexpected object under artifact prefix", logging.String("object", obj.Key))
			continue
		}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

func (s *ArtifactStore) read(ctx context.Context, api ObjectAPI, key string, version int) ([]byte, error) {
	rc, err := api.GetObject(ctx, s.client.Bucket(), s.objectName(key, version), minio.GetObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, errors.Newf(errors.ErrCodeNotFound, "artifact %q version %d not found", key, version)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("failed to open artifact %s", key))
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("failed to read artifact %s", key))
	}
	return data, nil
}

//Personal.AI order the ending
