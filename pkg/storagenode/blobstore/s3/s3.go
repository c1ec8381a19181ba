// Package s3 implements blobstore.Store on Amazon S3 (or an
// S3-compatible endpoint), the durable/shared storage-node content
// backend for multi-node deployments where the embedded Badger store's
// single-process disk would not be reachable by a replacement node.
//
// Object keys are namespaced the same way blobstore/badger namespaces
// its Badger keys: a region prefix plus the file name, so content,
// undo entries, and checkpoints never collide inside one bucket.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"

	"github.com/netdoc/netdoc/pkg/storagenode/blobstore"
)

const (
	prefixContent    = "content/"
	prefixUndo       = "undo/"
	prefixCheckpoint = "checkpoint/"
)

// Store wraps an *s3.Client behind the blobstore.Store interface.
type Store struct {
	client *s3.Client
	bucket string
	prefix string // optional key prefix for all objects, e.g. "netdoc/"
}

// Config configures a Store's S3 client from static parameters, in the
// manner of a YAML-driven storage-node config file.
type Config struct {
	Endpoint        string // empty uses AWS's default resolver
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	KeyPrefix       string
	ForcePathStyle  bool // required for most non-AWS S3-compatible servers
}

// New builds an S3 client from cfg and verifies bucket access.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 blobstore: bucket name is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("s3 blobstore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	st := &Store{client: client, bucket: cfg.Bucket, prefix: cfg.KeyPrefix}
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("s3 blobstore: bucket %q not reachable: %w", cfg.Bucket, err)
	}
	return st, nil
}

var _ blobstore.Store = (*Store)(nil)

func (s *Store) key(region, name string) string {
	return s.prefix + region + name
}

func (s *Store) undoKey(name string, seq int) string {
	return s.key(prefixUndo, name) + "/" + strconv.Itoa(seq)
}

func (s *Store) checkpointKey(name, tag string) string {
	return s.key(prefixCheckpoint, name) + "/" + tag
}

func (s *Store) getObject(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		if isNotFoundError(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *Store) putObject(ctx context.Context, key string, content []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	return err
}

func (s *Store) deleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	return err
}

// listSuffixes lists every object under prefix and returns the part of
// each key after prefix.
func (s *Store) listSuffixes(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			out = append(out, strings.TrimPrefix(aws.ToString(obj.Key), prefix))
		}
	}
	return out, nil
}

// Put implements blobstore.Store.
func (s *Store) Put(ctx context.Context, name string, content []byte) error {
	contentKey := s.key(prefixContent, name)
	prev, err := s.getObject(ctx, contentKey)
	switch {
	case err == nil:
		if err := s.pushUndo(ctx, name, prev); err != nil {
			return err
		}
	case errors.Is(err, blobstore.ErrNotFound):
		// first write for name, nothing to push
	default:
		return err
	}
	return s.putObject(ctx, contentKey, content)
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, error) {
	return s.getObject(ctx, s.key(prefixContent, name))
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.getObject(ctx, s.key(prefixContent, name)); err != nil {
		return err
	}
	if err := s.deleteObject(ctx, s.key(prefixContent, name)); err != nil {
		return err
	}
	if err := s.deletePrefix(ctx, s.key(prefixUndo, name)+"/"); err != nil {
		return err
	}
	return s.deletePrefix(ctx, s.key(prefixCheckpoint, name)+"/")
}

func (s *Store) deletePrefix(ctx context.Context, prefix string) error {
	suffixes, err := s.listSuffixes(ctx, prefix)
	if err != nil {
		return err
	}
	for _, suffix := range suffixes {
		if err := s.deleteObject(ctx, prefix+suffix); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) undoSeqs(ctx context.Context, name string) ([]int, error) {
	suffixes, err := s.listSuffixes(ctx, s.key(prefixUndo, name)+"/")
	if err != nil {
		return nil, err
	}
	seqs := make([]int, 0, len(suffixes))
	for _, suffix := range suffixes {
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		seqs = append(seqs, n)
	}
	sort.Ints(seqs)
	return seqs, nil
}

func (s *Store) pushUndo(ctx context.Context, name string, content []byte) error {
	seqs, err := s.undoSeqs(ctx, name)
	if err != nil {
		return err
	}
	next := 1
	if len(seqs) > 0 {
		next = seqs[len(seqs)-1] + 1
	}
	return s.putObject(ctx, s.undoKey(name, next), content)
}

func (s *Store) Undo(ctx context.Context, name string) ([]byte, error) {
	seqs, err := s.undoSeqs(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(seqs) == 0 {
		return nil, blobstore.ErrNotFound
	}
	top := seqs[len(seqs)-1]
	key := s.undoKey(name, top)
	content, err := s.getObject(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.deleteObject(ctx, key); err != nil {
		return nil, err
	}
	if err := s.putObject(ctx, s.key(prefixContent, name), content); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *Store) Checkpoint(ctx context.Context, name, tag string) error {
	content, err := s.getObject(ctx, s.key(prefixContent, name))
	if err != nil {
		return err
	}
	return s.putObject(ctx, s.checkpointKey(name, tag), content)
}

func (s *Store) ListCheckpoints(ctx context.Context, name string) ([]string, error) {
	return s.listSuffixes(ctx, s.key(prefixCheckpoint, name)+"/")
}

func (s *Store) Revert(ctx context.Context, name, tag string) ([]byte, error) {
	content, err := s.getObject(ctx, s.checkpointKey(name, tag))
	if err != nil {
		return nil, err
	}
	if prev, err := s.getObject(ctx, s.key(prefixContent, name)); err == nil {
		if err := s.pushUndo(ctx, name, prev); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, blobstore.ErrNotFound) {
		return nil, err
	}
	if err := s.putObject(ctx, s.key(prefixContent, name), content); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.listSuffixes(ctx, s.key(prefixContent, ""))
}

// Close is a no-op: the S3 client holds no long-lived local resources.
func (s *Store) Close() error { return nil }

// isNotFoundError mirrors the not-found detection used by the original
// content store's S3 backend: typed NoSuchKey/NotFound errors first,
// then the smithy API error code as a fallback for S3-compatible
// servers that return a bare error code without the typed shape.
func isNotFoundError(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound" || code == "404"
	}
	return false
}
