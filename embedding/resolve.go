package embedding

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNoS3Client is returned when an s3:// reference is resolved without a
// configured S3 client.
var ErrNoS3Client = errors.New("no S3 client configured for s3:// references")

// ImageResolver normalizes image references into base64 data URIs.
// The zero-configured resolver handles local files and http(s) URLs.
type ImageResolver struct {
	s3         manager.DownloadAPIClient
	httpClient *http.Client
}

// ResolverOption configures an ImageResolver.
type ResolverOption func(*ImageResolver)

// WithS3Client enables resolution of s3://bucket/key references.
func WithS3Client(client manager.DownloadAPIClient) ResolverOption {
	return func(r *ImageResolver) {
		r.s3 = client
	}
}

// WithHTTPClient overrides the client used for http(s) references.
func WithHTTPClient(client *http.Client) ResolverOption {
	return func(r *ImageResolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// NewImageResolver creates an ImageResolver.
func NewImageResolver(opts ...ResolverOption) *ImageResolver {
	r := &ImageResolver{
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DataURI reads the referenced image and encodes it as a data URI tagged
// with the detected image MIME type.
func (r *ImageResolver) DataURI(ctx context.Context, ref string) (string, error) {
	var (
		data []byte
		err  error
	)

	switch {
	case strings.HasPrefix(ref, "s3://"):
		data, err = r.fetchS3(ctx, ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		data, err = r.fetchHTTP(ctx, ref)
	default:
		data, err = os.ReadFile(ref)
	}
	if err != nil {
		return "", err
	}

	mime := detectImageMIME(ref, data)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (r *ImageResolver) fetchS3(ctx context.Context, ref string) ([]byte, error) {
	if r.s3 == nil {
		return nil, ErrNoS3Client
	}

	bucket, key, err := splitS3Ref(ref)
	if err != nil {
		return nil, err
	}

	buf := manager.NewWriteAtBuffer(nil)
	downloader := manager.NewDownloader(r.s3)
	if _, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, fmt.Errorf("download %s: %w", ref, err)
	}

	return buf.Bytes(), nil
}

func (r *ImageResolver) fetchHTTP(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", ref, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func splitS3Ref(ref string) (bucket, key string, err error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 reference %q: %w", ref, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 reference %q: want s3://bucket/key", ref)
	}
	return bucket, key, nil
}

// detectImageMIME sniffs the content and falls back to the file extension.
// Unknown content defaults to JPEG, matching the dataset's dominant format.
func detectImageMIME(ref string, data []byte) string {
	if mime := http.DetectContentType(data); strings.HasPrefix(mime, "image/") {
		return mime
	}
	if strings.EqualFold(filepath.Ext(ref), ".png") {
		return "image/png"
	}
	return "image/jpeg"
}
