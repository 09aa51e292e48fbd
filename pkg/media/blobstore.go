package media

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/vidscribe-ai/platform/pkg/common/config"
	"github.com/vidscribe-ai/platform/pkg/common/httpclient"
)

// BlobStore talks to the media gateway's S3-style HTTP API. Writes are
// full-object overwrites, so concurrent writers converging on the same
// key are safe.
type BlobStore struct {
	http       *resty.Client
	endpoint   string
	bucket     string
	accessKey  string
	secretKey  string
	presignTTL time.Duration
}

func NewBlobStore(cfg *config.Config) *BlobStore {
	rc := resty.NewWithClient(httpclient.New(2 * time.Minute)).
		SetBaseURL(cfg.BlobEndpoint).
		SetRetryCount(2)
	return &BlobStore{
		http:       rc,
		endpoint:   cfg.BlobEndpoint,
		bucket:     cfg.BlobBucket,
		accessKey:  cfg.BlobAccessKey,
		secretKey:  cfg.BlobSecretKey,
		presignTTL: cfg.BlobPresignTTL,
	}
}

func (b *BlobStore) Bucket() string { return b.bucket }

func (b *BlobStore) sign(parts ...string) string {
	mac := hmac.New(sha256.New, []byte(b.secretKey))
	for _, p := range parts {
		mac.Write([]byte(p))
		mac.Write([]byte{'\n'})
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// Put uploads one object, overwriting any previous content under key.
func (b *BlobStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	path := fmt.Sprintf("/%s/%s", b.bucket, key)
	resp, err := b.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("X-Access-Key", b.accessKey).
		SetHeader("X-Signature", b.sign(http.MethodPut, path)).
		SetBody(data).
		Put(path)
	if err != nil {
		return fmt.Errorf("blob put %s: %w", key, err)
	}
	if resp.IsError() {
		return fmt.Errorf("blob put %s: unexpected status %d", key, resp.StatusCode())
	}
	return nil
}

// PresignGet returns a short-lived signed download URL for key. The
// signature covers method, path and expiry, so the URL is useless after
// the TTL.
func (b *BlobStore) PresignGet(key string) string {
	path := fmt.Sprintf("/%s/%s", b.bucket, key)
	expires := strconv.FormatInt(time.Now().Add(b.presignTTL).Unix(), 10)
	signature := b.sign(http.MethodGet, path, expires)

	query := url.Values{}
	query.Set("access_key", b.accessKey)
	query.Set("expires", expires)
	query.Set("signature", signature)
	return b.endpoint + path + "?" + query.Encode()
}
