package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

const (
	defaultB2Region  = "us-east-005"
	minSignedURLTTL  = 60
	maxSignedURLTTL  = 86400
	defaultSignedTTL = 3600
)

// Media paths clients may request signed URLs for.
var allowedMediaPrefixes = []string{"albums/", "songs/", "covers/", "previews/"}

type B2Config struct {
	KeyID    string
	AppKey   string
	Endpoint string // host only, e.g. s3.us-east-005.backblazeb2.com
	Bucket   string
}

// B2Storage signs time-bounded GET URLs for objects in a Backblaze B2
// bucket through its S3-compatible API.
type B2Storage struct {
	s3     *s3.S3
	bucket string
}

func NewB2Storage(cfg B2Config) (*B2Storage, error) {
	keyID := sanitizeEnv(cfg.KeyID)
	appKey := sanitizeEnv(cfg.AppKey)
	endpoint := sanitizeEnv(cfg.Endpoint)
	bucket := sanitizeEnv(cfg.Bucket)

	if keyID == "" || appKey == "" || endpoint == "" || bucket == "" {
		return nil, fmt.Errorf("missing B2 env vars: B2_APPLICATION_KEY_ID, B2_APPLICATION_KEY, B2_ENDPOINT, B2_BUCKET_NAME")
	}

	sess := session.Must(session.NewSession(&aws.Config{
		Region:           aws.String(regionFromEndpoint(endpoint)),
		Endpoint:         aws.String("https://" + endpoint),
		S3ForcePathStyle: aws.Bool(true),
		Credentials: credentials.NewStaticCredentials(
			keyID, appKey, "",
		),
	}))

	return &B2Storage{s3: s3.New(sess), bucket: bucket}, nil
}

// SignedGetURL presigns a GET for the object key. No network call is
// made; the signature is computed locally.
func (b *B2Storage) SignedGetURL(key string, expiresIn time.Duration) (string, error) {
	req, _ := b.s3.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(expiresIn)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return url, nil
}

// AllowedMediaPath reports whether a client-supplied object path is
// within the public media prefixes.
func AllowedMediaPath(path string) bool {
	for _, prefix := range allowedMediaPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ClampSignedURLTTL bounds a client-requested expiry to [60s, 24h],
// defaulting to an hour when unset.
func ClampSignedURLTTL(seconds int64) time.Duration {
	if seconds == 0 {
		seconds = defaultSignedTTL
	}
	if seconds < minSignedURLTTL {
		seconds = minSignedURLTTL
	}
	if seconds > maxSignedURLTTL {
		seconds = maxSignedURLTTL
	}
	return time.Duration(seconds) * time.Second
}

// B2 endpoints look like s3.<region>.backblazeb2.com; fall back to the
// documented default when the shape is unexpected.
func regionFromEndpoint(endpoint string) string {
	parts := strings.Split(endpoint, ".")
	if len(parts) > 1 && parts[1] != "" {
		return parts[1]
	}
	return defaultB2Region
}

func sanitizeEnv(val string) string {
	val = strings.ReplaceAll(val, `'`, "")
	val = strings.ReplaceAll(val, `"`, "")
	return strings.TrimSpace(val)
}
