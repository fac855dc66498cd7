package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/BruksfildServices01/barber-booking/internal/config"
)

const (
	MaxSide     = 800
	MaxUpload   = 8 << 20
	webpQuality = 80
)

var (
	ErrNotConfigured = errors.New("media: storage not configured")
	ErrTooLarge      = errors.New("media: image too large")
)

// ObjectPutter is the part of the S3 client the store needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	s3        ObjectPutter
	bucket    string
	publicURL string
}

// New returns ErrNotConfigured when no bucket is set.
func New(cfg config.MediaConfig) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return NewWithClient(s3.New(opts), cfg.Bucket, cfg.PublicURL), nil
}

func NewWithClient(client ObjectPutter, bucket, publicURL string) *Store {
	return &Store{
		s3:        client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// UploadBarberPhoto converts the upload to WebP and returns its public URL.
func (s *Store) UploadBarberPhoto(ctx context.Context, barberID uint, r io.Reader) (string, error) {
	data, err := ToWebP(r)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("barbers/%d/%s.webp", barberID, uuid.NewString())

	_, err = s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("image/webp"),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %q: %w", key, err)
	}

	return s.publicURL + "/" + key, nil
}

// ToWebP decodes a JPEG or PNG, fits it inside MaxSide and encodes WebP.
func ToWebP(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxUpload+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxUpload {
		return nil, ErrTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("media: decode: %w", err)
	}

	img := Fit(src, MaxSide)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return nil, fmt.Errorf("media: encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit scales src down so neither side exceeds limit. Smaller images are
// returned untouched.
func Fit(src image.Image, limit int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= limit && h <= limit {
		return src
	}

	if w >= h {
		h = h * limit / w
		w = limit
	} else {
		w = w * limit / h
		h = limit
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
