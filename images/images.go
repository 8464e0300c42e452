// C:\Users\wasab\OneDrive\デスクトップ\PORTION\images\images.go

// Package images は商品IDで商品画像を配信します。
package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"portion/render"
)

// この順に拡張子を試します。
var Extensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ErrNotFound は商品の画像が無い場合に返します。
var ErrNotFound = errors.New("image not found")

type Source interface {
	Open(ctx context.Context, prodID int64) (io.ReadCloser, string, error)
}

func contentType(ext string) string {
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "image/jpeg"
}

// DirSource は <dir>/<prodID><ext> を読み込みます。
type DirSource struct {
	Dir string
}

func (d DirSource) Open(_ context.Context, prodID int64) (io.ReadCloser, string, error) {
	for _, ext := range Extensions {
		f, err := os.Open(filepath.Join(d.Dir, strconv.FormatInt(prodID, 10)+ext))
		if err == nil {
			return f, contentType(ext), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", err
		}
	}
	return nil, "", ErrNotFound
}

// S3Source はバケットから <prefix>/<prodID><ext> を読み込みます。
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Source(ctx context.Context, bucket, region, prefix string) (*S3Source, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config for S3: %w", err)
	}
	return &S3Source{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

func (s *S3Source) key(prodID int64, ext string) string {
	name := strconv.FormatInt(prodID, 10) + ext
	if s.prefix == "" {
		return name
	}
	return path.Join(strings.Trim(s.prefix, "/"), name)
}

func (s *S3Source) Open(ctx context.Context, prodID int64) (io.ReadCloser, string, error) {
	for _, ext := range Extensions {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(prodID, ext)),
		})
		if err == nil {
			ct := aws.ToString(out.ContentType)
			if ct == "" || ct == "binary/octet-stream" {
				ct = contentType(ext)
			}
			return out.Body, ct, nil
		}
		var noKey *s3types.NoSuchKey
		if !errors.As(err, &noKey) {
			return nil, "", fmt.Errorf("failed to get %s from S3: %w", s.key(prodID, ext), err)
		}
	}
	return nil, "", ErrNotFound
}

// Handler は GET /image/{prod_id} を処理します。
func Handler(src Source, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.URL.Path, "/image/")
		prodID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			render.JSON(w, http.StatusNotFound, map[string]string{"error": "Image not found"})
			return
		}
		body, ct, err := src.Open(r.Context(), prodID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				log.Debug("image not found", zap.Int64("prod_id", prodID))
				render.JSON(w, http.StatusNotFound, map[string]string{"error": "Image not found"})
				return
			}
			log.Error("failed to open image", zap.Int64("prod_id", prodID), zap.Error(err))
			render.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load image"})
			return
		}
		defer body.Close()
		w.Header().Set("Content-Type", ct)
		if _, err := io.Copy(w, body); err != nil {
			log.Warn("image copy interrupted", zap.Int64("prod_id", prodID), zap.Error(err))
		}
	}
}
