// internal/common/storage/uploader.go
// Shared file upload service: S3 in production, local disk in development.

package storage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Config holds uploader configuration
type Config struct {
	UseS3          bool
	S3Bucket       string
	AWSRegion      string
	LocalUploadDir string
	BaseURL        string
}

// Uploader stores uploaded images on S3 or the local filesystem
type Uploader struct {
	s3Client  *s3.S3
	bucket    string
	baseURL   string
	uploadDir string
	useS3     bool
}

// NewUploader creates an uploader for the configured backend
func NewUploader(cfg Config) (*Uploader, error) {
	u := &Uploader{
		bucket:    cfg.S3Bucket,
		baseURL:   cfg.BaseURL,
		uploadDir: cfg.LocalUploadDir,
		useS3:     cfg.UseS3,
	}

	if cfg.UseS3 {
		sess, err := session.NewSession(&aws.Config{
			Region: aws.String(cfg.AWSRegion),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		u.s3Client = s3.New(sess)
	} else {
		if err := os.MkdirAll(cfg.LocalUploadDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}

	return u, nil
}

// Upload stores a file under the given folder and returns its public URL
func (u *Uploader) Upload(file multipart.File, header *multipart.FileHeader, folder string) (string, error) {
	if err := u.validate(header); err != nil {
		return "", err
	}

	filename := u.generateFilename(header.Filename)

	if u.useS3 {
		return u.uploadToS3(file, filename, header, folder)
	}
	return u.uploadToLocal(file, filename, folder)
}

// Delete removes a previously uploaded file given its public URL
func (u *Uploader) Delete(fileURL string) error {
	if u.useS3 {
		key := strings.TrimPrefix(fileURL, fmt.Sprintf("https://%s.s3.amazonaws.com/", u.bucket))
		_, err := u.s3Client.DeleteObject(&s3.DeleteObjectInput{
			Bucket: aws.String(u.bucket),
			Key:    aws.String(key),
		})
		return err
	}

	urlPath := strings.TrimPrefix(fileURL, u.baseURL)
	localPath := filepath.Join(u.uploadDir, strings.TrimPrefix(urlPath, "/uploads/"))
	return os.Remove(localPath)
}

func (u *Uploader) uploadToS3(file multipart.File, filename string, header *multipart.FileHeader, folder string) (string, error) {
	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("%s/%s/%s", folder, time.Now().Format("2006/01/02"), filename)

	_, err := u.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:             aws.String(u.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(buffer.Bytes()),
		ContentType:        aws.String(header.Header.Get("Content-Type")),
		ContentDisposition: aws.String("inline"),
		ACL:                aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", u.bucket, key), nil
}

func (u *Uploader) uploadToLocal(file multipart.File, filename, folder string) (string, error) {
	dateDir := time.Now().Format("2006/01/02")
	fullDir := filepath.Join(u.uploadDir, folder, dateDir)

	if err := os.MkdirAll(fullDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dest, err := os.Create(filepath.Join(fullDir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return fmt.Sprintf("%s/uploads/%s/%s/%s", u.baseURL, folder, dateDir, filename), nil
}

func (u *Uploader) validate(header *multipart.FileHeader) error {
	maxSize := int64(10 << 20) // 10MB
	if header.Size > maxSize {
		return fmt.Errorf("file size exceeds maximum of 10MB")
	}

	allowedExts := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	}

	if !allowedExts[strings.ToLower(filepath.Ext(header.Filename))] {
		return fmt.Errorf("file type not allowed")
	}

	return nil
}

func (u *Uploader) generateFilename(originalName string) string {
	ext := filepath.Ext(originalName)
	return fmt.Sprintf("%s_%d%s", uuid.New().String(), time.Now().Unix(), ext)
}
