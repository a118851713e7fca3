package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"rentpolicy/internal/models"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Document categories an actor can upload.
const (
	DocIdentification = "identification"
	DocPropertyDeed   = "property_deed"
	DocIncomeProof    = "income_proof"
	DocTaxStatus      = "tax_status"
)

// RequiredDocuments lists the categories each kind needs before submission.
var RequiredDocuments = map[models.ActorKind][]string{
	models.KindLandlord:  {DocIdentification, DocPropertyDeed},
	models.KindTenant:    {DocIdentification, DocIncomeProof},
	models.KindGuarantor: {DocIdentification, DocPropertyDeed},
}

// DocumentService stores actor documents in object storage under
// actors/<actor id>/<category>/ and answers completeness queries by
// listing that prefix.
type DocumentService interface {
	DocumentChecker
	UploadDocument(ctx context.Context, actorID uuid.UUID, category, fileName string, reader io.Reader, size int64, contentType string) (string, error)
	GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	EnsureBucketExists(ctx context.Context) error
}

// objectStore is the subset of *minio.Client the service uses.
type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

type documentService struct {
	client objectStore
	bucket string
}

func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
}

func NewDocumentService(client *minio.Client, bucket string) DocumentService {
	return newDocumentService(client, bucket)
}

func newDocumentService(client objectStore, bucket string) *documentService {
	return &documentService{client: client, bucket: bucket}
}

func (s *documentService) UploadDocument(ctx context.Context, actorID uuid.UUID, category, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	if !IsDocumentCategory(category) {
		return "", fmt.Errorf("unknown document category %q", category)
	}
	objectName := path.Join(actorPrefix(actorID), category, uuid.NewString()+"-"+path.Base(fileName))
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return objectName, nil
}

func (s *documentService) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *documentService) EnsureBucketExists(ctx context.Context) error {
	found, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !found {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

func (s *documentService) HasRequiredDocuments(ctx context.Context, actor *models.Actor) (bool, error) {
	missing, err := s.GetMissingDocuments(ctx, actor)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

func (s *documentService) GetMissingDocuments(ctx context.Context, actor *models.Actor) ([]string, error) {
	present, err := s.categories(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	missing := []string{}
	for _, category := range RequiredDocuments[actor.Kind] {
		if !present[category] {
			missing = append(missing, category)
		}
	}
	return missing, nil
}

func (s *documentService) categories(ctx context.Context, actorID uuid.UUID) (map[string]bool, error) {
	prefix := actorPrefix(actorID) + "/"
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	present := make(map[string]bool)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		rest := strings.TrimPrefix(obj.Key, prefix)
		if category, _, ok := strings.Cut(rest, "/"); ok && category != "" {
			present[category] = true
		}
	}
	return present, nil
}

func actorPrefix(actorID uuid.UUID) string {
	return "actors/" + actorID.String()
}

// IsDocumentCategory reports whether category is one actors can upload.
func IsDocumentCategory(category string) bool {
	switch category {
	case DocIdentification, DocPropertyDeed, DocIncomeProof, DocTaxStatus:
		return true
	}
	return false
}
