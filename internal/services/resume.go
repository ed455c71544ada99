package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/careerlens/apiserver/internal/storage"
	"github.com/careerlens/apiserver/internal/store"
	"github.com/careerlens/apiserver/types"
	"github.com/google/uuid"
)

// MaxResumeSize is the largest accepted resume upload.
const MaxResumeSize = 10 << 20

var resumeContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain; charset=utf-8",
}

// ObjectStore is the subset of object storage the resume service needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (storage.Object, error)
}

// ResumeService stores seeker resume files under resumes/<userID>/.
type ResumeService struct {
	objects ObjectStore
}

// NewResumeService builds the service. objects may be nil, in which case
// every operation returns ErrUnavailable.
func NewResumeService(objects ObjectStore) *ResumeService {
	return &ResumeService{objects: objects}
}

func (s *ResumeService) Available() bool {
	return s.objects != nil
}

// Upload stores the seeker's resume and returns its key.
func (s *ResumeService) Upload(ctx context.Context, seeker types.User, filename string, r io.Reader, size int64) (string, error) {
	if s.objects == nil {
		return "", ErrUnavailable
	}
	if err := CheckRole(seeker, types.RoleSeeker); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := resumeContentTypes[ext]
	if !ok {
		return "", invalid("resume must be a .pdf, .doc, .docx, or .txt file")
	}
	if size <= 0 {
		return "", invalid("resume file is empty")
	}
	if size > MaxResumeSize {
		return "", invalid("resume must be at most 10 MiB")
	}

	key := ResumeKey(seeker.ID, uuid.NewString()+ext)
	if err := s.objects.Put(ctx, key, io.LimitReader(r, size), size, contentType); err != nil {
		return "", fmt.Errorf("store resume: %w", err)
	}
	return key, nil
}

// Open returns a stored resume to its owner or to any employer.
func (s *ResumeService) Open(ctx context.Context, actor types.User, ownerID uuid.UUID, name string) (storage.Object, error) {
	if s.objects == nil {
		return storage.Object{}, ErrUnavailable
	}
	if actor.ID != ownerID && actor.Role != types.RoleEmployer {
		return storage.Object{}, ErrForbidden
	}
	if !validResumeName(name) {
		return storage.Object{}, store.ErrNotFound
	}

	obj, err := s.objects.Get(ctx, ResumeKey(ownerID, name))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return storage.Object{}, store.ErrNotFound
		}
		return storage.Object{}, fmt.Errorf("open resume: %w", err)
	}
	if obj.ContentType == "" {
		obj.ContentType = resumeContentTypes[strings.ToLower(path.Ext(name))]
	}
	return obj, nil
}

// ResumeKey is the object key for a resume file.
func ResumeKey(ownerID uuid.UUID, name string) string {
	return "resumes/" + ownerID.String() + "/" + name
}

func validResumeName(name string) bool {
	ext := path.Ext(name)
	if _, ok := resumeContentTypes[strings.ToLower(ext)]; !ok {
		return false
	}
	_, err := uuid.Parse(strings.TrimSuffix(name, ext))
	return err == nil
}
