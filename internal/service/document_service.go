package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/cyber-Je-di/tuta-pamodzi/internal/dto"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/models"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/observability"
	"github.com/cyber-Je-di/tuta-pamodzi/internal/repository"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("only pdf, doc and docx files are allowed")
	// ErrFileRequired indicates the multipart request carried no file.
	ErrFileRequired = errors.New("file is required")
)

var allowedDocumentTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// FileStorage abstracts upload destinations. Upload returns the location the
// file can later be fetched from: a URL, a local path or a driver-specific URI.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// DownloadLinker is implemented by storages whose locations must be signed
// before a client can fetch them.
type DownloadLinker interface {
	DownloadURL(ctx context.Context, location string) (string, error)
}

// DocumentDownload tells the caller how to deliver an authorized document:
// redirect to RedirectURL when set, otherwise stream LocalPath.
type DocumentDownload struct {
	Document    models.Document
	RedirectURL string
	LocalPath   string
}

// DocumentService handles tutor uploads and gated student access.
type DocumentService interface {
	Upload(ctx context.Context, actor Actor, req dto.DocumentUploadRequest, file *multipart.FileHeader) (dto.DocumentResponse, error)
	ListForTutor(ctx context.Context, actor Actor) ([]dto.DocumentResponse, error)
	ListForStudent(ctx context.Context, actor Actor) ([]dto.DocumentResponse, error)
	Get(ctx context.Context, actor Actor, documentID uint) (dto.DocumentResponse, error)
	Open(ctx context.Context, actor Actor, documentID uint) (DocumentDownload, error)
}

type documentService struct {
	documents    repository.DocumentRepository
	affiliations repository.AffiliationRepository
	accounts     repository.AccountRepository
	gate         AccessGate
	storage      FileStorage
	validator    *validator.Validate
	logger       zerolog.Logger
	maxSize      int64
	tracer       trace.Tracer
}

// NewDocumentService constructs the document service.
func NewDocumentService(
	documents repository.DocumentRepository,
	affiliations repository.AffiliationRepository,
	accounts repository.AccountRepository,
	gate AccessGate,
	storage FileStorage,
	maxSizeMB int,
	validate *validator.Validate,
	logger zerolog.Logger,
) DocumentService {
	if maxSizeMB <= 0 {
		maxSizeMB = 16
	}
	return &documentService{
		documents:    documents,
		affiliations: affiliations,
		accounts:     accounts,
		gate:         gate,
		storage:      storage,
		validator:    validate,
		logger:       logger.With().Str("component", "document_service").Logger(),
		maxSize:      int64(maxSizeMB) * 1024 * 1024,
		tracer:       otel.Tracer("github.com/cyber-Je-di/tuta-pamodzi/internal/service/document"),
	}
}

func (s *documentService) Upload(ctx context.Context, actor Actor, req dto.DocumentUploadRequest, file *multipart.FileHeader) (dto.DocumentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "document.upload")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("upload.max_bytes", s.maxSize),
		attribute.Int("upload.tutor_id", int(actor.ID)),
	)

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	document, err := s.upload(ctx, span, actor, req, file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return dto.DocumentResponse{}, err
	}

	observability.UploadRequests().WithLabelValues(document.MimeType).Inc()
	span.SetStatus(codes.Ok, "stored")
	s.logger.Info().
		Uint("document_id", document.ID).
		Uint("tutor_id", document.TutorID).
		Int64("size_bytes", document.SizeBytes).
		Msg("document stored")

	return dto.NewDocumentResponse(document), nil
}

func (s *documentService) upload(ctx context.Context, span trace.Span, actor Actor, req dto.DocumentUploadRequest, file *multipart.FileHeader) (models.Document, error) {
	if err := actor.require(models.RoleTutor); err != nil {
		return models.Document{}, err
	}
	if err := validateStruct(s.validator, req); err != nil {
		return models.Document{}, err
	}
	if file == nil {
		return models.Document{}, invalidField("file", ErrFileRequired.Error())
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	tutor, err := s.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Document{}, ErrAccountNotFound
		}
		return models.Document{}, err
	}
	if !tutor.IsActiveTutor() {
		return models.Document{}, ErrUnauthorized
	}

	course, err := s.affiliations.GetCourse(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Document{}, invalidField("course_id", "course_id must reference an existing course")
		}
		return models.Document{}, err
	}
	if tutor.UniversityID != nil {
		if universityID, ok := course.UniversityID(); !ok || universityID != *tutor.UniversityID {
			return models.Document{}, invalidField("course_id", "course must belong to your university")
		}
	}

	if file.Size > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		return models.Document{}, ErrUploadTooLarge
	}

	payload, err := readLimited(file, s.maxSize)
	if err != nil {
		if errors.Is(err, ErrUploadTooLarge) {
			observability.UploadRejected().WithLabelValues("size").Inc()
		}
		return models.Document{}, err
	}

	mime := mimetype.Detect(payload)
	span.SetAttributes(attribute.String("upload.detected_mime", mime.String()))
	fileType, ok := allowedType(mime)
	if !ok {
		observability.UploadRejected().WithLabelValues("type").Inc()
		return models.Document{}, ErrUploadTypeNotAllowed
	}

	fileName := sanitizeFileName(file.Filename, mime.Extension())
	storedName := fmt.Sprintf("%d_%d_%s_%s", course.ID, tutor.ID, uuid.NewString(), fileName)
	span.SetAttributes(
		attribute.String("upload.stored_name", storedName),
		attribute.Int64("upload.size_bytes", int64(len(payload))),
	)

	location, err := s.storage.Upload(ctx, storedName, bytes.NewReader(payload))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		return models.Document{}, err
	}

	document := models.Document{
		TutorID:     tutor.ID,
		CourseID:    course.ID,
		Title:       strings.TrimSpace(req.Title),
		FileName:    fileName,
		StoragePath: location,
		MimeType:    fileType,
		SizeBytes:   int64(len(payload)),
	}
	if err := s.documents.Create(ctx, &document); err != nil {
		return models.Document{}, err
	}
	document.Course = &course
	document.Tutor = &tutor

	return document, nil
}

func (s *documentService) ListForTutor(ctx context.Context, actor Actor) ([]dto.DocumentResponse, error) {
	if err := actor.require(models.RoleTutor); err != nil {
		return nil, err
	}

	documents, err := s.documents.ListByTutor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return dto.NewDocumentResponseSlice(documents), nil
}

// ListForStudent returns the documents of the student's university that the
// access gate allows, evaluated per document on every call.
func (s *documentService) ListForStudent(ctx context.Context, actor Actor) ([]dto.DocumentResponse, error) {
	student, err := s.student(ctx, actor)
	if err != nil {
		return nil, err
	}
	if student.UniversityID == nil {
		return []dto.DocumentResponse{}, nil
	}

	documents, err := s.documents.ListByUniversity(ctx, *student.UniversityID)
	if err != nil {
		return nil, err
	}

	visible := make([]models.Document, 0, len(documents))
	for _, document := range documents {
		decision, err := s.gate.CanView(ctx, student, document)
		if err != nil {
			return nil, err
		}
		if decision.Allowed {
			visible = append(visible, document)
		}
	}
	return dto.NewDocumentResponseSlice(visible), nil
}

func (s *documentService) Get(ctx context.Context, actor Actor, documentID uint) (dto.DocumentResponse, error) {
	document, err := s.authorize(ctx, actor, documentID)
	if err != nil {
		return dto.DocumentResponse{}, err
	}
	return dto.NewDocumentResponse(document), nil
}

// Open authorizes access and resolves where the file can be fetched from.
func (s *documentService) Open(ctx context.Context, actor Actor, documentID uint) (DocumentDownload, error) {
	document, err := s.authorize(ctx, actor, documentID)
	if err != nil {
		return DocumentDownload{}, err
	}

	download := DocumentDownload{Document: document}
	if linker, ok := s.storage.(DownloadLinker); ok {
		url, err := linker.DownloadURL(ctx, document.StoragePath)
		if err != nil {
			return DocumentDownload{}, err
		}
		download.RedirectURL = url
		return download, nil
	}
	if document.IsRemote() {
		download.RedirectURL = document.StoragePath
	} else {
		download.LocalPath = document.StoragePath
	}
	return download, nil
}

// authorize lets the owning tutor through and runs students through the gate.
func (s *documentService) authorize(ctx context.Context, actor Actor, documentID uint) (models.Document, error) {
	document, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Document{}, ErrDocumentNotFound
		}
		return models.Document{}, err
	}

	if actor.Is(models.RoleTutor) && document.TutorID == actor.ID {
		return document, nil
	}

	student, err := s.student(ctx, actor)
	if err != nil {
		return models.Document{}, err
	}
	decision, err := s.gate.CanView(ctx, student, document)
	if err != nil {
		return models.Document{}, err
	}
	if !decision.Allowed {
		s.logger.Debug().
			Uint("document_id", document.ID).
			Uint("student_id", student.ID).
			Str("reason", decision.Reason).
			Msg("document access denied")
		return models.Document{}, ErrUnauthorized
	}
	return document, nil
}

func (s *documentService) student(ctx context.Context, actor Actor) (models.Account, error) {
	if err := actor.require(models.RoleStudent); err != nil {
		return models.Account{}, err
	}
	student, err := s.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Account{}, ErrAccountNotFound
		}
		return models.Account{}, err
	}
	return student, nil
}

func readLimited(file *multipart.FileHeader, maxSize int64) ([]byte, error) {
	handle, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, maxSize+1)); err != nil {
		return nil, err
	}
	if int64(buf.Len()) > maxSize {
		return nil, ErrUploadTooLarge
	}
	return buf.Bytes(), nil
}

func allowedType(mime *mimetype.MIME) (string, bool) {
	for _, allowed := range allowedDocumentTypes {
		if mime.Is(allowed) {
			return allowed, true
		}
	}
	return "", false
}

// sanitizeFileName keeps [a-z0-9-_] in the base name and takes the extension
// from the detected content type.
func sanitizeFileName(name, ext string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("document-%d", time.Now().Unix())
	}
	return base + ext
}
