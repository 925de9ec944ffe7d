package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"policy-intel-be/internal/constant"
	"policy-intel-be/internal/dto"
	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/repository/memory"
	"policy-intel-be/internal/repository/specification"
	"policy-intel-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ErrDocumentProcessing is returned when an operation needs exclusive access
// to a document that a pipeline run currently holds.
var ErrDocumentProcessing = errors.New("document is currently processing")

// ErrNotAPdf rejects uploads that are not PDF files.
var ErrNotAPdf = errors.New("only pdf files are accepted")

type IDocumentService interface {
	Upload(ctx context.Context, tenantId uuid.UUID, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error)
	List(ctx context.Context, tenantId uuid.UUID) ([]*dto.DocumentListItem, error)
	Show(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error)
	Delete(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) error
	Reprocess(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	guard            *memory.ProcessingGuard
	uploadDir        string
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	guard *memory.ProcessingGuard,
	uploadDir string,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		guard:            guard,
		uploadDir:        uploadDir,
	}
}

func (c *documentService) Upload(ctx context.Context, tenantId uuid.UUID, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error) {
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return nil, ErrNotAPdf
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	document := entity.Document{
		Id:           uuid.New(),
		TenantId:     tenantId,
		FileName:     filepath.Base(file.Filename),
		DocumentType: constant.DocumentTypeUnknown,
		Status:       constant.DocumentStatusUploaded,
		CreatedAt:    time.Now(),
	}

	storedPath, err := c.storeFile(file, document.Id)
	if err != nil {
		return nil, err
	}

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		os.Remove(storedPath)
		return nil, err
	}

	msgPayload := dto.ProcessDocumentMessage{
		DocumentId: document.Id,
		TenantId:   tenantId,
		FileName:   document.FileName,
		FilePath:   storedPath,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}

	if err := c.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.UploadDocumentResponse{
		Id:     document.Id,
		Status: document.Status,
	}, nil
}

// storeFile copies the upload to disk under the document id so the original
// file name never touches the filesystem.
func (c *documentService) storeFile(file *multipart.FileHeader, documentId uuid.UUID) (string, error) {
	if err := os.MkdirAll(c.uploadDir, 0o755); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(c.uploadDir, fmt.Sprintf("%s.pdf", documentId))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (c *documentService) List(ctx context.Context, tenantId uuid.UUID) ([]*dto.DocumentListItem, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantId: tenantId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.DocumentListItem, 0, len(documents))
	for _, document := range documents {
		items = append(items, &dto.DocumentListItem{
			Id:                document.Id,
			FileName:          document.FileName,
			DocumentType:      document.DocumentType,
			Status:            document.Status,
			Stage:             document.Stage,
			PageCount:         document.PageCount,
			OverallConfidence: document.OverallConfidence,
			NeedsHumanReview:  document.NeedsHumanReview,
			CreatedAt:         document.CreatedAt,
		})
	}
	return items, nil
}

func (c *documentService) Show(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.TenantOwnedBy{TenantId: tenantId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, nil
	}

	res := dto.ShowDocumentResponse{
		Id:                document.Id,
		FileName:          document.FileName,
		DocumentType:      document.DocumentType,
		Status:            document.Status,
		Stage:             document.Stage,
		PageCount:         document.PageCount,
		QualityScore:      document.QualityScore,
		ScannedPageCount:  document.ScannedPageCount,
		AppearsScanned:    document.AppearsScanned,
		IsHybrid:          document.IsHybrid,
		OverallConfidence: document.OverallConfidence,
		NeedsHumanReview:  document.NeedsHumanReview,
		ErrorMessage:      document.ErrorMessage,
		ValidationIssues:  []dto.ValidationIssueItem{},
		CreatedAt:         document.CreatedAt,
	}

	policy, err := uow.PolicyRepository().FindOne(ctx, specification.ByDocumentID{DocumentId: id})
	if err != nil {
		return nil, err
	}
	if policy != nil {
		detail := dto.PolicyDetail{
			Id:             policy.Id,
			PolicyNumber:   policy.PolicyNumber,
			CarrierName:    policy.CarrierName,
			NAICCode:       policy.NAICCode,
			InsuredName:    policy.InsuredName,
			InsuredAddress: policy.InsuredAddress,
			EffectiveDate:  policy.EffectiveDate,
			ExpirationDate: policy.ExpirationDate,
			TotalPremium:   policy.TotalPremium,
			Status:         policy.Status,
			Confidence:     policy.Confidence,
			Coverages:      []dto.CoverageItem{},
		}

		coverages, err := uow.CoverageRepository().FindAll(ctx,
			specification.ByPolicyID{PolicyId: policy.Id},
			specification.OrderBy{Field: "created_at", Desc: false},
		)
		if err != nil {
			return nil, err
		}
		for _, coverage := range coverages {
			detail.Coverages = append(detail.Coverages, dto.CoverageItem{
				Id:                  coverage.Id,
				CoverageType:        coverage.CoverageType,
				Subtype:             coverage.Subtype,
				EachOccurrenceLimit: coverage.EachOccurrenceLimit,
				AggregateLimit:      coverage.AggregateLimit,
				Deductible:          coverage.Deductible,
				Premium:             coverage.Premium,
				IsClaimsMade:        coverage.IsClaimsMade,
				IsOccurrenceForm:    coverage.IsOccurrenceForm,
				RetroactiveDate:     coverage.RetroactiveDate,
				Details:             coverage.Details,
				Confidence:          coverage.Confidence,
			})
		}
		res.Policy = &detail
	}

	issues, err := uow.ValidationIssueRepository().FindAll(ctx,
		specification.ByDocumentID{DocumentId: id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		res.ValidationIssues = append(res.ValidationIssues, dto.ValidationIssueItem{
			Severity: issue.Severity,
			Field:    issue.Field,
			Message:  issue.Message,
			Code:     issue.Code,
		})
	}

	chunkCount, err := uow.ChunkRepository().Count(ctx, specification.ByDocumentID{DocumentId: id})
	if err != nil {
		return nil, err
	}
	embeddedCount, err := uow.ChunkEmbeddingRepository().Count(ctx, specification.ByDocumentID{DocumentId: id})
	if err != nil {
		return nil, err
	}
	res.ChunkCount = chunkCount
	res.EmbeddedCount = embeddedCount

	return &res, nil
}

func (c *documentService) Delete(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) error {
	if c.guard.IsProcessing(id) {
		return ErrDocumentProcessing
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.TenantOwnedBy{TenantId: tenantId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return nil
	}

	policy, err := uow.PolicyRepository().FindOne(ctx, specification.ByDocumentID{DocumentId: id})
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChunkEmbeddingRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentPageRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.ValidationIssueRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if policy != nil {
		if err := uow.CoverageRepository().DeleteByPolicyId(ctx, policy.Id); err != nil {
			return err
		}
	}
	if err := uow.PolicyRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	// Best effort; a missing file is not an error.
	os.Remove(filepath.Join(c.uploadDir, fmt.Sprintf("%s.pdf", id)))

	return nil
}

func (c *documentService) Reprocess(ctx context.Context, tenantId uuid.UUID, id uuid.UUID) error {
	if c.guard.IsProcessing(id) {
		return ErrDocumentProcessing
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.TenantOwnedBy{TenantId: tenantId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return os.ErrNotExist
	}

	path := filepath.Join(c.uploadDir, fmt.Sprintf("%s.pdf", id))
	if _, err := os.Stat(path); err != nil {
		return err
	}

	msgPayload := dto.ProcessDocumentMessage{
		DocumentId: document.Id,
		TenantId:   tenantId,
		FileName:   document.FileName,
		FilePath:   path,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return err
	}

	return c.publisherService.Publish(ctx, msgJson)
}
