// Package pipeline sequences a document's processing run: text extraction,
// chunking, classification, embedding and structured extraction in parallel,
// then validation. Each stage commits its own transaction so a cancelled run
// leaves the document in a well-defined intermediate state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"policy-intel-be/internal/constant"
	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/repository/memory"
	"policy-intel-be/internal/repository/specification"
	"policy-intel-be/internal/repository/unitofwork"
	"policy-intel-be/pkg/chunker"
	"policy-intel-be/pkg/classify"
	"policy-intel-be/pkg/embedding"
	"policy-intel-be/pkg/extraction"
	"policy-intel-be/pkg/pdf"
	"policy-intel-be/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAlreadyProcessing is returned when a run is requested for a document
// that already has one active.
var ErrAlreadyProcessing = errors.New("pipeline: document is already processing")

// Request identifies one document run.
type Request struct {
	DocumentId uuid.UUID
	TenantId   uuid.UUID
	FileName   string
	FilePath   string
}

// Runner owns the stage sequence for document runs.
type Runner struct {
	factory        unitofwork.RepositoryFactory
	guard          *memory.ProcessingGuard
	textExtractor  *pdf.Extractor
	chunkOpts      chunker.Options
	classifier     *classify.Classifier
	fieldExtractor *extraction.Extractor
	batcher        *embedding.Batcher
	notifier       Notifier
	logger         *zap.Logger
}

func NewRunner(
	factory unitofwork.RepositoryFactory,
	guard *memory.ProcessingGuard,
	textExtractor *pdf.Extractor,
	chunkOpts chunker.Options,
	classifier *classify.Classifier,
	fieldExtractor *extraction.Extractor,
	batcher *embedding.Batcher,
	notifier Notifier,
	logger *zap.Logger,
) *Runner {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Runner{
		factory:        factory,
		guard:          guard,
		textExtractor:  textExtractor,
		chunkOpts:      chunkOpts,
		classifier:     classifier,
		fieldExtractor: fieldExtractor,
		batcher:        batcher,
		notifier:       notifier,
		logger:         logger,
	}
}

// Run executes the full pipeline for one document. Exactly one run may be
// active per document; a concurrent request fails with ErrAlreadyProcessing.
func (r *Runner) Run(ctx context.Context, req Request) error {
	if !r.guard.TryAcquire(req.DocumentId) {
		return ErrAlreadyProcessing
	}
	defer r.guard.Release(req.DocumentId)

	log := r.logger.With(
		zap.String("document_id", req.DocumentId.String()),
		zap.String("tenant_id", req.TenantId.String()),
	)

	started := time.Now()
	if err := r.process(ctx, req, log); err != nil {
		log.Error("pipeline run failed", zap.Error(err))
		r.markFailed(req, err)
		r.notifier.PublishCompletion(context.WithoutCancel(ctx), CompletionEvent{
			DocumentId: req.DocumentId,
			TenantId:   req.TenantId,
			FileName:   req.FileName,
			Success:    false,
			Error:      err.Error(),
		})
		return err
	}

	log.Info("pipeline run complete", zap.Duration("elapsed", time.Since(started)))
	return nil
}

func (r *Runner) process(ctx context.Context, req Request, log *zap.Logger) error {
	// Stage 1: text extraction. Malformed input is terminal, no retry.
	r.progress(ctx, req, constant.StageExtractingText, 10, "extracting page text")

	data, err := os.ReadFile(req.FilePath)
	if err != nil {
		return fmt.Errorf("read uploaded file: %w", err)
	}

	extracted := r.textExtractor.Extract(data, req.FileName)
	if !extracted.Success {
		return fmt.Errorf("text extraction failed: %s", extracted.Error)
	}

	if err := r.commitPages(ctx, req, extracted); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Stage 2: chunking.
	r.progress(ctx, req, constant.StageChunking, 25, "chunking document text")

	chunks := chunker.Split(extracted.Pages, r.chunkOpts)
	chunkEntities, err := r.commitChunks(ctx, req, chunks)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Stage 3: classification. Failure degrades, it does not block.
	r.progress(ctx, req, constant.StageClassifying, 40, "classifying document")

	classification, classifyErr := r.classifier.Classify(ctx, extracted.Pages, req.FileName)
	if classifyErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("classification degraded", zap.Error(classifyErr))
	}
	if err := r.commitClassification(ctx, req, classification, chunks, chunkEntities); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Stages 4+5: embedding and structured extraction only need chunk text,
	// so they run in parallel. Both must finish before completion.
	r.progress(ctx, req, constant.StageEmbedding, 60, "embedding chunks and extracting fields")

	var (
		wg            sync.WaitGroup
		embedErr      error
		extractResult *extraction.Result
		extractErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		embedErr = r.embedChunks(ctx, req, chunkEntities)
	}()
	go func() {
		defer wg.Done()
		extractResult, extractErr = r.fieldExtractor.Extract(ctx, chunks, classification.CoveragesDetected)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if embedErr != nil {
		// Failed batches already isolated to their chunks; a total failure
		// still lets retrieval work with whatever embedded.
		log.Warn("embedding degraded", zap.Error(embedErr))
	}
	if extractErr != nil {
		log.Warn("structured extraction degraded", zap.Error(extractErr))
		extractResult = &extraction.Result{
			Policy: &extraction.PolicyRecord{Status: constant.PolicyStatusQuote, Confidence: 0.3},
			Notes:  []string{fmt.Sprintf("structured extraction failed: %v", extractErr)},
		}
	}
	for _, note := range extractResult.Notes {
		log.Info("extraction note", zap.String("note", note))
	}

	r.progress(ctx, req, constant.StageExtractingFields, 75, "structured extraction committed")

	// Stage 6: validation and final rollup.
	r.progress(ctx, req, constant.StageValidating, 90, "validating extracted records")

	validated := validation.ValidateDocument(extractResult, classification.DocumentType, classification.Confidence)

	policyId, coverageCount, err := r.commitResults(ctx, req, classification, extractResult, &validated)
	if err != nil {
		return err
	}

	r.notifier.PublishCompletion(context.WithoutCancel(ctx), CompletionEvent{
		DocumentId:       req.DocumentId,
		TenantId:         req.TenantId,
		FileName:         req.FileName,
		Success:          true,
		PolicyId:         &policyId,
		CoverageCount:    coverageCount,
		Confidence:       validated.OverallConfidence,
		NeedsHumanReview: validated.NeedsHumanReview,
	})
	return nil
}

// commitPages persists raw pages and the document's quality rollup in one
// transaction, and moves the document into processing.
func (r *Runner) commitPages(ctx context.Context, req Request, extracted *pdf.Result) error {
	return r.inTx(ctx, func(uow unitofwork.UnitOfWork) error {
		doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.DocumentId})
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("document %s not found", req.DocumentId)
		}

		// Reprocessing replaces any prior pages.
		if err := uow.DocumentPageRepository().DeleteByDocumentId(ctx, req.DocumentId); err != nil {
			return err
		}

		pages := make([]*entity.DocumentPage, 0, len(extracted.Pages))
		for number, text := range extracted.Pages {
			pages = append(pages, &entity.DocumentPage{
				Id:         uuid.New(),
				DocumentId: req.DocumentId,
				PageNumber: number,
				Text:       text,
				IsScanned:  len(text) == 0,
			})
		}
		if err := uow.DocumentPageRepository().CreateBulk(ctx, pages); err != nil {
			return err
		}

		doc.Status = constant.DocumentStatusProcessing
		doc.Stage = constant.StageExtractingText
		doc.PageCount = extracted.PageCount
		doc.QualityScore = extracted.QualityScore
		doc.ScannedPageCount = extracted.ScannedPageCount
		doc.AppearsScanned = extracted.AppearsScanned
		doc.IsHybrid = extracted.IsHybrid
		doc.ErrorMessage = nil
		return uow.DocumentRepository().Update(ctx, doc)
	})
}

// commitChunks replaces the document's chunks and returns the persisted
// entities in chunk-index order.
func (r *Runner) commitChunks(ctx context.Context, req Request, chunks []chunker.Chunk) ([]*entity.Chunk, error) {
	entities := make([]*entity.Chunk, len(chunks))
	err := r.inTx(ctx, func(uow unitofwork.UnitOfWork) error {
		if err := uow.ChunkEmbeddingRepository().DeleteByDocumentId(ctx, req.DocumentId); err != nil {
			return err
		}
		if err := uow.ChunkRepository().DeleteByDocumentId(ctx, req.DocumentId); err != nil {
			return err
		}

		for i, c := range chunks {
			entities[i] = &entity.Chunk{
				Id:            uuid.New(),
				DocumentId:    req.DocumentId,
				Index:         c.Index,
				Text:          c.Text,
				StartPage:     c.StartPage,
				EndPage:       c.EndPage,
				TokenEstimate: c.TokenEstimate,
				SectionType:   c.SectionType,
			}
		}
		if err := uow.ChunkRepository().CreateBulk(ctx, entities); err != nil {
			return err
		}
		return uow.DocumentRepository().UpdateStage(ctx, req.DocumentId, constant.StageChunking)
	})
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// commitClassification records the document type and retags chunk sections
// from the classifier's section ranges. Retagging is advisory metadata.
func (r *Runner) commitClassification(ctx context.Context, req Request, classification *classify.Result, chunks []chunker.Chunk, chunkEntities []*entity.Chunk) error {
	sections := make([]chunker.Section, len(classification.Sections))
	for i, s := range classification.Sections {
		sections[i] = chunker.Section{Type: s.Type, StartPage: s.StartPage, EndPage: s.EndPage}
	}
	chunker.Retag(chunks, sections)

	return r.inTx(ctx, func(uow unitofwork.UnitOfWork) error {
		for i, c := range chunks {
			if chunkEntities[i].SectionType == c.SectionType {
				continue
			}
			chunkEntities[i].SectionType = c.SectionType
			if err := uow.ChunkRepository().Update(ctx, chunkEntities[i]); err != nil {
				return err
			}
		}

		doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.DocumentId})
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("document %s not found", req.DocumentId)
		}
		doc.DocumentType = classification.DocumentType
		doc.Stage = constant.StageClassifying
		return uow.DocumentRepository().Update(ctx, doc)
	})
}

// embedChunks embeds all chunk texts and stores vectors for the batches that
// succeeded, marking only those chunks embedded.
func (r *Runner) embedChunks(ctx context.Context, req Request, chunkEntities []*entity.Chunk) error {
	texts := make([]string, len(chunkEntities))
	for i, c := range chunkEntities {
		texts[i] = c.Text
	}

	report, err := r.batcher.EmbedAll(ctx, texts)
	if err != nil {
		return err
	}

	failed := make(map[int]bool, len(report.FailedIndexes))
	for _, i := range report.FailedIndexes {
		failed[i] = true
	}

	var (
		embeddings  []*entity.ChunkEmbedding
		embeddedIds []uuid.UUID
	)
	for i, vec := range report.Vectors {
		if failed[i] || vec == nil {
			continue
		}
		embeddings = append(embeddings, &entity.ChunkEmbedding{
			Id:         uuid.New(),
			ChunkId:    chunkEntities[i].Id,
			DocumentId: req.DocumentId,
			Vector:     vec,
		})
		embeddedIds = append(embeddedIds, chunkEntities[i].Id)
	}

	txErr := r.inTx(ctx, func(uow unitofwork.UnitOfWork) error {
		if err := uow.ChunkEmbeddingRepository().CreateBulk(ctx, embeddings); err != nil {
			return err
		}
		if err := uow.ChunkRepository().MarkEmbedded(ctx, embeddedIds); err != nil {
			return err
		}
		return uow.DocumentRepository().UpdateStage(ctx, req.DocumentId, constant.StageEmbedding)
	})
	if txErr != nil {
		return txErr
	}

	if len(report.FailedIndexes) > 0 {
		return fmt.Errorf("%d of %d chunks failed to embed: %w",
			len(report.FailedIndexes), len(texts), report.FirstErr)
	}
	return nil
}

// commitResults persists the policy, coverages, validation issues, and the
// document's final rollup in one transaction.
func (r *Runner) commitResults(ctx context.Context, req Request, classification *classify.Result, extracted *extraction.Result, validated *validation.DocumentResult) (uuid.UUID, int, error) {
	policyId := uuid.New()
	coverageCount := 0

	err := r.inTx(ctx, func(uow unitofwork.UnitOfWork) error {
		// Reprocessing replaces prior extraction output.
		prior, err := uow.PolicyRepository().FindOne(ctx, specification.ByDocumentID{DocumentId: req.DocumentId})
		if err != nil {
			return err
		}
		if prior != nil {
			if err := uow.CoverageRepository().DeleteByPolicyId(ctx, prior.Id); err != nil {
				return err
			}
			if err := uow.PolicyRepository().DeleteByDocumentId(ctx, req.DocumentId); err != nil {
				return err
			}
		}
		if err := uow.ValidationIssueRepository().DeleteByDocumentId(ctx, req.DocumentId); err != nil {
			return err
		}

		policy := policyEntity(policyId, req, extracted.Policy, validated.Policy.AdjustedConfidence)
		if err := uow.PolicyRepository().Create(ctx, policy); err != nil {
			return err
		}

		coverages := make([]*entity.Coverage, 0, len(extracted.Coverages))
		for i := range extracted.Coverages {
			coverages = append(coverages, coverageEntity(policyId, &extracted.Coverages[i], validated.Coverages[i].AdjustedConfidence))
		}
		if err := uow.CoverageRepository().CreateBulk(ctx, coverages); err != nil {
			return err
		}
		coverageCount = len(coverages)

		if err := uow.ValidationIssueRepository().CreateBulk(ctx, issueEntities(req.DocumentId, validated)); err != nil {
			return err
		}

		doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.DocumentId})
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("document %s not found", req.DocumentId)
		}
		doc.Status = constant.DocumentStatusCompleted
		doc.Stage = constant.StageValidating
		doc.DocumentType = classification.DocumentType
		doc.OverallConfidence = validated.OverallConfidence
		doc.NeedsHumanReview = validated.NeedsHumanReview
		return uow.DocumentRepository().Update(ctx, doc)
	})
	if err != nil {
		return uuid.Nil, 0, err
	}
	return policyId, coverageCount, nil
}

// markFailed records the terminal failure outside the run's cancelled
// context so the status write still lands.
func (r *Runner) markFailed(req Request, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := r.inTx(ctx, func(uow unitofwork.UnitOfWork) error {
		doc, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.DocumentId})
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("document %s not found", req.DocumentId)
		}
		message := cause.Error()
		doc.Status = constant.DocumentStatusFailed
		doc.ErrorMessage = &message
		return uow.DocumentRepository().Update(ctx, doc)
	})
	if err != nil {
		r.logger.Error("failed to mark document failed",
			zap.String("document_id", req.DocumentId.String()), zap.Error(err))
	}
}

func (r *Runner) inTx(ctx context.Context, fn func(uow unitofwork.UnitOfWork) error) error {
	uow := r.factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

func (r *Runner) progress(ctx context.Context, req Request, stage string, percent int, message string) {
	r.notifier.PublishProgress(ctx, ProgressEvent{
		DocumentId:      req.DocumentId,
		TenantId:        req.TenantId,
		Stage:           stage,
		ProgressPercent: percent,
		Message:         message,
	})
}

func policyEntity(id uuid.UUID, req Request, p *extraction.PolicyRecord, confidence float64) *entity.Policy {
	status := p.Status
	switch status {
	case constant.PolicyStatusQuote, constant.PolicyStatusBound, constant.PolicyStatusActive:
	default:
		status = constant.PolicyStatusQuote
	}
	return &entity.Policy{
		Id:             id,
		TenantId:       req.TenantId,
		DocumentId:     req.DocumentId,
		PolicyNumber:   p.PolicyNumber,
		CarrierName:    p.CarrierName,
		NAICCode:       p.NAICCode,
		InsuredName:    p.InsuredName,
		InsuredAddress: p.InsuredAddress,
		EffectiveDate:  parseDatePtr(p.EffectiveDate),
		ExpirationDate: parseDatePtr(p.ExpirationDate),
		TotalPremium:   p.TotalPremium,
		Status:         status,
		Confidence:     confidence,
	}
}

func coverageEntity(policyId uuid.UUID, c *extraction.CoverageRecord, confidence float64) *entity.Coverage {
	return &entity.Coverage{
		Id:                  uuid.New(),
		PolicyId:            policyId,
		CoverageType:        c.CoverageType,
		Subtype:             c.Subtype,
		EachOccurrenceLimit: c.EachOccurrenceLimit,
		AggregateLimit:      c.AggregateLimit,
		Deductible:          c.Deductible,
		Premium:             c.Premium,
		IsClaimsMade:        c.IsClaimsMade,
		IsOccurrenceForm:    c.IsOccurrenceForm,
		RetroactiveDate:     parseDatePtr(c.RetroactiveDate),
		Details:             c.Details,
		Confidence:          confidence,
	}
}

func issueEntities(documentId uuid.UUID, validated *validation.DocumentResult) []*entity.ValidationIssue {
	var issues []*entity.ValidationIssue
	appendIssues := func(list []validation.Issue) {
		for _, issue := range list {
			issues = append(issues, &entity.ValidationIssue{
				Id:         uuid.New(),
				DocumentId: documentId,
				Severity:   issue.Severity,
				Field:      issue.Field,
				Message:    issue.Message,
				Code:       issue.Code,
			})
		}
	}
	appendIssues(validated.Policy.Errors)
	appendIssues(validated.Policy.Warnings)
	for _, cu := range validated.Coverages {
		appendIssues(cu.Errors)
		appendIssues(cu.Warnings)
	}
	appendIssues(validated.DocumentIssues)
	return issues
}

func parseDatePtr(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}
