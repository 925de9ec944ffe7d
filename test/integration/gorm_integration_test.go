package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"policy-intel-be/internal/constant"
	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/repository/specification"
	"policy-intel-be/internal/repository/unitofwork"
	"policy-intel-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.DocumentRepository())
	assert.NotNil(t, uow.ChunkEmbeddingRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check Document Repository", func(t *testing.T) {
		count, err := uow.DocumentRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Document count: %d", count)
	})

	t.Run("Check Chunk Repository", func(t *testing.T) {
		count, err := uow.ChunkRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Chunk count: %d", count)
	})

	t.Run("Check Transactional Document Pipeline Writes", func(t *testing.T) {
		ctx := context.Background()
		tenantId := uuid.New()

		documentId := uuid.New()
		document := &entity.Document{
			Id:           documentId,
			TenantId:     tenantId,
			FileName:     "integration-test.pdf",
			DocumentType: constant.DocumentTypeUnknown,
			Status:       constant.DocumentStatusUploaded,
			CreatedAt:    time.Now(),
		}
		err := uow.DocumentRepository().Create(ctx, document)
		assert.NoError(t, err)

		// Transaction Test: chunk + policy written atomically
		err = uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		chunk := &entity.Chunk{
			Id:            uuid.New(),
			DocumentId:    documentId,
			Index:         0,
			Text:          "COMMERCIAL GENERAL LIABILITY DECLARATIONS",
			StartPage:     1,
			EndPage:       1,
			TokenEstimate: 8,
			SectionType:   constant.SectionDeclarations,
			CreatedAt:     time.Now(),
		}
		err = uow.ChunkRepository().CreateBulk(ctx, []*entity.Chunk{chunk})
		assert.NoError(t, err)

		policyNumber := "GL-INTEGRATION-001"
		policy := &entity.Policy{
			Id:           uuid.New(),
			TenantId:     tenantId,
			DocumentId:   documentId,
			PolicyNumber: &policyNumber,
			Status:       constant.PolicyStatusQuote,
			Confidence:   0.9,
			CreatedAt:    time.Now(),
		}
		err = uow.PolicyRepository().Create(ctx, policy)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		// Read back through the tenant scope
		found, err := uow.PolicyRepository().FindOne(ctx,
			specification.ByDocumentID{DocumentId: documentId},
			specification.TenantOwnedBy{TenantId: tenantId},
		)
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, policyNumber, *found.PolicyNumber)
		}

		t.Log("Successfully created Document, Chunk and Policy in Transaction")
	})
}
