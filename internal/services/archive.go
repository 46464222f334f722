package services

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/haoyun-crm/feishu-intake-bot/internal/models"
)

// ArchiveService mirrors created intake records into the local Postgres
// archive. The Bitable row is the source of truth; a failed archive write
// is logged and otherwise ignored.
type ArchiveService struct {
	db *gorm.DB
}

// NewArchiveService creates an archive writer over the given database.
func NewArchiveService(db *gorm.DB) *ArchiveService {
	return &ArchiveService{db: db}
}

// SaveCustomer stores one archived record.
func (a *ArchiveService) SaveCustomer(ctx context.Context, record *models.CustomerArchive) {
	if err := a.db.WithContext(ctx).Create(record).Error; err != nil {
		log.Printf("Failed to archive customer record %s: %v", record.RecordID, err)
	}
}

// Count returns the number of archived records, for health reporting.
func (a *ArchiveService) Count(ctx context.Context) int64 {
	var count int64
	if err := a.db.WithContext(ctx).Model(&models.CustomerArchive{}).Count(&count).Error; err != nil {
		log.Printf("Failed to count archived records: %v", err)
		return -1
	}
	return count
}
