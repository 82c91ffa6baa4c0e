package services

import (
	"gorm.io/gorm"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
)

// HistoryService records and lists the audit trail of project mutations.
type HistoryService struct{ DB *gorm.DB }

func NewHistoryService(db *gorm.DB) *HistoryService { return &HistoryService{DB: db} }

// Record appends one history entry. Failures are returned but callers treat
// history as best-effort and do not roll back the mutation itself.
func (s *HistoryService) Record(projectID, userID uint, action, field, oldValue, newValue string) error {
	entry := models.ProjectHistory{
		ProjectID: projectID,
		UserID:    userID,
		Action:    action,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
	}
	return s.DB.Create(&entry).Error
}

// List returns a project's history, newest first.
func (s *HistoryService) List(projectID uint) ([]models.ProjectHistory, error) {
	var entries []models.ProjectHistory
	err := s.DB.Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at desc, id desc").
		Find(&entries).Error
	return entries, err
}
