package monitor

import (
	"errors"

	"case_radar_go/models"

	"gorm.io/gorm"
)

// Service owns the monitoring lifecycle of a case: enroll, pause, resume,
// stop. A case has at most one monitoring row; it is never deleted while the
// case exists and transitions to STOPPED when the case is removed.
type Service struct {
	DB *gorm.DB
}

// NewService creates a monitoring lifecycle service
func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// EnsureMonitored enrolls a case for monitoring, or updates cadence/sources on
// the existing row. Re-enrolling a stopped case reactivates it.
func (s *Service) EnsureMonitored(caseID string, checkFrequency int, sources []string) (*models.MonitoredCase, error) {
	if checkFrequency <= 0 {
		checkFrequency = 86400
	}
	if len(sources) == 0 {
		sources = []string{models.SourceRamaJudicial}
	}

	var mc models.MonitoredCase
	err := s.DB.Where("case_id = ?", caseID).First(&mc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		mc = models.MonitoredCase{
			CaseID:         caseID,
			CheckFrequency: checkFrequency,
			Status:         models.MonitoringStatusActive,
			Sources:        models.StringList(sources),
		}
		if err := s.DB.Create(&mc).Error; err != nil {
			return nil, err
		}
		return &mc, nil
	}
	if err != nil {
		return nil, err
	}

	mc.CheckFrequency = checkFrequency
	mc.Sources = models.StringList(sources)
	mc.Status = models.MonitoringStatusActive
	if err := s.DB.Save(&mc).Error; err != nil {
		return nil, err
	}
	return &mc, nil
}

// Get returns the monitoring row for a case
func (s *Service) Get(caseID string) (*models.MonitoredCase, error) {
	var mc models.MonitoredCase
	if err := s.DB.Where("case_id = ?", caseID).First(&mc).Error; err != nil {
		return nil, err
	}
	return &mc, nil
}

// Pause suspends checks without losing cadence state
func (s *Service) Pause(caseID string) error {
	return s.setStatus(caseID, models.MonitoringStatusPaused)
}

// Resume reactivates a paused case
func (s *Service) Resume(caseID string) error {
	return s.setStatus(caseID, models.MonitoringStatusActive)
}

// Stop permanently halts monitoring (called when the parent case is removed)
func (s *Service) Stop(caseID string) error {
	return s.setStatus(caseID, models.MonitoringStatusStopped)
}

func (s *Service) setStatus(caseID, status string) error {
	result := s.DB.Model(&models.MonitoredCase{}).
		Where("case_id = ?", caseID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
