package monitor

import (
	"fmt"
	"log"

	"case_radar_go/models"
	"case_radar_go/services/rules"

	"gorm.io/gorm"
)

// Dispatcher turns change-log entries into in-app notifications, one per
// entry per interested user, with the priority decided by the rule engine.
type Dispatcher struct {
	db       *gorm.DB
	engine   *rules.Engine
	baseline int
}

// NewDispatcher creates a dispatcher with the given baseline priority
func NewDispatcher(db *gorm.DB, engine *rules.Engine, baseline int) *Dispatcher {
	return &Dispatcher{db: db, engine: engine, baseline: baseline}
}

// DispatchChangeSet fans a change set out to every interested user. A change
// always produces a notification (at baseline priority when no rule matches)
// so nothing is silently dropped.
func (d *Dispatcher) DispatchChangeSet(kase *models.Case, cs *ChangeSet) error {
	if len(cs.Entries) == 0 {
		return nil
	}

	userIDs, err := d.interestedUsers(kase)
	if err != nil {
		return err
	}
	if len(userIDs) == 0 {
		log.Printf("[MONITOR] No users to notify for case %s", kase.ID)
		return nil
	}

	actsByID := make(map[string]*models.CaseAct, len(cs.NewActs))
	for _, act := range cs.NewActs {
		actsByID[act.ID] = act
	}

	for _, entry := range cs.Entries {
		change := &rules.ChangeContext{Entry: entry}
		if entry.ActID != nil {
			change.Act = actsByID[*entry.ActID]
		}

		for _, userID := range userIDs {
			if err := d.notifyUser(userID, kase, entry, change); err != nil {
				log.Printf("[MONITOR] Failed to notify user %s for entry %s: %v", userID, entry.ID, err)
			}
		}

		if change.Act != nil && !change.Act.Notified {
			change.Act.Notified = true
			if err := d.db.Model(change.Act).Update("notified", true).Error; err != nil {
				log.Printf("[MONITOR] Failed to mark act %s notified: %v", change.Act.ID, err)
			}
		}
	}

	return nil
}

func (d *Dispatcher) notifyUser(userID string, kase *models.Case, entry *models.CaseChangeLogEntry, change *rules.ChangeContext) error {
	ruleList, err := d.engine.RulesForUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	priority := d.engine.Score(kase, change, ruleList, d.baseline)

	notification := models.Notification{
		UserID:           userID,
		CaseID:           &kase.ID,
		ActID:            entry.ActID,
		ChangeLogEntryID: &entry.ID,
		Type:             models.NotificationTypeJudicialUpdate,
		Priority:         priority,
		Title:            notificationTitle(entry, change),
		Message:          notificationMessage(entry, change),
		LinkURL:          fmt.Sprintf("/cases/%s", kase.ID),
		Metadata: models.JSONMap{
			"change_type": entry.ChangeType,
			"source":      entry.Source,
		},
	}
	return d.db.Create(&notification).Error
}

// interestedUsers returns every user holding at least one enabled rule, plus
// the case's assigned lawyer as the baseline recipient.
func (d *Dispatcher) interestedUsers(kase *models.Case) ([]string, error) {
	var userIDs []string
	err := d.db.Model(&models.NotificationRule{}).
		Where("enabled = ?", true).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load rule owners: %w", err)
	}

	if kase.AssignedToID != nil {
		found := false
		for _, id := range userIDs {
			if id == *kase.AssignedToID {
				found = true
				break
			}
		}
		if !found {
			userIDs = append(userIDs, *kase.AssignedToID)
		}
	}

	return userIDs, nil
}

func notificationTitle(entry *models.CaseChangeLogEntry, change *rules.ChangeContext) string {
	switch entry.ChangeType {
	case models.ChangeTypeNewAct:
		if change.Act != nil {
			return fmt.Sprintf("Nueva actuación: %s", change.Act.Type)
		}
		return "Nueva actuación"
	case models.ChangeTypeStatusChange:
		return "Cambio de estado del proceso"
	case models.ChangeTypePartyChange:
		return "Cambio en sujetos procesales"
	case models.ChangeTypeNewDocument:
		return "Nuevo documento en el proceso"
	}
	return "Actualización del proceso"
}

func notificationMessage(entry *models.CaseChangeLogEntry, change *rules.ChangeContext) string {
	if change.Act != nil && change.Act.Annotation != "" {
		return change.Act.Annotation
	}
	if entry.NewValue != "" {
		if entry.OldValue != "" {
			return fmt.Sprintf("%s → %s", entry.OldValue, entry.NewValue)
		}
		return entry.NewValue
	}
	return ""
}
