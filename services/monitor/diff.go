package monitor

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"case_radar_go/models"
	"case_radar_go/services/judicial"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

// ChangeSet is the result of diffing a fresh snapshot against the case's last
// known state. NewActs and Entries are already persisted when Apply returns.
type ChangeSet struct {
	CaseID    string
	Source    string
	NewHash   string
	Unchanged bool

	NewActs []*models.CaseAct
	Entries []*models.CaseChangeLogEntry
}

// DiffEngine turns raw snapshots into change-log entries and act upserts.
// Act text from the external sources is stripped of any HTML before it is
// persisted or matched against rules.
type DiffEngine struct {
	db        *gorm.DB
	sanitizer *bluemonday.Policy
}

// NewDiffEngine creates a diff engine on the given database
func NewDiffEngine(db *gorm.DB) *DiffEngine {
	return &DiffEngine{
		db:        db,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Apply compares the snapshot against the monitored case's last known state,
// persists act upserts and change-log entries, and advances last_data_hash.
// It short-circuits when the snapshot fingerprint matches the stored hash.
func (d *DiffEngine) Apply(mc *models.MonitoredCase, source string, snapshot *judicial.CaseSnapshot) (*ChangeSet, error) {
	cs := &ChangeSet{
		CaseID:  mc.CaseID,
		Source:  source,
		NewHash: HashSnapshot(snapshot),
	}

	if cs.NewHash == mc.LastDataHash {
		cs.Unchanged = true
		return cs, nil
	}

	if err := d.diffStatus(mc, snapshot, cs); err != nil {
		return nil, err
	}
	if err := d.diffParties(mc, snapshot, cs); err != nil {
		return nil, err
	}
	if err := d.diffActs(mc, source, snapshot, cs); err != nil {
		return nil, err
	}

	mc.LastDataHash = cs.NewHash
	mc.LastStatus = snapshot.Status
	if err := d.db.Model(mc).Updates(map[string]interface{}{
		"last_data_hash": mc.LastDataHash,
		"last_status":    mc.LastStatus,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to persist snapshot hash: %w", err)
	}

	return cs, nil
}

func (d *DiffEngine) diffStatus(mc *models.MonitoredCase, snapshot *judicial.CaseSnapshot, cs *ChangeSet) error {
	if snapshot.Status == "" || snapshot.Status == mc.LastStatus {
		return nil
	}
	// First observation of a status is a baseline, not a change
	if mc.LastStatus == "" {
		return nil
	}

	entry := &models.CaseChangeLogEntry{
		CaseID:     mc.CaseID,
		Source:     cs.Source,
		ChangeType: models.ChangeTypeStatusChange,
		OldValue:   mc.LastStatus,
		NewValue:   snapshot.Status,
	}
	if err := d.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record status change: %w", err)
	}
	cs.Entries = append(cs.Entries, entry)
	return nil
}

// diffParties replaces the stored party set with the snapshot's, but only when
// the snapshot actually carries parties. A partial fetch returning an empty
// list must not wipe what we already know.
func (d *DiffEngine) diffParties(mc *models.MonitoredCase, snapshot *judicial.CaseSnapshot, cs *ChangeSet) error {
	if len(snapshot.Parties) == 0 {
		return nil
	}

	var existing []models.CaseParty
	if err := d.db.Where("case_id = ?", mc.CaseID).Find(&existing).Error; err != nil {
		return fmt.Errorf("failed to load parties: %w", err)
	}

	// Sanitize before fingerprinting: stored parties are sanitized, so the
	// comparison must be sanitized-vs-sanitized or markup in a name would make
	// the sets permanently unequal.
	incoming := make([]models.CaseParty, 0, len(snapshot.Parties))
	for _, p := range snapshot.Parties {
		party := models.CaseParty{
			CaseID: mc.CaseID,
			Role:   p.Role,
			Name:   d.sanitizer.Sanitize(p.Name),
		}
		if p.Document != "" {
			doc := p.Document
			party.DocumentNumber = &doc
		}
		incoming = append(incoming, party)
	}

	oldSet := partyFingerprint(existing)
	newSet := partyFingerprint(incoming)
	if oldSet == newSet {
		return nil
	}

	if err := d.db.Where("case_id = ?", mc.CaseID).Delete(&models.CaseParty{}).Error; err != nil {
		return fmt.Errorf("failed to clear parties: %w", err)
	}
	for i := range incoming {
		if err := d.db.Create(&incoming[i]).Error; err != nil {
			return fmt.Errorf("failed to create party: %w", err)
		}
	}

	// Only log a change when there was a previous set to change from
	if len(existing) > 0 {
		entry := &models.CaseChangeLogEntry{
			CaseID:     mc.CaseID,
			Source:     cs.Source,
			ChangeType: models.ChangeTypePartyChange,
			OldValue:   oldSet,
			NewValue:   newSet,
		}
		if err := d.db.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to record party change: %w", err)
		}
		cs.Entries = append(cs.Entries, entry)
	}
	return nil
}

func (d *DiffEngine) diffActs(mc *models.MonitoredCase, source string, snapshot *judicial.CaseSnapshot, cs *ChangeSet) error {
	for i := range snapshot.Acts {
		snapAct := &snapshot.Acts[i]
		uniqKey := ActUniqKey(snapAct)

		var existing models.CaseAct
		err := d.db.Where("case_id = ? AND uniq_key = ?", mc.CaseID, uniqKey).First(&existing).Error

		switch {
		case err == nil:
			if err := d.updateAct(&existing, snapAct); err != nil {
				log.Printf("[MONITOR] Failed to update act %s on case %s: %v", uniqKey, mc.CaseID, err)
			}

		case errors.Is(err, gorm.ErrRecordNotFound):
			act, entry, createErr := d.createAct(mc.CaseID, source, uniqKey, snapAct)
			if createErr != nil {
				return createErr
			}
			cs.NewActs = append(cs.NewActs, act)
			cs.Entries = append(cs.Entries, entry)

		default:
			return fmt.Errorf("failed to check act existence: %w", err)
		}
	}
	return nil
}

// updateAct refreshes mutable fields of a known act. The uniq_key never
// changes, and classification fields are left to the classifier.
func (d *DiffEngine) updateAct(existing *models.CaseAct, snapAct *judicial.SnapshotAct) error {
	annotation := d.sanitizer.Sanitize(snapAct.Annotation)
	description := d.sanitizer.Sanitize(snapAct.Description)

	changed := existing.Type != snapAct.Type ||
		existing.Annotation != annotation ||
		existing.Description != description ||
		!existing.OccurredOn.Equal(snapAct.Date)

	if !changed {
		return nil
	}

	existing.Type = snapAct.Type
	existing.Annotation = annotation
	existing.Description = description
	existing.OccurredOn = snapAct.Date
	return d.db.Save(existing).Error
}

func (d *DiffEngine) createAct(caseID, source, uniqKey string, snapAct *judicial.SnapshotAct) (*models.CaseAct, *models.CaseChangeLogEntry, error) {
	act := &models.CaseAct{
		CaseID:      caseID,
		UniqKey:     uniqKey,
		Source:      source,
		OccurredOn:  snapAct.Date,
		Type:        snapAct.Type,
		Annotation:  d.sanitizer.Sanitize(snapAct.Annotation),
		Description: d.sanitizer.Sanitize(snapAct.Description),
	}
	if snapAct.DocumentURL != "" {
		u := snapAct.DocumentURL
		act.DocumentURL = &u
	}
	// Explicit term dates from the source seed the deadline window; the
	// classifier decides whether the act is actually perentorio.
	act.DeadlineStart = snapAct.InitialDate
	act.DeadlineEnd = snapAct.FinalDate
	if err := d.db.Create(act).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create act: %w", err)
	}

	entry := &models.CaseChangeLogEntry{
		CaseID:     caseID,
		Source:     source,
		ChangeType: models.ChangeTypeNewAct,
		NewValue:   strings.TrimSpace(act.Type + ": " + act.Annotation),
		ActID:      &act.ID,
		DetectedAt: time.Now().UTC(),
	}
	if err := d.db.Create(entry).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to record new act: %w", err)
	}

	return act, entry, nil
}

func partyFingerprint(parties []models.CaseParty) string {
	parts := make([]string, 0, len(parties))
	for _, p := range parties {
		parts = append(parts, p.Role+":"+p.Name)
	}
	sort.Strings(parts)
	return strings.Join(parts, " | ")
}
