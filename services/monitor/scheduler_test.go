package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"case_radar_go/models"
	"case_radar_go/services/judicial"
	"case_radar_go/services/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) GetNormalizedCase(ctx context.Context, radicado string) (*judicial.CaseSnapshot, error) {
	args := m.Called(ctx, radicado)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*judicial.CaseSnapshot), args.Error(1)
}

func newTestScheduler(database *gorm.DB) *Scheduler {
	return NewScheduler(database, rules.NewCache(rules.DefaultTTL), DefaultSchedulerOptions())
}

func createTestUser(t *testing.T, database *gorm.DB, email string) *models.User {
	user := &models.User{Name: "Test User", Email: email, IsActive: true}
	if err := database.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func TestSelectDue(t *testing.T) {
	database := setupMonitorTestDB(t)
	scheduler := newTestScheduler(database)
	now := time.Now().UTC()

	makeCase := func(suffix string, lastCheck *time.Time, status string) *models.MonitoredCase {
		kase := &models.Case{CaseNumber: "CASE-" + suffix, Status: "OPEN", OpenedAt: now}
		if err := database.Create(kase).Error; err != nil {
			t.Fatalf("Failed to create case: %v", err)
		}
		mc := &models.MonitoredCase{
			CaseID:         kase.ID,
			CheckFrequency: 3600,
			LastCheck:      lastCheck,
			Status:         status,
		}
		if err := database.Create(mc).Error; err != nil {
			t.Fatalf("Failed to create monitored case: %v", err)
		}
		return mc
	}

	overdue := now.Add(-3601 * time.Second)
	fresh := now.Add(-3599 * time.Second)

	never := makeCase("never", nil, models.MonitoringStatusActive)
	due := makeCase("due", &overdue, models.MonitoringStatusActive)
	makeCase("fresh", &fresh, models.MonitoringStatusActive)
	makeCase("paused", &overdue, models.MonitoringStatusPaused)

	selected, err := scheduler.SelectDue(now)
	assert.NoError(t, err)

	ids := make([]string, 0, len(selected))
	for _, mc := range selected {
		ids = append(ids, mc.CaseID)
	}
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, never.CaseID)
	assert.Contains(t, ids, due.CaseID)
}

func TestCheckCaseEndToEnd(t *testing.T) {
	database := setupMonitorTestDB(t)
	scheduler := newTestScheduler(database)

	lawyer := createTestUser(t, database, "lawyer@example.com")
	subscriber := createTestUser(t, database, "subscriber@example.com")

	rule := &models.NotificationRule{
		UserID:        subscriber.ID,
		RuleType:      models.RuleTypeDeadline,
		RuleValue:     `{}`,
		PriorityBoost: 9,
		Enabled:       true,
	}
	if err := database.Create(rule).Error; err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	kase, mc := createMonitoredCase(t, database)
	assert.NoError(t, database.Model(kase).Update("assigned_to_id", lawyer.ID).Error)

	occurredOn := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	prov := new(mockProvider)
	prov.On("GetNormalizedCase", mock.Anything, *kase.FilingNumber).Return(&judicial.CaseSnapshot{
		Status: "ACTIVO",
		Office: "Juzgado 3 Civil del Circuito de Bogotá",
		Acts: []judicial.SnapshotAct{
			{
				ExternalKey: "ACT-100",
				Date:        occurredOn,
				Type:        "Auto admite demanda",
				Annotation:  "Se admite la demanda y se corre traslado por el término de 10 días",
			},
		},
	}, nil)
	judicial.RegisterProvider("ramajud", prov)
	defer judicial.RegisterProvider("ramajud", nil)

	err := scheduler.CheckCase(context.Background(), mc)
	assert.NoError(t, err)
	prov.AssertExpectations(t)

	t.Run("One classified act with the parsed window", func(t *testing.T) {
		var acts []models.CaseAct
		database.Where("case_id = ?", mc.CaseID).Find(&acts)
		if assert.Len(t, acts, 1) {
			act := acts[0]
			assert.Equal(t, models.ActClassificationPerentorio, *act.Classification)
			assert.WithinDuration(t, occurredOn, *act.DeadlineStart, time.Second)
			assert.WithinDuration(t, occurredOn.AddDate(0, 0, 10), *act.DeadlineEnd, time.Second)
			assert.True(t, act.Notified)
		}
	})

	t.Run("One change log entry", func(t *testing.T) {
		var entries []models.CaseChangeLogEntry
		database.Where("case_id = ?", mc.CaseID).Find(&entries)
		if assert.Len(t, entries, 1) {
			assert.Equal(t, models.ChangeTypeNewAct, entries[0].ChangeType)
		}
	})

	t.Run("Rule owner notified at boosted priority", func(t *testing.T) {
		var notification models.Notification
		err := database.Where("user_id = ?", subscriber.ID).First(&notification).Error
		assert.NoError(t, err)
		assert.Equal(t, 9, notification.Priority)
		assert.Equal(t, models.NotificationTypeJudicialUpdate, notification.Type)
		assert.Contains(t, notification.Title, "Auto admite demanda")
	})

	t.Run("Assigned lawyer notified at baseline", func(t *testing.T) {
		var notification models.Notification
		err := database.Where("user_id = ?", lawyer.ID).First(&notification).Error
		assert.NoError(t, err)
		assert.Equal(t, 0, notification.Priority)
	})

	t.Run("Court office captured from snapshot", func(t *testing.T) {
		var reloaded models.Case
		assert.NoError(t, database.First(&reloaded, "id = ?", kase.ID).Error)
		if assert.NotNil(t, reloaded.CourtOffice) {
			assert.Equal(t, "Juzgado 3 Civil del Circuito de Bogotá", *reloaded.CourtOffice)
		}
	})

	t.Run("Last check advanced", func(t *testing.T) {
		var reloaded models.MonitoredCase
		assert.NoError(t, database.First(&reloaded, "id = ?", mc.ID).Error)
		assert.NotNil(t, reloaded.LastCheck)
	})
}

func TestCheckCaseFetchFailure(t *testing.T) {
	database := setupMonitorTestDB(t)
	scheduler := newTestScheduler(database)
	_, mc := createMonitoredCase(t, database)

	prov := new(mockProvider)
	prov.On("GetNormalizedCase", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	judicial.RegisterProvider("ramajud", prov)
	defer judicial.RegisterProvider("ramajud", nil)

	// A failed fetch is transient: no error surfaces and no state is written,
	// but last_check still advances so the case waits a full interval
	err := scheduler.CheckCase(context.Background(), mc)
	assert.NoError(t, err)

	var count int64
	database.Model(&models.CaseAct{}).Where("case_id = ?", mc.CaseID).Count(&count)
	assert.Equal(t, int64(0), count)

	var reloaded models.MonitoredCase
	assert.NoError(t, database.First(&reloaded, "id = ?", mc.ID).Error)
	assert.NotNil(t, reloaded.LastCheck)
	assert.Empty(t, reloaded.LastDataHash)
}

// stallingProvider blocks until the fetch context is cancelled for one
// radicado and answers normally for the rest
type stallingProvider struct {
	stallRadicado string
	snapshot      *judicial.CaseSnapshot
}

func (p *stallingProvider) GetNormalizedCase(ctx context.Context, radicado string) (*judicial.CaseSnapshot, error) {
	if radicado == p.stallRadicado {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return p.snapshot, nil
}

func TestRunCycleAbandonsSlowFetch(t *testing.T) {
	database := setupMonitorTestDB(t)
	scheduler := NewScheduler(database, rules.NewCache(rules.DefaultTTL), SchedulerOptions{
		Workers:      2,
		FetchTimeout: 50 * time.Millisecond,
		CycleTimeout: 5 * time.Second,
	})

	slowRadicado := "99999999999999999999999"
	slowCase := &models.Case{CaseNumber: "CASE-SLOW", FilingNumber: &slowRadicado, Status: "OPEN", OpenedAt: time.Now().UTC()}
	assert.NoError(t, database.Create(slowCase).Error)
	assert.NoError(t, database.Create(&models.MonitoredCase{
		CaseID: slowCase.ID, CheckFrequency: 3600, Status: models.MonitoringStatusActive, Sources: models.StringList{"ramajud"},
	}).Error)

	goodCase, _ := createMonitoredCase(t, database)

	judicial.RegisterProvider("ramajud", &stallingProvider{
		stallRadicado: slowRadicado,
		snapshot:      snapshotFixture(),
	})
	defer judicial.RegisterProvider("ramajud", nil)

	start := time.Now()
	scheduler.RunCycle(context.Background())
	assert.Less(t, time.Since(start), 5*time.Second)

	t.Run("Timed-out fetch is transient for that case only", func(t *testing.T) {
		var slowActs int64
		database.Model(&models.CaseAct{}).Where("case_id = ?", slowCase.ID).Count(&slowActs)
		assert.Equal(t, int64(0), slowActs)

		var reloaded models.MonitoredCase
		assert.NoError(t, database.First(&reloaded, "case_id = ?", slowCase.ID).Error)
		assert.NotNil(t, reloaded.LastCheck)
		assert.Empty(t, reloaded.LastDataHash)
	})

	t.Run("Other cases in the pool still complete", func(t *testing.T) {
		var goodActs int64
		database.Model(&models.CaseAct{}).Where("case_id = ?", goodCase.ID).Count(&goodActs)
		assert.Equal(t, int64(2), goodActs)
	})
}

func TestRunCycleIsolatesFailures(t *testing.T) {
	database := setupMonitorTestDB(t)
	scheduler := newTestScheduler(database)

	badRadicado := "00000000000000000000000"
	badCase := &models.Case{CaseNumber: "CASE-BAD", FilingNumber: &badRadicado, Status: "OPEN", OpenedAt: time.Now().UTC()}
	assert.NoError(t, database.Create(badCase).Error)
	assert.NoError(t, database.Create(&models.MonitoredCase{
		CaseID: badCase.ID, CheckFrequency: 3600, Status: models.MonitoringStatusActive, Sources: models.StringList{"ramajud"},
	}).Error)

	goodCase, _ := createMonitoredCase(t, database)

	prov := new(mockProvider)
	prov.On("GetNormalizedCase", mock.Anything, badRadicado).Return(nil, errors.New("boom"))
	prov.On("GetNormalizedCase", mock.Anything, *goodCase.FilingNumber).Return(snapshotFixture(), nil)
	judicial.RegisterProvider("ramajud", prov)
	defer judicial.RegisterProvider("ramajud", nil)

	scheduler.RunCycle(context.Background())

	var goodActs, badActs int64
	database.Model(&models.CaseAct{}).Where("case_id = ?", goodCase.ID).Count(&goodActs)
	database.Model(&models.CaseAct{}).Where("case_id = ?", badCase.ID).Count(&badActs)
	assert.Equal(t, int64(2), goodActs)
	assert.Equal(t, int64(0), badActs)
}

func TestCheckSingleCase(t *testing.T) {
	database := setupMonitorTestDB(t)
	scheduler := newTestScheduler(database)

	t.Run("Unknown case returns an error", func(t *testing.T) {
		err := scheduler.CheckSingleCase(context.Background(), "missing-id")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not monitored")
	})

	t.Run("Claimed case rejects a concurrent check", func(t *testing.T) {
		_, mc := createMonitoredCase(t, database)
		assert.True(t, scheduler.claim(mc.CaseID))
		defer scheduler.release(mc.CaseID)

		err := scheduler.CheckSingleCase(context.Background(), mc.CaseID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already being checked")
	})
}
