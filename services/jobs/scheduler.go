package jobs

import (
	"context"
	"log"
	"time"

	"case_radar_go/config"
	"case_radar_go/services/monitor"
	"case_radar_go/services/rules"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// StartScheduler wires the recurring background jobs: the monitoring cycle and
// the daily deadline reminders. Returns the monitor scheduler so handlers can
// trigger single-case checks.
func StartScheduler(database *gorm.DB, cfg *config.Config, ruleCache *rules.Cache) *monitor.Scheduler {
	scheduler := monitor.NewScheduler(database, ruleCache, monitor.SchedulerOptions{
		Workers:          cfg.MonitorWorkers,
		FetchTimeout:     time.Duration(cfg.MonitorFetchTimeoutSec) * time.Second,
		CycleTimeout:     time.Duration(cfg.MonitorCycleTimeoutMin) * time.Minute,
		BaselinePriority: cfg.BaselinePriority,
	})

	loc, _ := time.LoadLocation("America/Bogota")
	c := cron.New(cron.WithLocation(loc))

	_, err := c.AddFunc(cfg.MonitorCronSpec, func() {
		log.Println("[CRON] Ejecutando ciclo de monitoreo de procesos...")
		scheduler.RunCycle(context.Background())
	})
	if err != nil {
		log.Fatalf("[CRON] Error al programar el ciclo de monitoreo: %v", err)
	}

	_, err = c.AddFunc(cfg.ReminderCronSpec, func() {
		log.Println("[CRON] Ejecutando recordatorios de términos...")
		SendDeadlineReminders(database, cfg)
	})
	if err != nil {
		log.Fatalf("[CRON] Error al programar los recordatorios: %v", err)
	}

	c.Start()
	log.Println("[CRON] Planificador de tareas iniciado correctamente.")

	return scheduler
}
