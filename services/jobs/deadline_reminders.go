package jobs

import (
	"fmt"
	"log"
	"strings"
	"time"

	"case_radar_go/config"
	"case_radar_go/models"
	"case_radar_go/services"

	"gorm.io/gorm"
)

// SendDeadlineReminders finds perentorio acts whose deadline expires within
// the next 48 hours and emails the assigned lawyer a digest. Each act is
// reminded once.
func SendDeadlineReminders(database *gorm.DB, cfg *config.Config) {
	log.Println("Starting deadline reminder job...")

	now := time.Now().UTC()
	windowEnd := now.Add(48 * time.Hour)

	var acts []models.CaseAct
	err := database.Preload("Case").Preload("Case.AssignedTo").
		Where("classification = ?", models.ActClassificationPerentorio).
		Where("deadline_end >= ? AND deadline_end <= ?", now, windowEnd).
		Where("reminder_sent_at IS NULL").
		Find(&acts).Error
	if err != nil {
		log.Printf("Error fetching acts for deadline reminders: %v", err)
		return
	}

	log.Printf("Found %d deadlines expiring within 48h", len(acts))

	// Group acts per lawyer so each gets a single digest
	byLawyer := make(map[string][]models.CaseAct)
	for _, act := range acts {
		if act.Case.AssignedToID == nil || act.Case.AssignedTo == nil {
			continue
		}
		byLawyer[*act.Case.AssignedToID] = append(byLawyer[*act.Case.AssignedToID], act)
	}

	for _, lawyerActs := range byLawyer {
		lawyer := lawyerActs[0].Case.AssignedTo

		email := buildDeadlineDigestEmail(lawyer, lawyerActs)
		if err := services.SendEmail(cfg, email); err != nil {
			log.Printf("Failed to send deadline digest to %s: %v", lawyer.Email, err)
			continue
		}

		sentAt := time.Now().UTC()
		for _, act := range lawyerActs {
			if err := database.Model(&models.CaseAct{}).
				Where("id = ?", act.ID).
				Update("reminder_sent_at", sentAt).Error; err != nil {
				log.Printf("Failed to mark reminder sent for act %s: %v", act.ID, err)
			}
		}
		log.Printf("Sent deadline digest with %d acts to %s", len(lawyerActs), lawyer.Email)
	}

	log.Println("Deadline reminder job completed")
}

func buildDeadlineDigestEmail(lawyer *models.User, acts []models.CaseAct) *services.Email {
	var text strings.Builder
	fmt.Fprintf(&text, "Hola %s,\n\nLos siguientes términos vencen en las próximas 48 horas:\n\n", lawyer.Name)
	for _, act := range acts {
		fmt.Fprintf(&text, "- Caso %s: %s (vence %s)\n",
			act.Case.CaseNumber,
			act.Type,
			act.DeadlineEnd.Format("2006-01-02"))
	}
	text.WriteString("\nRevisa cada proceso para no dejar vencer el término.\n")

	return &services.Email{
		To:       []string{lawyer.Email},
		Subject:  fmt.Sprintf("Términos por vencer: %d proceso(s)", len(acts)),
		TextBody: text.String(),
	}
}
