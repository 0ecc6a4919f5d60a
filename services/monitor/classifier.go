package monitor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"case_radar_go/models"
)

// Classification is the outcome of classifying one procedural act
type Classification struct {
	Value         string
	Confidence    float64
	Reason        string
	DeadlineStart *time.Time
	DeadlineEnd   *time.Time
}

// Deadline-bearing act patterns. An auto that opens a response or appeal term
// is perentorio when a date window can also be extracted.
var perentorioPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)admite\s+(la\s+)?demanda`),
	regexp.MustCompile(`(?i)corre\s+traslado`),
	regexp.MustCompile(`(?i)t[eé]rmino\s+(de\s+ejecutoria|para|de)`),
	regexp.MustCompile(`(?i)plazo\s+(para|de)`),
	regexp.MustCompile(`(?i)requerimiento`),
	regexp.MustCompile(`(?i)(subsanar|subsane)`),
	regexp.MustCompile(`(?i)recurso\s+de\s+(apelaci[oó]n|reposici[oó]n)`),
	regexp.MustCompile(`(?i)emplazamiento`),
	regexp.MustCompile(`(?i)audiencia\s+(inicial|de\s+)`),
}

// Routine/administrative act patterns with no party-facing deadline
var tramitePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)al\s+despacho`),
	regexp.MustCompile(`(?i)fijaci[oó]n\s+en\s+estado`),
	regexp.MustCompile(`(?i)notificaci[oó]n\s+por\s+estado`),
	regexp.MustCompile(`(?i)radicaci[oó]n`),
	regexp.MustCompile(`(?i)recepci[oó]n\s+(de\s+)?memorial`),
	regexp.MustCompile(`(?i)constancia`),
	regexp.MustCompile(`(?i)oficio`),
	regexp.MustCompile(`(?i)archivo\s+(definitivo|del\s+expediente)`),
	regexp.MustCompile(`(?i)env[ií]o\s+de\s+expediente`),
}

// termDayPattern extracts "término de N días" style windows from act text
var termDayPattern = regexp.MustCompile(`(?i)(?:t[eé]rmino|plazo)\s+de\s+(\d{1,3})\s+d[ií]as`)

// ClassifyAct determines the urgency classification for an act, based on its
// type and annotation text plus any explicit term dates from the source.
// It does not mutate the act; use ApplyClassification for that.
func ClassifyAct(act *models.CaseAct) Classification {
	text := act.Type + " " + act.Annotation + " " + act.Description

	if matchAny(perentorioPatterns, text) {
		if start, end, ok := extractDeadlineWindow(act, text); ok {
			confidence := 0.9
			if act.DeadlineStart != nil && act.DeadlineEnd != nil {
				// Explicit dates from the source beat a parsed text window
				confidence = 0.95
			}
			return Classification{
				Value:         models.ActClassificationPerentorio,
				Confidence:    confidence,
				Reason:        "deadline-bearing act with extractable date window",
				DeadlineStart: &start,
				DeadlineEnd:   &end,
			}
		}
		// Deadline-ish wording but no extractable window: needs a human
		return Classification{
			Value:      models.ActClassificationPendiente,
			Confidence: 0.4,
			Reason:     "deadline pattern matched but no date window could be extracted",
		}
	}

	if matchAny(tramitePatterns, text) {
		return Classification{
			Value:      models.ActClassificationTramite,
			Confidence: 0.8,
			Reason:     "routine procedural act",
		}
	}

	return Classification{
		Value:      models.ActClassificationPendiente,
		Confidence: 0.2,
		Reason:     "unrecognized act type, needs manual review",
	}
}

// ApplyClassification writes a classification onto the act, enforcing
// monotonicity: a confident PERENTORIO/TRAMITE never regresses to PENDIENTE
// on re-run. Returns true when the act was modified.
func ApplyClassification(act *models.CaseAct, result Classification) bool {
	if act.Classification != nil &&
		*act.Classification != models.ActClassificationPendiente &&
		result.Value == models.ActClassificationPendiente {
		return false
	}

	value := result.Value
	confidence := result.Confidence
	reason := result.Reason

	act.Classification = &value
	act.ClassificationConfidence = &confidence
	act.ClassificationReason = &reason
	// Keep any window already seeded from the source when the result has none
	if result.DeadlineStart != nil {
		act.DeadlineStart = result.DeadlineStart
	}
	if result.DeadlineEnd != nil {
		act.DeadlineEnd = result.DeadlineEnd
	}
	if act.ClassifiedAt == nil {
		now := time.Now().UTC()
		act.ClassifiedAt = &now
	}
	return true
}

// extractDeadlineWindow finds the act's date window: explicit initial/final
// dates stored from the source win; otherwise a "término de N días" phrase
// counted from the act date.
func extractDeadlineWindow(act *models.CaseAct, text string) (time.Time, time.Time, bool) {
	if act.DeadlineStart != nil && act.DeadlineEnd != nil {
		return *act.DeadlineStart, *act.DeadlineEnd, true
	}

	if m := termDayPattern.FindStringSubmatch(text); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil && days > 0 {
			start := act.OccurredOn
			if start.IsZero() {
				start = time.Now().UTC()
			}
			end := start.AddDate(0, 0, days)
			return start, end, true
		}
	}

	return time.Time{}, time.Time{}, false
}

func matchAny(patterns []*regexp.Regexp, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
