package monitor

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"case_radar_go/services/judicial"
)

// HashSnapshot reduces a snapshot to a deterministic fingerprint used to
// detect "nothing changed" without diffing. Derived from the act count, party
// count, reported status and the content of the most recent act.
func HashSnapshot(snapshot *judicial.CaseSnapshot) string {
	h := sha256.New()
	fmt.Fprintf(h, "status:%s|acts:%d|parties:%d|", snapshot.Status, len(snapshot.Acts), len(snapshot.Parties))

	if latest := latestAct(snapshot.Acts); latest != nil {
		fmt.Fprintf(h, "latest:%s|%s|%s|%s",
			latest.Date.UTC().Format("2006-01-02T15:04:05"),
			latest.Type,
			latest.Annotation,
			latest.Description)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// ActUniqKey returns the stable dedup key for a snapshot act: the source's
// natural key when present, otherwise a content hash of the normalized fields
// so repeated fetches of an unchanged act never duplicate.
func ActUniqKey(act *judicial.SnapshotAct) string {
	if act.ExternalKey != "" {
		return act.ExternalKey
	}
	text := strings.TrimSpace(act.Description)
	if text == "" {
		text = strings.TrimSpace(act.Annotation)
	}
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s",
		act.Date.UTC().Format("2006-01-02"),
		strings.TrimSpace(act.Type),
		text)))
	return hex.EncodeToString(h[:])
}

func latestAct(acts []judicial.SnapshotAct) *judicial.SnapshotAct {
	var latest *judicial.SnapshotAct
	for i := range acts {
		if latest == nil || acts[i].Date.After(latest.Date) {
			latest = &acts[i]
		}
	}
	return latest
}
