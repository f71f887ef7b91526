package resend

import "time"

// SyncedMail is the content of a sync confirmation.
type SyncedMail struct {
	Username string
	Recipe   string
	Start    time.Time
}
