package monitoring

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/kritin29/Patient-Management-Web-App/internal/services"
)

// Purger drops expired entries and reports how many went.
type Purger interface {
	Purge() int
}

// SessionPurgeJob returns a job that reclaims expired session entries,
// including pending signups whose OTP was never verified.
func SessionPurgeJob(spec string, store Purger, events services.EventServiceProvider) Job {
	return Job{
		Name: "session-purge",
		Spec: spec,
		Run: func(ctx context.Context) error {
			n := store.Purge()
			if n == 0 {
				return nil
			}
			log.Info().Int("purged", n).Msg("Purged expired session entries")
			if events == nil {
				return nil
			}
			msg := fmt.Sprintf("Purged %d expired session entries.", n)
			_, err := events.CreateEvent(ctx, "housekeeping.purge", "info", msg, nil)
			return err
		},
	}
}
