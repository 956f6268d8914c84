// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Pruner deletes records created before a cutoff. The audit and login
// history stores both satisfy it.
type Pruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Pinger reports whether the health API is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RetentionJob deletes records from p that are older than retention.
func RetentionJob(name string, p Pruner, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     name,
		Interval: 6 * time.Hour,
		Timeout:  time.Minute,
		Run: func(ctx context.Context) error {
			cutoff := time.Now().UTC().Add(-retention)
			n, err := p.DeleteBefore(ctx, cutoff)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("pruned old records",
					zap.String("job", name),
					zap.Int64("deleted", n),
					zap.Time("cutoff", cutoff))
			}
			return nil
		},
	}
}

// AuditRetentionJob prunes audit events older than retention.
func AuditRetentionJob(p Pruner, retention time.Duration, logger *zap.Logger) Job {
	return RetentionJob("audit-retention", p, retention, logger)
}

// LoginHistoryRetentionJob prunes login records older than retention.
func LoginHistoryRetentionJob(p Pruner, retention time.Duration, logger *zap.Logger) Job {
	return RetentionJob("login-history-retention", p, retention, logger)
}

// UpstreamProbeJob pings the health API every interval and logs when it
// becomes unreachable and when it recovers. Repeated failures are not
// logged again, and the job itself never fails.
func UpstreamProbeJob(api Pinger, interval time.Duration, logger *zap.Logger) Job {
	var down bool
	return Job{
		Name:     "upstream-probe",
		Interval: interval,
		Timeout:  5 * time.Second,
		Run: func(ctx context.Context) error {
			err := api.Ping(ctx)
			if errors.Is(ctx.Err(), context.Canceled) {
				return ctx.Err()
			}
			switch {
			case err != nil && !down:
				down = true
				logger.Warn("health API unreachable", zap.Error(err))
			case err == nil && down:
				down = false
				logger.Info("health API reachable again")
			}
			return nil
		},
	}
}
