// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	membershipstore "github.com/dalemusser/gatherhub/internal/app/store/memberships"
)

// MembershipReconcileJob creates a job that sweeps up inconsistencies
// left by interrupted membership cascades: dangling group references on
// users, roster entries for deleted users, orphaned chats, and
// member_count drift.
func MembershipReconcileJob(memberships *membershipstore.Store, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "membership-reconcile",
		Interval: interval,
		Timeout:  2 * time.Minute,
		Run: func(ctx context.Context) error {
			res, err := memberships.Reconcile(ctx)
			if err != nil {
				return err
			}
			if res.DanglingUserRefs > 0 || res.DanglingMembers > 0 ||
				res.OrphanChats > 0 || res.MemberCountRepairs > 0 {
				logger.Info("membership reconcile repaired inconsistencies",
					zap.Int64("dangling_user_refs", res.DanglingUserRefs),
					zap.Int64("dangling_members", res.DanglingMembers),
					zap.Int64("orphan_chats", res.OrphanChats),
					zap.Int64("member_count_repairs", res.MemberCountRepairs))
			}
			return nil
		},
	}
}
