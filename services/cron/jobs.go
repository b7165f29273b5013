package cron

import (
	"context"
	"fmt"
)

// ReconcileEnrollments repairs user/course enrollment sets that disagree
// and reports enrollments without a purchase record.
func (m *CronManager) ReconcileEnrollments() {
	m.runJob(JobReconcileEnrollments, func(ctx context.Context) (string, interface{}, error) {
		report, err := m.enrollment.ReconcileEnrollments(ctx)
		if err != nil {
			return "", nil, fmt.Errorf("failed to reconcile enrollments: %w", err)
		}
		msg := fmt.Sprintf("Repaired %d users and %d courses, %d enrollments without purchase",
			report.UsersRepaired, report.CoursesRepaired, report.MissingPurchases)
		return msg, report, nil
	})
}

// RefreshCompletionFlags recomputes isCompleted after course content changes
func (m *CronManager) RefreshCompletionFlags() {
	m.runJob(JobRefreshCompletionFlags, func(ctx context.Context) (string, interface{}, error) {
		updated, err := m.progress.RefreshCompletionFlags(ctx)
		if err != nil {
			return "", nil, fmt.Errorf("failed to refresh completion flags: %w", err)
		}
		return fmt.Sprintf("Updated %d progress records", updated), map[string]int{"updated": updated}, nil
	})
}
