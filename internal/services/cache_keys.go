package services

import "fmt"

// Cache keys for aggregator outputs. Every write that can change an
// aggregate deletes the affected keys; recomputation from grades is always
// the source of truth.
const (
	cacheKeyDashboards = "perf:dashboard:*"
)

func cacheKeyStudentSummary(studentID uint) string {
	return fmt.Sprintf("perf:student:%d", studentID)
}

func cacheKeyExamStatistics(examID uint) string {
	return fmt.Sprintf("perf:exam:%d", examID)
}

func cacheKeyBranchDashboard(branchID, intakeID uint) string {
	return fmt.Sprintf("perf:dashboard:branch:%d:%d", branchID, intakeID)
}

func cacheKeyTrackDashboard(trackID, intakeID uint) string {
	return fmt.Sprintf("perf:dashboard:track:%d:%d", trackID, intakeID)
}

func cacheKeySystemDashboard(intakeID uint) string {
	return fmt.Sprintf("perf:dashboard:system:%d", intakeID)
}
