package reportsvc

import (
	"testing"

	reportmodels "ambassador_hub/internal/api/report/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_ValidEdges(t *testing.T) {
	valid := [][2]string{
		{reportmodels.ReportStatusDraft, reportmodels.ReportStatusSubmitted},
		{reportmodels.ReportStatusSubmitted, reportmodels.ReportStatusUnderReview},
		{reportmodels.ReportStatusSubmitted, reportmodels.ReportStatusApproved},
		{reportmodels.ReportStatusSubmitted, reportmodels.ReportStatusRejected},
		{reportmodels.ReportStatusSubmitted, reportmodels.ReportStatusRevisionRequested},
		{reportmodels.ReportStatusUnderReview, reportmodels.ReportStatusApproved},
		{reportmodels.ReportStatusUnderReview, reportmodels.ReportStatusRejected},
		{reportmodels.ReportStatusUnderReview, reportmodels.ReportStatusRevisionRequested},
		{reportmodels.ReportStatusRevisionRequested, reportmodels.ReportStatusSubmitted},
	}
	for _, edge := range valid {
		assert.True(t, CanTransition(edge[0], edge[1]), "cạnh %s -> %s phải hợp lệ", edge[0], edge[1])
	}
}

func TestCanTransition_InvalidEdges(t *testing.T) {
	invalid := [][2]string{
		// Terminal states không có cạnh ra
		{reportmodels.ReportStatusApproved, reportmodels.ReportStatusSubmitted},
		{reportmodels.ReportStatusApproved, reportmodels.ReportStatusDraft},
		{reportmodels.ReportStatusRejected, reportmodels.ReportStatusSubmitted},
		// Không nhảy cóc
		{reportmodels.ReportStatusDraft, reportmodels.ReportStatusApproved},
		{reportmodels.ReportStatusDraft, reportmodels.ReportStatusUnderReview},
		// Không quay lui
		{reportmodels.ReportStatusSubmitted, reportmodels.ReportStatusDraft},
		{reportmodels.ReportStatusUnderReview, reportmodels.ReportStatusSubmitted},
		{reportmodels.ReportStatusRevisionRequested, reportmodels.ReportStatusDraft},
		// Trạng thái không tồn tại
		{"unknown", reportmodels.ReportStatusSubmitted},
		{reportmodels.ReportStatusDraft, "unknown"},
	}
	for _, edge := range invalid {
		assert.False(t, CanTransition(edge[0], edge[1]), "cạnh %s -> %s phải bị cấm", edge[0], edge[1])
	}
}

func TestCanTransition_TerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	all := []string{
		reportmodels.ReportStatusDraft,
		reportmodels.ReportStatusSubmitted,
		reportmodels.ReportStatusUnderReview,
		reportmodels.ReportStatusApproved,
		reportmodels.ReportStatusRejected,
		reportmodels.ReportStatusRevisionRequested,
	}
	for _, to := range all {
		assert.False(t, CanTransition(reportmodels.ReportStatusApproved, to))
		assert.False(t, CanTransition(reportmodels.ReportStatusRejected, to))
	}
}
