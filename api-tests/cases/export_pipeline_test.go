package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ambassador_hub_tests/utils"
)

// approveReport đưa một báo cáo mới tạo đến trạng thái approved.
func approveReport(t *testing.T, author, reviewer *utils.HTTPClient, authorID, region string) string {
	t.Helper()
	reportID := createDraftReport(t, author, authorID, region)

	resp, body, err := author.POST("/monthly-report/"+reportID+"/submit", map[string]interface{}{"version": 1})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

	resp, body, err = reviewer.POST("/monthly-report/"+reportID+"/decide", map[string]interface{}{
		"version": 1,
		"outcome": "approved",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

	return reportID
}

// fetchJob đọc export job qua route find-by-id.
func fetchJob(t *testing.T, client *utils.HTTPClient, jobID string) map[string]interface{} {
	t.Helper()
	resp, body, err := client.GET("/export-job/find-by-id/" + jobID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

	data, err := utils.ParseData(body)
	require.NoError(t, err)
	return data
}

// TestExportPipelineModule kiểm tra vòng đời job export qua API thật.
func TestExportPipelineModule(t *testing.T) {
	waitForHealth(10, 1*time.Second, t)

	authorID := fmt.Sprintf("amb-%d", time.Now().UnixNano())
	author := utils.NewHTTPClient(baseURL, 10)
	author.SetActor(authorID, "ambassador")

	reviewer := utils.NewHTTPClient(baseURL, 10)
	reviewer.SetActor("rev-001", "reviewer")

	reportID := approveReport(t, author, reviewer, authorID, "north")

	t.Run("Job hoàn tất với progress không giảm", func(t *testing.T) {
		resp, body, err := author.POST("/export-job/request", map[string]interface{}{
			"targetReportId":   reportID,
			"targetReportType": "monthly",
			"format":           "csv",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

		data, err := utils.ParseData(body)
		require.NoError(t, err)
		jobID, _ := data["id"].(string)
		require.NotEmpty(t, jobID)
		assert.Equal(t, "pending", data["status"], "request trả về job pending ngay")

		// Poll đến khi terminal; progress giữa các lần đọc không được giảm
		lastProgress := float64(-1)
		var final map[string]interface{}
		deadline := time.Now().Add(30 * time.Second)
		for time.Now().Before(deadline) {
			job := fetchJob(t, author, jobID)
			progress, _ := job["progress"].(float64)
			assert.GreaterOrEqual(t, progress, lastProgress, "progress không được giảm")
			lastProgress = progress

			status, _ := job["status"].(string)
			if status == "completed" || status == "failed" || status == "cancelled" {
				final = job
				break
			}
			time.Sleep(500 * time.Millisecond)
		}

		require.NotNil(t, final, "job phải kết thúc trong 30s")
		assert.Equal(t, "completed", final["status"], "job: %+v", final)
		downloadURL, _ := final["downloadUrl"].(string)
		assert.NotEmpty(t, downloadURL)
		assert.Equal(t, float64(100), final["progress"])
	})

	t.Run("Hai request cùng báo cáo là hai job độc lập", func(t *testing.T) {
		ids := make([]string, 2)
		for i := range ids {
			resp, body, err := author.POST("/export-job/request", map[string]interface{}{
				"targetReportId":   reportID,
				"targetReportType": "monthly",
				"format":           "csv",
			})
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))
			data, err := utils.ParseData(body)
			require.NoError(t, err)
			ids[i], _ = data["id"].(string)
		}
		assert.NotEqual(t, ids[0], ids[1])
	})

	t.Run("Job đã hủy không bao giờ completed", func(t *testing.T) {
		resp, body, err := author.POST("/export-job/request", map[string]interface{}{
			"targetReportId":   reportID,
			"targetReportType": "monthly",
			"format":           "pdf",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))
		data, err := utils.ParseData(body)
		require.NoError(t, err)
		jobID, _ := data["id"].(string)
		require.NotEmpty(t, jobID)

		resp, body, err = author.POST("/export-job/"+jobID+"/cancel", nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

		// Quan sát qua hai chu kỳ poll của processor: trạng thái phải giữ
		// cancelled, không được chuyển sang completed kèm downloadUrl
		deadline := time.Now().Add(12 * time.Second)
		for time.Now().Before(deadline) {
			job := fetchJob(t, author, jobID)
			status, _ := job["status"].(string)
			assert.Equal(t, "cancelled", status)
			downloadURL, _ := job["downloadUrl"].(string)
			assert.Empty(t, downloadURL, "job hủy không được có downloadUrl")
			time.Sleep(1 * time.Second)
		}
	})

	t.Run("Hủy job đã kết thúc bị từ chối", func(t *testing.T) {
		resp, body, err := author.POST("/export-job/request", map[string]interface{}{
			"targetReportId":   reportID,
			"targetReportType": "monthly",
			"format":           "xlsx",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))
		data, err := utils.ParseData(body)
		require.NoError(t, err)
		jobID, _ := data["id"].(string)

		// Chờ job kết thúc rồi mới cancel
		deadline := time.Now().Add(30 * time.Second)
		for time.Now().Before(deadline) {
			job := fetchJob(t, author, jobID)
			if s, _ := job["status"].(string); s == "completed" || s == "failed" {
				break
			}
			time.Sleep(500 * time.Millisecond)
		}

		resp, body, err = author.POST("/export-job/"+jobID+"/cancel", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode, "body: %s", string(body))
	})
}
