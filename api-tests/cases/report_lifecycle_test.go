package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ambassador_hub_tests/utils"
)

const (
	baseURL   = "http://localhost:8080/api/v1"
	healthURL = "http://localhost:8080/health"
)

// waitForHealth chờ server sẵn sàng, skip toàn bộ test nếu server không chạy.
func waitForHealth(attempts int, delay time.Duration, t *testing.T) {
	t.Helper()
	for i := 0; i < attempts; i++ {
		resp, err := http.Get(healthURL)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(delay)
	}
	t.Skipf("Server chưa sẵn sàng tại %s, bỏ qua bộ test API", healthURL)
}

// createDraftReport tạo một báo cáo draft đủ completeness để submit được.
func createDraftReport(t *testing.T, client *utils.HTTPClient, authorID, region string) string {
	t.Helper()
	payload := map[string]interface{}{
		"authorId":   authorID,
		"authorName": "Nguyễn Văn Test",
		"region":     region,
		"period":     map[string]int{"month": 2, "year": 2024},
		"payload": map[string]interface{}{
			"executiveSummary": fmt.Sprintf("Tổng kết hoạt động tháng ba %d", time.Now().UnixNano()),
			"metrics": map[string]float64{
				"newMembers":     127,
				"socialReach":    1000,
				"engagementRate": 2.5,
			},
		},
	}

	resp, body, err := client.POST("/monthly-report/create", payload)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, "CREATE thất bại: %s", string(body))

	data, err := utils.ParseData(body)
	require.NoError(t, err)
	id, _ := data["id"].(string)
	require.NotEmpty(t, id)
	return id
}

// TestReportLifecycleModule kiểm tra máy trạng thái báo cáo qua API thật.
func TestReportLifecycleModule(t *testing.T) {
	waitForHealth(10, 1*time.Second, t)

	authorID := fmt.Sprintf("amb-%d", time.Now().UnixNano())
	author := utils.NewHTTPClient(baseURL, 10)
	author.SetActor(authorID, "ambassador")

	reviewer := utils.NewHTTPClient(baseURL, 10)
	reviewer.SetActor("rev-001", "reviewer")

	reportID := createDraftReport(t, author, authorID, "north")

	t.Run("Submit với version cũ bị từ chối", func(t *testing.T) {
		resp, body, err := author.POST("/monthly-report/"+reportID+"/submit", map[string]interface{}{"version": 99})
		require.NoError(t, err)
		assert.Equal(t, http.StatusPreconditionFailed, resp.StatusCode, "body: %s", string(body))
	})

	t.Run("Submit trả về trạng thái SAU transition", func(t *testing.T) {
		resp, body, err := author.POST("/monthly-report/"+reportID+"/submit", map[string]interface{}{"version": 1})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

		data, err := utils.ParseData(body)
		require.NoError(t, err)
		assert.Equal(t, "submitted", data["status"], "submit phải trả document sau update")
		assert.NotNil(t, data["submittedAt"])
	})

	t.Run("Hai reviewer claim đồng thời, đúng một người thắng", func(t *testing.T) {
		second := utils.NewHTTPClient(baseURL, 10)
		second.SetActor("rev-002", "reviewer")

		codes := make([]int, 2)
		var wg sync.WaitGroup
		for i, c := range []*utils.HTTPClient{reviewer, second} {
			wg.Add(1)
			go func(idx int, cl *utils.HTTPClient) {
				defer wg.Done()
				resp, _, err := cl.POST("/monthly-report/"+reportID+"/claim", map[string]interface{}{"version": 1})
				if err == nil {
					codes[idx] = resp.StatusCode
				}
			}(i, c)
		}
		wg.Wait()

		wins, conflicts := 0, 0
		for _, code := range codes {
			switch code {
			case http.StatusOK:
				wins++
			case http.StatusConflict:
				conflicts++
			}
		}
		assert.Equal(t, 1, wins, "đúng một claim thành công (codes: %v)", codes)
		assert.Equal(t, 1, conflicts, "claim thua phải nhận AlreadyClaimed (codes: %v)", codes)
	})

	t.Run("Yêu cầu chỉnh sửa rồi nộp lại tăng version đúng 1", func(t *testing.T) {
		resp, body, err := reviewer.POST("/monthly-report/"+reportID+"/decide", map[string]interface{}{
			"version":  1,
			"outcome":  "revision_requested",
			"feedback": "Bổ sung số liệu chi tiết cho mục sự kiện",
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

		resp, body, err = author.POST("/monthly-report/"+reportID+"/resubmit", map[string]interface{}{
			"version": 1,
			"payload": map[string]interface{}{
				"executiveSummary": "Tổng kết đã bổ sung số liệu sự kiện",
				"metrics": map[string]float64{
					"newMembers":  130,
					"socialReach": 1200,
				},
			},
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

		data, err := utils.ParseData(body)
		require.NoError(t, err)
		assert.Equal(t, "submitted", data["status"])
		assert.Equal(t, float64(2), data["version"], "resubmit tăng version đúng 1")
		assert.Equal(t, authorID, data["authorId"], "resubmit không đổi tác giả")
		assert.Nil(t, data["reviewerFeedback"], "resubmit xóa dấu vết review cũ")
	})

	t.Run("Approve rồi tác giả nhận thông báo", func(t *testing.T) {
		resp, body, err := reviewer.POST("/monthly-report/"+reportID+"/claim", map[string]interface{}{"version": 2})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

		resp, body, err = reviewer.POST("/monthly-report/"+reportID+"/decide", map[string]interface{}{
			"version": 2,
			"outcome": "approved",
			"rating":  5,
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))

		data, err := utils.ParseData(body)
		require.NoError(t, err)
		assert.Equal(t, "approved", data["status"])
		assert.NotNil(t, data["reviewedAt"])

		// Dispatcher chạy async, poll feed của tác giả
		found := false
		for i := 0; i < 20 && !found; i++ {
			resp, body, err := author.GET("/notification/feed")
			if err != nil || resp.StatusCode != http.StatusOK {
				time.Sleep(250 * time.Millisecond)
				continue
			}
			var result map[string]interface{}
			json.Unmarshal(body, &result)
			if data, ok := result["data"].(map[string]interface{}); ok {
				if items, ok := data["items"].([]interface{}); ok {
					for _, item := range items {
						n, _ := item.(map[string]interface{})
						if n["type"] == "report_approved" && n["relatedReportId"] == reportID {
							found = true
							break
						}
					}
				}
			}
			if !found {
				time.Sleep(250 * time.Millisecond)
			}
		}
		assert.True(t, found, "tác giả phải nhận thông báo report_approved")
	})

	t.Run("Transition ngoài đồ thị bị từ chối", func(t *testing.T) {
		// approved là terminal: claim lại phải fail
		resp, body, err := reviewer.POST("/monthly-report/"+reportID+"/claim", map[string]interface{}{"version": 2})
		require.NoError(t, err)
		assert.NotEqual(t, http.StatusOK, resp.StatusCode, "body: %s", string(body))
	})
}

// TestNotificationMarkRead kiểm tra tính idempotent của markRead/markAllRead.
func TestNotificationMarkRead(t *testing.T) {
	waitForHealth(10, 1*time.Second, t)

	actorID := fmt.Sprintf("amb-%d", time.Now().UnixNano())
	author := utils.NewHTTPClient(baseURL, 10)
	author.SetActor(actorID, "ambassador")

	reviewer := utils.NewHTTPClient(baseURL, 10)
	reviewer.SetActor("rev-001", "reviewer")

	// Tạo một thông báo cho tác giả bằng một vòng reject
	reportID := createDraftReport(t, author, actorID, "south")
	_, _, err := author.POST("/monthly-report/"+reportID+"/submit", map[string]interface{}{"version": 1})
	require.NoError(t, err)
	_, _, err = reviewer.POST("/monthly-report/"+reportID+"/decide", map[string]interface{}{
		"version":  1,
		"outcome":  "rejected",
		"feedback": "Thiếu toàn bộ số liệu",
	})
	require.NoError(t, err)

	// Chờ dispatcher ghi thông báo
	var notifID string
	for i := 0; i < 20 && notifID == ""; i++ {
		resp, body, err := author.GET("/notification/feed")
		if err == nil && resp.StatusCode == http.StatusOK {
			var result map[string]interface{}
			json.Unmarshal(body, &result)
			if data, ok := result["data"].(map[string]interface{}); ok {
				if items, ok := data["items"].([]interface{}); ok && len(items) > 0 {
					n, _ := items[0].(map[string]interface{})
					notifID, _ = n["id"].(string)
				}
			}
		}
		if notifID == "" {
			time.Sleep(250 * time.Millisecond)
		}
	}
	require.NotEmpty(t, notifID, "phải có thông báo sau khi reject")

	// markRead hai lần: lần hai vẫn 200 và isRead vẫn true
	for i := 0; i < 2; i++ {
		resp, body, err := author.POST("/notification/"+notifID+"/read", nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "lần %d body: %s", i+1, string(body))

		data, err := utils.ParseData(body)
		require.NoError(t, err)
		assert.Equal(t, true, data["isRead"])
	}

	// markAllRead lần hai không còn gì để đánh dấu
	resp, body, err := author.POST("/notification/read-all", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body, err = author.POST("/notification/read-all", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := utils.ParseData(body)
	require.NoError(t, err)
	assert.Equal(t, float64(0), data["markedCount"])
}
