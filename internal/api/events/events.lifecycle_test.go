package events

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitLifecycleEvent_HandlerPanicIsContainedAndLogged(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	done := make(chan LifecycleEvent, 1)
	OnLifecycleEvent(func(ctx context.Context, e LifecycleEvent) {
		panic("handler hỏng")
	})
	OnLifecycleEvent(func(ctx context.Context, e LifecycleEvent) {
		done <- e
	})

	EmitLifecycleEvent(context.Background(), LifecycleEvent{
		Type:     EventReportSubmitted,
		ReportID: "abc123",
	})

	// Handler lành vẫn chạy dù handler khác panic
	select {
	case e := <-done:
		assert.Equal(t, EventReportSubmitted, e.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("handler không panic phải vẫn nhận được event")
	}

	// Panic được ghi log thay vì nuốt im lặng
	found := false
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !found {
		for _, entry := range hook.AllEntries() {
			if entry.Level == logrus.ErrorLevel && entry.Message == "Lifecycle handler panic" {
				assert.Equal(t, EventReportSubmitted, entry.Data["eventType"])
				assert.Equal(t, "abc123", entry.Data["reportId"])
				found = true
				break
			}
		}
		if !found {
			time.Sleep(20 * time.Millisecond)
		}
	}
	require.True(t, found, "panic của handler phải được log ở mức Error")
}
