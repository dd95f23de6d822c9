package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ambassador_hub/internal/api/events"
)

func TestExtraString(t *testing.T) {
	e := events.LifecycleEvent{Extra: map[string]interface{}{
		"authorId":  "amb-001",
		"periodKey": "2024-03",
		"count":     3,
	}}

	assert.Equal(t, "amb-001", extraString(e, "authorId"))
	assert.Equal(t, "2024-03", extraString(e, "periodKey"))
	assert.Equal(t, "", extraString(e, "missing"))
	assert.Equal(t, "", extraString(e, "count")) // không phải string

	assert.Equal(t, "", extraString(events.LifecycleEvent{}, "authorId"))
}

func TestExtraStrings(t *testing.T) {
	e := events.LifecycleEvent{Extra: map[string]interface{}{
		"recipients": []string{"a@example.com", "b@example.com"},
		"mixed":      []interface{}{"c@example.com", 7, "d@example.com"},
		"scalar":     "e@example.com",
	}}

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, extraStrings(e, "recipients"))
	// phần tử không phải string bị bỏ qua
	assert.Equal(t, []string{"c@example.com", "d@example.com"}, extraStrings(e, "mixed"))
	assert.Nil(t, extraStrings(e, "scalar"))
	assert.Nil(t, extraStrings(e, "missing"))
}
