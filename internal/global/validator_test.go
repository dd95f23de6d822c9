package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomValidators(t *testing.T) {
	InitValidator()

	t.Run("period_key", func(t *testing.T) {
		assert.NoError(t, Validate.Var("2024-03", "period_key"))
		assert.NoError(t, Validate.Var("1999-12", "period_key"))
		assert.Error(t, Validate.Var("2024-13", "period_key"))
		assert.Error(t, Validate.Var("2024-00", "period_key"))
		assert.Error(t, Validate.Var("2024-3", "period_key"))
		assert.Error(t, Validate.Var("03-2024", "period_key"))
		assert.Error(t, Validate.Var("", "period_key"))
	})

	t.Run("report_status", func(t *testing.T) {
		for _, s := range []string{"draft", "submitted", "under_review", "approved", "rejected", "revision_requested"} {
			assert.NoError(t, Validate.Var(s, "report_status"), s)
		}
		assert.Error(t, Validate.Var("pending", "report_status"))
		assert.Error(t, Validate.Var("Draft", "report_status"))
	})

	t.Run("export_format", func(t *testing.T) {
		for _, f := range []string{"csv", "pdf", "docx", "xlsx", "PDF"} {
			assert.NoError(t, Validate.Var(f, "export_format"), f)
		}
		assert.Error(t, Validate.Var("html", "export_format"))
		assert.Error(t, Validate.Var("", "export_format"))
	})

	t.Run("no_xss", func(t *testing.T) {
		assert.NoError(t, Validate.Var("Tháng này tổ chức 3 workshop tại Hà Nội", "no_xss"))
		assert.Error(t, Validate.Var("<script>alert(1)</script>", "no_xss"))
		assert.Error(t, Validate.Var("click javascript:void(0)", "no_xss"))
		assert.Error(t, Validate.Var("<IFRAME src=x>", "no_xss"))
	})
}
