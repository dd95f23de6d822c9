package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() Document {
	return Document{
		Title:    "Báo cáo tháng 2024-03",
		Subtitle: "Ambassador An — vùng north",
		Metrics: []MetricRow{
			{Name: "newMembers", Value: "127"},
			{Name: "socialReach", Value: "4000"},
		},
		Sections: []Section{
			{Heading: "Tóm tắt", Body: "Tổ chức 2 sự kiện cộng đồng"},
		},
	}
}

func TestLocalFileRenderer_CSV(t *testing.T) {
	dir := t.TempDir()
	r, err := NewLocalFileRenderer(dir, "/exports")
	require.NoError(t, err)

	url, err := r.Render(context.Background(), testDocument(), "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/exports/"))
	assert.True(t, strings.HasSuffix(url, ".csv"))

	// File phải tồn tại và parse được như CSV
	fileName := strings.TrimPrefix(url, "/exports/")
	f, err := os.Open(filepath.Join(dir, fileName))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(records), 4)
	assert.Equal(t, []string{"title", "Báo cáo tháng 2024-03"}, records[0])
	assert.Equal(t, []string{"newMembers", "127"}, records[2])
}

func TestLocalFileRenderer_TextFormats(t *testing.T) {
	dir := t.TempDir()
	r, err := NewLocalFileRenderer(dir, "/exports/")
	require.NoError(t, err)

	for _, format := range []string{"pdf", "docx"} {
		url, err := r.Render(context.Background(), testDocument(), format)
		require.NoError(t, err)
		// Prefix có slash thừa phải được chuẩn hóa
		assert.True(t, strings.HasPrefix(url, "/exports/"))
		assert.False(t, strings.Contains(url, "//"))
		assert.True(t, strings.HasSuffix(url, "."+format))

		content, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(url, "/exports/")))
		require.NoError(t, err)
		assert.Contains(t, string(content), "Báo cáo tháng 2024-03")
		assert.Contains(t, string(content), "newMembers: 127")
	}
}

func TestLocalFileRenderer_UnsupportedFormat(t *testing.T) {
	r, err := NewLocalFileRenderer(t.TempDir(), "/exports")
	require.NoError(t, err)

	_, err = r.Render(context.Background(), testDocument(), "exe")
	assert.Error(t, err)
}

func TestLocalFileRenderer_CancelledContext(t *testing.T) {
	r, err := NewLocalFileRenderer(t.TempDir(), "/exports")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Render(ctx, testDocument(), "csv")
	assert.Error(t, err)
}

func TestLocalFileRenderer_UniqueFileNames(t *testing.T) {
	r, err := NewLocalFileRenderer(t.TempDir(), "/exports")
	require.NoError(t, err)

	first, err := r.Render(context.Background(), testDocument(), "csv")
	require.NoError(t, err)
	second, err := r.Render(context.Background(), testDocument(), "csv")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
