package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAssetID(t *testing.T) {
	id := NewAssetID("compressed", "My Report (final).pdf")
	assert.True(t, strings.HasPrefix(id, "compressed_My_Report_final_"), id)

	// Одинаковые имена не должны давать одинаковые идентификаторы
	assert.NotEqual(t, NewAssetID("", "a.png"), NewAssetID("", "a.png"))

	assert.True(t, strings.HasPrefix(NewAssetID("", "...."), "file_"))
	assert.True(t, strings.HasPrefix(NewAssetID("", "../../etc/passwd"), "passwd_"))
}

func TestTransformString(t *testing.T) {
	assert.Equal(t, "q_auto:best/e_sharpen/e_auto_contrast/e_auto_color/c_limit,h_2000,w_2000/f_jpg", UpscaleTransform.String())
}
