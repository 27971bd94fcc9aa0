package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadRule(t *testing.T) {
	images := ImageUploadRule(10<<20, 1, 1)
	assert.True(t, images.AllowsExtension(".PNG"))
	assert.True(t, images.AllowsExtension(".webp"))
	assert.False(t, images.AllowsExtension(".pdf"))
	assert.Equal(t, []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "webp"}, images.AllowedList())
	assert.True(t, images.MatchesFamily("image/png"))
	assert.False(t, images.MatchesFamily("application/pdf"))

	pdfs := PDFUploadRule(10<<20, 2, 30)
	assert.True(t, pdfs.AllowsExtension(".pdf"))
	assert.False(t, pdfs.AllowsExtension(".jpg"))
	assert.True(t, pdfs.MatchesFamily("application/pdf; charset=binary"))
}

func TestUploadedFileNames(t *testing.T) {
	f := &UploadedFile{FileName: "scans/Invoice.March.PDF"}
	assert.Equal(t, ".pdf", f.Ext())
	assert.Equal(t, "Invoice.March", f.BaseName())
}

func TestInputErrorDetails(t *testing.T) {
	err := &InputError{Message: "unsupported file type", File: "notes.txt", Allowed: []string{"pdf"}}
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "unsupported file type: notes.txt", err.Error())
	assert.Equal(t, "file: notes.txt; allowed: pdf", err.Details())
}
