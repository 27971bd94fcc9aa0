package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_ReturnsAttachment(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartRequest(t, "/api/compress", map[string]string{"compression_level": "High"},
		formFile{field: "file", name: "report.pdf", data: []byte(samplePDF)},
	))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="compressed_report.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "11", rec.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF-result", rec.Body.String())
	f.assertTempDirEmpty(t)
}

func TestCompress_LinkDelivery(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartRequest(t, "/api/compress", map[string]string{"delivery": "link"},
		formFile{field: "file", name: "report.pdf", data: []byte(samplePDF)},
	))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "PDF compressed successfully", body["message"])
	assert.Equal(t, "https://cdn.example.com/results/compressed_report.pdf", body["downloadUrl"])
	assert.Equal(t, float64(len("%PDF-result")), body["size"])
	f.assertTempDirEmpty(t)
}

func TestCompress_RejectsWrongExtensionWithoutRemoteCalls(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartRequest(t, "/api/compress", nil,
		formFile{field: "file", name: "notes.docx", data: []byte("PK\x03\x04")},
	))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "unsupported file type", body["error"])
	assert.Equal(t, "file: notes.docx; allowed: pdf", body["details"])
	assert.Zero(t, f.assets.callCount())
	assert.Zero(t, f.processor.calls)
	f.assertTempDirEmpty(t)
}

func TestCompress_NoFile(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartRequest(t, "/api/compress", map[string]string{"compression_level": "low"}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no file uploaded", decodeJSON(t, rec)["error"])
}

func TestCompress_NotMultipart(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/compress", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "expected multipart/form-data body", decodeJSON(t, rec)["error"])
}

func TestCompress_ProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		startErr   error
		processErr error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "processing failure carries diagnostic",
			processErr: domain.NewProviderError(domain.ErrProcessingFailed, "process", "Damaged file", nil),
			wantStatus: http.StatusInternalServerError,
			wantDetail: "Damaged file",
		},
		{
			name:       "provider unavailable",
			startErr:   domain.NewProviderError(domain.ErrProviderUnavailable, "start", "status 503", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantDetail: "status 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.processor.startErr = tt.startErr
			f.processor.processErr = tt.processErr

			rec := f.do(multipartRequest(t, "/api/compress", nil,
				formFile{field: "file", name: "report.pdf", data: []byte(samplePDF)},
			))

			require.Equal(t, tt.wantStatus, rec.Code)
			body := decodeJSON(t, rec)
			assert.Equal(t, "Compression failed", body["error"])
			assert.Equal(t, tt.wantDetail, body["details"])
			f.assertTempDirEmpty(t)
		})
	}
}

func TestMerge_RequiresTwoFiles(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartRequest(t, "/api/merge", nil,
		formFile{field: "files", name: "a.pdf", data: []byte(samplePDF)},
	))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "at least 2 files are required", decodeJSON(t, rec)["error"])
	assert.Zero(t, f.assets.callCount())
}

func TestMerge_ReturnsMergedDocument(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartRequest(t, "/api/merge", nil,
		formFile{field: "files", name: "a.pdf", data: []byte(samplePDF)},
		formFile{field: "files", name: "b.pdf", data: []byte(samplePDF)},
	))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `attachment; filename="merged_document.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, 2, f.assets.callCount())
	f.assertTempDirEmpty(t)
}

func TestImageToPDF_InvalidMargin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartRequest(t, "/api/image-to-pdf", map[string]string{"margin": "wide"},
		formFile{field: "files", name: "p1.png", data: pngBytes(t)},
	))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "margin must be an integer", decodeJSON(t, rec)["error"])
	assert.Zero(t, f.assets.callCount())
	f.assertTempDirEmpty(t)
}

func TestImageToPDF_UnsupportedPageSize(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartRequest(t, "/api/image-to-pdf", map[string]string{"pagesize": "A0"},
		formFile{field: "files", name: "p1.png", data: pngBytes(t)},
	))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, `unsupported page size "A0"`, body["error"])
	assert.Equal(t, "allowed: fit, A4, letter", body["details"])
}

func TestImageToPDF_ReturnsPDF(t *testing.T) {
	f := newFixture(t)

	rec := f.do(multipartRequest(t, "/api/image-to-pdf", map[string]string{"pagesize": "A4", "margin": "10", "orientation": "Landscape"},
		formFile{field: "files", name: "p1.png", data: pngBytes(t)},
		formFile{field: "files", name: "p2.png", data: pngBytes(t)},
	))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="merged_images_`)
	f.assertTempDirEmpty(t)
}
