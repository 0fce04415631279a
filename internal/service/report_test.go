package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/kidneymate/server/internal/metrics"
	"github.com/kidneymate/server/internal/repository"
	"github.com/kidneymate/server/internal/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

// formFile builds a multipart upload the way net/http hands it to a handler.
func formFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	header := form.File["file"][0]
	file, err := header.Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })
	return file, header
}

func newReportService(t *testing.T) (*ReportService, string) {
	t.Helper()

	database := newTestDB(t)
	user := createTestUser(t, database)

	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	svc := NewReportService(repository.NewReportRepository(database), local, metrics.New(), "http://localhost:8090/", time.Hour)
	svc.now = clock(time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC))
	return svc, user.ID
}

func TestReportUploadListOpen(t *testing.T) {
	svc, userID := newReportService(t)
	ctx := context.Background()

	file, header := formFile(t, "Scan.PNG", pngBytes)
	report, err := svc.Upload(ctx, userID, file, header)
	require.NoError(t, err)

	assert.Equal(t, "report_1735804860000.png", report.Filename)
	assert.Equal(t, "image/png", report.MimeType)
	assert.Equal(t, "private/reports/"+report.ID+".png", report.StoragePath)
	assert.Equal(t, "http://localhost:8090/api/reports/"+report.ID+"/file", report.URL)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.ReportUploads))

	second, header2 := formFile(t, "b.png", pngBytes)
	_, err = svc.Upload(ctx, userID, second, header2)
	require.NoError(t, err)

	reports, err := svc.Reports(userID)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, report.ID, reports[1].ID)
	assert.NotEmpty(t, reports[0].URL)

	_, body, err := svc.Open(ctx, userID, report.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, pngBytes, data)
}

func TestReportUploadRejectsNonImage(t *testing.T) {
	svc, userID := newReportService(t)

	file, header := formFile(t, "notes.png", []byte(strings.Repeat("plain text ", 20)))
	_, err := svc.Upload(context.Background(), userID, file, header)
	assert.ErrorIs(t, err, ErrReportValidation)

	reports, err := svc.Reports(userID)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestReportShareFallsBackToDownloadRoute(t *testing.T) {
	svc, userID := newReportService(t)
	ctx := context.Background()

	file, header := formFile(t, "scan.png", pngBytes)
	report, err := svc.Upload(ctx, userID, file, header)
	require.NoError(t, err)

	link, err := svc.Share(ctx, userID, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.URL, link.URL)
	assert.Nil(t, link.ExpiresAt)
}

func TestReportOwnerOnly(t *testing.T) {
	svc, userID := newReportService(t)
	ctx := context.Background()

	file, header := formFile(t, "scan.png", pngBytes)
	report, err := svc.Upload(ctx, userID, file, header)
	require.NoError(t, err)

	_, _, err = svc.Open(ctx, "intruder", report.ID)
	assert.ErrorIs(t, err, repository.ErrReportNotFound)

	_, err = svc.Share(ctx, "intruder", report.ID)
	assert.ErrorIs(t, err, repository.ErrReportNotFound)

	err = svc.Delete(ctx, "intruder", report.ID)
	assert.ErrorIs(t, err, repository.ErrReportNotFound)
}

func TestReportDelete(t *testing.T) {
	svc, userID := newReportService(t)
	ctx := context.Background()

	file, header := formFile(t, "scan.png", pngBytes)
	report, err := svc.Upload(ctx, userID, file, header)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, userID, report.ID))

	_, err = svc.storage.Open(ctx, report.StoragePath)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	err = svc.Delete(ctx, userID, report.ID)
	assert.ErrorIs(t, err, repository.ErrReportNotFound)
}
