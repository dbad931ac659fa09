package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/seowliyuan/nutriadmin/models"

	"github.com/stretchr/testify/require"
)

func seedRecognitions(t *testing.T) (*RecognitionService, context.Context) {
	t.Helper()
	db := newTestDB(t, &models.Recognition{})
	rows := []models.Recognition{
		{UserID: "u-1", UserEmail: "zul@example.com", Label: "Nasi Lemak", Confidence: f64(0.95), Source: "gemini"},
		{UserID: "u-1", UserEmail: "zul@example.com", Label: "Laksa", Confidence: f64(0.42), Source: "tflite"},
		{UserID: "u-2", UserEmail: "aina@example.com", Label: "Satay", Confidence: f64(0.88), Source: "gemini"},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}
	return NewRecognitionService(db), context.Background()
}

func TestRecognitionListFilters(t *testing.T) {
	svc, ctx := seedRecognitions(t)

	out := svc.List(ctx, RecognitionQuery{Page: 1, PerPage: 10})
	require.Equal(t, "recognitions", out.Source)
	require.Len(t, out.Logs, 3)

	out = svc.List(ctx, RecognitionQuery{Page: 1, PerPage: 10, Text: "laksa"})
	require.Len(t, out.Logs, 1)

	out = svc.List(ctx, RecognitionQuery{Page: 1, PerPage: 10, Text: "aina"})
	require.Len(t, out.Logs, 1, "text also matches the user email")

	out = svc.List(ctx, RecognitionQuery{Page: 1, PerPage: 10, UserID: "u-1"})
	require.Len(t, out.Logs, 2)

	out = svc.List(ctx, RecognitionQuery{Page: 1, PerPage: 10, MinConfidence: f64(0.8)})
	require.Len(t, out.Logs, 2)

	out = svc.List(ctx, RecognitionQuery{Page: 1, PerPage: 10, Source: "tflite"})
	require.Len(t, out.Logs, 1)
}

func TestRecognitionListMissingTableDegrades(t *testing.T) {
	db := newTestDB(t)
	out := NewRecognitionService(db).List(context.Background(), RecognitionQuery{Page: 1, PerPage: 10})
	require.Equal(t, "none", out.Source)
	require.Empty(t, out.Logs)
}

func TestRecognitionGetNotFound(t *testing.T) {
	svc, ctx := seedRecognitions(t)
	_, err := svc.Get(ctx, 999)
	require.ErrorIs(t, err, ErrRecognitionNotFound)
}

func TestRecognitionExportCSVHonorsFilters(t *testing.T) {
	svc, ctx := seedRecognitions(t)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf, RecognitionQuery{UserID: "u-1"}, 1000))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two matching rows")
	require.Equal(t, "Detected Label", records[0][3])
}
