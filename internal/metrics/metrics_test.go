package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	before := testutil.ToFloat64(DBQueryTotal.WithLabelValues("insert_event", "success"))

	RecordDBQuery("insert_event", 0.002, nil)

	after := testutil.ToFloat64(DBQueryTotal.WithLabelValues("insert_event", "success"))
	if after != before+1 {
		t.Errorf("success counter = %v, want %v", after, before+1)
	}
}

func TestRecordDBQueryError(t *testing.T) {
	before := testutil.ToFloat64(DBQueryTotal.WithLabelValues("summary", "error"))

	RecordDBQuery("summary", 0.01, errors.New("boom"))

	after := testutil.ToFloat64(DBQueryTotal.WithLabelValues("summary", "error"))
	if after != before+1 {
		t.Errorf("error counter = %v, want %v", after, before+1)
	}
}

func TestExportGauges(t *testing.T) {
	ExportProgress.Set(42)
	if got := testutil.ToFloat64(ExportProgress); got != 42 {
		t.Errorf("ExportProgress = %v, want 42", got)
	}

	ExportsInFlight.Set(1)
	if got := testutil.ToFloat64(ExportsInFlight); got != 1 {
		t.Errorf("ExportsInFlight = %v, want 1", got)
	}
	ExportsInFlight.Set(0)
}
