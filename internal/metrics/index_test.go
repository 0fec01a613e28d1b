package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOperation(t *testing.T) {
	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("create", "Article", "ok"))
	beforeErr := testutil.ToFloat64(OperationsTotal.WithLabelValues("create", "Article", "error"))

	ObserveOperation("create", "Article", time.Now(), nil)
	ObserveOperation("create", "Article", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(OperationsTotal.WithLabelValues("create", "Article", "ok")); got != before+1 {
		t.Errorf("ok count = %f, want %f", got, before+1)
	}
	if got := testutil.ToFloat64(OperationsTotal.WithLabelValues("create", "Article", "error")); got != beforeErr+1 {
		t.Errorf("error count = %f, want %f", got, beforeErr+1)
	}
	if testutil.CollectAndCount(OperationDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}
