package adapthttp

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"fitcore/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware(t *testing.T) {
	s := &Server{metrics: metrics.NewTestManager()}
	handler := s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	}))

	var buf bytes.Buffer
	orig := logrus.StandardLogger().Out
	logrus.SetOutput(&buf)
	defer logrus.SetOutput(orig)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test-path", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	out := buf.String()
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/test-path")
	assert.Contains(t, out, "status=418")
}

func TestRequestMetrics(t *testing.T) {
	s := &Server{metrics: metrics.NewTestManager()}
	handler := s.requestMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, float64(2), testutil.ToFloat64(s.metrics.CounterRequests.WithLabelValues("GET", "404")))
	assert.Equal(t, float64(0), testutil.ToFloat64(s.metrics.GaugeRequests))
}

type panicRecTestHandler struct {
	panic  bool
	called bool
}

func (p *panicRecTestHandler) ServeHTTP(http.ResponseWriter, *http.Request) {
	p.called = true
	if p.panic {
		panic("YOLO")
	}
}

func TestPanicRecovery(t *testing.T) {
	orig := logrus.StandardLogger().Out
	logrus.SetOutput(&bytes.Buffer{})
	defer logrus.SetOutput(orig)

	for _, tc := range []struct {
		name       string
		panic      bool
		wantPanics float64
		wantStatus int
	}{
		{"no panic", false, 0, http.StatusOK},
		{"panic", true, 1, http.StatusInternalServerError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := &Server{metrics: metrics.NewTestManager()}
			next := &panicRecTestHandler{panic: tc.panic}

			rr := httptest.NewRecorder()
			s.panicRecovery(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.True(t, next.called)
			assert.Equal(t, tc.wantPanics, testutil.ToFloat64(s.metrics.CounterHandleRequestPanic))
			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(errBadRequest))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
