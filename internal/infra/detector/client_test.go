package detector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperr "github.com/sezaiemrekonuk/freesight-ai/internal/errors"
)

func newSidecar(t *testing.T, healthy bool, detectBody string, detectStatus int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			if !healthy {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("ok"))
		case "/detect":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("expected multipart request: %v", err)
			}
			if _, _, err := r.FormFile("file"); err != nil {
				t.Errorf("expected file field: %v", err)
			}
			if r.FormValue("conf") == "" {
				t.Error("expected conf field")
			}
			w.WriteHeader(detectStatus)
			w.Write([]byte(detectBody))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestDetect(t *testing.T) {
	body := `{"detections":[{"class_id":2,"class_name":"car","confidence":0.91,"bbox":[0,100,256,300]}]}`
	srv := newSidecar(t, true, body, http.StatusOK)
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if err := c.WarmUp(context.Background()); err != nil {
		t.Fatalf("warm-up failed: %v", err)
	}

	detections, err := c.Detect(context.Background(), []byte("img"), 0.25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}

	d := detections[0]
	if d.ClassName != "car" || d.ClassID != 2 {
		t.Errorf("unexpected detection: %+v", d)
	}
	if d.BBox.X1 != 0 || d.BBox.Y1 != 100 || d.BBox.X2 != 256 || d.BBox.Y2 != 300 {
		t.Errorf("unexpected bbox: %+v", d.BBox)
	}
}

func TestDetect_SidecarDown(t *testing.T) {
	srv := newSidecar(t, true, "", http.StatusOK)
	srv.Close() // connection refused from here on

	c := NewClient(srv.URL, time.Second)
	_, err := c.Detect(context.Background(), []byte("img"), 0.25)
	if !apperr.IsType(err, apperr.ErrorTypeModelUnavailable) {
		t.Errorf("expected model_unavailable, got %v", err)
	}
}

func TestReady_UnhealthySidecar(t *testing.T) {
	srv := newSidecar(t, false, "", http.StatusOK)
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Ready(context.Background())
	if !apperr.IsType(err, apperr.ErrorTypeModelUnavailable) {
		t.Errorf("expected model_unavailable, got %v", err)
	}
}

func TestReady_CachedAfterWarmUp(t *testing.T) {
	srv := newSidecar(t, true, "", http.StatusOK)
	c := NewClient(srv.URL, time.Second)
	if err := c.WarmUp(context.Background()); err != nil {
		t.Fatalf("warm-up failed: %v", err)
	}
	srv.Close()

	// readiness is cached once the model has been seen healthy
	if err := c.Ready(context.Background()); err != nil {
		t.Errorf("expected cached readiness, got %v", err)
	}
}

func TestDetect_ServiceUnavailableResetsReadiness(t *testing.T) {
	srv := newSidecar(t, true, "model loading", http.StatusServiceUnavailable)
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.WarmUp(context.Background()); err != nil {
		t.Fatalf("warm-up failed: %v", err)
	}

	_, err := c.Detect(context.Background(), []byte("img"), 0.25)
	if !apperr.IsType(err, apperr.ErrorTypeModelUnavailable) {
		t.Errorf("expected model_unavailable, got %v", err)
	}
	if c.ready.Load() {
		t.Error("a 503 from the sidecar must reset the readiness flag")
	}
}
