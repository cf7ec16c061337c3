package obs

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer("golf-api", "", "test")
	if err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestMiddlewarePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var sawCtx bool
	r.GET("/ping/:id", func(c *gin.Context) {
		sawCtx = trace.SpanFromContext(c.Request.Context()) != nil
		c.JSON(200, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/1", nil))
	if w.Code != 200 || !sawCtx {
		t.Fatalf("code=%d sawCtx=%v", w.Code, sawCtx)
	}

	_, span := Start(context.Background(), "noop")
	End(span, errors.New("boom"))
}
