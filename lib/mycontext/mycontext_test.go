package mycontext

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceContext(t *testing.T) {
	t.Run("Trace header present", func(t *testing.T) {
		t.Setenv("GOOGLE_CLOUD_PROJECT", "myproject")
		request, err := http.NewRequest(http.MethodGet, "/dashboard", nil)
		assert.NoError(t, err)
		request.Header.Set("X-Cloud-Trace-Context", "105445aa7843bc8bf206b120001000/1;o=1")

		c := ContextFromHTTPRequest(request)
		assert.Equal(t, "projects/myproject/traces/105445aa7843bc8bf206b120001000", TraceFromContext(c))
	})

	t.Run("Trace header absent", func(t *testing.T) {
		request, err := http.NewRequest(http.MethodGet, "/dashboard", nil)
		assert.NoError(t, err)

		c := ContextFromHTTPRequest(request)
		assert.Equal(t, "", TraceFromContext(c))
	})

	t.Run("Plain context", func(t *testing.T) {
		assert.Equal(t, "", TraceFromContext(context.TODO()))
	})
}
