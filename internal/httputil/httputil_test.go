package httputil

import (
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryList(t *testing.T) {
	q, _ := url.ParseQuery("department=GARD,%20LOT&department=TARN&empty=")
	assert.Equal(t, []string{"GARD", "LOT", "TARN"}, ParseQueryList(q, "department"))
	assert.Nil(t, ParseQueryList(q, "empty"))
	assert.Nil(t, ParseQueryList(q, "missing"))
}

func TestOptionalInt(t *testing.T) {
	n, ok := OptionalInt(" 12 ")
	assert.True(t, ok)
	assert.Equal(t, 12, *n)

	n, ok = OptionalInt("")
	assert.True(t, ok)
	assert.Nil(t, n)

	_, ok = OptionalInt("douze")
	assert.False(t, ok)
}

func TestServerTiming(t *testing.T) {
	rec := httptest.NewRecorder()
	ServerTiming(rec, Timing{"resolve", 1500 * time.Microsecond}, Timing{"enrich", 20 * time.Millisecond})
	assert.Equal(t, "resolve;dur=1.5, enrich;dur=20.0", rec.Header().Get("Server-Timing"))
}
