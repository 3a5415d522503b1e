package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEngagement(t *testing.T) {
	before := testutil.ToFloat64(EngagementTotal.WithLabelValues("like"))
	RecordEngagement("like")
	assert.Equal(t, before+1, testutil.ToFloat64(EngagementTotal.WithLabelValues("like")))
}

func TestRecordRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/artworks", "200"))
	RecordRequest("GET", "/api/artworks", 200, 15*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/artworks", "200")))
}

func TestRecordEvent(t *testing.T) {
	ok := testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("artwork.created", "ok"))
	failed := testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("artwork.created", "error"))

	RecordEvent("artwork.created", nil)
	RecordEvent("artwork.created", errors.New("broker down"))

	assert.Equal(t, ok+1, testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("artwork.created", "ok")))
	assert.Equal(t, failed+1, testutil.ToFloat64(EventsPublishedTotal.WithLabelValues("artwork.created", "error")))
}
