package metrics

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestNew_AutoDimension(t *testing.T) {
	initOnce.Do(func() {})
	functionName = "stories-lambda"
	defer func() { functionName = "" }()

	r := New(Namespace)
	if r.namespace != Namespace {
		t.Errorf("expected namespace %s, got %s", Namespace, r.namespace)
	}
	if r.dimensions["FunctionName"] != "stories-lambda" {
		t.Errorf("expected FunctionName dimension, got %q", r.dimensions["FunctionName"])
	}
}

func TestRecorder_FlushOutput(t *testing.T) {
	initOnce.Do(func() {})
	functionName = ""

	var buf bytes.Buffer
	rec := New(Namespace).WithWriter(&buf)
	rec.now = func() time.Time { return time.UnixMilli(1700000000000) }
	rec.Dimension("Operation", "rank").
		Duration("RankingMs", 1234500*time.Microsecond).
		Count("StoriesRanked", 7).
		Property("sessionId", "abc-123").
		Flush()

	var doc struct {
		AWS struct {
			Timestamp         int64
			CloudWatchMetrics []struct {
				Namespace  string
				Dimensions [][]string
				Metrics    []metricDef
			}
		} `json:"_aws"`
		Operation     string
		RankingMs     float64
		StoriesRanked float64
		SessionID     string `json:"sessionId"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("failed to parse EMF output as JSON: %v\nOutput: %s", err, buf.String())
	}

	if doc.AWS.Timestamp != 1700000000000 {
		t.Errorf("unexpected timestamp %d", doc.AWS.Timestamp)
	}
	if len(doc.AWS.CloudWatchMetrics) != 1 {
		t.Fatalf("expected one metric block, got %d", len(doc.AWS.CloudWatchMetrics))
	}
	cw := doc.AWS.CloudWatchMetrics[0]
	if cw.Namespace != Namespace {
		t.Errorf("expected namespace %s, got %s", Namespace, cw.Namespace)
	}
	if len(cw.Dimensions) != 1 || len(cw.Dimensions[0]) != 1 || cw.Dimensions[0][0] != "Operation" {
		t.Errorf("unexpected dimensions %v", cw.Dimensions)
	}
	if len(cw.Metrics) != 2 || cw.Metrics[0].Name != "RankingMs" || cw.Metrics[1].Unit != UnitCount {
		t.Errorf("unexpected metric definitions %+v", cw.Metrics)
	}

	if doc.Operation != "rank" {
		t.Errorf("expected Operation=rank, got %q", doc.Operation)
	}
	if doc.RankingMs != 1234.5 {
		t.Errorf("expected RankingMs=1234.5, got %v", doc.RankingMs)
	}
	if doc.StoriesRanked != 7 {
		t.Errorf("expected StoriesRanked=7, got %v", doc.StoriesRanked)
	}
	if doc.SessionID != "abc-123" {
		t.Errorf("expected sessionId=abc-123, got %q", doc.SessionID)
	}
}

func TestRecorder_FlushEmpty(t *testing.T) {
	var buf bytes.Buffer
	New("Test").WithWriter(&buf).Property("id", "x").Flush()
	if buf.Len() != 0 {
		t.Errorf("expected no output for a recorder without metrics, got: %s", buf.String())
	}
}

func TestRecorder_Chaining(t *testing.T) {
	functionName = ""
	rec := New("Test").
		Dimension("Op", "test").
		Metric("Score", 42, UnitNone).
		Count("Calls", 3).
		Property("id", "xyz")

	if rec.dimensions["Op"] != "test" {
		t.Error("chaining Dimension failed")
	}
	if rec.values["Score"] != 42 || rec.metrics["Score"].Unit != UnitNone {
		t.Error("chaining Metric failed")
	}
	if rec.values["Calls"] != 3 || rec.metrics["Calls"].Unit != UnitCount {
		t.Error("chaining Count failed")
	}
	if rec.properties["id"] != "xyz" {
		t.Error("chaining Property failed")
	}
}
