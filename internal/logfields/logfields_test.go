package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"PublishID", KeyPublishID, "p-123", PublishID("p-123")},
		{"Trigger", KeyTrigger, "manual", Trigger("manual")},
		{"Outcome", KeyOutcome, "published", Outcome("published")},
		{"Step", KeyStep, "generate", Step("generate")},
		{"Branch", KeyBranch, "gh-pages", Branch("gh-pages")},
		{"Remote", KeyRemote, "origin", Remote("origin")},
		{"Commit", KeyCommit, "abc123", Commit("abc123")},
		{"Dir", KeyDir, "/tmp/x", Dir("/tmp/x")},
		{"File", KeyFile, "post.md", File("post.md")},
		{"Command", KeyCommand, "hugo", Command("hugo")},
		{"Method", KeyMethod, "POST", Method("POST")},
		{"Path", KeyPath, "/hooks/push", Path("/hooks/push")},
		{"UserAgent", KeyUserAgent, "curl/8.0", UserAgent("curl/8.0")},
		{"RemoteAddr", KeyRemoteAddr, "1.2.3.4", RemoteAddr("1.2.3.4")},
		{"Subject", KeySubject, "blogpub.publishes", Subject("blogpub.publishes")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestErrorHelper(t *testing.T) {
	a := Error(errors.New("boom"))
	if a.Key != KeyError || a.Value.String() != "boom" {
		t.Fatalf("Error attr mismatch: %s=%v", a.Key, a.Value)
	}

	empty := Error(nil)
	if empty.Value.String() != "" {
		t.Fatalf("nil error should produce empty value, got %v", empty.Value)
	}
}

func TestDurationMS(t *testing.T) {
	a := DurationMS(12.5)
	if a.Key != KeyDurationMS {
		t.Fatalf("expected key %s, got %s", KeyDurationMS, a.Key)
	}
	if a.Value.Float64() != 12.5 {
		t.Fatalf("expected 12.5, got %v", a.Value)
	}
}

func TestStatus(t *testing.T) {
	a := Status(409)
	if a.Key != KeyStatus {
		t.Fatalf("expected key %s, got %s", KeyStatus, a.Key)
	}
	if a.Value.Int64() != 409 {
		t.Fatalf("expected 409, got %v", a.Value)
	}
}
