package alert_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/xraph/tick/alert"
)

func baseAlert() alert.Alert {
	return alert.Alert{
		Environment: "production",
		Type:        "job_failure",
		Component:   "billing-sync",
		Severity:    "critical",
		Description: "sync failed after 3 attempts: connection reset",
	}
}

func TestFingerprintShape(t *testing.T) {
	key := alert.Fingerprint(baseAlert())

	if !strings.HasPrefix(key, alert.Namespace) {
		t.Fatalf("fingerprint %q missing namespace prefix", key)
	}
	body := strings.TrimPrefix(key, alert.Namespace)
	if !regexp.MustCompile(`^[0-9a-f]{16}$`).MatchString(body) {
		t.Fatalf("fingerprint body %q is not 16 hex characters", body)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	if alert.Fingerprint(baseAlert()) != alert.Fingerprint(baseAlert()) {
		t.Fatal("same alert produced different fingerprints")
	}
}

func TestFingerprintCollapsesNumbers(t *testing.T) {
	a := baseAlert()
	b := baseAlert()
	a.Description = "sync failed after 3 attempts at 14:37:25, 120 rows pending"
	b.Description = "sync failed after 17 attempts at 09:05:01, 4500 rows pending"

	if alert.Fingerprint(a) != alert.Fingerprint(b) {
		t.Error("alerts differing only in numbers should share a fingerprint")
	}
}

func TestFingerprintIgnoresCaseAndPunctuation(t *testing.T) {
	a := baseAlert()
	b := baseAlert()
	a.Description = "Connection REFUSED (upstream)!"
	b.Description = "connection refused upstream"

	if alert.Fingerprint(a) != alert.Fingerprint(b) {
		t.Error("case and punctuation should not change the fingerprint")
	}
}

func TestFingerprintDistinguishesTupleFields(t *testing.T) {
	base := alert.Fingerprint(baseAlert())

	variants := map[string]alert.Alert{}

	v := baseAlert()
	v.Environment = "staging"
	variants["environment"] = v

	v = baseAlert()
	v.Type = "queue_depth"
	variants["type"] = v

	v = baseAlert()
	v.Component = "report-builder"
	variants["component"] = v

	v = baseAlert()
	v.Severity = "warning"
	variants["severity"] = v

	v = baseAlert()
	v.Description = "sync failed with a completely different message"
	variants["description"] = v

	for field, a := range variants {
		if alert.Fingerprint(a) == base {
			t.Errorf("changing %s did not change the fingerprint", field)
		}
	}
}

func TestFingerprintTruncatesDescription(t *testing.T) {
	long := strings.Repeat("x", 200)

	a := baseAlert()
	b := baseAlert()
	a.Description = long + " tail one"
	b.Description = long + " tail two"
	if alert.Fingerprint(a) != alert.Fingerprint(b) {
		t.Error("text past 200 characters should not affect the fingerprint")
	}

	c := baseAlert()
	c.Description = "y" + long[:199]
	if alert.Fingerprint(a) == alert.Fingerprint(c) {
		t.Error("text inside the first 200 characters should affect the fingerprint")
	}
}

func TestFingerprintIgnoresDetails(t *testing.T) {
	a := baseAlert()
	b := baseAlert()
	b.Details = map[string]any{"rows": 4500}

	if alert.Fingerprint(a) != alert.Fingerprint(b) {
		t.Error("details should not participate in fingerprinting")
	}
}
