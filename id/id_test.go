package id_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xraph/tick/id"
)

// Fixed identifiers for parse tests; generated once and pinned.
const (
	jobIDText    = "job_01h2xcejqtf2nbrexx3vqjhp41"
	workerIDText = "wkr_01h2xcejqtf2nbrexx3vqjhp41"
)

func TestNew(t *testing.T) {
	generated := id.New(id.PrefixJob)
	if generated.IsNil() {
		t.Fatal("New returned the zero value")
	}
	if got := generated.Prefix(); got != id.PrefixJob {
		t.Fatalf("Prefix() = %q, want %q", got, id.PrefixJob)
	}
	if s := generated.String(); !strings.HasPrefix(s, "job_") {
		t.Fatalf("String() = %q, want job_ prefix", s)
	}
	if other := id.New(id.PrefixJob); other.String() == generated.String() {
		t.Fatalf("two generated identifiers collide: %q", other)
	}
}

func TestTypedConstructors(t *testing.T) {
	if s := id.NewJobID().String(); !strings.HasPrefix(s, "job_") {
		t.Errorf("NewJobID() = %q, want job_ prefix", s)
	}
	if s := id.NewWorkerID().String(); !strings.HasPrefix(s, "wkr_") {
		t.Errorf("NewWorkerID() = %q, want wkr_ prefix", s)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		prefix  id.Prefix
		wantErr bool
	}{
		{name: "job identifier", in: jobIDText, prefix: id.PrefixJob},
		{name: "worker identifier", in: workerIDText, prefix: id.PrefixWorker},
		{name: "empty string", in: "", wantErr: true},
		{name: "no separator", in: "job01h2xcejqtf2nbrexx3vqjhp41", wantErr: true},
		{name: "uppercase suffix", in: "job_01H2XCEJQTF2NBREXX3VQJHP41", wantErr: true},
		{name: "truncated suffix", in: "job_01h2x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := id.Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if parsed.String() != tt.in {
				t.Errorf("String() = %q, want %q", parsed.String(), tt.in)
			}
			if parsed.Prefix() != tt.prefix {
				t.Errorf("Prefix() = %q, want %q", parsed.Prefix(), tt.prefix)
			}
		})
	}
}

func TestParseWithPrefix(t *testing.T) {
	if _, err := id.ParseWithPrefix(jobIDText, id.PrefixJob); err != nil {
		t.Fatalf("matching prefix rejected: %v", err)
	}
	_, err := id.ParseWithPrefix(jobIDText, id.PrefixWorker)
	if err == nil {
		t.Fatal("mismatched prefix accepted")
	}
	if !strings.Contains(err.Error(), `"wkr"`) {
		t.Errorf("error %q does not name the wanted prefix", err)
	}
}

func TestTypedParsers(t *testing.T) {
	if _, err := id.ParseJobID(workerIDText); err == nil {
		t.Error("ParseJobID accepted a worker identifier")
	}
	if _, err := id.ParseWorkerID(jobIDText); err == nil {
		t.Error("ParseWorkerID accepted a job identifier")
	}
	roundTripped, err := id.ParseJobID(jobIDText)
	if err != nil {
		t.Fatalf("ParseJobID(%q): %v", jobIDText, err)
	}
	if roundTripped.String() != jobIDText {
		t.Errorf("round trip changed the identifier: %q", roundTripped)
	}
}

func TestMustParse(t *testing.T) {
	if got := id.MustParse(jobIDText).String(); got != jobIDText {
		t.Fatalf("MustParse = %q, want %q", got, jobIDText)
	}
	defer func() {
		if recover() == nil {
			t.Error("MustParse accepted garbage without panicking")
		}
	}()
	id.MustParse("not-an-identifier")
}

func TestNilValue(t *testing.T) {
	var zero id.ID
	if !zero.IsNil() {
		t.Error("zero value is not Nil")
	}
	if zero.String() != "" {
		t.Errorf("Nil String() = %q, want empty", zero.String())
	}
	if zero.Prefix() != "" {
		t.Errorf("Nil Prefix() = %q, want empty", zero.Prefix())
	}
	v, err := zero.Value()
	if err != nil {
		t.Fatalf("Nil Value(): %v", err)
	}
	if v != nil {
		t.Errorf("Nil Value() = %v, want NULL", v)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type payload struct {
		Job    id.ID `json:"job"`
		Worker id.ID `json:"worker"`
	}
	in := payload{Job: id.MustParse(jobIDText)}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if want := `{"job":"` + jobIDText + `","worker":""}`; string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}

	var out payload
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Job.String() != jobIDText {
		t.Errorf("job decoded to %q", out.Job)
	}
	if !out.Worker.IsNil() {
		t.Errorf("empty string decoded to %q, want Nil", out.Worker)
	}
}

func TestScan(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		want    string
		wantErr bool
	}{
		{name: "text column", src: jobIDText, want: jobIDText},
		{name: "blob column", src: []byte(workerIDText), want: workerIDText},
		{name: "null column", src: nil, want: ""},
		{name: "empty text", src: "", want: ""},
		{name: "malformed text", src: "job_!!!", wantErr: true},
		{name: "unsupported type", src: 42, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var scanned id.ID
			err := scanned.Scan(tt.src)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Scan(%v) succeeded, want error", tt.src)
				}
				return
			}
			if err != nil {
				t.Fatalf("Scan(%v): %v", tt.src, err)
			}
			if scanned.String() != tt.want {
				t.Errorf("scanned %q, want %q", scanned, tt.want)
			}
		})
	}
}

func TestValueScanRoundTrip(t *testing.T) {
	original := id.NewWorkerID()
	v, err := original.Value()
	if err != nil {
		t.Fatalf("Value(): %v", err)
	}
	var restored id.ID
	if err := restored.Scan(v); err != nil {
		t.Fatalf("Scan(%v): %v", v, err)
	}
	if restored.String() != original.String() {
		t.Errorf("round trip: %q != %q", restored, original)
	}
}
