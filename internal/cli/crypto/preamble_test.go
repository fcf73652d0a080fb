package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func testPreamble(t *testing.T) (*Preamble, []byte) {
	t.Helper()
	iv := bytes.Repeat([]byte{0x42}, IVLength)
	p := NewPreamble(DocInfo{DocID: "doc-1", Rev: "rev-1"}, MethodAES256GCM, iv, 11)
	raw, err := p.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return p, raw
}

func TestPreamble_EncodeProducesCurrentLayout(t *testing.T) {
	_, raw := testPreamble(t)
	if len(raw) != PreambleCurrentSize {
		t.Fatalf("encoded size want %d, got %d", PreambleCurrentSize, len(raw))
	}
	if raw[0] != 0x13 || raw[1] != 0x37 {
		t.Fatalf("bad magic bytes: %x %x", raw[0], raw[1])
	}
}

func TestPreamble_DecodeRoundTrip(t *testing.T) {
	p, raw := testPreamble(t)
	got, err := DecodePreamble(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Legacy {
		t.Fatalf("current layout reported as legacy")
	}
	if got.DocID != p.DocID || got.Rev != p.Rev {
		t.Fatalf("identity mismatch: %q/%q", got.DocID, got.Rev)
	}
	if got.Size != 11 {
		t.Fatalf("size want 11, got %d", got.Size)
	}
	if got.Method != MethodAES256GCM || got.Scheme != SchemeSymKey {
		t.Fatalf("scheme/method mismatch: %d/%d", got.Scheme, got.Method)
	}
	if !bytes.Equal(got.IV, p.IV) {
		t.Fatalf("iv mismatch")
	}
	if got.Timestamp != p.Timestamp {
		t.Fatalf("timestamp mismatch: %d != %d", got.Timestamp, p.Timestamp)
	}
}

// Легаси-раскладка (без поля size) должна приниматься, а size — быть неизвестным.
func TestPreamble_DecodeLegacyLayout(t *testing.T) {
	_, raw := testPreamble(t)
	got, err := DecodePreamble(raw[:PreambleLegacySize])
	if err != nil {
		t.Fatalf("decode legacy: %v", err)
	}
	if !got.Legacy {
		t.Fatalf("legacy layout not flagged")
	}
	if got.Size != -1 {
		t.Fatalf("legacy size want -1, got %d", got.Size)
	}
}

func TestPreamble_DecodeRejectsOtherLengths(t *testing.T) {
	for _, n := range []int{0, 1, PreambleLegacySize - 1, PreambleLegacySize + 1, PreambleCurrentSize + 1} {
		if _, err := DecodePreamble(make([]byte, n)); !errors.Is(err, ErrInvalidBlob) {
			t.Fatalf("len=%d: want ErrInvalidBlob, got %v", n, err)
		}
	}
}

func TestPreamble_ValidateReasons(t *testing.T) {
	expect := DocInfo{DocID: "doc-1", Rev: "rev-1"}

	cases := []struct {
		name   string
		mangle func(p *Preamble)
		method Method
		reason string
	}{
		{"bad magic", func(p *Preamble) { p.magic = [2]byte{0, 0} }, MethodAES256GCM, "bad magic"},
		{"bad scheme", func(p *Preamble) { p.Scheme = 9 }, MethodAES256GCM, "bad scheme"},
		{"bad method", func(p *Preamble) {}, MethodAES256CTR, "bad method"},
		{"revision mismatch", func(p *Preamble) { p.Rev = "rev-2" }, MethodAES256GCM, "revision mismatch"},
		{"id mismatch", func(p *Preamble) { p.DocID = "doc-2" }, MethodAES256GCM, "id mismatch"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, _ := testPreamble(t)
			tc.mangle(p)
			err := p.Validate(expect, tc.method)
			if !errors.Is(err, ErrInvalidBlob) {
				t.Fatalf("want ErrInvalidBlob, got %v", err)
			}
			if !bytes.Contains([]byte(err.Error()), []byte(tc.reason)) {
				t.Fatalf("want reason %q in error, got %q", tc.reason, err)
			}
		})
	}

	p, _ := testPreamble(t)
	if err := p.Validate(expect, MethodAES256GCM); err != nil {
		t.Fatalf("valid preamble rejected: %v", err)
	}
}

func TestPreamble_EncodeRejectsLongIdentity(t *testing.T) {
	iv := make([]byte, IVLength)
	long := string(bytes.Repeat([]byte{'x'}, 255))
	p := NewPreamble(DocInfo{DocID: long, Rev: "1"}, MethodAES256GCM, iv, 0)
	if _, err := p.Encode(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("want ErrConfiguration for long doc id, got %v", err)
	}
}
