package share

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestEncodeToken_EmptySelection(t *testing.T) {
	if _, err := EncodeToken(nil); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("expected ErrEmptySelection, got %v", err)
	}
}

func TestEncodeToken_Format(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	token, err := EncodeToken([]uuid.UUID{a, b})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if token != a.String()+","+b.String() {
		t.Errorf("unexpected token %q", token)
	}
}

func TestDecodeToken_RoundTrip(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	token, err := EncodeToken(ids)
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != len(ids) {
		t.Fatalf("expected %d ids, got %d", len(ids), len(decoded))
	}

	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	for _, id := range decoded {
		if !want[id] {
			t.Errorf("unexpected id %s in decoded set", id)
		}
	}
}

func TestDecodeToken_AllInvalid(t *testing.T) {
	for _, token := range []string{
		"not-a-uuid,also-bad",
		"",
		",,,",
		"../../etc/passwd",
		// Nil UUID: version nibble 0 fails the canonical pattern.
		"00000000-0000-0000-0000-000000000000",
	} {
		if _, err := DecodeToken(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestDecodeToken_PartialValidityTolerated(t *testing.T) {
	valid := uuid.New()
	decoded, err := DecodeToken(valid.String() + ",garbage")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != valid {
		t.Errorf("expected only %s, got %v", valid, decoded)
	}
}

func TestDecodeToken_DropsEmptySegments(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	decoded, err := DecodeToken("," + a.String() + ",," + b.String() + ",")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("expected 2 ids, got %d", len(decoded))
	}
}

func TestDecodeToken_RejectsBadVariant(t *testing.T) {
	// Valid hex shape but variant nibble is "c", outside 8/9/a/b.
	bad := "12345678-1234-4234-c234-123456789abc"
	if !strings.Contains(bad, "-c") {
		t.Fatal("test fixture broken")
	}
	if _, err := DecodeToken(bad); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for bad variant, got %v", err)
	}
}
