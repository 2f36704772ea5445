package journal

import "testing"

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		payloadLen int
		kind       Kind
	}{
		{0, KindData},
		{1, KindLink},
		{4096, KindData},
		{255, KindLink},
	}

	for _, c := range cases {
		buf := make([]byte, FrameHeaderSize)
		encodeHeader(buf, c.payloadLen, c.kind)

		gotLen, gotKind := decodeHeader(buf)
		if gotLen != c.payloadLen {
			t.Errorf("payload length mismatch: expected %d, got %d", c.payloadLen, gotLen)
		}
		if gotKind != c.kind {
			t.Errorf("kind mismatch: expected %v, got %v", c.kind, gotKind)
		}
	}
}

func TestEncodeDecodeLinkPayloadRoundTrip(t *testing.T) {
	payload := encodeLinkPayload(3, 7)
	if len(payload) != linkPayloadSize {
		t.Fatalf("expected link payload of %d bytes, got %d", linkPayloadSize, len(payload))
	}

	last, current, ok := decodeLinkPayload(payload)
	if !ok {
		t.Fatal("decodeLinkPayload reported invalid payload")
	}
	if last != 3 {
		t.Errorf("last checkpoint id mismatch: expected 3, got %d", last)
	}
	if current != 7 {
		t.Errorf("current checkpoint id mismatch: expected 7, got %d", current)
	}
}

func TestDecodeLinkPayloadRejectsWrongSize(t *testing.T) {
	if _, _, ok := decodeLinkPayload([]byte{1, 2, 3}); ok {
		t.Error("expected decodeLinkPayload to reject a short payload")
	}
}
