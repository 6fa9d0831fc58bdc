package postgres

import (
	"errors"
	"testing"
	"time"
)

func TestMessageCursorRoundtrip(t *testing.T) {
	in := MessageCursor{SentAt: time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC), MsgID: "m-17"}

	s, err := in.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeMessageCursor(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.SentAt.Equal(in.SentAt) || out.MsgID != in.MsgID {
		t.Fatalf("roundtrip: %+v", out)
	}
}

func TestDecodeMessageCursor_Empty(t *testing.T) {
	c, err := DecodeMessageCursor("")
	if err != nil || c != nil {
		t.Fatalf("empty cursor: %v, %v", c, err)
	}
}

func TestDecodeMessageCursor_Garbage(t *testing.T) {
	if _, err := DecodeMessageCursor("%%%not-base64%%%"); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("err = %v", err)
	}
	// валидный base64, но не JSON
	if _, err := DecodeMessageCursor("bm90LWpzb24"); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("err = %v", err)
	}
	// JSON без обязательных полей
	if _, err := DecodeMessageCursor("e30"); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("err = %v", err)
	}
}
