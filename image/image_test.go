package image

import (
	"bytes"
	"testing"

	"github.com/hallowmantle/i8080asm/line"
)

func TestWriteAndBytes(t *testing.T) {
	img := New()
	if err := img.Write(0x0100, []byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := img.Bytes(); !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("expected [01 02 03], got %x", got)
	}
	if img.Origin() != 0x0100 {
		t.Errorf("expected origin 0x0100, got %#x", img.Origin())
	}
}

func TestWriteOutOfRange(t *testing.T) {
	img := New()
	if err := img.Write(Size-1, []byte{0x01, 0x02}); err == nil {
		t.Error("expected an error writing past the end of the address space")
	}
}

func TestWriteEmptyIsNoop(t *testing.T) {
	img := New()
	if err := img.Write(0x0000, nil); err != nil {
		t.Fatalf("write nil: %v", err)
	}
	if img.Bytes() != nil {
		t.Errorf("expected no bytes written, got %x", img.Bytes())
	}
}

func TestEmptyImageHasNoBytes(t *testing.T) {
	img := New()
	if img.Bytes() != nil {
		t.Errorf("expected nil for an untouched image, got %x", img.Bytes())
	}
	if img.Origin() != 0 {
		t.Errorf("expected origin 0 for an untouched image, got %#x", img.Origin())
	}
}

func TestWriteGapLeftZero(t *testing.T) {
	img := New()
	if err := img.Write(0x0000, []byte{0xAA}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := img.Write(0x0003, []byte{0xBB}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := img.Bytes()
	want := []byte{0xAA, 0x00, 0x00, 0xBB}
	if !bytes.Equal(got, want) {
		t.Errorf("expected %x, got %x", want, got)
	}
}

func TestFromLinesConcatenatesByLocation(t *testing.T) {
	lines := []*line.Line{
		{Location: 0x0000, Bytes: []byte{0x00}},       // nop
		{Location: 0x0001, Bytes: []byte{0x3E, 0x05}}, // mvi a,5
	}
	img, err := FromLines(lines)
	if err != nil {
		t.Fatalf("FromLines: %v", err)
	}
	want := []byte{0x00, 0x3E, 0x05}
	if got := img.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("expected %x, got %x", want, got)
	}
}

func TestFromLinesSkipsLabelOnlyLines(t *testing.T) {
	lines := []*line.Line{
		{Location: 0x0000, Label: "start"},
		{Location: 0x0000, Bytes: []byte{0x00}},
	}
	img, err := FromLines(lines)
	if err != nil {
		t.Fatalf("FromLines: %v", err)
	}
	if got := img.Bytes(); !bytes.Equal(got, []byte{0x00}) {
		t.Errorf("expected [00], got %x", got)
	}
}

func TestFromLinesOverlappingOrgLaterWins(t *testing.T) {
	lines := []*line.Line{
		{Location: 0x0000, Bytes: []byte{0x11}},
		{Location: 0x0000, Bytes: []byte{0x22}},
	}
	img, err := FromLines(lines)
	if err != nil {
		t.Fatalf("FromLines: %v", err)
	}
	if got := img.Bytes(); !bytes.Equal(got, []byte{0x22}) {
		t.Errorf("expected later write [22] to win, got %x", got)
	}
}
