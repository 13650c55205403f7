package tuitest

import (
	"bytes"
	"testing"
)

func TestParseFramesSplitsOnClearScreen(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[Hfirst   \r\nline\x1b[2J\x1b[H\x1b[1mbold\x1b[0m\n\n")
	frames := parseFrames(raw)
	if len(frames) != 2 {
		t.Fatalf("frames = %d, want 2", len(frames))
	}
	if frames[0].Plain != "first\nline" {
		t.Fatalf("first frame = %q", frames[0].Plain)
	}
	rec := &Recording{Frames: frames}
	final, ok := rec.FinalFrame()
	if !ok || final.Plain != "bold" {
		t.Fatalf("final frame = %q (ok=%v)", final.Plain, ok)
	}
}

func TestFinalFrameOnEmptyRecording(t *testing.T) {
	var rec *Recording
	if _, ok := rec.FinalFrame(); ok {
		t.Fatal("nil recording should have no frames")
	}
}

func TestResponderAnswersQueriesAcrossReads(t *testing.T) {
	var replies bytes.Buffer
	tr := newTerminalResponder(&replies)
	tr.Process([]byte("hello \x1b]11"))
	if replies.Len() != 0 {
		t.Fatalf("partial query answered early: %q", replies.String())
	}
	tr.Process([]byte(";?\x07 and \x1b[6n"))
	want := "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R"
	if replies.String() != want {
		t.Fatalf("replies = %q, want %q", replies.String(), want)
	}
}
