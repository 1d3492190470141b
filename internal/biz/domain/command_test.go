package domain

import (
	"errors"
	"testing"
)

func TestParseCommand_DateRange(t *testing.T) {
	cmd, err := ParseCommand("8/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != KindDateRange {
		t.Fatalf("expected KindDateRange, got %v", cmd.Kind)
	}
	if cmd.Month != 8 || cmd.Day != 1 {
		t.Errorf("expected 8/1, got %d/%d", cmd.Month, cmd.Day)
	}
	if cmd.Days != DefaultDayCount {
		t.Errorf("expected default day count %d, got %d", DefaultDayCount, cmd.Days)
	}
}

func TestParseCommand_DateRangeWithDayCount(t *testing.T) {
	cmd, err := ParseCommand("12/31 day:3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != KindDateRange || cmd.Month != 12 || cmd.Day != 31 || cmd.Days != 3 {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestParseCommand_DateRangeDayCountOutOfRange(t *testing.T) {
	for _, body := range []string{"8/1 day:0", "8/1 day:11"} {
		_, err := ParseCommand(body)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%q: expected ValidationError, got %v", body, err)
			continue
		}
		if ve.Input != body {
			t.Errorf("%q: expected input echoed, got %q", body, ve.Input)
		}
	}
}

func TestParseCommand_DateRangeMonthOutOfRange(t *testing.T) {
	_, err := ParseCommand("13/1")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestParseCommand_NumberedReactions(t *testing.T) {
	for _, body := range []string{"num:5", "NUM:5", "Num:5"} {
		cmd, err := ParseCommand(body)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", body, err)
		}
		if cmd.Kind != KindNumberedReactions || cmd.Count != 5 {
			t.Errorf("%q: unexpected command: %+v", body, cmd)
		}
	}
}

func TestParseCommand_NumberedReactionsBounds(t *testing.T) {
	for _, n := range []string{"num:1", "num:10"} {
		if cmd, err := ParseCommand(n); err != nil || cmd.Kind != KindNumberedReactions {
			t.Errorf("%q: expected valid command, got %+v, %v", n, cmd, err)
		}
	}
	for _, n := range []string{"num:0", "num:11", "num:100"} {
		_, err := ParseCommand(n)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%q: expected ValidationError, got %v", n, err)
		}
	}
}

func TestParseCommand_Empty(t *testing.T) {
	for _, body := range []string{"", "   ", "\n"} {
		cmd, err := ParseCommand(body)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cmd.Kind != KindDefaultReactions {
			t.Errorf("%q: expected KindDefaultReactions, got %v", body, cmd.Kind)
		}
	}
}

func TestParseCommand_Unrecognized(t *testing.T) {
	bodies := []string{
		"hello",
		"8/1 extra",     // whole-string matching, no substring hits
		"prefix num:3",  // not anchored at start
		"num:abc",
		"1/2/3",
	}
	for _, body := range bodies {
		cmd, err := ParseCommand(body)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", body, err)
		}
		if cmd.Kind != KindUnrecognized {
			t.Errorf("%q: expected KindUnrecognized, got %v", body, cmd.Kind)
		}
	}
}

func TestStripMention(t *testing.T) {
	body, ok := StripMention("<@12345> num:3", "12345")
	if !ok || body != "num:3" {
		t.Errorf("expected (num:3, true), got (%q, %v)", body, ok)
	}

	// nickname mention form
	body, ok = StripMention("<@!12345>  8/1", "12345")
	if !ok || body != "8/1" {
		t.Errorf("expected (8/1, true), got (%q, %v)", body, ok)
	}

	// bare mention yields the empty command
	body, ok = StripMention("<@12345>", "12345")
	if !ok || body != "" {
		t.Errorf("expected (\"\", true), got (%q, %v)", body, ok)
	}

	if _, ok := StripMention("no mention here", "12345"); ok {
		t.Error("expected no match without mention")
	}
	if _, ok := StripMention("<@99999> hi", "12345"); ok {
		t.Error("expected no match for a different user's mention")
	}
}
