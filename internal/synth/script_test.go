package synth

import "testing"

func TestParseScriptWithAndWithoutEmotion(t *testing.T) {
	script := "[S1:narrator] Once upon a time\n[S2:alice] (happy) Hello there!\n\n[S1:narrator] The end"
	lines := parseScript(script)
	if len(lines) != 3 {
		t.Fatalf("expected 3 non-blank lines, got %d", len(lines))
	}
	if lines[0].speakerKey != "narrator" || lines[0].emotion != "" || lines[0].text != "Once upon a time" {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
	if lines[1].speakerKey != "alice" || lines[1].emotion != "happy" || lines[1].text != "Hello there!" {
		t.Fatalf("unexpected second line: %+v", lines[1])
	}
	if lines[2].text != "The end" {
		t.Fatalf("unexpected third line: %+v", lines[2])
	}
}

func TestParseScriptToleratesMalformedLine(t *testing.T) {
	lines := parseScript("not a script line")
	if len(lines) != 1 {
		t.Fatalf("expected a single fallback line, got %d", len(lines))
	}
	if lines[0].speakerKey != "" || lines[0].text != "not a script line" {
		t.Fatalf("unexpected fallback parse: %+v", lines[0])
	}
}
