package ai

import "testing"

func TestParseEmbeddedObject(t *testing.T) {
	raw := `Sure! Here is the result: {"fun_title":"Lost in Space","fun_message":"This page drifted off."} Hope that helps.`

	res := Parse(raw)
	if res.Kind != KindParsed {
		t.Fatalf("Parse kind = %v, want KindParsed", res.Kind)
	}
	if res.Analysis.FunTitle != "Lost in Space" {
		t.Errorf("FunTitle = %q, want %q", res.Analysis.FunTitle, "Lost in Space")
	}
	if res.Analysis.FunMessage != "This page drifted off." {
		t.Errorf("FunMessage = %q, want %q", res.Analysis.FunMessage, "This page drifted off.")
	}
}

func TestParseWithSuggestions(t *testing.T) {
	raw := `{"suggestions":[{"title":"Pricing","url":"/pricing","reason":"matches keyword"}],"fun_title":"t","fun_message":"m"}`

	res := Parse(raw)
	if res.Kind != KindParsed {
		t.Fatalf("Parse kind = %v, want KindParsed", res.Kind)
	}
	if len(res.Analysis.Suggestions) != 1 {
		t.Fatalf("suggestions = %d, want 1", len(res.Analysis.Suggestions))
	}
	s := res.Analysis.Suggestions[0]
	if s.Title != "Pricing" || s.URL != "/pricing" || s.Reason != "matches keyword" {
		t.Errorf("suggestion = %+v", s)
	}
}

func TestParsePartialPayload(t *testing.T) {
	// Chat responses may carry only a message; missing fields stay zero.
	res := Parse(`{"fun_message":"just a message"}`)
	if res.Kind != KindParsed {
		t.Fatalf("Parse kind = %v, want KindParsed", res.Kind)
	}
	if len(res.Analysis.Suggestions) != 0 || res.Analysis.FunTitle != "" {
		t.Errorf("partial payload decoded as %+v, want zero fields", res.Analysis)
	}
}

func TestParseNoBraces(t *testing.T) {
	raw := "I could not find anything matching that, sorry!"
	res := Parse(raw)
	if res.Kind != KindRawText {
		t.Fatalf("Parse kind = %v, want KindRawText", res.Kind)
	}
	if res.Raw != raw {
		t.Errorf("Raw = %q, want full input unchanged", res.Raw)
	}
}

func TestParseInvalidJSON(t *testing.T) {
	raw := "prefix {not json at all} suffix"
	res := Parse(raw)
	if res.Kind != KindRawText {
		t.Fatalf("Parse kind = %v, want KindRawText", res.Kind)
	}
	if res.Raw != raw {
		t.Errorf("Raw = %q, want full input, not the brace slice", res.Raw)
	}
}

func TestExtractObject(t *testing.T) {
	got, ok := extractObject(`prefix {"a":1} suffix`)
	if !ok || got != `{"a":1}` {
		t.Errorf("extractObject = %q, %v; want {\"a\":1}, true", got, ok)
	}

	if _, ok := extractObject("no json here"); ok {
		t.Error("extractObject found an object in brace-free text")
	}

	// Reversed braces are not an object.
	if _, ok := extractObject("} backwards {"); ok {
		t.Error("extractObject accepted reversed braces")
	}
}

func TestResultConstructors(t *testing.T) {
	if r := Parsed(&Analysis{FunTitle: "t"}); r.Kind != KindParsed || r.Analysis.FunTitle != "t" {
		t.Errorf("Parsed() = %+v", r)
	}
	if r := RawText("prose"); r.Kind != KindRawText || r.Raw != "prose" {
		t.Errorf("RawText() = %+v", r)
	}
	if r := Failure("timeout"); r.Kind != KindFailure || r.Reason != "timeout" {
		t.Errorf("Failure() = %+v", r)
	}
}
