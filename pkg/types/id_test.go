package types

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshalJSON(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  ID
	}{
		{name: "number", input: `17`, want: "17"},
		{name: "string", input: `"wtb-2026-01-12-10"`, want: "wtb-2026-01-12-10"},
		{name: "padded string", input: `"  7 "`, want: "7"},
		{name: "null", input: `null`, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tc.input), &id); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if id != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, id)
			}
		})
	}
}

func TestIDRejectsOtherJSONKinds(t *testing.T) {
	for _, input := range []string{`true`, `{"id":1}`, `[1]`} {
		var id ID
		if err := json.Unmarshal([]byte(input), &id); err == nil {
			t.Fatalf("expected error for %s", input)
		}
	}
}

func TestIDWire(t *testing.T) {
	body, err := json.Marshal(map[string]any{
		"workshop": ID("12").Wire(),
		"slot":     ID("wtb-1").Wire(),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(body) != `{"slot":"wtb-1","workshop":12}` {
		t.Fatalf("unexpected wire body %s", body)
	}
}
