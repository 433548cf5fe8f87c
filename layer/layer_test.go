package layer

import (
	"reflect"
	"testing"
)

func TestEncodeOtherTags(t *testing.T) {
	cases := []struct {
		tags map[string]string
		want string
	}{
		{nil, ""},
		{map[string]string{}, ""},
		{map[string]string{"horse": "yes"}, `"horse"=>"yes"`},
		{
			map[string]string{"motorcar": "no", "horse": "yes"},
			`"horse"=>"yes","motorcar"=>"no"`,
		},
		{
			map[string]string{"name:en": `The "Old" Inn`},
			`"name:en"=>"The \"Old\" Inn"`,
		},
		{
			map[string]string{`back\slash`: "v"},
			`"back\\slash"=>"v"`,
		},
	}
	for _, c := range cases {
		if got := EncodeOtherTags(c.tags); got != c.want {
			t.Errorf("EncodeOtherTags(%v) = %s, want %s", c.tags, got, c.want)
		}
	}
}

func TestDecodeOtherTags(t *testing.T) {
	cases := []map[string]string{
		{"horse": "yes"},
		{"motorcar": "no", "horse": "yes", "name": "Bridle Way"},
		{"name:en": `The "Old" Inn`, `back\slash`: "v"},
		{"empty": ""},
	}
	for _, tags := range cases {
		got := DecodeOtherTags(EncodeOtherTags(tags))
		if !reflect.DeepEqual(got, tags) {
			t.Errorf("round trip of %v = %v", tags, got)
		}
	}
	if got := DecodeOtherTags(""); got != nil {
		t.Errorf("DecodeOtherTags(\"\") = %v, want nil", got)
	}
}

func TestValid(t *testing.T) {
	for _, l := range All {
		if !Valid(l) {
			t.Errorf("Valid(%q) = false", l)
		}
	}
	if Valid("buildings") {
		t.Error("Valid(buildings) = true")
	}
}

func TestTableAdd(t *testing.T) {
	tbl := NewTable(Points, []string{"name", "highway"})
	tbl.Add(Feature{OSMID: 1, Geometry: "POINT (0.5 51.5)"})
	tbl.Add(Feature{OSMID: 2, Geometry: "POINT (0.6 51.6)"})
	if len(tbl.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(tbl.Features))
	}
	if tbl.Layer != Points {
		t.Errorf("layer = %q", tbl.Layer)
	}
}
