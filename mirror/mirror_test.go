package mirror

import (
	"testing"
)

func testCatalogue() *Catalogue {
	return &Catalogue{
		Server: "geofabrik",
		Regions: []Region{
			{ID: "europe", Name: "Europe", URLs: map[string]string{
				".osm.pbf": "https://download.geofabrik.de/europe-latest.osm.pbf",
			}},
			{ID: "europe/great-britain", Name: "Great Britain", Parent: "europe", URLs: map[string]string{
				".osm.pbf": "https://download.geofabrik.de/europe/great-britain-latest.osm.pbf",
			}},
			{ID: "europe/great-britain/england", Name: "England", Parent: "europe/great-britain", URLs: map[string]string{
				".osm.pbf": "https://download.geofabrik.de/europe/great-britain/england-latest.osm.pbf",
			}},
			{ID: "europe/great-britain/england/rutland", Name: "Rutland", Parent: "europe/great-britain/england", URLs: map[string]string{
				".osm.pbf": "https://download.geofabrik.de/europe/great-britain/england/rutland-latest.osm.pbf",
				".shp.zip": "https://download.geofabrik.de/europe/great-britain/england/rutland-latest-free.shp.zip",
			}},
			{ID: "europe/great-britain/england/greater-london", Name: "Greater London", Parent: "europe/great-britain/england", URLs: map[string]string{
				".osm.pbf": "https://download.geofabrik.de/europe/great-britain/england/greater-london-latest.osm.pbf",
			}},
			{ID: "europe/great-britain/scotland", Name: "Scotland", Parent: "europe/great-britain", URLs: map[string]string{
				".osm.pbf": "https://download.geofabrik.de/europe/great-britain/scotland-latest.osm.pbf",
			}},
			{ID: "us/georgia", Name: "Georgia (US)", Parent: "us", URLs: map[string]string{
				".osm.pbf": "https://download.geofabrik.de/north-america/us/georgia-latest.osm.pbf",
			}},
			{ID: "europe/georgia", Name: "Georgia", Parent: "europe", URLs: map[string]string{
				".osm.pbf": "https://download.geofabrik.de/europe/georgia-latest.osm.pbf",
			}},
		},
	}
}

func TestMatchExact(t *testing.T) {
	c := testCatalogue()
	for _, name := range []string{"Rutland", "rutland", " RUTLAND ", "rut-land"} {
		r, err := c.Match(name)
		if err != nil {
			t.Fatalf("Match(%q): %v", name, err)
		}
		if r.Name != "Rutland" {
			t.Errorf("Match(%q) = %q, want Rutland", name, r.Name)
		}
	}
}

func TestMatchFilename(t *testing.T) {
	c := testCatalogue()
	for _, name := range []string{
		"rutland-latest.osm.pbf",
		"rutland-latest-free.shp.zip",
		"https://download.geofabrik.de/europe/great-britain/england/rutland-latest.osm.pbf",
	} {
		r, err := c.Match(name)
		if err != nil {
			t.Fatalf("Match(%q): %v", name, err)
		}
		if r.Name != "Rutland" {
			t.Errorf("Match(%q) = %q, want Rutland", name, r.Name)
		}
	}
}

func TestMatchFuzzy(t *testing.T) {
	c := testCatalogue()
	r, err := c.Match("Ruthland")
	if err != nil {
		t.Fatalf("Match(Ruthland): %v", err)
	}
	if r.Name != "Rutland" {
		t.Errorf("Match(Ruthland) = %q, want Rutland", r.Name)
	}

	r, err = c.Match("london")
	if err != nil {
		t.Fatalf("Match(london): %v", err)
	}
	if r.Name != "Greater London" {
		t.Errorf("Match(london) = %q, want Greater London", r.Name)
	}
}

func TestMatchUnknown(t *testing.T) {
	c := testCatalogue()
	_, err := c.Match("Atlantis City")
	if err == nil {
		t.Fatal("expected error for unknown region")
	}
	ure, ok := err.(*UnknownRegionError)
	if !ok {
		t.Fatalf("expected *UnknownRegionError, got %T: %v", err, err)
	}
	if ure.Server != "geofabrik" {
		t.Errorf("unexpected server %q", ure.Server)
	}
	if len(ure.Suggestions) == 0 {
		t.Error("expected suggestions")
	}
}

func TestMatchAmbiguous(t *testing.T) {
	c := testCatalogue()
	// "Georgia" matches the European country exactly, not the US state
	r, err := c.Match("Georgia")
	if err != nil {
		t.Fatalf("Match(Georgia): %v", err)
	}
	if r.ID != "europe/georgia" {
		t.Errorf("Match(Georgia) = %q, want europe/georgia", r.ID)
	}
	r, err = c.Match("Georgia (US)")
	if err != nil {
		t.Fatalf("Match(Georgia (US)): %v", err)
	}
	if r.ID != "us/georgia" {
		t.Errorf("Match(Georgia (US)) = %q, want us/georgia", r.ID)
	}
}

func TestSubregions(t *testing.T) {
	c := testCatalogue()
	subs, err := c.Subregions("Great Britain", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 direct subregions, got %d", len(subs))
	}
	if subs[0].Name != "England" || subs[1].Name != "Scotland" {
		t.Errorf("unexpected subregions %q, %q", subs[0].Name, subs[1].Name)
	}

	deep, err := c.Subregions("Great Britain", true)
	if err != nil {
		t.Fatal(err)
	}
	// England is replaced by its leaves, Scotland has none
	want := map[string]bool{"Rutland": true, "Greater London": true, "Scotland": true}
	if len(deep) != len(want) {
		t.Fatalf("expected %d deep subregions, got %d", len(want), len(deep))
	}
	for _, r := range deep {
		if !want[r.Name] {
			t.Errorf("unexpected deep subregion %q", r.Name)
		}
	}
}

func TestMatchFormat(t *testing.T) {
	valid := []string{".osm.pbf", ".shp.zip", ".osm.bz2"}
	cases := []struct {
		in   string
		want string
	}{
		{".osm.pbf", ".osm.pbf"},
		{"pbf", ".osm.pbf"},
		{".pbf", ".osm.pbf"},
		{"shp", ".shp.zip"},
		{"shp.zip", ".shp.zip"},
		{"bz2", ".osm.bz2"},
	}
	for _, c := range cases {
		got, err := MatchFormat(c.in, valid)
		if err != nil {
			t.Errorf("MatchFormat(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("MatchFormat(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	_, err := MatchFormat("xml", valid)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, ok := err.(*UnknownFormatError); !ok {
		t.Fatalf("expected *UnknownFormatError, got %T", err)
	}
}

func TestMatchFormatBBBike(t *testing.T) {
	valid := []string{".pbf", ".gz", ".shp.zip", ".garmin-osm.zip"}
	got, err := MatchFormat("pbf", valid)
	if err != nil {
		t.Fatal(err)
	}
	if got != ".pbf" {
		t.Errorf("MatchFormat(pbf) = %q, want .pbf", got)
	}
	// "zip" alone is ambiguous between .shp.zip and .garmin-osm.zip
	if _, err := MatchFormat("zip", valid); err == nil {
		t.Error("expected error for ambiguous format")
	}
}

func TestRegionFilename(t *testing.T) {
	c := testCatalogue()
	r, _ := c.Get("Rutland")
	if got := r.Filename(".osm.pbf"); got != "rutland-latest.osm.pbf" {
		t.Errorf("Filename(.osm.pbf) = %q", got)
	}
	if got := r.Filename(".shp.zip"); got != "rutland-latest-free.shp.zip" {
		t.Errorf("Filename(.shp.zip) = %q", got)
	}
	if got := r.Filename(".osm.bz2"); got != "" {
		t.Errorf("Filename(.osm.bz2) = %q, want empty", got)
	}
}

func TestRegionDirName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Greater London", "greater-london"},
		{"Rutland", "rutland"},
		{"Georgia (US)", "georgia-us"},
	}
	for _, c := range cases {
		r := &Region{Name: c.name}
		if got := r.DirName(); got != c.want {
			t.Errorf("DirName(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Greater London", "greater london"},
		{"  Rut-Land ", "rut land"},
		{"Georgia (US)", "georgia us"},
		{"london", "london"},
	}
	for _, c := range cases {
		if got := normalizeName(c.in); got != c.want {
			t.Errorf("normalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
