package values

import "testing"

func TestTagRoundTrip(t *testing.T) {
	tag := NewTag()
	parsed, err := TagFromString(tag.String())
	if err != nil {
		t.Fatalf("TagFromString: %v", err)
	}
	if !tag.Equal(parsed) {
		t.Fatalf("round-tripped tag differs: %s vs %s", tag, parsed)
	}
}

func TestVersionOrdering(t *testing.T) {
	v1 := InitialVersion()
	v2 := v1.Next()
	if !v1.Less(v2) {
		t.Fatalf("expected %s < %s", v1, v2)
	}
	if v2.Less(v1) {
		t.Fatalf("expected %s to not be less than %s", v2, v1)
	}
	if v2.String() != "v2" {
		t.Fatalf("expected v2, got %s", v2)
	}

	parsed, err := ParseVersion("v1.3")
	if err != nil {
		t.Fatalf("ParseVersion: %v", err)
	}
	if parsed.String() != "v1.3" {
		t.Fatalf("expected v1.3, got %s", parsed)
	}
	if parsed.Next().String() != "v1.4" {
		t.Fatalf("expected v1.4, got %s", parsed.Next())
	}
}

func TestCanonicalizeDeterministic(t *testing.T) {
	build := func() *Catalog {
		c := NewCatalog()
		c.SetAttribute("$timestamp", Moment(Now().Time()))
		c.SetAttribute("$protocol", Name("v1"))
		c.SetAttribute("$tag", NewTag())
		c.SetParameter("$version", InitialVersion())
		return c
	}
	a := build()
	// Re-derive the same tag so both catalogs are logically identical.
	tag, _ := a.Attribute("$tag")
	b := NewCatalog()
	ts, _ := a.Attribute("$timestamp")
	b.SetAttribute("$timestamp", ts)
	b.SetAttribute("$protocol", Name("v1"))
	b.SetAttribute("$tag", tag)
	b.SetParameter("$version", InitialVersion())

	bytesA, err := Canonicalize(a)
	if err != nil {
		t.Fatalf("Canonicalize a: %v", err)
	}
	bytesB, err := Canonicalize(b)
	if err != nil {
		t.Fatalf("Canonicalize b: %v", err)
	}
	if string(bytesA) != string(bytesB) {
		t.Fatalf("expected identical canonical bytes, got %s vs %s", bytesA, bytesB)
	}
}

func TestWithoutAttributeLeavesOriginalIntact(t *testing.T) {
	c := NewCatalog().SetAttribute("$a", Text("1")).SetAttribute("$b", Text("2"))
	stripped := c.WithoutAttribute("$a")

	if _, ok := c.Attribute("$a"); !ok {
		t.Fatalf("original catalog should still have $a")
	}
	if _, ok := stripped.Attribute("$a"); ok {
		t.Fatalf("stripped catalog should not have $a")
	}
	if _, ok := stripped.Attribute("$b"); !ok {
		t.Fatalf("stripped catalog should retain $b")
	}
}

func TestBinaryEqual(t *testing.T) {
	a := Binary{1, 2, 3}
	b := Binary{1, 2, 3}
	c := Binary{1, 2, 4}
	if !a.Equal(b) {
		t.Fatal("expected equal binaries to compare equal")
	}
	if a.Equal(c) {
		t.Fatal("expected differing binaries to compare unequal")
	}
}
