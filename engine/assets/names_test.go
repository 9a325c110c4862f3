package assets

import "testing"

func TestNameFromPath(t *testing.T) {
	tests := []struct {
		locator string
		want    string
	}{
		{"./textures/grid.png", "grid"},
		{"./textures/uv Grid.jpg", "uvGrid"},
		{"https://example.com/a/b/font.fnt?v=3", "font"},
		{"archive.tar.gz", "archive.tar"},
		{"noext", "noext"},
		{`C:\assets\tile.png`, "tile"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NameFromPath(tt.locator); got != tt.want {
			t.Errorf("NameFromPath(%q) = %q, want %q", tt.locator, got, tt.want)
		}
	}
}

func TestIncrementString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tile", "tile1"},
		{"tile1", "tile2"},
		{"tile9", "tile10"},
		{"a007", "a8"},
		{"", "1"},
		{"99", "100"},
		{"x18446744073709551615", "x18446744073709551616"},
	}
	for _, tt := range tests {
		if got := IncrementString(tt.in); got != tt.want {
			t.Errorf("IncrementString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKindForExtension(t *testing.T) {
	tests := []struct {
		locator string
		want    Kind
	}{
		{"a/grid.PNG", KindTexture},
		{"b.webp?x=1", KindTexture},
		{"c.fnt", KindFont},
		{"c.ttf", KindFont},
		{"d.wav", KindAudio},
		{"e.glb", KindModel},
		{"e.obj", KindModel},
	}
	for _, tt := range tests {
		got, err := KindForExtension(tt.locator)
		if err != nil {
			t.Errorf("KindForExtension(%q) error: %v", tt.locator, err)
			continue
		}
		if got != tt.want {
			t.Errorf("KindForExtension(%q) = %s, want %s", tt.locator, got, tt.want)
		}
	}
	if _, err := KindForExtension("notes.txt"); err == nil {
		t.Error("KindForExtension(notes.txt) expected an error")
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"textures":     KindTexture,
		"Texture":      KindTexture,
		"font":         KindFont,
		"audioBuffers": KindAudio,
		"audio":        KindAudio,
		"models":       KindModel,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParseKind("videos"); err == nil {
		t.Error("ParseKind(videos) expected an error")
	}
}
