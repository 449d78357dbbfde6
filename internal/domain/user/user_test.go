package user

import "testing"

func TestIdentityHash_FixedSample(t *testing.T) {
	got := IdentityHash("d5a39ffb-6ce3-4cc8-9048-0e15d031b4c5")
	if got != 526273169 {
		t.Fatalf("expected 526273169, got %d", got)
	}

	if again := IdentityHash("d5a39ffb-6ce3-4cc8-9048-0e15d031b4c5"); again != got {
		t.Fatalf("hash not deterministic: %d != %d", again, got)
	}
}

func TestIdentityHash_Empty(t *testing.T) {
	if got := IdentityHash(""); got != 0 {
		t.Fatalf("expected 0 for empty id, got %d", got)
	}
}

func TestResolveAccentID(t *testing.T) {
	zero, yellow, purple := 0, 3, 7

	tests := []struct {
		name string
		raw  *int
		want AccentID
	}{
		{name: "absent", raw: nil, want: DefaultAccentID},
		{name: "zero", raw: &zero, want: DefaultAccentID},
		{name: "yellow", raw: &yellow, want: AccentYellow},
		{name: "purple", raw: &purple, want: AccentPurple},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveAccentID(tt.raw); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}

	if !DefaultAccentID.IsValid() {
		t.Fatalf("default accent must be a member of the accent set")
	}
}

func TestNewUser(t *testing.T) {
	u := NewUser("abc")

	if u.ID != "abc" || u.IdentityHash != IdentityHash("abc") {
		t.Fatalf("unexpected identity: %+v", u)
	}
	if u.AccentID != DefaultAccentID {
		t.Fatalf("expected default accent, got %d", u.AccentID)
	}
	if u.IsMe {
		t.Fatalf("bare user must not be marked as self")
	}
}

func TestClone_DoesNotSharePictures(t *testing.T) {
	u := NewUser("abc")
	u.PreviewPicture = &PictureResource{Key: "k1", URL: "u1"}

	c := u.Clone()
	c.PreviewPicture.URL = "changed"

	if u.PreviewPicture.URL != "u1" {
		t.Fatalf("clone shares picture with original")
	}
	if c.MediumPicture != nil {
		t.Fatalf("expected nil medium picture on clone")
	}
}

func TestKeepSelf(t *testing.T) {
	self := NewUser("abc")
	self.IsMe = true
	self.Locale = "en"

	plain := NewUser("abc")
	plain.KeepSelf(self)
	if !plain.IsMe || plain.Locale != "en" {
		t.Fatalf("expected self flag and locale to carry over, got %+v", plain)
	}

	again := NewUser("abc")
	again.IsMe = true
	again.Locale = "de"
	again.KeepSelf(self)
	if again.Locale != "de" {
		t.Fatalf("a self write keeps its own locale, got %q", again.Locale)
	}

	other := NewUser("abc")
	other.KeepSelf(nil)
	other.KeepSelf(NewUser("abc"))
	if other.IsMe {
		t.Fatalf("plain record must not become self")
	}
}
