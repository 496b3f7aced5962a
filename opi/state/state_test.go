// SPDX-License-Identifier: MIT
package state

import "testing"

func TestModeString(t *testing.T) {
	cases := []struct {
		m    Mode
		want string
	}{
		{Analyze, "Analyze"},
		{PassThrough, "PassThrough"},
		{Discard, "Discard"},
	}
	for _, c := range cases {
		if got := c.m.String(); got != c.want {
			t.Errorf("Mode(%d).String() = %q, want %q", c.m, got, c.want)
		}
	}
}

func TestIsBlockBegin(t *testing.T) {
	if _, ok := IsBlockBegin("Resource"); !ok {
		t.Error("Resource should be a block token")
	}
	if _, ok := IsBlockBegin("NotABlock"); ok {
		t.Error("NotABlock should not be a block token")
	}
}

func TestBeginEndObjectNesting(t *testing.T) {
	m := New()
	m.BeginOPI()

	m.BeginObject("image", true)
	if m.Mode() != Discard {
		t.Fatalf("Mode() = %v, want Discard", m.Mode())
	}
	m.BeginObject("image", true)
	if done := m.EndObject(); done {
		t.Fatal("EndObject() reported done after only one of two nested ends")
	}
	if done := m.EndObject(); !done {
		t.Fatal("EndObject() should report done when depth returns to zero")
	}
	if m.Mode() != Analyze {
		t.Errorf("Mode() after final EndObject = %v, want Analyze", m.Mode())
	}
}

func TestBeginObjectNonImagePassThrough(t *testing.T) {
	m := New()
	m.BeginObject("other", false)
	if m.Mode() != PassThrough {
		t.Errorf("Mode() = %v, want PassThrough", m.Mode())
	}
}

func TestBlockStack(t *testing.T) {
	m := New()
	if m.InOpaqueBlock() {
		t.Fatal("InOpaqueBlock() should be false initially")
	}
	m.PushBlock("Resource")
	m.PushBlock("Font")
	if !m.InOpaqueBlock() {
		t.Fatal("InOpaqueBlock() should be true after PushBlock")
	}
	if !m.PopBlock("Font") {
		t.Fatal("PopBlock(Font) should succeed")
	}
	if !m.PopBlock("Resource") {
		t.Fatal("PopBlock(Resource) should succeed")
	}
	if m.InOpaqueBlock() {
		t.Fatal("InOpaqueBlock() should be false after popping all blocks")
	}
	if m.PopBlock("Missing") {
		t.Fatal("PopBlock(Missing) should fail when not open")
	}
}

func TestReset(t *testing.T) {
	m := New()
	m.BeginOPI()
	m.BeginObject("image", true)
	m.Reset()
	if m.Mode() != Analyze {
		t.Errorf("Mode() after Reset = %v, want Analyze", m.Mode())
	}
	if m.InOPI() {
		t.Error("InOPI() should be false after Reset")
	}
}
