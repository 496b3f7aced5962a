// SPDX-License-Identifier: MIT
// Package state implements the OPI State Machine of spec §4.2: the
// Analyze / PassThrough / Discard mode transitions driven by
// BeginOPI/EndOPI/BeginObject/BeginIncludedImage markers, plus the
// generic %%Begin.../%%End... block nesting that must be echoed
// verbatim regardless of OPI state.
package state

// Mode is one of the three OPI parsing modes.
type Mode int8

const (
	Analyze Mode = iota
	PassThrough
	Discard
)

func (m Mode) String() string {
	switch m {
	case PassThrough:
		return "PassThrough"
	case Discard:
		return "Discard"
	default:
		return "Analyze"
	}
}

// blockTokens are the %%Begin.../%%End... pairs that mark verbatim
// pass-through regions in which the OPI parser must not look for
// further OPI directives (spec §4.2).
var blockTokens = map[string]bool{
	"Binary": true, "Data": true, "Document": true, "Prolog": true,
	"Setup": true, "PageSetup": true, "Resource": true, "Font": true,
	"ProcSet": true, "Feature": true,
}

// IsBlockBegin reports whether name (the token following "%%Begin")
// starts a verbatim block, and returns the canonical block name used
// to match its End.
func IsBlockBegin(name string) (string, bool) {
	ok := blockTokens[name]
	return name, ok
}

// Machine tracks OPI object nesting and the opaque-block stack.
type Machine struct {
	mode Mode

	// opiObject is non-empty while inside a BeginOPI..EndOPI (or
	// ALDImageFileName..EndObject) object; BeginOPI sets it to "opi" and
	// EndObject (at depth zero) or Reset clears it.
	opiObject string
	// objectDepth counts nested %%BeginObject markers; substitution
	// fires only when it returns to zero (spec §4.2).
	objectDepth int
	// blockStack holds opaque pass-through block names currently open.
	blockStack []string
}

func New() *Machine { return &Machine{mode: Analyze} }

func (m *Machine) Mode() Mode { return m.mode }

// InOpaqueBlock reports whether a %%Begin.../%%End... verbatim block is
// currently open; while true the lexer must not attempt OPI parsing.
func (m *Machine) InOpaqueBlock() bool { return len(m.blockStack) > 0 }

// PushBlock opens a verbatim pass-through block.
func (m *Machine) PushBlock(name string) { m.blockStack = append(m.blockStack, name) }

// PopBlock closes the innermost verbatim block matching name, if open.
// Returns whether a block was actually closed.
func (m *Machine) PopBlock(name string) bool {
	for i := len(m.blockStack) - 1; i >= 0; i-- {
		if m.blockStack[i] == name {
			m.blockStack = append(m.blockStack[:i], m.blockStack[i+1:]...)
			return true
		}
	}
	return false
}

// BeginOPI transitions into Analyze-with-object-open; called when an
// ImageFileName/BeginOPI marker starts a new OPI object while none is
// in progress.
func (m *Machine) BeginOPI() {
	m.opiObject = "opi"
}

// InOPI reports whether an OPI object is currently being analyzed
// (buffering graphics state, not yet in PassThrough/Discard).
func (m *Machine) InOPI() bool { return m.opiObject != "" && m.objectDepth == 0 && m.mode == Analyze }

// BeginObject enters PassThrough (for most kinds) or Discard (for
// "image", i.e. the low-res stand-in) and increments the nesting
// counter. kind is the free-form text after "%%BeginObject:" /
// "%%BeginIncludedImage".
func (m *Machine) BeginObject(kind string, isImage bool) {
	m.objectDepth++
	if isImage {
		m.mode = Discard
	} else if m.mode == Analyze {
		m.mode = PassThrough
	}
}

// EndObject decrements the nesting counter. It returns true when the
// counter has returned to zero, meaning the substitution should now
// fire (spec §4.2) and the state machine resets to Analyze.
func (m *Machine) EndObject() bool {
	if m.objectDepth > 0 {
		m.objectDepth--
	}
	if m.objectDepth == 0 {
		m.mode = Analyze
		m.opiObject = ""
		return true
	}
	return false
}

// Reset returns the machine to its initial Analyze state, discarding
// any in-progress object. Used after a substitution fires or a
// pass-through-unsupported-format reset (spec §7).
func (m *Machine) Reset() {
	m.mode = Analyze
	m.opiObject = ""
	m.objectDepth = 0
}
