// SPDX-License-Identifier: MIT
// Package icc models the ICC colour transform as an external service
// contract (spec §1 Non-goals: no colour management math is implemented
// here) plus the profile-set elision rules of spec §4.5 and SPEC_FULL
// §12.2: deciding when a transform can be skipped entirely because the
// source and destination profiles are "the same" by identity,
// description, or MD5.
package icc

import (
	"context"
	"crypto/md5"
	"encoding/hex"

	"github.com/opiproc/opi/opi/config"
)

// Profile identifies one loaded ICC profile. Two Profiles with distinct
// Path values can still be "the same" profile for elision purposes; see
// ProfileSet.
type Profile struct {
	Path        string
	Description string
	Bytes       []byte
}

// MD5 returns the MD5 of the profile's raw bytes, computed lazily.
func (p Profile) MD5() [16]byte {
	return md5.Sum(p.Bytes)
}

// ProfileSet groups profiles that an operator has declared equivalent
// (config.Config.SameProfileSets), so that a transform between members
// of the same group is elided rather than performed as a no-op colour
// conversion.
type ProfileSet struct {
	groups [][]string // each inner slice: descriptions/paths/MD5 hex digests considered equal
}

// NewProfileSet builds a ProfileSet from the raw config groups.
func NewProfileSet(groups [][]string) ProfileSet {
	return ProfileSet{groups: groups}
}

// Same reports whether a and b should be treated as identical profiles,
// per opi.py's profiles_same: same path, same description, same MD5, or
// grouped together explicitly in config.
func (s ProfileSet) Same(a, b Profile) bool {
	if a.Path != "" && a.Path == b.Path {
		return true
	}
	if a.Description != "" && a.Description == b.Description {
		return true
	}
	if len(a.Bytes) > 0 && len(b.Bytes) > 0 && a.MD5() == b.MD5() {
		return true
	}
	ids := func(p Profile) []string {
		out := []string{p.Description, p.Path}
		if len(p.Bytes) > 0 {
			sum := p.MD5()
			out = append(out, hex.EncodeToString(sum[:]))
		}
		return out
	}
	for _, g := range s.groups {
		if containsAny(g, ids(a)...) && containsAny(g, ids(b)...) {
			return true
		}
	}
	return false
}

func containsAny(group []string, vals ...string) bool {
	for _, g := range group {
		for _, v := range vals {
			if v != "" && g == v {
				return true
			}
		}
	}
	return false
}

// Request describes one colour transform: a source profile, a working
// destination profile, and an optional soft-proof destination, per spec
// §4.5 step 6.
type Request struct {
	Pix           []byte
	Mode          string // "L", "RGB", "CMYK"
	Width, Height int

	Src         Profile
	Dst         Profile
	Intent      config.Intent
	Proof       Profile
	HasProof    bool
	ProofIntent config.Intent

	BlackPointCompensation bool
	PreserveBlack          bool
}

// Key identifies a transform by (src, intent, dst, proof intent,
// proof). The engine keeps no transform cache and does not use it, so
// every request is passed to the Transformer.
type Key struct {
	Src, Dst, Proof     string
	Intent, ProofIntent config.Intent
}

func (r Request) Key() Key {
	return Key{
		Src: r.Src.Path, Dst: r.Dst.Path, Proof: r.Proof.Path,
		Intent: r.Intent, ProofIntent: r.ProofIntent,
	}
}

// Transformer is the external colour-engine contract. Implementations
// live outside this module (a CMM binding, a subprocess, a remote
// service); opi/icc only decides whether a call is needed at all.
type Transformer interface {
	Transform(ctx context.Context, req Request) ([]byte, error)
}

// Plan decides, for one request, whether a transform is needed and
// which stage(s) apply, per spec §4.5 step 6 / §12.2.
type Plan struct {
	NeedWorking bool
	NeedProof   bool
}

// Elide computes the Plan, skipping a stage whenever the source and
// destination profiles are the same per set.
func Elide(set ProfileSet, req Request) Plan {
	var p Plan
	p.NeedWorking = !set.Same(req.Src, req.Dst)
	if req.HasProof {
		p.NeedProof = !set.Same(req.Dst, req.Proof) && !set.Same(req.Src, req.Proof)
	}
	return p
}

// Apply runs req through xf according to plan, short-circuiting stages
// the plan elides. It returns req.Pix unchanged when nothing applies.
func Apply(ctx context.Context, xf Transformer, set ProfileSet, req Request) ([]byte, error) {
	plan := Elide(set, req)
	out := req.Pix
	if plan.NeedWorking {
		working := req
		working.Pix = out
		res, err := xf.Transform(ctx, working)
		if err != nil {
			return nil, err
		}
		out = res
	}
	if plan.NeedProof {
		proof := req
		proof.Pix = out
		proof.Dst = req.Proof
		proof.Intent = req.ProofIntent
		res, err := xf.Transform(ctx, proof)
		if err != nil {
			return nil, err
		}
		out = res
	}
	return out, nil
}
