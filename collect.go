// Copyright 2026 The streamwire Authors. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE_BSD.txt file in the root of the source
// tree.

package mpart

import (
	"strconv"

	"github.com/intuitivelabs/bytescase"
)

// Value is one collected multipart value: a string (simple field), a
// *FilePart (a part carrying a filename), a []Value (a repeated field
// name), or a Result (a nested multipart part re-parsed with its own
// boundary). A nested part's contents are keyed by name like the outer
// Result; they are not returned as a []Value sequence.
type Value any

// FilePart is a collected part whose Content-Disposition carried a
// filename parameter.
type FilePart struct {
	Bytes       []byte
	Filename    string
	ContentType string
	Header      map[string][]string
}

// Result is the map built by Collect: field name -> Value.
type Result map[string]Value

// CollectOptions configures one-shot collection.
type CollectOptions struct {
	Settings
	Options

	// MaxNestedDepth caps recursive re-parsing of multipart/mixed parts.
	// 0 means nested parts are not re-parsed at all; a negative value
	// means unlimited.
	MaxNestedDepth int

	// Progress, if non-nil, is called as bytes are fed to the underlying
	// Parser. A non-zero return aborts Collect with ErrInterrupted.
	Progress func(parsed, total int64, percent float64) int
}

type collectState struct {
	result Result

	partIndex int // 1-based index of the part currently being built

	curDisposition map[string]string
	curContentType string
	curHeader      map[string][]string
	curBody        []byte

	building  string // header name being accumulated
	valueBuf  []byte // header value being accumulated for `building`
	haveValue bool   // at least one OnHeaderValue byte arrived for `building`
}

// commitHeader finalizes the (name, value) pair accumulated so far,
// recognizing Content-Disposition/Content-Type along the way. Called
// whenever a new header field starts or the headers section ends.
func (st *collectState) commitHeader() {
	if st.building == "" {
		return
	}
	name := st.building
	val := string(st.valueBuf)
	st.curHeader[name] = append(st.curHeader[name], val)

	switch {
	case bytescase.CmpEq([]byte(name), []byte("Content-Disposition")):
		st.curDisposition = parseDispositionParams([]byte(val))
	case bytescase.CmpEq([]byte(name), []byte("Content-Type")):
		st.curContentType = val
	}

	st.building = ""
	st.valueBuf = st.valueBuf[:0]
	st.haveValue = false
}

// Collect parses body as a complete multipart message in one call,
// returning a map of field name to Value. It is a convenience wrapper
// around Parser for callers who don't need streaming.
func Collect(body []byte, boundary []byte, opts CollectOptions) (Result, ParseError) {
	st := &collectState{result: Result{}}

	userSettings := opts.Settings
	cb := Callbacks{
		OnPartDataBegin: func(any) int {
			st.partIndex++
			st.curDisposition = nil
			st.curContentType = ""
			st.curHeader = map[string][]string{}
			st.curBody = nil
			st.building = ""
			st.valueBuf = nil
			st.haveValue = false
			return 0
		},
		OnHeaderField: func(_ any, b []byte) int {
			if st.haveValue {
				st.commitHeader()
			}
			st.building += string(b)
			return 0
		},
		OnHeaderValue: func(_ any, b []byte) int {
			st.valueBuf = append(st.valueBuf, b...)
			st.haveValue = true
			return 0
		},
		OnHeadersComplete: func(any) int {
			st.commitHeader()
			return 0
		},
		OnPartData: func(_ any, b []byte) int {
			st.curBody = append(st.curBody, b...)
			return 0
		},
		OnPartDataEnd: func(any) int {
			st.finishPart(opts.MaxNestedDepth, userSettings, opts.Options)
			return 0
		},
	}

	p, err := New(boundary, Settings{Callbacks: cb, BufferSize: userSettings.BufferSize}, opts.Options, nil)
	if !err.OK() {
		return nil, err
	}

	total := int64(len(body))
	if opts.Progress == nil {
		_, err = p.Execute(body)
		if err.OK() {
			return st.result, ErrOK
		}
		return st.result, err
	}

	// Feed in chunks so Progress gets called along the way.
	const chunk = 32 * 1024
	var off int
	for off < len(body) {
		end := off + chunk
		if end > len(body) {
			end = len(body)
		}
		n, e := p.Execute(body[off:end])
		off += n
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(off) / float64(total)
		}
		if rc := opts.Progress(int64(off), total, pct); rc != 0 {
			return st.result, ErrInterrupted
		}
		if !e.OK() {
			return st.result, e
		}
	}
	return st.result, ErrOK
}

func (st *collectState) finishPart(maxDepth int, settings Settings, opts Options) {
	name := st.curDisposition["name"]
	if name == "" {
		// No Content-Disposition name parameter: key by the part's
		// 1-based position instead of dropping it, per the collect-mode
		// result shape ("parts with no name are keyed by 1-based
		// positional index").
		name = strconv.Itoa(st.partIndex)
	}
	var v Value
	if fn, ok := st.curDisposition["filename"]; ok {
		v = &FilePart{
			Bytes:       st.curBody,
			Filename:    fn,
			ContentType: st.curContentType,
			Header:      st.curHeader,
		}
	} else if maxDepth != 0 && isMultipart(st.curContentType) {
		nb := nestedBoundary(st.curContentType)
		nextDepth := maxDepth - 1
		if maxDepth < 0 {
			nextDepth = maxDepth
		}
		if nb != nil {
			nested, _ := Collect(st.curBody, nb, CollectOptions{
				Settings:       settings,
				Options:        opts,
				MaxNestedDepth: nextDepth,
			})
			v = nested
		} else {
			v = string(st.curBody)
		}
	} else {
		v = string(st.curBody)
	}

	if existing, ok := st.result[name]; ok {
		if list, ok := existing.([]Value); ok {
			st.result[name] = append(list, v)
		} else {
			st.result[name] = []Value{existing, v}
		}
	} else {
		st.result[name] = v
	}
}

func isMultipart(contentType string) bool {
	_, ok := bytescase.Prefix([]byte("multipart/"), []byte(contentType))
	return ok
}

// nestedBoundary extracts the boundary= parameter from a Content-Type
// value, or nil if absent.
func nestedBoundary(contentType string) []byte {
	params := parseDispositionParams([]byte(contentType))
	if b, ok := params["boundary"]; ok && b != "" {
		return []byte(b)
	}
	return nil
}

// parseDispositionParams scans a `token; name=value; name2="quoted value"`
// header value (Content-Disposition or Content-Type) into a lowercased
// param-name -> value map. Backslash escapes inside quoted values are
// removed; CR/LF inside quoted values are not checked for.
func parseDispositionParams(v []byte) map[string]string {
	out := map[string]string{}
	i := 0
	n := len(v)

	// skip the leading token (e.g. "form-data" or "multipart/mixed")
	for i < n && v[i] != ';' {
		i++
	}

	for i < n {
		// skip ';' and whitespace
		for i < n && (v[i] == ';' || v[i] == ' ' || v[i] == '\t') {
			i++
		}
		nameStart := i
		for i < n && v[i] != '=' && v[i] != ';' {
			i++
		}
		if i >= n || v[i] != '=' {
			// no '=value' -- skip to next ';'
			for i < n && v[i] != ';' {
				i++
			}
			continue
		}
		name := toLowerCopy(v[nameStart:i])
		i++ // skip '='

		var val []byte
		if i < n && v[i] == '"' {
			i++
			start := i
			for i < n && v[i] != '"' {
				if v[i] == '\\' && i+1 < n {
					i++
				}
				i++
			}
			val = unescapeQuoted(v[start:i])
			if i < n {
				i++ // closing quote
			}
		} else {
			start := i
			for i < n && v[i] != ';' {
				i++
			}
			val = v[start:i]
		}
		out[string(name)] = string(val)
	}
	return out
}

// toLowerCopy lowercases b into a freshly allocated slice, byte by byte,
// the same way a byte-at-a-time lowercase helper would, using
// bytescase.ByteToLower for its perfect-hash lookups.
func toLowerCopy(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[i] = bytescase.ByteToLower(c)
	}
	return out
}

func unescapeQuoted(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' && i+1 < len(b) {
			i++
		}
		out = append(out, b[i])
	}
	return out
}
