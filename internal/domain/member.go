package domain

import (
	"fmt"
	"regexp"

	"golang.org/x/text/unicode/norm"
)

var memberKeyPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Member is a recognizable identity: an ASCII folder key plus a localized display name
type Member struct {
	Key         string `json:"key" yaml:"key"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// Registry is the fixed, ordered member list. It is immutable once built.
type Registry struct {
	members   []Member
	byKey     map[string]int
	byDisplay map[string]int
}

// NewRegistry validates members and builds the lookup tables
func NewRegistry(members []Member) (*Registry, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("registry: no members")
	}

	r := &Registry{
		members:   make([]Member, len(members)),
		byKey:     make(map[string]int, len(members)),
		byDisplay: make(map[string]int, len(members)),
	}
	copy(r.members, members)

	for i, m := range r.members {
		if !memberKeyPattern.MatchString(m.Key) {
			return nil, fmt.Errorf("registry: key %q is not folder-safe", m.Key)
		}
		if m.DisplayName == "" {
			return nil, fmt.Errorf("registry: member %q has no display name", m.Key)
		}
		if _, dup := r.byKey[m.Key]; dup {
			return nil, fmt.Errorf("registry: duplicate key %q", m.Key)
		}
		display := norm.NFC.String(m.DisplayName)
		if _, dup := r.byDisplay[display]; dup {
			return nil, fmt.Errorf("registry: duplicate display name %q", m.DisplayName)
		}
		r.byKey[m.Key] = i
		r.byDisplay[display] = i
	}

	return r, nil
}

// MustRegistry is NewRegistry for static member lists
func MustRegistry(members []Member) *Registry {
	r, err := NewRegistry(members)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry returns the IVE member list. Display names keep their
// conjoining-jamo spelling.
func DefaultRegistry() *Registry {
	return MustRegistry([]Member{
		{Key: "yujin", DisplayName: "\u516a\u771f\u110b\u1172\u110c\u1175\u11ab"},
		{Key: "wonyoung", DisplayName: "\u54e1\u745b\u110b\u116f\u11ab\u110b\u1167\u11bc"},
		{Key: "gaeul", DisplayName: "\u79cb\u5929\u1100\u1161\u110b\u1173\u11af"},
		{Key: "rei", DisplayName: "Rei\u1105\u1166\u110b\u1175"},
		{Key: "liz", DisplayName: "Liz\u1105\u1175\u110c\u1173"},
		{Key: "leeseo", DisplayName: "\u674e\u745e\u110b\u1175\u1109\u1165"},
	})
}

func (r *Registry) Len() int {
	return len(r.members)
}

// Members returns a copy of the ordered member list
func (r *Registry) Members() []Member {
	out := make([]Member, len(r.members))
	copy(out, r.members)
	return out
}

func (r *Registry) Keys() []string {
	keys := make([]string, len(r.members))
	for i, m := range r.members {
		keys[i] = m.Key
	}
	return keys
}

func (r *Registry) DisplayNames() []string {
	names := make([]string, len(r.members))
	for i, m := range r.members {
		names[i] = m.DisplayName
	}
	return names
}

// DisplayName returns "" for unknown keys
func (r *Registry) DisplayName(key string) string {
	i, ok := r.byKey[key]
	if !ok {
		return ""
	}
	return r.members[i].DisplayName
}

// KeyForDisplay resolves a display name to its key. Composed and decomposed
// Hangul resolve to the same member.
func (r *Registry) KeyForDisplay(display string) (string, bool) {
	i, ok := r.byDisplay[norm.NFC.String(display)]
	if !ok {
		return "", false
	}
	return r.members[i].Key, true
}

// LabelTable derives the label decoder for this registry's ordering.
// Only training should call it; the table then travels with the classifier.
func (r *Registry) LabelTable() *LabelTable {
	return newLabelTable(r.Keys())
}
