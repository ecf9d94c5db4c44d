// Package knowledge holds the static decision-support tables: symptom
// profiles for differential diagnosis and known drug-pair interactions.
//
// A Base is built once and never mutated afterwards, so it can be shared by
// any number of concurrent requests.
package knowledge

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Skufu/clinicai/internal/textnorm"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	symptomsFile     = "symptoms.yaml"
	interactionsFile = "interactions.yaml"
)

type Severity string

const (
	SeveritySevere   Severity = "severe"
	SeverityModerate Severity = "moderate"
)

func (s Severity) valid() bool {
	return s == SeveritySevere || s == SeverityModerate
}

type Differential struct {
	Name        string `yaml:"name" json:"name"`
	Probability int    `yaml:"probability" json:"probability"`
}

// Profile is the canned answer for complaints containing Key.
type Profile struct {
	Key       string         `yaml:"key"`
	Diagnoses []Differential `yaml:"diagnoses"`
	Exams     []string       `yaml:"exams"`
	RedFlags  []string       `yaml:"red_flags"`
	Conduct   string         `yaml:"conduct"`
}

type Interaction struct {
	Drugs       [2]string `yaml:"drugs"`
	Severity    Severity  `yaml:"severity"`
	Description string    `yaml:"description"`
}

// Pair is an unordered medication pair stored in sorted order.
type Pair [2]string

// MakePair folds both names and sorts them so that MakePair(a, b) == MakePair(b, a).
func MakePair(a, b string) Pair {
	a, b = textnorm.Fold(a), textnorm.Fold(b)
	if b < a {
		a, b = b, a
	}
	return Pair{a, b}
}

type symptomTables struct {
	Profiles []Profile `yaml:"profiles"`
	Fallback Profile   `yaml:"fallback"`
}

type interactionTables struct {
	Interactions []Interaction `yaml:"interactions"`
	Precautions  []string      `yaml:"precautions"`
	Suggestions  []string      `yaml:"suggestions"`
}

type Base struct {
	profiles     []Profile
	fallback     Profile
	interactions map[Pair]Interaction
	precautions  []string
	suggestions  []string
}

var (
	defaultOnce sync.Once
	defaultBase *Base
)

// Default returns the tables compiled into the binary. A broken embedded
// table is a build defect, so it panics instead of returning an error.
func Default() *Base {
	defaultOnce.Do(func() {
		symptoms, err := embedded.ReadFile("data/" + symptomsFile)
		if err != nil {
			panic(fmt.Sprintf("knowledge: read embedded symptoms: %v", err))
		}
		interactions, err := embedded.ReadFile("data/" + interactionsFile)
		if err != nil {
			panic(fmt.Sprintf("knowledge: read embedded interactions: %v", err))
		}
		b, err := Load(bytes.NewReader(symptoms), bytes.NewReader(interactions))
		if err != nil {
			panic(fmt.Sprintf("knowledge: %v", err))
		}
		defaultBase = b
	})
	return defaultBase
}

// LoadDir reads symptoms.yaml and interactions.yaml from dir.
func LoadDir(dir string) (*Base, error) {
	symptoms, err := os.Open(filepath.Join(dir, symptomsFile))
	if err != nil {
		return nil, fmt.Errorf("open symptoms table: %w", err)
	}
	defer symptoms.Close()

	interactions, err := os.Open(filepath.Join(dir, interactionsFile))
	if err != nil {
		return nil, fmt.Errorf("open interactions table: %w", err)
	}
	defer interactions.Close()

	return Load(symptoms, interactions)
}

func Load(symptoms, interactions io.Reader) (*Base, error) {
	var st symptomTables
	if err := yaml.NewDecoder(symptoms).Decode(&st); err != nil {
		return nil, fmt.Errorf("decode symptoms table: %w", err)
	}
	var it interactionTables
	if err := yaml.NewDecoder(interactions).Decode(&it); err != nil {
		return nil, fmt.Errorf("decode interactions table: %w", err)
	}

	b := &Base{
		profiles:     make([]Profile, 0, len(st.Profiles)),
		fallback:     st.Fallback,
		interactions: make(map[Pair]Interaction, len(it.Interactions)),
		precautions:  it.Precautions,
		suggestions:  it.Suggestions,
	}

	seen := map[string]bool{}
	for i, p := range st.Profiles {
		p.Key = textnorm.Fold(p.Key)
		if p.Key == "" {
			return nil, fmt.Errorf("symptom profile %d: empty key", i)
		}
		if seen[p.Key] {
			return nil, fmt.Errorf("symptom profile %q declared twice", p.Key)
		}
		seen[p.Key] = true
		b.profiles = append(b.profiles, p)
	}
	if len(b.fallback.Diagnoses) == 0 {
		return nil, fmt.Errorf("symptom fallback profile has no diagnoses")
	}

	for i, in := range it.Interactions {
		if !in.Severity.valid() {
			return nil, fmt.Errorf("interaction %d: unknown severity %q", i, in.Severity)
		}
		pair := MakePair(in.Drugs[0], in.Drugs[1])
		if pair[0] == "" || pair[1] == "" {
			return nil, fmt.Errorf("interaction %d: empty medication name", i)
		}
		if _, dup := b.interactions[pair]; dup {
			return nil, fmt.Errorf("interaction %s+%s declared twice", pair[0], pair[1])
		}
		in.Drugs = [2]string(pair)
		b.interactions[pair] = in
	}

	return b, nil
}

// Match returns the first profile, in declaration order, whose key is a
// substring of the folded complaint.
//
// Plain containment gives false positives on unrelated text that happens to
// include a key ("sem febre" still matches "febre"). Callers depend on this
// behaviour, so it is kept until a tokenised or scored matcher replaces it.
func (b *Base) Match(complaint string) (Profile, bool) {
	text := textnorm.Fold(complaint)
	for _, p := range b.profiles {
		if strings.Contains(text, p.Key) {
			return p.clone(), true
		}
	}
	return b.fallback.clone(), false
}

// Lookup returns the known interaction for a medication pair in either order.
func (b *Base) Lookup(a, c string) (Interaction, bool) {
	in, ok := b.interactions[MakePair(a, c)]
	return in, ok
}

// Precautions and Suggestions return copies of the generic prescription advice.
func (b *Base) Precautions() []string { return append([]string(nil), b.precautions...) }

func (b *Base) Suggestions() []string { return append([]string(nil), b.suggestions...) }

// Keys lists symptom keys in match order.
func (b *Base) Keys() []string {
	keys := make([]string, len(b.profiles))
	for i, p := range b.profiles {
		keys[i] = p.Key
	}
	return keys
}

// Pairs lists the known interaction pairs in sorted order.
func (b *Base) Pairs() []Pair {
	pairs := make([]Pair, 0, len(b.interactions))
	for p := range b.interactions {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

func (p Profile) clone() Profile {
	p.Diagnoses = append([]Differential(nil), p.Diagnoses...)
	p.Exams = append([]string(nil), p.Exams...)
	p.RedFlags = append([]string(nil), p.RedFlags...)
	return p
}
