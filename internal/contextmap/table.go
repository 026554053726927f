package contextmap

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"fglsense/internal/ident"
	"fglsense/internal/token"
)

//go:embed grammar.yaml
var defaultGrammar []byte

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in grammar table, parsed once.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Load(defaultGrammar)
		if err != nil {
			panic(fmt.Errorf("embedded grammar: %w", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// LoadFile reads a grammar document through fs.
func LoadFile(fs afero.Fs, path string) (*Table, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read grammar: %w", err)
	}
	t, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Matcher accepts a token by kind, category or identifier text. Written in
// the document as "IF", "@identifier", "~header" or alternatives joined
// with "|".
type Matcher struct {
	Kinds []token.Kind
	Cats  []token.Category
	Words []string
}

func (m Matcher) Empty() bool {
	return len(m.Kinds) == 0 && len(m.Cats) == 0 && len(m.Words) == 0
}

func (m Matcher) Match(tok token.Token) bool {
	for _, k := range m.Kinds {
		if tok.Kind == k {
			return true
		}
	}
	cat := tok.Category()
	for _, c := range m.Cats {
		// нерезервированные ключевые слова тоже годятся как имена
		if cat == c || (c == token.CatIdentifier && tok.IsIdent()) {
			return true
		}
	}
	if len(m.Words) > 0 && wordLike(tok) {
		w := ident.Fold(tok.Text)
		for _, x := range m.Words {
			if w == x {
				return true
			}
		}
	}
	return false
}

// wordLike reports whether tok may be matched by its text: identifiers and
// keywords, reserved or not.
func wordLike(tok token.Token) bool {
	return tok.IsIdent() || tok.Kind.IsKeyword()
}

func (m *Matcher) add(alt string) error {
	alt = strings.TrimSpace(alt)
	switch {
	case alt == "":
		return errors.New("empty matcher")
	case len(alt) > 1 && alt[0] == '@':
		c, ok := token.CategoryByName(alt[1:])
		if !ok {
			return fmt.Errorf("unknown category %q", alt[1:])
		}
		m.Cats = append(m.Cats, c)
	case len(alt) > 1 && alt[0] == '~':
		m.Words = append(m.Words, ident.Fold(alt[1:]))
	default:
		k, ok := token.KindByName(alt)
		if !ok {
			return fmt.Errorf("unknown token %q", alt)
		}
		m.Kinds = append(m.Kinds, k)
	}
	return nil
}

func parseMatcher(alts ...string) (Matcher, error) {
	var m Matcher
	for _, a := range alts {
		for _, part := range splitAlternatives(a) {
			if err := m.add(part); err != nil {
				return Matcher{}, err
			}
		}
	}
	return m, nil
}

// splitAlternatives splits on '|' but keeps the "||" operator whole.
func splitAlternatives(s string) []string {
	if s == "||" {
		return []string{s}
	}
	return strings.Split(s, "|")
}

// SeqEntry is one step of a backward sequence. A negated entry aborts the
// whole possibility when it matches.
type SeqEntry struct {
	Match  Matcher
	Negate bool
}

// UnmarshalYAML accepts "!A|B" or {any: [A, B], not: true}.
func (e *SeqEntry) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		s := n.Value
		if _, isKind := token.KindByName(s); !isKind && len(s) > 1 && s[0] == '!' {
			e.Negate = true
			s = s[1:]
		}
		m, err := parseMatcher(s)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		e.Match = m
		return nil
	case yaml.MappingNode:
		var raw struct {
			Any []string `yaml:"any"`
			Not bool     `yaml:"not"`
		}
		if err := n.Decode(&raw); err != nil {
			return err
		}
		m, err := parseMatcher(raw.Any...)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		e.Match, e.Negate = m, raw.Not
		return nil
	}
	return fmt.Errorf("line %d: sequence entry must be a string or a mapping", n.Line)
}

// matcherList decodes a list of matcher strings into one Matcher.
type matcherList struct{ Matcher }

func (l *matcherList) UnmarshalYAML(n *yaml.Node) error {
	var raw []string
	if err := n.Decode(&raw); err != nil {
		return err
	}
	m, err := parseMatcher(raw...)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	l.Matcher = m
	return nil
}

// Possibility is one way the cursor position may be read. Without
// Sequences, Singles and Except it applies unconditionally.
type Possibility struct {
	Keywords  []string
	Sets      []string
	Sequences [][]SeqEntry
	Singles   Matcher
	Except    Matcher
}

func (p *Possibility) Conditional() bool {
	return len(p.Sequences) > 0 || !p.Singles.Empty() || !p.Except.Empty()
}

// Entry lists the possibilities for one trigger token.
type Entry struct {
	On            Matcher
	Possibilities []Possibility
}

// Table is the parsed grammar document. Read-only after Load.
type Table struct {
	KeywordSets map[string][]string
	// Providers maps symbol set names to the completion kind of their
	// members.
	Providers map[string]Kind
	Starters  Matcher

	byWord map[string][]*Entry
	byKind map[token.Kind][]*Entry
	byCat  map[token.Category][]*Entry
}

type document struct {
	Starters    matcherList         `yaml:"starters"`
	KeywordSets map[string][]string `yaml:"keyword_sets"`
	Providers   map[string]string   `yaml:"providers"`
	Entries     []struct {
		After         matcherList `yaml:"after"`
		Possibilities []struct {
			Keywords  []string     `yaml:"keywords"`
			Sets      []string     `yaml:"sets"`
			Sequences [][]SeqEntry `yaml:"sequences"`
			Singles   matcherList  `yaml:"singles"`
			Except    matcherList  `yaml:"except"`
		} `yaml:"possibilities"`
	} `yaml:"entries"`
	// Anchors holds YAML anchors shared by entries; it is not interpreted.
	Anchors yaml.Node `yaml:"anchors"`
}

// Load parses and validates a grammar document.
func Load(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	t := &Table{
		KeywordSets: doc.KeywordSets,
		Providers:   make(map[string]Kind, len(doc.Providers)),
		Starters:    doc.Starters.Matcher,
		byWord:      make(map[string][]*Entry),
		byKind:      make(map[token.Kind][]*Entry),
		byCat:       make(map[token.Category][]*Entry),
	}
	if t.KeywordSets == nil {
		t.KeywordSets = make(map[string][]string)
	}
	for name, kind := range doc.Providers {
		k, ok := KindByName(kind)
		if !ok {
			return nil, fmt.Errorf("provider %s: unknown kind %q", name, kind)
		}
		if _, dup := t.KeywordSets[name]; dup {
			return nil, fmt.Errorf("set %s is both a keyword set and a provider", name)
		}
		t.Providers[name] = k
	}
	for i, de := range doc.Entries {
		if de.After.Empty() {
			return nil, fmt.Errorf("entry %d: missing after", i+1)
		}
		e := &Entry{On: de.After.Matcher}
		for _, dp := range de.Possibilities {
			for _, s := range dp.Sets {
				if !t.knownSet(s) {
					return nil, fmt.Errorf("entry %d: unknown set %q", i+1, s)
				}
			}
			e.Possibilities = append(e.Possibilities, Possibility{
				Keywords:  dp.Keywords,
				Sets:      dp.Sets,
				Sequences: dp.Sequences,
				Singles:   dp.Singles.Matcher,
				Except:    dp.Except.Matcher,
			})
		}
		for _, w := range e.On.Words {
			t.byWord[w] = append(t.byWord[w], e)
		}
		for _, k := range e.On.Kinds {
			t.byKind[k] = append(t.byKind[k], e)
		}
		for _, c := range e.On.Cats {
			t.byCat[c] = append(t.byCat[c], e)
		}
	}
	return t, nil
}

func (t *Table) knownSet(name string) bool {
	if _, ok := t.KeywordSets[name]; ok {
		return true
	}
	_, ok := t.Providers[name]
	return ok
}

// Lookup finds the entries for tok: by identifier text first, then by
// kind, then by category. A keyword that may act as a name falls back to
// the identifier entries.
func (t *Table) Lookup(tok token.Token) []*Entry {
	if wordLike(tok) {
		if es, ok := t.byWord[ident.Fold(tok.Text)]; ok {
			return es
		}
	}
	if es, ok := t.byKind[tok.Kind]; ok {
		return es
	}
	if es, ok := t.byCat[tok.Category()]; ok {
		return es
	}
	if tok.IsIdent() {
		return t.byCat[token.CatIdentifier]
	}
	return nil
}

// IsStarter reports whether tok begins a top-level declaration.
func (t *Table) IsStarter(tok token.Token) bool {
	return t.Starters.Match(tok)
}
