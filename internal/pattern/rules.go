package pattern

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultMinConfidence is the acceptance threshold for a rule that does not
// set one.
const DefaultMinConfidence = 0.5

// RuleSpec is the declarative, serializable form of a pattern rule.
type RuleSpec struct {
	Keywords      []string `yaml:"keywords" json:"keywords"`
	ClassPatterns []string `yaml:"class_patterns" json:"class_patterns"`
	MinConfidence float64  `yaml:"min_confidence" json:"min_confidence"`
}

// Rule is a compiled RuleSpec. Structural expressions are matched
// case-insensitively.
type Rule struct {
	Pattern       Name
	Keywords      []string
	Structural    []*regexp.Regexp
	MinConfidence float64
}

var defaultSpecs = map[Name]RuleSpec{
	Singleton: {
		Keywords:      []string{"getInstance", "instance", "singleton"},
		ClassPatterns: []string{`private\s+static\s+\w*instance`, `private\s+constructor`},
		MinConfidence: 0.6,
	},
	Factory: {
		Keywords:      []string{"create", "factory", "make", "build"},
		ClassPatterns: []string{`create\w+\s*\(`, `Factory\s*(class|interface)`},
		MinConfidence: 0.5,
	},
	AbstractFactory: {
		Keywords:      []string{"AbstractFactory", "createProduct", "ProductFamily"},
		ClassPatterns: []string{`abstract\s+class\s+\w*Factory`, `create\w+\s*\(\s*\):\s*\w+`},
		MinConfidence: 0.6,
	},
	Builder: {
		Keywords:      []string{"builder", "build", "setters", "fluent"},
		ClassPatterns: []string{`\.set\w+\(`, `\.build\s*\(`, `return\s+this`},
		MinConfidence: 0.5,
	},
	Prototype: {
		Keywords:      []string{"clone", "prototype", "copy"},
		ClassPatterns: []string{`clone\s*\(`, `Object\.assign`, `\.\.\.this`},
		MinConfidence: 0.5,
	},
	Adapter: {
		Keywords:      []string{"adapter", "wrapper", "adaptee", "target"},
		ClassPatterns: []string{`implements\s+\w+.*\{[^}]*this\.\w+\.`, `Adapter\s*(class|interface)`},
		MinConfidence: 0.5,
	},
	Bridge: {
		Keywords:      []string{"bridge", "abstraction", "implementor"},
		ClassPatterns: []string{`protected\s+\w+:\s*\w+Impl`, `abstract.*implementation`},
		MinConfidence: 0.6,
	},
	Composite: {
		Keywords:      []string{"composite", "component", "leaf", "children", "add", "remove"},
		ClassPatterns: []string{`children\s*:\s*\w+\[\]`, `add\s*\(\s*\w+:\s*Component`},
		MinConfidence: 0.5,
	},
	Decorator: {
		Keywords:      []string{"decorator", "wrapper", "wrappee", "component"},
		ClassPatterns: []string{`@\w+\s*\(`, `implements.*\{[^}]*this\.wrappee`},
		MinConfidence: 0.5,
	},
	Facade: {
		Keywords:      []string{"facade", "subsystem", "simplified"},
		ClassPatterns: []string{`class\s+\w*Facade`, `private\s+\w+Subsystem`},
		MinConfidence: 0.5,
	},
	Flyweight: {
		Keywords:      []string{"flyweight", "cache", "shared", "intrinsic", "extrinsic"},
		ClassPatterns: []string{`Map<.*Flyweight>`, `cache\s*=\s*new\s*Map`},
		MinConfidence: 0.6,
	},
	Proxy: {
		Keywords:      []string{"proxy", "realsubject", "subject"},
		ClassPatterns: []string{`implements.*\{[^}]*this\.real`, `lazy\s*initialization`},
		MinConfidence: 0.5,
	},
	ChainOfResponsibility: {
		Keywords:      []string{"handler", "chain", "next", "successor", "handle"},
		ClassPatterns: []string{`next\s*:\s*\w*Handler`, `setNext\s*\(`, `handleRequest`},
		MinConfidence: 0.6,
	},
	Command: {
		Keywords:      []string{"command", "execute", "invoker", "receiver", "undo"},
		ClassPatterns: []string{`execute\s*\(\s*\)`, `implements\s+Command`, `undo\s*\(\s*\)`},
		MinConfidence: 0.5,
	},
	Interpreter: {
		Keywords:      []string{"interpret", "expression", "context", "terminal", "nonterminal"},
		ClassPatterns: []string{`interpret\s*\(.*Context`, `AbstractExpression`},
		MinConfidence: 0.7,
	},
	Iterator: {
		Keywords:      []string{"iterator", "next", "hasNext", "current", "aggregate"},
		ClassPatterns: []string{`next\s*\(\s*\)`, `hasNext\s*\(\s*\)`, `\[Symbol\.iterator\]`},
		MinConfidence: 0.5,
	},
	Mediator: {
		Keywords:      []string{"mediator", "colleague", "notify", "mediate"},
		ClassPatterns: []string{`mediator\s*:\s*\w*Mediator`, `notify\s*\(`},
		MinConfidence: 0.6,
	},
	Memento: {
		Keywords:      []string{"memento", "originator", "caretaker", "state", "restore"},
		ClassPatterns: []string{`save\s*\(\s*\).*Memento`, `restore\s*\(.*Memento`},
		MinConfidence: 0.6,
	},
	Observer: {
		Keywords:      []string{"observer", "subject", "subscribe", "notify", "update", "listener"},
		ClassPatterns: []string{`subscribe\s*\(`, `notify\s*\(`, `observers\s*:\s*\w+\[\]`},
		MinConfidence: 0.5,
	},
	State: {
		Keywords:      []string{"state", "context", "transition", "changeState"},
		ClassPatterns: []string{`state\s*:\s*\w*State`, `setState\s*\(`, `class\s+\w+State`},
		MinConfidence: 0.5,
	},
	Strategy: {
		Keywords:      []string{"strategy", "algorithm", "context", "setStrategy"},
		ClassPatterns: []string{`strategy\s*:\s*\w*Strategy`, `setStrategy\s*\(`, `execute\s*\(`},
		MinConfidence: 0.5,
	},
	TemplateMethod: {
		Keywords:      []string{"template", "hook", "abstract", "algorithm"},
		ClassPatterns: []string{`abstract\s+\w+\s*\(`, `protected\s+abstract`},
		MinConfidence: 0.6,
	},
	Visitor: {
		Keywords:      []string{"visitor", "visit", "accept", "element"},
		ClassPatterns: []string{`visit\w+\s*\(`, `accept\s*\(.*Visitor`},
		MinConfidence: 0.6,
	},
}

// DefaultSpecs returns a copy of the built-in rule specifications.
func DefaultSpecs() map[Name]RuleSpec {
	out := make(map[Name]RuleSpec, len(defaultSpecs))
	for name, spec := range defaultSpecs {
		out[name] = RuleSpec{
			Keywords:      append([]string(nil), spec.Keywords...),
			ClassPatterns: append([]string(nil), spec.ClassPatterns...),
			MinConfidence: spec.MinConfidence,
		}
	}
	return out
}

// CompileRule compiles spec for pattern n. Expressions that fail to compile
// are left out of the rule and returned as errors; the rule stays usable.
func CompileRule(n Name, spec RuleSpec) (Rule, []error) {
	rule := Rule{
		Pattern:       n,
		Keywords:      append([]string(nil), spec.Keywords...),
		MinConfidence: spec.MinConfidence,
	}
	if rule.MinConfidence <= 0 {
		rule.MinConfidence = DefaultMinConfidence
	}

	var errs []error
	for _, expr := range spec.ClassPatterns {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			errs = append(errs, fmt.Errorf("pattern %s: compile %q: %w", n, expr, err))
			continue
		}
		rule.Structural = append(rule.Structural, re)
	}
	return rule, errs
}

// Table is an immutable set of compiled rules, one per canonical pattern.
type Table struct {
	rules map[Name]Rule
}

var defaultTable = mustTable(nil)

// DefaultTable returns the built-in rule table.
func DefaultTable() *Table {
	return defaultTable
}

// NewTable compiles the built-in rules with overrides applied on top.
// Override fields that are empty keep the built-in value. Unknown pattern
// names are rejected. Individual expressions that fail to compile are
// dropped and reported in the returned error list.
func NewTable(overrides map[Name]RuleSpec) (*Table, []error) {
	var errs []error
	for name := range overrides {
		if !Known(name) {
			errs = append(errs, fmt.Errorf("unknown pattern in rules: %q", name))
		}
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })

	t := &Table{rules: make(map[Name]Rule, len(canonical))}
	for _, name := range canonical {
		spec := mergeSpec(defaultSpecs[name], overrides[name])
		rule, ruleErrs := CompileRule(name, spec)
		t.rules[name] = rule
		errs = append(errs, ruleErrs...)
	}
	return t, errs
}

func mustTable(overrides map[Name]RuleSpec) *Table {
	t, errs := NewTable(overrides)
	if len(errs) > 0 {
		panic(errs[0])
	}
	return t
}

func mergeSpec(base RuleSpec, override RuleSpec) RuleSpec {
	out := base
	if len(override.Keywords) > 0 {
		out.Keywords = override.Keywords
	}
	if len(override.ClassPatterns) > 0 {
		out.ClassPatterns = override.ClassPatterns
	}
	if override.MinConfidence > 0 {
		out.MinConfidence = override.MinConfidence
	}
	return out
}

// Rule returns the rule for n. A pattern without an entry gets an empty rule
// with the default threshold.
func (t *Table) Rule(n Name) Rule {
	if t != nil {
		if rule, ok := t.rules[n]; ok {
			return rule
		}
	}
	return Rule{Pattern: n, MinConfidence: DefaultMinConfidence}
}

// MinConfidence returns the acceptance threshold for n.
func (t *Table) MinConfidence(n Name) float64 {
	return t.Rule(n).MinConfidence
}

// Describe renders a rule as a single line for listings.
func (r Rule) Describe() string {
	exprs := make([]string, 0, len(r.Structural))
	for _, re := range r.Structural {
		exprs = append(exprs, strings.TrimPrefix(re.String(), "(?i)"))
	}
	return fmt.Sprintf(
		"%s min=%.2f keywords=[%s] structural=[%s]",
		r.Pattern,
		r.MinConfidence,
		strings.Join(r.Keywords, ", "),
		strings.Join(exprs, ", "),
	)
}
