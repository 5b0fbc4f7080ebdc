package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

const singletonSource = `export class Database {
  private static instance: Database;

  private constructor() {}

  public static getInstance(): Database {
    if (!Database.instance) {
      Database.instance = new Database();
    }
    return Database.instance;
  }
}
`

const observerSource = `interface Observer {
  update(subject: Subject): void;
}

class Subject {
  private observers: Observer[] = [];

  subscribe(o: Observer): void {
    this.observers.push(o);
  }

  unsubscribe(o: Observer): void {
    this.observers = this.observers.filter((x) => x !== o);
  }

  notify(): void {
    for (const o of this.observers) {
      o.update(this);
    }
  }
}
`

const factorySource = `interface Shape {}
class Circle implements Shape {}
class Square implements Shape {}

export class ShapeFactory {
  createShape(kind: string): Shape {
    switch (kind) {
      case 'circle':
        return new Circle();
      default:
        return new Square();
    }
  }
}
`

const builderSource = `class QueryBuilder {
  private parts: string[] = [];

  setTable(name: string): QueryBuilder {
    this.parts.push(name);
    return this;
  }

  withLimit(n: number): QueryBuilder {
    this.parts.push(String(n));
    return this;
  }

  setOrder(col: string): QueryBuilder {
    this.parts.push(col);
    return this;
  }

  build(): string {
    return this.parts.join(' ');
  }
}
`

const strategySource = `interface SortStrategy {
  sort(data: number[]): number[];
}

class QuickSort implements SortStrategy {
  sort(data: number[]): number[] { return data; }
}

class MergeSort implements SortStrategy {
  sort(data: number[]): number[] { return data; }
}

class Sorter {
  private strategy: SortStrategy;

  setStrategy(s: SortStrategy): void {
    this.strategy = s;
  }
}
`

const decoratorSource = `interface Component {
  operation(): string;
}

class LoggingDecorator implements Component {
  protected wrappee: Component;

  constructor(wrappee: Component) {
    this.wrappee = wrappee;
  }

  operation(): string {
    return this.wrappee.operation();
  }
}
`

const commandSource = `interface Command {
  execute(): void;
  undo(): void;
}

class Invoker {
  private commands: Command[] = [];
}
`

func detect(t *testing.T, d Detector, path, text string) Detection {
	t.Helper()
	return d.Detect(NewSource(path, text))
}

func TestSpecialized_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		d    Detector
		path string
		text string
		want float64
	}{
		{"singleton", singletonDetector{}, "src/db.ts", singletonSource, 0.9},
		{"singleton with path hint", singletonDetector{}, "src/singleton/db.ts", singletonSource, 1.0},
		{"observer", observerDetector{}, "src/subject.ts", observerSource, 1.0},
		{"factory", factoryDetector{}, "src/shapes.ts", factorySource, 0.9},
		{"factory with path hint", factoryDetector{}, "src/factory/shapes.ts", factorySource, 1.0},
		{"builder", builderDetector{}, "src/query.ts", builderSource, 0.95},
		{"strategy", strategyDetector{}, "src/sort.ts", strategySource, 0.9},
		{"decorator", decoratorDetector{}, "src/log.ts", decoratorSource, 0.65},
		{"decorator with annotation", decoratorDetector{}, "src/log.ts", "@Injectable()\n" + decoratorSource, 0.95},
		{"command", commandDetector{}, "src/invoker.ts", commandSource, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detect(t, tt.d, tt.path, tt.text)
			assert.InDelta(t, tt.want, got.Confidence, 1e-9)
			assert.True(t, got.Matched)
			assert.Equal(t, MethodSpecialized, got.Method)
			assert.Equal(t, tt.d.Pattern(), got.Pattern)
			assert.NotEmpty(t, got.Signals)
		})
	}
}

func TestSpecialized_EmptyInput(t *testing.T) {
	for _, d := range Specialized() {
		got := detect(t, d, "", "")
		assert.Zero(t, got.Confidence, d.Pattern())
		assert.False(t, got.Matched, d.Pattern())
		assert.Empty(t, got.Signals, d.Pattern())
	}
}

func TestSpecialized_ThresholdIsInclusive(t *testing.T) {
	// fluent return (0.35) plus builder name (0.15) sums to exactly 0.5.
	got := detect(t, builderDetector{}, "x.ts", "class FooBuilder {\n  x() { return this; }\n}\n")
	assert.InDelta(t, 0.5, got.Confidence, 1e-12)
	assert.True(t, got.Matched)
}

func TestFactory_RequiresDistinctProducts(t *testing.T) {
	text := "function make(): Circle {\n  if (a) { return new Circle(); }\n  return new Circle();\n}\n"
	got := detect(t, factoryDetector{}, "x.ts", text)
	assert.NotContains(t, got.Signals, "several constructed products")

	text += "function other() { return new Square(); }\n"
	got = detect(t, factoryDetector{}, "x.ts", text)
	assert.Contains(t, got.Signals, "several constructed products")
}

func TestStrategy_RequiresSameInterface(t *testing.T) {
	text := "class A implements FooStrategy {}\nclass B implements BarStrategy {}\n"
	got := detect(t, strategyDetector{}, "x.ts", text)
	assert.NotContains(t, got.Signals, "interchangeable implementations")

	text += "class C implements FooStrategy {}\n"
	got = detect(t, strategyDetector{}, "x.ts", text)
	assert.Contains(t, got.Signals, "interchangeable implementations")
}

func TestDecorator_FieldWithoutImplementsIsNotWrapping(t *testing.T) {
	text := "class X {\n  wrapped: Y;\n  run() { this.wrapped.run(); }\n}\n"
	got := detect(t, decoratorDetector{}, "x.ts", text)
	assert.InDelta(t, 0.25, got.Confidence, 1e-9)
	assert.False(t, got.Matched)
}

func TestSingleton_Monotonic(t *testing.T) {
	partial := "class A {\n  private static instance: A;\n  private constructor() {}\n}\n"
	before := detect(t, singletonDetector{}, "a.ts", partial)
	after := detect(t, singletonDetector{}, "a.ts", partial+"function getInstance() {}\n")
	assert.InDelta(t, 0.7, before.Confidence, 1e-9)
	assert.GreaterOrEqual(t, after.Confidence, before.Confidence)
	assert.InDelta(t, 0.9, after.Confidence, 1e-9)
}

func TestGeneric_VisitorScenario(t *testing.T) {
	text := `interface ShapeVisitor {
  visitCircle(c: Circle): void;
}

class Circle {
  accept(v: ShapeVisitor): void {
    v.visitCircle(this);
  }
}
`
	g := NewGeneric(pattern.DefaultTable().Rule(pattern.Visitor))

	withPath := detect(t, g, "patterns/Visitor/shapes.ts", text)
	assert.InDelta(t, 0.8, withPath.Confidence, 1e-9)
	assert.True(t, withPath.Matched)
	assert.Equal(t, MethodGeneric, withPath.Method)

	withoutPath := detect(t, g, "src/shapes.ts", text)
	assert.InDelta(t, 0.5, withoutPath.Confidence, 1e-9)
	assert.False(t, withoutPath.Matched)
}

func TestGeneric_KeywordsCapped(t *testing.T) {
	rule, errs := pattern.CompileRule(pattern.Composite, pattern.RuleSpec{
		Keywords: []string{"a", "b", "c", "d", "e"},
	})
	require.Empty(t, errs)
	got := detect(t, NewGeneric(rule), "x.ts", "abcde")
	assert.InDelta(t, 0.3, got.Confidence, 1e-9)
}

func TestGeneric_OnlyFirstStructuralCounts(t *testing.T) {
	rule, errs := pattern.CompileRule(pattern.Iterator, pattern.RuleSpec{
		ClassPatterns: []string{`next\s*\(`, `hasNext\s*\(`},
		MinConfidence: 0.2,
	})
	require.Empty(t, errs)
	got := detect(t, NewGeneric(rule), "x.ts", "next() hasNext()")
	assert.InDelta(t, 0.2, got.Confidence, 1e-9)
	assert.True(t, got.Matched)
}

func TestScorer_PanickingCriterionIsNotSatisfied(t *testing.T) {
	s := newScorer(pattern.State, MethodGeneric).
		check(0.3, "boom", func() bool { panic("bad criterion") }).
		check(0.2, "ok", func() bool { return true })
	got := s.result(0.1)
	assert.InDelta(t, 0.2, got.Confidence, 1e-9)
	assert.Equal(t, []string{"ok"}, got.Signals)
}

func TestScorer_ClampsToOne(t *testing.T) {
	s := newScorer(pattern.State, MethodGeneric)
	for i := 0; i < 5; i++ {
		s.check(0.4, "x", func() bool { return true })
	}
	assert.Equal(t, 1.0, s.result(0.5).Confidence)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(nil)
	all := r.All()
	require.Len(t, all, 23)
	for i, name := range pattern.All() {
		assert.Equal(t, name, all[i].Pattern())
	}

	specialized := map[pattern.Name]bool{
		pattern.Singleton: true, pattern.Observer: true, pattern.Factory: true,
		pattern.Builder: true, pattern.Strategy: true, pattern.Decorator: true,
		pattern.Command: true,
	}
	for _, d := range all {
		want := MethodGeneric
		if specialized[d.Pattern()] {
			want = MethodSpecialized
		}
		assert.Equal(t, want, d.Method(), d.Pattern())
	}

	unknown := r.For("Repository")
	assert.Equal(t, MethodGeneric, unknown.Method())
}
