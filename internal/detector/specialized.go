package detector

import (
	"regexp"
	"strings"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// SpecializedThreshold is the acceptance threshold shared by all
// specialized detectors.
const SpecializedThreshold = 0.5

// Criterion weights.
const (
	singletonPrivateCtor    = 0.4
	singletonStaticInstance = 0.3
	singletonAccessor       = 0.2
	singletonHint           = 0.1

	observerCollection  = 0.3
	observerSubscribe   = 0.25
	observerUnsubscribe = 0.15
	observerNotify      = 0.2
	observerInterface   = 0.1

	factoryCreateTyped  = 0.3
	factoryNamed        = 0.25
	factoryBranching    = 0.15
	factoryConstructors = 0.2
	factoryPathHint     = 0.1

	builderFluent   = 0.35
	builderBuild    = 0.25
	builderSetters  = 0.2
	builderNamed    = 0.15
	builderPathHint = 0.05

	strategyInterface = 0.25
	strategyField     = 0.25
	strategySetter    = 0.2
	strategyImpls     = 0.2
	strategyPathHint  = 0.1

	decoratorAnnotation = 0.3
	decoratorField      = 0.25
	decoratorWrapping   = 0.25
	decoratorNamed      = 0.15
	decoratorPathHint   = 0.05

	commandInterface = 0.3
	commandExecute   = 0.2
	commandUndo      = 0.2
	commandQueue     = 0.2
	commandPathHint  = 0.1
)

var (
	getInstanceRe = regexp.MustCompile(`getInstance\s*\(\s*\)`)

	observerCollectionRe  = regexp.MustCompile(`(?i)(observers|subscribers|listeners)\s*:\s*\w+\[\]`)
	observerSubscribeRe   = regexp.MustCompile(`(subscribe|attach|addObserver)\s*\(`)
	observerUnsubscribeRe = regexp.MustCompile(`(unsubscribe|detach|removeObserver)\s*\(`)
	observerNotifyRe      = regexp.MustCompile(`(notify|notifyAll|update)\s*\(`)
	observerInterfaceRe   = regexp.MustCompile(`interface\s+\w*Observer`)

	factoryCreateRe  = regexp.MustCompile(`create\w*\s*\([^)]*\)\s*:\s*\w+`)
	factoryNamedRe   = regexp.MustCompile(`(class|interface)\s+\w*Factory`)
	factorySwitchRe  = regexp.MustCompile(`switch\s*\([^)]+\)\s*\{`)
	factoryTypeIfRe  = regexp.MustCompile(`if\s*\([^)]*type`)
	factoryReturnRe  = regexp.MustCompile(`return\s+new\s+(\w+)`)
	builderBuildRe   = regexp.MustCompile(`build\s*\(\s*\)\s*:`)
	builderSetterRe  = regexp.MustCompile(`(set\w+|with\w+)\s*\([^)]+\)`)
	builderNamedRe   = regexp.MustCompile(`(class|interface)\s+\w*Builder`)
	strategyIfaceRe  = regexp.MustCompile(`interface\s+\w*Strategy`)
	strategyFieldRe  = regexp.MustCompile(`(private|protected)\s+strategy\s*:`)
	strategySetRe    = regexp.MustCompile(`setStrategy\s*\(`)
	strategyImplRe   = regexp.MustCompile(`class\s+\w+\s+implements\s+(\w+Strategy)`)
	decoratorFieldRe = regexp.MustCompile(`(wrappee|wrapped|component)\s*:`)
	decoratorWrapRe  = regexp.MustCompile(`(?s)implements\s+\w+.*\{[^}]*this\.(wrappee|wrapped|component)`)
	decoratorNamedRe = regexp.MustCompile(`(class|interface)\s+\w*Decorator`)
	commandIfaceRe   = regexp.MustCompile(`(?s)interface\s+\w*Command.*execute\s*\(`)
	commandExecRe    = regexp.MustCompile(`execute\s*\(\s*\)\s*:`)
	commandUndoRe    = regexp.MustCompile(`undo\s*\(\s*\)`)
	commandQueueRe   = regexp.MustCompile(`commands\s*:\s*\w*Command\[\]`)
)

// Specialized returns the seven hand-tuned detectors.
func Specialized() []Detector {
	return []Detector{
		singletonDetector{},
		observerDetector{},
		factoryDetector{},
		builderDetector{},
		strategyDetector{},
		decoratorDetector{},
		commandDetector{},
	}
}

type singletonDetector struct{}

func (singletonDetector) Pattern() pattern.Name { return pattern.Singleton }
func (singletonDetector) Method() Method        { return MethodSpecialized }

func (d singletonDetector) Detect(src *Source) Detection {
	f := src.Features
	return newScorer(d.Pattern(), d.Method()).
		check(singletonPrivateCtor, "private constructor", func() bool { return f.PrivateCtor }).
		check(singletonStaticInstance, "private static instance field", func() bool { return f.StaticInstance }).
		match(singletonAccessor, "getInstance() accessor", getInstanceRe, src.Text).
		check(singletonHint, "singleton hint in path or text", func() bool {
			return containsAny("singleton", src.LowerPath(), src.LowerText())
		}).
		result(SpecializedThreshold)
}

type observerDetector struct{}

func (observerDetector) Pattern() pattern.Name { return pattern.Observer }
func (observerDetector) Method() Method        { return MethodSpecialized }

func (d observerDetector) Detect(src *Source) Detection {
	return newScorer(d.Pattern(), d.Method()).
		match(observerCollection, "observer collection field", observerCollectionRe, src.Text).
		match(observerSubscribe, "subscribe method", observerSubscribeRe, src.Text).
		match(observerUnsubscribe, "unsubscribe method", observerUnsubscribeRe, src.Text).
		match(observerNotify, "notify method", observerNotifyRe, src.Text).
		match(observerInterface, "observer interface", observerInterfaceRe, src.Text).
		result(SpecializedThreshold)
}

type factoryDetector struct{}

func (factoryDetector) Pattern() pattern.Name { return pattern.Factory }
func (factoryDetector) Method() Method        { return MethodSpecialized }

func (d factoryDetector) Detect(src *Source) Detection {
	return newScorer(d.Pattern(), d.Method()).
		match(factoryCreateTyped, "typed create method", factoryCreateRe, src.Text).
		match(factoryNamed, "factory type name", factoryNamedRe, src.Text).
		check(factoryBranching, "type branching", func() bool {
			return factorySwitchRe.MatchString(src.Text) || factoryTypeIfRe.MatchString(src.Text)
		}).
		check(factoryConstructors, "several constructed products", func() bool {
			return distinctSubmatches(factoryReturnRe, src.Text) >= 2
		}).
		contains(factoryPathHint, "factory in path", src.LowerPath(), "factory").
		result(SpecializedThreshold)
}

type builderDetector struct{}

func (builderDetector) Pattern() pattern.Name { return pattern.Builder }
func (builderDetector) Method() Method        { return MethodSpecialized }

func (d builderDetector) Detect(src *Source) Detection {
	f := src.Features
	return newScorer(d.Pattern(), d.Method()).
		check(builderFluent, "fluent return this", func() bool { return f.FluentReturn }).
		match(builderBuild, "typed build()", builderBuildRe, src.Text).
		check(builderSetters, "setter chain", func() bool {
			return len(builderSetterRe.FindAllStringIndex(src.Text, -1)) >= 3
		}).
		match(builderNamed, "builder type name", builderNamedRe, src.Text).
		contains(builderPathHint, "builder in path", src.LowerPath(), "builder").
		result(SpecializedThreshold)
}

type strategyDetector struct{}

func (strategyDetector) Pattern() pattern.Name { return pattern.Strategy }
func (strategyDetector) Method() Method        { return MethodSpecialized }

func (d strategyDetector) Detect(src *Source) Detection {
	return newScorer(d.Pattern(), d.Method()).
		match(strategyInterface, "strategy interface", strategyIfaceRe, src.Text).
		match(strategyField, "strategy field", strategyFieldRe, src.Text).
		match(strategySetter, "setStrategy method", strategySetRe, src.Text).
		check(strategyImpls, "interchangeable implementations", func() bool {
			return maxGroupSize(strategyImplRe, src.Text) >= 2
		}).
		contains(strategyPathHint, "strategy in path", src.LowerPath(), "strategy").
		result(SpecializedThreshold)
}

type decoratorDetector struct{}

func (decoratorDetector) Pattern() pattern.Name { return pattern.Decorator }
func (decoratorDetector) Method() Method        { return MethodSpecialized }

func (d decoratorDetector) Detect(src *Source) Detection {
	f := src.Features
	return newScorer(d.Pattern(), d.Method()).
		check(decoratorAnnotation, "decorator annotation", func() bool { return len(f.Decorators) > 0 }).
		match(decoratorField, "wrapped component field", decoratorFieldRe, src.Text).
		match(decoratorWrapping, "implements and delegates to wrapped", decoratorWrapRe, src.Text).
		match(decoratorNamed, "decorator type name", decoratorNamedRe, src.Text).
		contains(decoratorPathHint, "decorator in path", src.LowerPath(), "decorator").
		result(SpecializedThreshold)
}

type commandDetector struct{}

func (commandDetector) Pattern() pattern.Name { return pattern.Command }
func (commandDetector) Method() Method        { return MethodSpecialized }

func (d commandDetector) Detect(src *Source) Detection {
	return newScorer(d.Pattern(), d.Method()).
		match(commandInterface, "command interface with execute", commandIfaceRe, src.Text).
		match(commandExecute, "typed execute()", commandExecRe, src.Text).
		match(commandUndo, "undo()", commandUndoRe, src.Text).
		match(commandQueue, "command queue field", commandQueueRe, src.Text).
		contains(commandPathHint, "command in path", src.LowerPath(), "command").
		result(SpecializedThreshold)
}

func containsAny(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

// distinctSubmatches counts distinct values of the first capture group.
func distinctSubmatches(re *regexp.Regexp, text string) int {
	seen := make(map[string]struct{})
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = struct{}{}
	}
	return len(seen)
}

// maxGroupSize returns the largest number of matches sharing one value of
// the first capture group.
func maxGroupSize(re *regexp.Regexp, text string) int {
	counts := make(map[string]int)
	best := 0
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		counts[m[1]]++
		if counts[m[1]] > best {
			best = counts[m[1]]
		}
	}
	return best
}
