package layout

import (
	"strings"

	"github.com/structspec/structspec/reporter"
	"github.com/structspec/structspec/spec"
	"github.com/structspec/structspec/types"
)

// Enum is a compiled enumeration: every option resolved to a concrete
// category and value, in declaration order.
type Enum struct {
	Enum    *spec.Enumeration
	Name    string
	Options []EnumOption

	byName map[string]int
}

// EnumOption is one resolved option. Category is the option's resolved
// type classification and Value its concrete value. For implicitly valued
// options the value is the previous option's value plus one.
type EnumOption struct {
	Name     string
	Category types.Category
	Value    spec.Value
}

// Option returns the resolved option with the given name, or nil.
func (e *Enum) Option(name string) *EnumOption {
	i, ok := e.byName[name]
	if !ok {
		return nil
	}
	return &e.Options[i]
}

// compileEnums resolves every enumeration in the document. A failing
// enumeration is reported and omitted from the set; the rest still compile.
func (c *compiler) compileEnums(h *reporter.Handler) error {
	for _, en := range c.doc.Enums {
		compiled, cerr := c.compileEnum(en)
		if cerr != nil {
			if err := c.report(h, cerr); err != nil {
				return err
			}
			continue
		}
		c.set.addEnum(compiled)
	}
	return nil
}

// compileEnum walks the options in declaration order, maintaining a running
// (category, value) state that starts unset.
func (c *compiler) compileEnum(en *spec.Enumeration) (*Enum, *Error) {
	out := &Enum{
		Enum:   en,
		Name:   en.Name,
		byName: make(map[string]int, len(en.Options)),
	}
	var (
		runningCat types.Category
		haveCat    bool
		runningVal spec.Value
		haveVal    bool
	)
	if en.Type != "" {
		cat, err := categoryOf(en.Type)
		if err != nil {
			return nil, errorf(ErrUnknownType, en.Pos, "", "",
				"enumeration %q declares %v", en.Name, err)
		}
		runningCat, haveCat = cat, true
	}
	for _, opt := range en.Options {
		var resolved EnumOption
		resolved.Name = opt.Name
		switch {
		case opt.Value != nil:
			cat, err := c.optionCategory(en, opt)
			if err != nil {
				return nil, err
			}
			runningCat, haveCat = cat, true
			runningVal, haveVal = *opt.Value, true
		case !haveVal:
			// First value of the enumeration defaults to 0.
			if !haveCat {
				runningCat, haveCat = types.Integer, true
			}
			runningVal, haveVal = spec.IntegerValue(0), true
		default:
			if !runningVal.IsInteger() {
				return nil, errorf(ErrInvalidEnumerationSequence, opt.Pos, "", "",
					"option %q of enumeration %q needs an implicit increment, but the previous value %q is not an integer",
					opt.Name, en.Name, runningVal.String())
			}
			runningVal = spec.IntegerValue(runningVal.Int + 1)
		}
		resolved.Category = runningCat
		resolved.Value = runningVal
		out.byName[opt.Name] = len(out.Options)
		out.Options = append(out.Options, resolved)
	}
	return out, nil
}

// optionCategory resolves the type of an explicitly valued option: its own
// type override if given, else the enumeration's declared type, else a
// classification of the literal itself.
func (c *compiler) optionCategory(en *spec.Enumeration, opt *spec.Option) (types.Category, *Error) {
	typeName := opt.Type
	if typeName == "" {
		typeName = en.Type
	}
	if typeName != "" {
		cat, err := categoryOf(typeName)
		if err != nil {
			return 0, errorf(ErrUnknownType, opt.Pos, "", "",
				"option %q of enumeration %q declares %v", opt.Name, en.Name, err)
		}
		return cat, nil
	}
	return classifyLiteral(*opt.Value), nil
}

// classifyLiteral maps a literal token deterministically onto a category:
// numeric literals are integers or floats, boolean keywords are booleans,
// and quoted literals are strings. A string literal wrapped in parentheses
// is reclassified as an integer. That last rule is a compatibility quirk
// for C-style cast expressions embedded as enumeration values; it is
// deliberately narrow and should not be extended.
func classifyLiteral(v spec.Value) types.Category {
	switch v.Kind {
	case spec.ValueInteger:
		return types.Integer
	case spec.ValueFloat:
		return types.Float
	case spec.ValueBoolean:
		return types.Boolean
	default:
		if strings.HasPrefix(v.Raw, "(") && strings.HasSuffix(v.Raw, ")") {
			return types.Integer
		}
		return types.String
	}
}

// categoryOf classifies a primitive type name via the type catalog.
func categoryOf(typeName string) (types.Category, error) {
	info, err := types.Lookup(typeName)
	if err != nil {
		return 0, err
	}
	return info.Category, nil
}
