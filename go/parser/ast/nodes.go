// Package ast defines the ES|QL abstract syntax tree.
//
// Every node is an independently owned, immutable value constructed once by
// the builder layer in package parser and then owned by its parent's args.
// The single exception is a Function node's Location, which a separate
// finalize step widens to cover the node's descendants after they have been
// attached (see Function.ExtendSpan).
package ast

import (
	"encoding/json"
	"fmt"
	"math"
)

// NodeType is the discriminant tag shared by all AST nodes.
type NodeType int

const (
	TypeUnknown NodeType = iota
	TypeCommand
	TypeOption
	TypeMode
	TypeFunction
	TypeColumn
	TypeSource
	TypeIdentifier
	TypeLiteral
	TypeList
	TypeTimeInterval
	TypeInlineCast
	TypeOrder
	TypeError
	TypeQuery
	TypeArgGroup
)

// String returns the wire name of the node type, as emitted in serialized
// trees and matched by downstream consumers.
func (nt NodeType) String() string {
	switch nt {
	case TypeUnknown:
		return "unknown"
	case TypeCommand:
		return "command"
	case TypeOption:
		return "option"
	case TypeMode:
		return "mode"
	case TypeFunction:
		return "function"
	case TypeColumn:
		return "column"
	case TypeSource:
		return "source"
	case TypeIdentifier:
		return "identifier"
	case TypeLiteral:
		return "literal"
	case TypeList:
		return "list"
	case TypeTimeInterval:
		return "timeInterval"
	case TypeInlineCast:
		return "inlineCast"
	case TypeOrder:
		return "order"
	case TypeError:
		return "error"
	case TypeQuery:
		return "query"
	case TypeArgGroup:
		return "argGroup"
	default:
		return fmt.Sprintf("NodeType(%d)", int(nt))
	}
}

// Location is a character-offset span into the original query text.
// Min and Max are both inclusive; Min <= Max for every node built from real
// tokens. Synthetic nodes may carry a zero span.
type Location struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Node is implemented by every AST node.
type Node interface {
	// NodeType returns the discriminant tag.
	NodeType() NodeType
	// NodeName returns the display/lookup name; its semantics vary by
	// node type (unquoted identifier text, lower-cased function name, ...).
	NodeName() string
	// Span returns the node's source location.
	Span() Location
	// IsIncomplete reports whether the node was produced under
	// parse-error conditions.
	IsIncomplete() bool
}

// BaseNode carries the fields shared by all node variants.
type BaseNode struct {
	Name       string   `json:"name" yaml:"name"`
	Text       string   `json:"text" yaml:"text"`
	Location   Location `json:"location" yaml:"location"`
	Incomplete bool     `json:"incomplete" yaml:"incomplete"`
}

func (b *BaseNode) NodeName() string   { return b.Name }
func (b *BaseNode) Span() Location     { return b.Location }
func (b *BaseNode) IsIncomplete() bool { return b.Incomplete }

// LiteralType identifies the concrete kind of a Literal node.
type LiteralType int

const (
	LiteralInteger LiteralType = iota
	LiteralDouble
	LiteralKeyword // quoted string constants
	LiteralBoolean
	LiteralNull
	LiteralParam // never built through the generic literal constructor
)

func (lt LiteralType) String() string {
	switch lt {
	case LiteralInteger:
		return "integer"
	case LiteralDouble:
		return "double"
	case LiteralKeyword:
		return "keyword"
	case LiteralBoolean:
		return "boolean"
	case LiteralNull:
		return "null"
	case LiteralParam:
		return "param"
	default:
		return fmt.Sprintf("LiteralType(%d)", int(lt))
	}
}

// Literal is a scalar constant. Value holds int64 for integer literals,
// float64 for double literals (NaN when the source text did not parse,
// which is accepted here and rejected downstream), string for keyword
// literals, bool for booleans and nil for NULL.
type Literal struct {
	BaseNode
	LiteralType LiteralType `json:"literalType" yaml:"literalType"`
	Value       any         `json:"value" yaml:"value"`
}

func (*Literal) NodeType() NodeType { return TypeLiteral }

// MarshalJSON emits the discriminant tag and maps a NaN value to null, since
// encoding/json refuses IEEE NaN.
func (n *Literal) MarshalJSON() ([]byte, error) {
	type alias Literal
	out := struct {
		Type        string `json:"type"`
		LiteralType string `json:"literalType"`
		*alias
	}{n.NodeType().String(), n.LiteralType.String(), (*alias)(n)}
	if f, ok := n.Value.(float64); ok && math.IsNaN(f) {
		shadow := *n
		shadow.Value = nil
		out.alias = (*alias)(&shadow)
	}
	return json.Marshal(out)
}

// ParamKind distinguishes the three query-parameter spellings.
type ParamKind int

const (
	ParamUnnamed    ParamKind = iota // ?
	ParamPositional                  // ?1
	ParamNamed                       // ?name
)

func (pk ParamKind) String() string {
	switch pk {
	case ParamUnnamed:
		return "unnamed"
	case ParamPositional:
		return "positional"
	case ParamNamed:
		return "named"
	default:
		return fmt.Sprintf("ParamKind(%d)", int(pk))
	}
}

// Param is a query parameter placeholder. It is a literal variant on the
// wire (type "literal", literalType "param"). Value holds nil for unnamed
// params, int for positional and string for named ones.
type Param struct {
	BaseNode
	ParamKind ParamKind `json:"paramKind" yaml:"paramKind"`
	Value     any       `json:"value" yaml:"value"`
}

func (*Param) NodeType() NodeType { return TypeLiteral }

func (n *Param) MarshalJSON() ([]byte, error) {
	type alias Param
	return json.Marshal(struct {
		Type        string `json:"type"`
		LiteralType string `json:"literalType"`
		ParamKind   string `json:"paramType"`
		*alias
	}{n.NodeType().String(), LiteralParam.String(), n.ParamKind.String(), (*alias)(n)})
}

// Identifier is one segment of a column or function name. Name holds the
// backtick-unquoted form, Text the verbatim source.
type Identifier struct {
	BaseNode
}

func (*Identifier) NodeType() NodeType { return TypeIdentifier }

func (n *Identifier) MarshalJSON() ([]byte, error) {
	type alias Identifier
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// Column is a possibly multi-part column reference. Args holds the ordered
// Identifier/Param segments; Quoted is true when the source used backticks.
type Column struct {
	BaseNode
	Args   []Node `json:"args" yaml:"args"`
	Quoted bool   `json:"quoted" yaml:"quoted"`
}

func (*Column) NodeType() NodeType { return TypeColumn }

func (n *Column) MarshalJSON() ([]byte, error) {
	type alias Column
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// SourceType distinguishes FROM-style index targets from ENRICH policies.
type SourceType int

const (
	SourceIndex SourceType = iota
	SourcePolicy
)

func (st SourceType) String() string {
	switch st {
	case SourceIndex:
		return "index"
	case SourcePolicy:
		return "policy"
	default:
		return fmt.Sprintf("SourceType(%d)", int(st))
	}
}

// Source is a FROM/ENRICH target: an index pattern with an optional
// cluster prefix, or an enrich policy name.
type Source struct {
	BaseNode
	SourceType SourceType `json:"sourceType" yaml:"sourceType"`
	Cluster    string     `json:"cluster" yaml:"cluster"`
	Index      string     `json:"index" yaml:"index"`
}

func (*Source) NodeType() NodeType { return TypeSource }

func (n *Source) MarshalJSON() ([]byte, error) {
	type alias Source
	return json.Marshal(struct {
		Type       string `json:"type"`
		SourceType string `json:"sourceType"`
		*alias
	}{n.NodeType().String(), n.SourceType.String(), (*alias)(n)})
}

// FunctionSubtype records how a function node was spelled in source.
type FunctionSubtype string

const (
	VariadicCall           FunctionSubtype = "variadic-call"
	BinaryExpression       FunctionSubtype = "binary-expression"
	UnaryExpression        FunctionSubtype = "unary-expression"
	PostfixUnaryExpression FunctionSubtype = "postfix-unary-expression"
)

// Function is a function call or operator application. Args holds the
// ordered arguments; grouped argument lists appear as *ArgGroup entries.
// Operator, when set, is the Identifier or Param the call was resolved
// through (supports parameterized function names such as ?fn(...)).
type Function struct {
	BaseNode
	Subtype  FunctionSubtype `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	Args     []Node          `json:"args" yaml:"args"`
	Operator Node            `json:"operator,omitempty" yaml:"operator,omitempty"`

	// spanExtended guards the one-shot span widening; see ExtendSpan.
	spanExtended bool
}

func (*Function) NodeType() NodeType { return TypeFunction }

func (n *Function) MarshalJSON() ([]byte, error) {
	type alias Function
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// ArgGroup groups one parenthesized argument list attached to a call node.
// It owns no tokens of its own; spans over a group are computed from its
// items, and an empty trailing group stands for a bare "()" list.
type ArgGroup struct {
	Items []Node `json:"items" yaml:"items"`
}

func (*ArgGroup) NodeType() NodeType { return TypeArgGroup }
func (*ArgGroup) NodeName() string { return "" }
func (*ArgGroup) Span() Location { return Location{} }
func (*ArgGroup) IsIncomplete() bool { return false }

func (n *ArgGroup) MarshalJSON() ([]byte, error) {
	type alias ArgGroup
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// List is a bracketed literal list, e.g. [1, 2, 3].
type List struct {
	BaseNode
	Values []*Literal `json:"values" yaml:"values"`
}

func (*List) NodeType() NodeType { return TypeList }

func (n *List) MarshalJSON() ([]byte, error) {
	type alias List
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// TimeInterval is a duration constant such as "3 hours".
type TimeInterval struct {
	BaseNode
	Quantity int64  `json:"quantity" yaml:"quantity"`
	Unit     string `json:"unit" yaml:"unit"`
}

func (*TimeInterval) NodeType() NodeType { return TypeTimeInterval }

func (n *TimeInterval) MarshalJSON() ([]byte, error) {
	type alias TimeInterval
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// InlineCast is an expr::type cast. CastType holds the lower-cased type name.
type InlineCast struct {
	BaseNode
	CastType string `json:"castType" yaml:"castType"`
	Value    Node   `json:"value" yaml:"value"`
}

func (*InlineCast) NodeType() NodeType { return TypeInlineCast }

func (n *InlineCast) MarshalJSON() ([]byte, error) {
	type alias InlineCast
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// Sort direction and null-placement spellings used by Order nodes. The empty
// string means the query did not spell the modifier out.
const (
	OrderAscending  = "ASC"
	OrderDescending = "DESC"
	NullsFirst      = "NULLS FIRST"
	NullsLast       = "NULLS LAST"
)

// Order is one SORT term: a wrapped expression plus ordering direction and
// null-placement policy.
type Order struct {
	BaseNode
	Args  []Node `json:"args" yaml:"args"`
	Order string `json:"order" yaml:"order"`
	Nulls string `json:"nulls" yaml:"nulls"`
}

func (*Order) NodeType() NodeType { return TypeOrder }

func (n *Order) MarshalJSON() ([]byte, error) {
	type alias Order
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// Command is one top-level pipe command. Args is populated by the parse
// driver as it reduces the command's clauses.
type Command struct {
	BaseNode
	Args []Node `json:"args" yaml:"args"`
}

func (*Command) NodeType() NodeType { return TypeCommand }

func (n *Command) MarshalJSON() ([]byte, error) {
	type alias Command
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// Option is a named sub-clause attached to a command (METADATA, BY, ON,
// WITH, APPEND_SEPARATOR, ...).
type Option struct {
	BaseNode
	Args []Node `json:"args" yaml:"args"`
}

func (*Option) NodeType() NodeType { return TypeOption }

func (n *Option) MarshalJSON() ([]byte, error) {
	type alias Option
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// Mode is an ENRICH execution-mode setting such as _coordinator or _remote.
type Mode struct {
	BaseNode
}

func (*Mode) NodeType() NodeType { return TypeMode }

func (n *Mode) MarshalJSON() ([]byte, error) {
	type alias Mode
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// Unknown is the fallback node for constructs not otherwise classified.
type Unknown struct {
	BaseNode
}

func (*Unknown) NodeType() NodeType { return TypeUnknown }

func (n *Unknown) MarshalJSON() ([]byte, error) {
	type alias Unknown
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// Error is a synthetic diagnostic node wrapping a recognition error. It is
// not part of normal AST traversal; editors and validators consume it from
// the parse result's error list.
type Error struct {
	BaseNode
}

func (*Error) NodeType() NodeType { return TypeError }

func (n *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}

// Query is the root of a parsed ES|QL statement: the ordered command
// pipeline.
type Query struct {
	BaseNode
	Commands []*Command `json:"commands" yaml:"commands"`
}

func (*Query) NodeType() NodeType { return TypeQuery }

func (n *Query) MarshalJSON() ([]byte, error) {
	type alias Query
	return json.Marshal(struct {
		Type string `json:"type"`
		*alias
	}{n.NodeType().String(), (*alias)(n)})
}
