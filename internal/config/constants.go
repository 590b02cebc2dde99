package config

const SourceFileExt = ".ljson"

// SourceFileExtensions are all recognized term file extensions
var SourceFileExtensions = []string{".ljson", ".lj"}

// ConfigFileNames are searched in order by FindConfig.
var ConfigFileNames = []string{"ljson.yaml", "ljson.yml"}

// Variable naming
const (
	// VarPrefix prefixes every generated bound name: v0, v1, ...
	VarPrefix = "v"
	// AccessorName is how the library accessor shows up in diagnostics.
	AccessorName = "$"
)

// Literal keywords. They are reserved and cannot name a lambda parameter.
const (
	NullKeyword  = "null"
	TrueKeyword  = "true"
	FalseKeyword = "false"
)

// Grammar punctuation
const (
	Arrow = "=>"
)

// Default limits
const (
	DefaultMaxDepth      = 512
	DefaultMaxEvalDepth  = 10000
	DefaultMaxInputBytes = 1 << 20
	DefaultLoopLimit     = 1000
	DefaultServerAddr    = "127.0.0.1:7420"
	DefaultStorePath     = "ljson.db"
)

// Std library primitive names
const (
	PrimAdd    = "+"
	PrimSub    = "-"
	PrimMul    = "*"
	PrimDiv    = "/"
	PrimMod    = "%"
	PrimSqrt   = "sqrt"
	PrimEq     = "=="
	PrimNeq    = "!="
	PrimLt     = "<"
	PrimLte    = "<="
	PrimGt     = ">"
	PrimGte    = ">="
	PrimNot    = "not"
	PrimNeg    = "neg"
	PrimLength = "length"
	PrimGet    = "get"
	PrimConcat = "concat"
	PrimIf     = "if"
	PrimLoop   = "loop"
)
