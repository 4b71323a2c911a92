// Copyright © 2018 The ELPS authors

package lisp

// Error condition names.  These are stable API for programmatic error
// classification in the REPL, the language server and tests.
const (
	CondError             = "error"
	CondSyntaxError       = "syntax-error"
	CondUnboundSymbol     = "unbound-symbol"
	CondArityError        = "arity-error"
	CondTypeError         = "type-error"
	CondParamSpecError    = "parameter-spec-error"
	CondDuplicateKeyword  = "duplicate-keyword"
	CondMissingKeywordArg = "missing-keyword-argument"
	CondImproperList      = "improper-list"
	CondStackOverflow     = "stack-overflow"
	CondIOError           = "io-error"
)
