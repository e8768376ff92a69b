// Package parser provides an error-tolerant, backtracking parser for Java
// source code, built to extract declarations for API documentation.
//
// # Overview
//
// A unit of source text flows through four stages:
//
//	┌─────────────┐     ┌─────────────┐     ┌─────────────┐     ┌─────────────┐
//	│   Source    │────▶│   Lexer     │────▶│ TokenStream │────▶│   Parser    │
//	│   (text)    │     │  (tokens)   │     │(mark/rewind)│     │   (tree)    │
//	└─────────────┘     └─────────────┘     └─────────────┘     └─────────────┘
//	                                               │                   │
//	                                               ▼                   ▼
//	                                        ┌─────────────┐     ┌─────────────┐
//	                                        │  Comments   │     │ Memo table  │
//	                                        │ (doc attach)│     │ (rule, pos) │
//	                                        └─────────────┘     └─────────────┘
//
// The lexer is total: any input yields tokens ending in EOF, with
// TokenError for input that matches no rule. '<' and '>' are always single
// tokens; the parser composes shift and comparison operators from adjacent
// tokens, so List<List<String>> needs no token splitting.
//
// # Decisions
//
// Most choices are made by looking at the next few tokens. Where Java's
// grammar is ambiguous the parser marks the stream, parses an alternative
// speculatively, rewinds and only then parses for real. Alternatives are
// tried most specific first:
//
//   - a lambda before a cast before a parenthesised expression
//   - a local variable declaration before an expression statement
//
// so "a < b, c > d;" declares d of type a<b, c>, while f(a < b, c > d)
// passes two comparisons. Speculative rules go through a memo table keyed
// by rule and position, which keeps backtracking linear.
//
// # Errors
//
// Rules return nil on failure. The parser remembers the furthest position
// any rule failed at, and what it expected there; that is what gets
// reported. Type declarations, members and block statements are
// resynchronisation points: a failure there is reported as a Diagnostic,
// the input up to the next ';' or balanced '}' is skipped, and a KindError
// node takes the place of the broken construct.
//
// Parsing a unit is abandoned when nesting exceeds the depth limit, when
// the input exceeds the size limit, or when the context is cancelled. The
// Result then carries the error in Err.
//
// # Example Usage
//
//	src := parser.NewSourceString("Main.java", "public class Main {}")
//	res := parser.Parse(ctx, src)
//	for _, d := range res.Diagnostics {
//	    fmt.Println(d)
//	}
//	fmt.Print(res.Unit)
//
// A Parser is used for one unit only and is not safe for concurrent use.
// Separate units can be parsed concurrently.
package parser
