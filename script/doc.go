/*
Package script implements the small language music scripts are written in:
the tokenizer, scoped variables, expressions and actions.

Expressions are compiled once, at load time, against a Table. Names are
resolved while parsing into stable handles (Ref), so evaluation never looks
anything up and never fails. Every literal gets its own slot in the table's
constant pool.

	Expr   := RValue | Operator '(' RValue ',' RValue ')'
	Action := '{' [ Name '=' Expr [','] ]... '}'

All parse failures are *SyntaxError values wrapping ErrSyntax.
*/
package script
