package line

import (
	"fmt"
	"strings"

	"github.com/hallowmantle/i8080asm/expr"
	"github.com/hallowmantle/i8080asm/internal/strutil"
)

// Argument is one comma-separated operand. It carries only its raw text;
// the caller decides which shape to parse it as, since the same text often
// means different things in different argument positions (e.g. "B" is a
// Register in "mov a,b" but a RegPair in "push b").
type Argument struct {
	Raw string
}

// AsRegister recognizes a bare register name.
func (a *Argument) AsRegister() (Register, bool) {
	return ParseRegister(a.Raw)
}

// AsRegPair recognizes a bare register-pair name.
func (a *Argument) AsRegPair() (RegPair, bool) {
	return ParseRegPair(a.Raw)
}

// AsString recognizes a double- or single-quoted string literal and returns
// its unescaped bytes. ok is false (with a nil error) when Raw isn't
// quoted at all, so callers can fall through to AsExpression without
// mistaking "not a string" for a malformed one.
func (a *Argument) AsString() (s []byte, ok bool, err error) {
	t := strings.TrimSpace(a.Raw)
	if len(t) < 2 {
		return nil, false, nil
	}
	q := t[0]
	if (q != '"' && q != '\'') || t[len(t)-1] != q {
		return nil, false, nil
	}
	body := t[1 : len(t)-1]
	decoded, err := strutil.Unescape(body)
	if err != nil {
		return nil, true, fmt.Errorf("malformed string literal %q: %w", a.Raw, err)
	}
	return decoded, true, nil
}

// AsExpression parses Raw as an arithmetic expression anchored at scope.
func (a *Argument) AsExpression(scope string, opts expr.Options) (*expr.Expr, error) {
	return expr.Parse(strings.TrimSpace(a.Raw), scope, opts)
}

// StringOrExpression implements the db/dw operand union: a quoted string is
// taken literally, byte for byte; anything else is parsed as an expression.
// A quoted argument that fails to decode as a string also falls through to
// expression parsing, and the string error is not reported.
func (a *Argument) StringOrExpression(scope string, opts expr.Options) (str []byte, e *expr.Expr, err error) {
	if s, ok, serr := a.AsString(); ok && serr == nil {
		return s, nil, nil
	}
	ex, err := a.AsExpression(scope, opts)
	if err != nil {
		return nil, nil, err
	}
	return nil, ex, nil
}
