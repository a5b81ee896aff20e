package cleaning

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/raaihank/data-laundry/internal/intent"
	"github.com/raaihank/data-laundry/internal/normalize"
)

// Row is one record keyed by column header.
type Row map[string]any

// Context carries the call-wide state a transform may consult.
type Context struct {
	Column  string
	Options *Options
	Intents *intent.Bundle
	DateSep string
	Now     time.Time
	// Forced is set while a stage or tag runs because the user named this
	// column explicitly, bypassing the header predicate.
	Forced bool

	masker Masker
}

var (
	strictDateRe = regexp.MustCompile(`^\d{4}[-./]\d{1,2}[-./]\d{1,2}$`)
	eightDigitRe = regexp.MustCompile(`^\d{8}$`)
	digitsOnlyRe = regexp.MustCompile(`^\d+$`)
)

// resolve runs the full rule chain for one cell. The original value and its
// type come back untouched when nothing changed.
func (p *Plan) resolve(column string, raw any) any {
	if p.locked[column] {
		return raw
	}

	orig := Stringify(raw)
	ctx := p.context(column)
	v := orig

	for _, bs := range p.stagesFor(column) {
		ctx.Forced = bs.forced
		v = bs.apply(v, &ctx)
	}
	ctx.Forced = false

	v = applyDirectives(v, &ctx)
	// wildcard patterns only see values no literal mapping claimed
	if to, ok := p.bundle.Lookup(column, v); ok {
		v = to
	} else if to, ok := p.bundle.MatchPattern(column, v); ok {
		v = to
	}
	v = p.overrideDateSeparator(column, v)

	if f, ok := p.formats[column]; ok {
		if fn := formatFuncs[f.Kind]; fn != nil {
			ctx.Forced = true
			v = fn(v, f, &ctx)
		}
	}

	if v == orig {
		return raw
	}
	return v
}

func (p *Plan) context(column string) Context {
	return Context{
		Column:  column,
		Options: &p.options,
		Intents: p.bundle,
		DateSep: p.dateSep,
		Now:     p.now,
		masker:  p.masker,
	}
}

// applyDirectives applies the prompt's removals, replacements, conditions,
// null fills, paddings and affixes, in that order.
func applyDirectives(v string, ctx *Context) string {
	b, col := ctx.Intents, ctx.Column

	for _, r := range b.Removals {
		if inScope(r.Scope, col) && strings.Contains(v, r.Literal) {
			v = strings.TrimSpace(strings.ReplaceAll(v, r.Literal, ""))
		}
	}
	for _, r := range b.Replacements {
		if inScope(r.Scope, col) {
			v = strings.ReplaceAll(v, r.From, r.To)
		}
	}
	for _, c := range b.Conditions {
		if strings.EqualFold(c.Column, col) && c.Matches(v) {
			v = c.Value
		}
	}
	for _, n := range b.NullFills {
		if strings.EqualFold(n.Column, col) && strings.TrimSpace(v) == "" {
			v = n.Value
		}
	}
	for _, pad := range b.Paddings {
		if inScope(pad.Scope, col) && digitsOnlyRe.MatchString(v) {
			v = padLeft(v, pad.Width, pad.Fill)
		}
	}
	for _, a := range b.Affixes {
		if !inScope(a.Scope, col) || v == "" {
			continue
		}
		if a.Prefix != "" && !strings.HasPrefix(v, a.Prefix) {
			v = a.Prefix + v
		}
		if a.Suffix != "" && !strings.HasSuffix(v, a.Suffix) {
			v += a.Suffix
		}
	}
	return v
}

func inScope(s intent.Scope, column string) bool {
	return !s.Explicit() || s.Covers(column)
}

// overrideDateSeparator rewrites date-looking values when the prompt asked for
// a specific separator. Bare eight-digit values only count in date columns.
func (p *Plan) overrideDateSeparator(column, v string) string {
	sep, ok := p.bundle.DateSeparator()
	if !ok {
		return v
	}
	val := strings.TrimSpace(v)
	if !strictDateRe.MatchString(val) && !(eightDigitRe.MatchString(val) && dateColumn.matches(column)) {
		return v
	}
	if d, ok := normalize.NormalizeDate(val, sep); ok {
		return d
	}
	return v
}

// Stringify renders a cell the way the rule chain sees it.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
