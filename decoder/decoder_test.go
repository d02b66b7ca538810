package decoder_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/nrivard/pvl/decoder"
	"github.com/nrivard/pvl/grammar"
	"github.com/nrivard/pvl/label"
	"github.com/nrivard/pvl/token"
)

func TestDecodeUnquotedInteger(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("42", token.Position{})
	assert.NoError(t, err)
	assert.Equal[label.Value](t, label.Integer{Value: 42, Raw: "42"}, v)
}

func TestDecodeUnquotedNegativeInteger(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("-7", token.Position{})
	assert.NoError(t, err)
	assert.Equal[label.Value](t, label.Integer{Value: -7, Raw: "-7"}, v)
}

func TestDecodeUnquotedBasedIntegerSignBeforeRadix(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("-16#FF#", token.Position{})
	assert.NoError(t, err)
	bi, ok := v.(label.BasedInteger)
	assert.True(t, ok)
	assert.Equal(t, 16, bi.Radix)
	assert.Equal(t, "FF", bi.Digits)
	assert.Equal(t, int64(-255), bi.Value)
}

func TestDecodeUnquotedBasedIntegerSignAfterRadix(t *testing.T) {
	d := decoder.New(grammar.ODLGrammar())
	v, err := d.DecodeUnquoted("2#-101#", token.Position{})
	assert.NoError(t, err)
	bi, ok := v.(label.BasedInteger)
	assert.True(t, ok)
	assert.Equal(t, 2, bi.Radix)
	assert.Equal(t, int64(-5), bi.Value)
}

func TestDecodeUnquotedReal(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("3.14", token.Position{})
	assert.NoError(t, err)
	r, ok := v.(label.Real)
	assert.True(t, ok)
	assert.Equal(t, "3.14", r.Raw)
}

func TestDecodeUnquotedBooleanAndNull(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("TRUE", token.Position{})
	assert.NoError(t, err)
	assert.Equal[label.Value](t, label.Boolean{Value: true}, v)

	v, err = d.DecodeUnquoted("false", token.Position{})
	assert.NoError(t, err)
	assert.Equal[label.Value](t, label.Boolean{Value: false}, v)

	v, err = d.DecodeUnquoted("NULL", token.Position{})
	assert.NoError(t, err)
	assert.Equal[label.Value](t, label.Null{}, v)
}

func TestDecodeUnquotedFallsBackToSymbol(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("MARS", token.Position{})
	assert.NoError(t, err)
	assert.Equal[label.Value](t, label.Symbol{Value: "MARS"}, v)
}

func TestDecodeUnquotedEmptyTokenIsError(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	_, err := d.DecodeUnquoted("", token.Position{})
	assert.Error(t, err)
}

func TestDecodeUnquotedDate(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("1997-07-14", token.Position{})
	assert.NoError(t, err)
	date, ok := v.(label.Date)
	assert.True(t, ok)
	assert.Equal(t, 1997, date.Year)
	assert.Equal(t, 7, date.Month)
	assert.Equal(t, 14, date.Day)
}

func TestDecodeUnquotedDayOfYearDate(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("1997-195", token.Position{})
	assert.NoError(t, err)
	date, ok := v.(label.Date)
	assert.True(t, ok)
	assert.Equal(t, 195, date.DayOfYear)
	assert.Equal(t, 7, date.Month)
	assert.Equal(t, 14, date.Day)
}

func TestDecodeUnquotedDateTimeWithZ(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("1997-07-14T10:30:00Z", token.Position{})
	assert.NoError(t, err)
	dt, ok := v.(label.DateTime)
	assert.True(t, ok)
	assert.True(t, dt.Time.HasZone)
	assert.Equal(t, 10, dt.Time.Hour)
}

func TestDecodeUnquotedTimeWithOffset(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("10:30:00-05:00", token.Position{})
	assert.NoError(t, err)
	tm, ok := v.(label.Time)
	assert.True(t, ok)
	assert.Equal(t, -5*3600, tm.ZoneOffsetSeconds)
}

func TestDecodeUnquotedLeapSecondAllowedByPVL(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("23:59:60", token.Position{})
	assert.NoError(t, err)
	tm, ok := v.(label.Time)
	assert.True(t, ok)
	assert.True(t, tm.LeapSecond)
}

func TestDecodeUnquotedLeapSecondRejectedByODL(t *testing.T) {
	d := decoder.New(grammar.ODLGrammar())
	_, err := d.DecodeUnquoted("23:59:60", token.Position{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "leap second")
}

func TestDecodeUnquotedFractionalSeconds(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v, err := d.DecodeUnquoted("10:30:00.5", token.Position{})
	assert.NoError(t, err)
	tm, ok := v.(label.Time)
	assert.True(t, ok)
	assert.Equal(t, 500000000, tm.Nanosecond)
}

func TestDecodeUnquotedIntegerOverflowIsErrorUnderPDS3(t *testing.T) {
	d := decoder.New(grammar.PDS3Grammar())
	_, err := d.DecodeUnquoted("99999999999999999999", token.Position{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "overflows")
}

func TestDecodeUnquotedIntegerOverflowFallsBackToRealUnderOmni(t *testing.T) {
	d := decoder.New(grammar.OmniGrammar())
	v, err := d.DecodeUnquoted("99999999999999999999", token.Position{})
	assert.NoError(t, err)
	r, ok := v.(label.Real)
	assert.True(t, ok)
	assert.Equal(t, "99999999999999999999", r.Raw)
}

func TestDecodeUnquotedNaiveDateTimeGetsDefaultTimezoneUnderPDS3(t *testing.T) {
	d := decoder.New(grammar.PDS3Grammar())
	v, err := d.DecodeUnquoted("2020-01-01T12:00:00", token.Position{})
	assert.NoError(t, err)
	dt, ok := v.(label.DateTime)
	assert.True(t, ok)
	assert.True(t, dt.Date.HasZone)
	assert.True(t, dt.Time.HasZone)
}

func TestDecodeUnquotedNaiveTimeGetsDefaultTimezoneUnderPDS3(t *testing.T) {
	d := decoder.New(grammar.PDS3Grammar())
	v, err := d.DecodeUnquoted("12:00:00", token.Position{})
	assert.NoError(t, err)
	tm, ok := v.(label.Time)
	assert.True(t, ok)
	assert.True(t, tm.HasZone)
}

func TestDecodeUnquotedRejectsInvalidODLIdentifier(t *testing.T) {
	d := decoder.New(grammar.ODLGrammar())
	_, err := d.DecodeUnquoted("1BAD", token.Position{})
	assert.Error(t, err)
}

func TestDecodeUnquotedAcceptsValidODLIdentifier(t *testing.T) {
	d := decoder.New(grammar.ODLGrammar())
	v, err := d.DecodeUnquoted("MARS_2", token.Position{})
	assert.NoError(t, err)
	assert.Equal[label.Value](t, label.Symbol{Value: "MARS_2"}, v)
}

func TestDecodeQuotedUnescapesDoubledQuotes(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v := d.DecodeQuoted(`say ""hi""`, '"')
	s, ok := v.(label.String)
	assert.True(t, ok)
	assert.Equal(t, `say "hi"`, s.Value)
	assert.Equal(t, label.DoubleQuoted, s.Quote)
}

func TestDecodeQuotedUnescapesBackslashSequences(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v := d.DecodeQuoted(`line1\nline2`, '"')
	s, ok := v.(label.String)
	assert.True(t, ok)
	assert.Equal(t, "line1\nline2", s.Value)
}

func TestDecodeQuotedTracksSingleQuoteStyle(t *testing.T) {
	d := decoder.New(grammar.PVLGrammar())
	v := d.DecodeQuoted("value", '\'')
	s, ok := v.(label.String)
	assert.True(t, ok)
	assert.Equal(t, label.SingleQuoted, s.Quote)
}

func TestRealFactoryOverridesDefaultRealRepresentation(t *testing.T) {
	type external struct{ Text string }
	d := decoder.New(grammar.PVLGrammar())
	d.RealFactory = func(raw string) (any, error) {
		return external{Text: raw}, nil
	}
	v, err := d.DecodeUnquoted("2.5", token.Position{})
	assert.NoError(t, err)
	assert.Equal(t, label.KindReal, v.Kind())
	type externalHolder interface{ External() any }
	holder, ok := v.(externalHolder)
	assert.True(t, ok)
	ext, ok := holder.External().(external)
	assert.True(t, ok)
	assert.Equal(t, "2.5", ext.Text)
}
