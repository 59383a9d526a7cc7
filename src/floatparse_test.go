package svftap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_floatParser_integer(t *testing.T) {
	fp := newFloatParser()
	for _, c := range []byte("123") {
		fp.feed(c)
	}
	assert.True(t, fp.done())
	assert.Equal(t, 123.0, fp.value())
}

func Test_floatParser_fraction_preserves_leading_zero(t *testing.T) {
	// "1.05" must not be conflated with "1.5": the reference C parser's
	// S_float doesn't track the fractional digit count and would collapse
	// them; this parser does track it (fracDigits), per design.
	fp := newFloatParser()
	for _, c := range []byte("1.05") {
		fp.feed(c)
	}
	assert.InDelta(t, 1.05, fp.value(), 1e-9)
}

func Test_floatParser_exponent(t *testing.T) {
	fp := newFloatParser()
	for _, c := range []byte("2.5E-3") {
		fp.feed(c)
	}
	assert.True(t, fp.done())
	assert.InDelta(t, 0.0025, fp.value(), 1e-12)
}

func Test_floatParser_rejects_leading_sign(t *testing.T) {
	fp := newFloatParser()
	assert.Equal(t, floatError, fp.feed('-'))
}

func Test_floatParser_rejects_empty_mantissa_before_dot(t *testing.T) {
	fp := newFloatParser()
	assert.Equal(t, floatError, fp.feed('.'))
}

func Test_floatParser_rejects_repeated_decimal_point(t *testing.T) {
	fp := newFloatParser()
	fp.feed('1')
	fp.feed('.')
	fp.feed('2')
	assert.Equal(t, floatError, fp.feed('.'))
}
