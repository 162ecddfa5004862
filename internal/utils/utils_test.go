package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "TSh 0", FormatMoney(0))
	assert.Equal(t, "TSh 999", FormatMoney(999))
	assert.Equal(t, "TSh 5,000", FormatMoney(5000))
	assert.Equal(t, "TSh 125,000", FormatMoney(125000))
	assert.Equal(t, "TSh 1,234,567", FormatMoney(1234567))
	assert.Equal(t, "-12,000", GroupThousands(-12000))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "0700000000", NormalizePhone(" 0700 000 000 "))
	assert.Equal(t, "+255700000000", NormalizePhone("whatsapp:+255 700-000-000"))
	assert.True(t, ValidPhone("0700000000"))
	assert.False(t, ValidPhone("12345"))
	assert.False(t, ValidPhone("call me"))
}

func TestGenerateOrderRef(t *testing.T) {
	a, b := GenerateOrderRef(), GenerateOrderRef()
	assert.True(t, strings.HasPrefix(a, "ORD-"))
	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
	assert.Equal(t, strings.ToUpper(a), a)
}
