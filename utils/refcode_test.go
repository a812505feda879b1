package utils

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var refCodePattern = regexp.MustCompile(`^RV-[A-Z0-9]{8}$`)

func TestReferenceCodeFormat(t *testing.T) {
	for i := 0; i < 50; i++ {
		code := ReferenceCode(uuid.NewString())
		assert.Regexp(t, refCodePattern, code)
	}
}

func TestReferenceCodeDeterministic(t *testing.T) {
	id := "e58ed763-928c-4155-bee9-fdbaaadc15f3"
	assert.Equal(t, ReferenceCode(id), ReferenceCode(id))
	assert.Equal(t, "RV-E58ED763", ReferenceCode(id))
}

func TestReferenceCodePadsShortIDs(t *testing.T) {
	assert.Equal(t, "RV-AB000000", ReferenceCode("ab"))
	assert.Regexp(t, refCodePattern, ReferenceCode(""))
}

func TestReferenceCodeStripsNonAlphanumerics(t *testing.T) {
	assert.Equal(t, "RV-ABCDEF12", ReferenceCode("a-b_c.d!e(f)12345"))
}
