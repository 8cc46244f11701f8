package deptadmin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	en := NewPrinter("en")
	fr := NewPrinter("fr")

	assert.Equal(t, MsgCodeRequired, Translate(en, MsgCodeRequired))
	assert.Equal(t, "Le code du département est obligatoire.", Translate(fr, MsgCodeRequired))
	assert.Equal(t, "untranslated", Translate(fr, "untranslated"))
	assert.Equal(t, MsgListFailed, Translate(nil, MsgListFailed))
}

func TestTranslateKeepsPercent(t *testing.T) {
	for _, locale := range []string{"en", "fr"} {
		p := NewPrinter(locale)
		assert.Equal(t, "quota 100% used", Translate(p, "quota 100% used"), locale)
		assert.Equal(t, "%s %d %%", Translate(p, "%s %d %%"), locale)
	}
}

func TestNewPrinterBadLocale(t *testing.T) {
	p := NewPrinter("not a locale!")
	assert.Equal(t, MsgDeleteFailed, Translate(p, MsgDeleteFailed))
}
