package pages

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.English)

func titleCase(s string) string {
	return titler.String(s)
}
