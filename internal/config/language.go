package config

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// languageName returns the English name for a BCP 47 code, or the code itself.
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Languages(language.English).Name(tag); name != "" {
		return name
	}
	return code
}

// languageFlag returns the flag of the region most likely to speak code.
func languageFlag(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return ""
	}
	region, confidence := tag.Region()
	if confidence == language.No {
		return ""
	}

	iso := region.String()
	if len(iso) != 2 || iso == "ZZ" {
		return ""
	}
	var b strings.Builder
	for _, r := range iso {
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}

// deriveLanguageLabels fills unset digest labels from the translation languages.
func (c *Config) deriveLanguageLabels() {
	d := &c.Digest
	if d.SourceName == "" {
		d.SourceName = languageName(c.Translation.Source)
	}
	if d.SourceFlag == "" {
		d.SourceFlag = languageFlag(c.Translation.Source)
	}
	if d.TargetName == "" {
		d.TargetName = languageName(c.Translation.Target)
	}
	if d.TargetFlag == "" {
		d.TargetFlag = languageFlag(c.Translation.Target)
	}
}
