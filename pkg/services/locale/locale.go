// Package locale resolves the caller's locale into the date-format pattern
// used in artifact names and the translation table for installation-state
// labels. Resolution happens once at startup; the resulting value is passed
// down explicitly instead of read from ambient state.
package locale

import (
	"os"
	"strings"
	"time"

	"github.com/de-tools/patch-atlas/pkg/models/wsus"
)

// Locale carries everything locale-dependent in the output.
type Locale struct {
	Tag         string
	fileStamp   string
	stateLabels map[wsus.InstallationState]string
}

var english = Locale{
	Tag:       "en",
	fileStamp: "01-02-2006_150405",
	stateLabels: map[wsus.InstallationState]string{
		wsus.StateUnknown:                "Unknown",
		wsus.StateNotApplicable:          "Not Applicable",
		wsus.StateNotInstalled:           "Not Installed",
		wsus.StateDownloaded:             "Downloaded",
		wsus.StateInstalled:              "Installed",
		wsus.StateFailed:                 "Failed",
		wsus.StateInstalledPendingReboot: "Installed Pending Reboot",
	},
}

var japanese = Locale{
	Tag:       "ja",
	fileStamp: "2006-01-02_150405",
	stateLabels: map[wsus.InstallationState]string{
		wsus.StateUnknown:                "不明",
		wsus.StateNotApplicable:          "適用対象外",
		wsus.StateNotInstalled:           "未インストール",
		wsus.StateDownloaded:             "ダウンロード済み",
		wsus.StateInstalled:              "インストール済み",
		wsus.StateFailed:                 "失敗",
		wsus.StateInstalledPendingReboot: "再起動の保留中",
	},
}

// Resolve maps a locale tag to its table. Only English and Japanese carry
// translations; any other tag falls back to English rather than failing the
// run, so an unconfigured machine still produces a usable report.
func Resolve(tag string) Locale {
	switch lang(tag) {
	case "ja":
		return japanese
	default:
		return english
	}
}

// FromEnv resolves the locale from the LANG/LC_ALL environment, the usual
// source when no explicit tag is supplied.
func FromEnv() Locale {
	for _, key := range []string{"LC_ALL", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return Resolve(v)
		}
	}
	return english
}

func lang(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, sep := range []string{"-", "_", "."} {
		if i := strings.Index(tag, sep); i > 0 {
			tag = tag[:i]
		}
	}
	return tag
}

// StateLabel localizes an installation-state code.
func (l Locale) StateLabel(s wsus.InstallationState) string {
	if label, ok := l.stateLabels[s]; ok {
		return label
	}
	return l.stateLabels[wsus.StateUnknown]
}

// FileStamp formats a run timestamp for use inside artifact file names.
func (l Locale) FileStamp(t time.Time) string {
	return t.Format(l.fileStamp)
}
