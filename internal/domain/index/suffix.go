package index

import "github.com/corey/lor/internal/ports"

type suffixes struct {
	kinds       map[ports.Kind]string
	collectable string
}

var suffixTable = map[ports.Locale]suffixes{
	ports.LocaleEN: {
		kinds: map[ports.Kind]string{
			ports.KindAbnoPage:   "abnormality page",
			ports.KindCombatPage: "combat page",
			ports.KindKeyPage:    "key page",
			ports.KindPassive:    "passive",
		},
		collectable: "collectable",
	},
	ports.LocaleKR: {
		kinds: map[ports.Kind]string{
			ports.KindAbnoPage:   "환상체 책장",
			ports.KindCombatPage: "전투 책장",
			ports.KindKeyPage:    "핵심 책장",
			ports.KindPassive:    "패시브",
		},
		collectable: "수집 가능",
	},
	ports.LocaleJP: {
		kinds: map[ports.Kind]string{
			ports.KindAbnoPage:   "幻想体ページ",
			ports.KindCombatPage: "バトルページ",
			ports.KindKeyPage:    "コアページ",
			ports.KindPassive:    "パッシブ",
		},
		collectable: "収集可能",
	},
	ports.LocaleCN: {
		kinds: map[ports.Kind]string{
			ports.KindAbnoPage:   "异想体书页",
			ports.KindCombatPage: "战斗书页",
			ports.KindKeyPage:    "核心书页",
			ports.KindPassive:    "被动",
		},
		collectable: "可收集",
	},
	ports.LocaleTRCN: {
		kinds: map[ports.Kind]string{
			ports.KindAbnoPage:   "異想體書頁",
			ports.KindCombatPage: "戰鬥書頁",
			ports.KindKeyPage:    "核心書頁",
			ports.KindPassive:    "被動",
		},
		collectable: "可收集",
	},
}

// KindSuffix returns the localized disambiguator for kind, falling back to English.
func KindSuffix(kind ports.Kind, locale ports.Locale) string {
	if s, ok := suffixTable[locale].kinds[kind]; ok {
		return s
	}
	return suffixTable[ports.LocaleEN].kinds[kind]
}

// CollectableSuffix returns the localized "collectable" disambiguator.
func CollectableSuffix(locale ports.Locale) string {
	if s, ok := suffixTable[locale]; ok {
		return s.collectable
	}
	return suffixTable[ports.LocaleEN].collectable
}
