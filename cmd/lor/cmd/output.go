package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/corey/lor/internal/adapters/socket"
	"github.com/corey/lor/internal/domain/status"
	"github.com/corey/lor/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorCyan    = "\033[36m"
	colorMagenta = "\033[35m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorGray    = "\033[90m"
)

// formatLookup renders a lookup for the terminal.
//
//	⚡ Bloodbath (Combat Page) │ en │ 41µs
//	  Combat Page  Urban Legend  c-bb
//	  Cost 1 │ Melee │ Rare
//	  Slash 3-7  On Hit: inflict 2 Bleed
func formatLookup(res *socket.LookupResult) string {
	if !res.Found || res.Result == nil {
		return fmt.Sprintf("%s⚡ no results%s │ %s\n", colorBold, colorReset, res.Elapsed)
	}
	r := res.Result

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %s%s │ %s │ %s\n", colorBold, r.Display(), colorReset, r.Locale, res.Elapsed))

	if res.Disambiguation != nil {
		sb.WriteString(formatSet(res.Disambiguation))
		return sb.String()
	}
	e, err := res.DecodeEntity()
	if err != nil || e == nil {
		sb.WriteString(fmt.Sprintf("  %s%s %s%s\n", colorGray, kindLabel(r.Kind), r.EntityID, colorReset))
		return sb.String()
	}
	sb.WriteString(formatEntity(e))
	return sb.String()
}

// formatEntity renders the kind-specific fields of e.
func formatEntity(e ports.Entity) string {
	var sb strings.Builder
	h := e.Header()
	sb.WriteString(fmt.Sprintf("  %s%s%s  %s%s%s  %s%s%s\n",
		colorCyan, kindLabel(e.Kind()), colorReset,
		colorMagenta, h.ReleaseGroup, colorReset,
		colorGray, h.ID, colorReset))

	switch v := e.(type) {
	case *ports.AbnoPage:
		sb.WriteString(fmt.Sprintf("  Floor of %s │ Emotion %d", v.Floor, v.EmotionLevel))
		if v.TargetType != "" {
			sb.WriteString(" │ " + v.TargetType)
		}
		sb.WriteString("\n")
		writeText(&sb, v.Description)
	case *ports.CombatPage:
		sb.WriteString(fmt.Sprintf("  Cost %d", v.Cost))
		for _, s := range []string{v.Range, v.Rarity} {
			if s != "" {
				sb.WriteString(" │ " + s)
			}
		}
		sb.WriteString("\n")
		writeText(&sb, v.Description)
		for _, d := range v.Dice {
			sb.WriteString(fmt.Sprintf("  %s%s%s %d-%d", colorGreen, d.Type, colorReset, d.Min, d.Max))
			if d.Effect != "" {
				sb.WriteString("  " + d.Effect)
			}
			sb.WriteString("\n")
		}
	case *ports.KeyPage:
		sb.WriteString(fmt.Sprintf("  HP %d │ Stagger %d │ Speed %d-%d │ Light %d",
			v.HP, v.Stagger, v.SpeedMin, v.SpeedMax, v.Light))
		if v.Rarity != "" {
			sb.WriteString(" │ " + v.Rarity)
		}
		sb.WriteString("\n")
		for _, p := range v.Passives {
			sb.WriteString(fmt.Sprintf("  %s·%s %s\n", colorGreen, colorReset, p))
		}
	case *ports.Passive:
		sb.WriteString(fmt.Sprintf("  Cost %d", v.Cost))
		if v.Rarity != "" {
			sb.WriteString(" │ " + v.Rarity)
		}
		sb.WriteString("\n")
		writeText(&sb, v.Description)
	}
	return sb.String()
}

func writeText(sb *strings.Builder, text string) {
	if text == "" {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		sb.WriteString(fmt.Sprintf("  %s%s%s\n", colorGray, line, colorReset))
	}
}

// formatSet lists the disambiguated keys of a set, one per line.
func formatSet(set *ports.AmbiguousResultSet) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %d pages share this name %s(%s)%s\n", len(set.Resolved), colorGray, set.ID, colorReset))
	for _, r := range set.Resolved {
		sb.WriteString(fmt.Sprintf("  %s%s%s  %s%s%s\n",
			colorCyan, r.Display(), colorReset,
			colorMagenta, r.ReleaseGroup, colorReset))
	}
	return sb.String()
}

// formatDisambiguation renders a disambiguation request.
func formatDisambiguation(res *socket.DisambiguationResult) string {
	if !res.Found || res.Set == nil {
		return fmt.Sprintf("%s⚡ no such disambiguation%s\n", colorBold, colorReset)
	}
	return fmt.Sprintf("%s⚡ %s%s │ %s\n", colorBold, res.Set.Query, colorReset, res.Set.Locale) + formatSet(res.Set)
}

// formatAutocomplete renders suggestions, best first.
func formatAutocomplete(prefix string, entries []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ %d suggestions%s for %q\n", colorBold, len(entries), colorReset, prefix))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("  %s%s%s\n", colorCyan, e, colorReset))
	}
	return sb.String()
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	status := colorGreen + h.Status + colorReset
	if h.Status != "ok" {
		status = colorYellow + h.Status + colorReset
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ lor daemon%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:          %s\n", status))
	sb.WriteString(fmt.Sprintf("  Keys:            %d\n", h.Keys))
	sb.WriteString(fmt.Sprintf("  Entities:        %d\n", h.Entities))
	sb.WriteString(fmt.Sprintf("  Disambiguations: %d\n", h.Disambiguations))
	if h.BuiltAt != "" {
		sb.WriteString(fmt.Sprintf("  Built:           %s\n", h.BuiltAt))
	}
	sb.WriteString(fmt.Sprintf("  Uptime:          %s\n", h.Uptime))
	return sb.String()
}

// formatReindex summarizes a build.
func formatReindex(r *socket.ReindexResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s⚡ indexed %d entities%s │ %d keys │ %s\n",
		colorBold, r.Entities, colorReset, r.Keys, r.Elapsed))
	sb.WriteString(fmt.Sprintf("  %d ambiguous names", r.AmbiguousSets))
	if r.Fallbacks > 0 {
		sb.WriteString(fmt.Sprintf(" │ %s%d resolved by id%s", colorYellow, r.Fallbacks, colorReset))
	}
	if r.Skipped > 0 {
		sb.WriteString(fmt.Sprintf(" │ %s%d skipped%s", colorYellow, r.Skipped, colorReset))
	}
	sb.WriteString("\n")
	return sb.String()
}

var kindLabels = map[ports.Kind]string{
	ports.KindAbnoPage:       "Abnormality Page",
	ports.KindCombatPage:     "Combat Page",
	ports.KindKeyPage:        "Key Page",
	ports.KindPassive:        "Passive",
	ports.KindDisambiguation: "Disambiguation",
}

func kindLabel(k ports.Kind) string {
	if s, ok := kindLabels[k]; ok {
		return s
	}
	return k.String()
}

// formatStatus renders the last rebuild recorded by a daemon.
func formatStatus(sd *status.StatusData) string {
	var sb strings.Builder
	if sd.BuiltAt.IsZero() {
		sb.WriteString("  Last build:      none\n")
	} else {
		sb.WriteString(fmt.Sprintf("  Last build:      %s │ %d keys │ %d entities\n",
			sd.BuiltAt.Format(time.RFC3339), sd.Keys, sd.Entities))
	}
	if sd.LastError != "" {
		sb.WriteString(fmt.Sprintf("  Last error:      %s%s%s\n", colorYellow, sd.LastError, colorReset))
	}
	return sb.String()
}
