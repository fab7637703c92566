package chart

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font/opentype"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
)

// LabelSet selects the language of chart titles, legends and axis labels.
type LabelSet int

const (
	Fallback LabelSet = iota
	Localized
)

func (s LabelSet) String() string {
	if s == Localized {
		return "localized"
	}
	return "fallback"
}

// ParseLabelSet maps a configuration value to the label set it asks for.
// "auto" asks for Localized and lets Setup fall back when no font loads.
func ParseLabelSet(v string) (LabelSet, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto", "localized":
		return Localized, nil
	case "fallback":
		return Fallback, nil
	}
	return Fallback, fmt.Errorf("unknown chart label set %q", v)
}

// Labels holds the strings drawn on a chart.
type Labels struct {
	BarTitle  string
	LineTitle string
	Buy       string
	Sell      string
	Net       string
	Day       string
	Amount    string
}

// Labels returns the strings for the set.
func (s LabelSet) Labels() Labels {
	if s == Localized {
		return Labels{
			BarTitle:  "每日买入与卖出金额",
			LineTitle: "累计净买入金额",
			Buy:       "买入",
			Sell:      "卖出",
			Net:       "累计净额",
			Day:       "日期",
			Amount:    "金额",
		}
	}
	return Labels{
		BarTitle:  "Daily Buy and Sell Amount",
		LineTitle: "Cumulative Net Buy Amount",
		Buy:       "Buy",
		Sell:      "Sell",
		Net:       "Cumulative net",
		Day:       "Date",
		Amount:    "Amount",
	}
}

const cjkTypeface = "cjk"

var (
	setupOnce sync.Once
	active    = Fallback
	setupErr  error
)

// Setup resolves the process-wide label set once. Localized needs fontPath
// to hold a TrueType or OpenType font with CJK glyphs; when it cannot be
// loaded the Fallback set is used and the load error is returned. Later
// calls return the first result.
func Setup(fontPath string, want LabelSet) (LabelSet, error) {
	setupOnce.Do(func() {
		active, setupErr = resolve(fontPath, want)
	})
	return active, setupErr
}

func resolve(fontPath string, want LabelSet) (LabelSet, error) {
	if want != Localized {
		return Fallback, nil
	}
	if fontPath == "" {
		return Fallback, fmt.Errorf("no CJK font configured")
	}
	raw, err := os.ReadFile(fontPath)
	if err != nil {
		return Fallback, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(raw)
	if err != nil {
		return Fallback, fmt.Errorf("parse font %s: %w", fontPath, err)
	}

	face := font.Font{Typeface: cjkTypeface}
	font.DefaultCache.Add(font.Collection{{Font: face, Face: f}})
	plot.DefaultFont = face
	plotter.DefaultFont = face
	return Localized, nil
}
