// Package report renders reconstruction runs as markdown and HTML.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gocorda/domain/confidence"
	"gocorda/domain/run"
)

// Markdown renders a run as a markdown document
func Markdown(rec *run.Record) []byte {
	var b bytes.Buffer
	title := rec.ModelName
	if title == "" {
		title = rec.ModelID
	}
	fmt.Fprintf(&b, "# Reconstruction of %s\n\n", title)
	fmt.Fprintf(&b, "- run: `%s`\n", rec.ID)
	fmt.Fprintf(&b, "- status: %s\n", rec.Status)
	fmt.Fprintf(&b, "- created: %s\n", rec.CreatedAt)
	fmt.Fprintf(&b, "- fingerprint: `%s`\n", rec.Fingerprint.Fingerprint.Short())
	fmt.Fprintf(&b, "- parameters: n=%d, penalty factor=%g, support=%d, tflux=%g\n",
		rec.Parameters.N, rec.Parameters.PenaltyFactor, rec.Parameters.Support, rec.Parameters.TFlux)
	if len(rec.Parameters.Targets) > 0 {
		fmt.Fprintf(&b, "- production targets: %s\n", strings.Join(rec.Parameters.Targets, ", "))
	}
	fmt.Fprintf(&b, "- LP solves: %d in %d ms\n\n", rec.Solves, rec.DurationMS)

	if rec.Error != "" {
		fmt.Fprintf(&b, "**Failed:** %s\n", rec.Error)
		return b.Bytes()
	}

	b.WriteString("## Summary\n\n```\n")
	b.WriteString(rec.Report)
	b.WriteString("```\n\n")

	b.WriteString("## Included reactions\n\n")
	b.WriteString("| reaction | initial confidence | redundancy |\n|---|---|---|\n")
	for _, rr := range rec.Reactions {
		if !rr.Included || rr.IsMockEntry {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %d |\n", escape(rr.ReactionID), confidence.Level(rr.Initial), rr.Redundancy)
	}

	var impossible []string
	for _, rr := range rec.Reactions {
		if rr.Impossible {
			impossible = append(impossible, escape(rr.ReactionID))
		}
	}
	if len(impossible) > 0 {
		b.WriteString("\n## Reactions unable to carry flux\n\n")
		for _, id := range impossible {
			fmt.Fprintf(&b, "- %s\n", id)
		}
	}
	return b.Bytes()
}

// HTML renders a run as a complete HTML page
func HTML(rec *run.Record) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(Markdown(rec))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: "CORDA reconstruction " + rec.ModelID,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}

func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "_", `\_`, "*", `\*`).Replace(s)
}
