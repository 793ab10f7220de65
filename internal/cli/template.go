package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/jwalitptl/admin-console/internal/pagebuilder"
)

// defaultTemplate is the layout previewed when no saved template exists.
var defaultTemplate = []pagebuilder.Component{
	{ID: "images", Section: pagebuilder.SectionImages, Span: 6},
	{ID: "details", Section: pagebuilder.SectionDetails, Span: 6},
	{ID: "how-to-use", Section: pagebuilder.SectionHowToUse},
	{ID: "reviews", Section: pagebuilder.SectionReviews},
}

// Template previews the custom product template with dummy content. Each
// --variant overrides one component.
func (a *App) Template(_ context.Context, args []string) error {
	fs := pflag.NewFlagSet("template", pflag.ContinueOnError)
	fs.SetOutput(a.out)
	overrides := fs.StringToString("variant", nil, "component=variant, repeatable")
	showVariants := fs.Bool("variants", false, "list the variants of every section")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.require("custom-template"); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	if *showVariants {
		fmt.Fprintln(tw, "SECTION\tVARIANTS")
		for _, s := range pagebuilder.Sections() {
			fmt.Fprintf(tw, "%s\t%s\n", s, strings.Join(pagebuilder.Variants(s), ", "))
		}
		return tw.Flush()
	}

	settings := make(pagebuilder.Settings, len(*overrides))
	for id, variant := range *overrides {
		settings[id] = pagebuilder.ComponentSettings{Variant: variant}
	}
	views, err := pagebuilder.Layout(defaultTemplate, settings, pagebuilder.Product{})
	if err != nil {
		return err
	}

	fmt.Fprintln(tw, "COMPONENT\tSECTION\tVARIANT\tSPAN")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\n", v.ComponentID, v.Section, v.Variant, v.Span, pagebuilder.MaxSpan)
	}
	return tw.Flush()
}
