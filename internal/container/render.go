package container

import (
	"fmt"
	"io"
	"text/tabwriter"

	"product/catalog/internal/state"
)

// Render writes the view as grouped text tables
func Render(w io.Writer, view state.View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Products by Category")
	if view.SearchText != "" {
		fmt.Fprintf(tw, "Search: %q\n", view.SearchText)
	}

	if len(view.Categories) == 0 {
		fmt.Fprintln(tw, "No products available")
		return tw.Flush()
	}

	for _, category := range view.Categories {
		fmt.Fprintf(tw, "\n%s (%d)\n", category.Name, len(category.Products))
		for _, p := range category.Products {
			heart := "♡"
			if p.IsFavorite {
				heart = "♥"
			}
			fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\t$%.2f\n", heart, p.ID, p.Title, p.Brand, p.Price)
		}
	}

	for _, f := range view.Failures {
		fmt.Fprintf(tw, "\nUnavailable: %s (%v)\n", f.Name, f.Err)
	}

	return tw.Flush()
}
