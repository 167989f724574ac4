package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fastygo/staff-portal/domain"
	"github.com/fastygo/staff-portal/internal/access"
	"github.com/fastygo/staff-portal/internal/router"
)

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the HTTP routes, role landing pages and page allow-list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printRoutes(cmd.OutOrStdout())
		},
	}
}

func printRoutes(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "METHOD\tPATH\tGATED")
	for _, r := range router.Routes {
		fmt.Fprintf(w, "%s\t%s\t%t\n", r.Method, r.Path, r.Gated)
	}

	fmt.Fprintln(w, "\nROLE\tLANDING")
	for _, role := range domain.Roles {
		fmt.Fprintf(w, "%s\t%s\n", role, access.LandingPath(role))
	}
	fmt.Fprintf(w, "*\t%s\n", access.LandingPath(""))

	fmt.Fprintln(w, "\nPAGE\tROLES\tLIMITED")
	for _, page := range access.NewPolicy(access.DefaultPages).Pages() {
		roles := make([]string, 0, len(page.Roles))
		for _, r := range page.Roles {
			roles = append(roles, r.String())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", page.Path(), strings.Join(roles, ","), strings.Join(page.Limited, ","))
	}
	return w.Flush()
}
