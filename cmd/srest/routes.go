package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Suhaibinator/SRest/internal/config"
	"github.com/Suhaibinator/SRest/pkg/router"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func routesCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the routes of the demo application",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			a, err := newApp(cfg, zap.NewNop())
			if err != nil {
				return err
			}
			defer func() { _ = a.pool.Shutdown(context.Background()) }()

			printRoutes(cmd.OutOrStdout(), a.server.Router().AllRoutes())
			return nil
		},
	}
}

// printRoutes writes one colored line per route.
func printRoutes(out io.Writer, routes []router.RouteInfo) {
	for _, route := range routes {
		fmt.Fprintf(out, "%s %s\n", verbStyle(route.Verb).Render(route.Verb.String()), route.Path)
	}
}

func verbStyle(verb router.Verb) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Width(8)
	switch verb {
	case router.VerbGet, router.VerbHead:
		return style.Foreground(lipgloss.Color("46"))
	case router.VerbPost:
		return style.Foreground(lipgloss.Color("226"))
	case router.VerbPut, router.VerbPatch:
		return style.Foreground(lipgloss.Color("39"))
	case router.VerbDelete:
		return style.Foreground(lipgloss.Color("196"))
	default:
		return style.Foreground(lipgloss.Color("250"))
	}
}
