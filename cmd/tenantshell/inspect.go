package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jask/tenantshell/internal/onboarding"
	"github.com/jask/tenantshell/internal/shell"
)

type ResetOnboardingCmd struct{}

func (r *ResetOnboardingCmd) Run(g *Globals) error {
	logger, closeLog, err := newLogger(g.Config, false)
	if err != nil {
		return err
	}
	defer closeLog()
	s, err := shell.Build(g.Ctx, g.Config, logger, nil)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := onboarding.NewTracker(s.Prefs).Reset(g.Ctx); err != nil {
		return err
	}
	fmt.Println("onboarding will be shown on next start")
	return nil
}

type PluginsCmd struct{}

func (p *PluginsCmd) Run(g *Globals) error {
	logger, closeLog, err := newLogger(g.Config, false)
	if err != nil {
		return err
	}
	defer closeLog()
	s, err := shell.Build(g.Ctx, g.Config, logger, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVERSION\tTYPE\tENABLED\tROUTES")
	for _, m := range s.Catalog.Manifests() {
		names := make([]string, 0, len(m.Routes))
		for _, r := range m.Routes {
			names = append(names, r.Name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", m.ID, m.Version, m.Type, s.Catalog.IsEnabled(m.ID), strings.Join(names, ","))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, invalid := range s.Catalog.Invalid() {
		fmt.Printf("rejected %s\n", invalid.Error())
	}
	return nil
}

type RoutesCmd struct{}

func (r *RoutesCmd) Run(g *Globals) error {
	logger, closeLog, err := newLogger(g.Config, false)
	if err != nil {
		return err
	}
	defer closeLog()
	s, err := shell.Build(g.Ctx, g.Config, logger, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	table, skipped := s.RouteTable()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSOURCE\tPLUGIN\tKEY")
	for _, screen := range table.Screens() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", screen.Name, screen.Source, screen.PluginID, screen.Key)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, o := range table.Overrides() {
		fmt.Printf("override %s: %s over %s\n", o.Name, o.Winner, o.Loser)
	}
	for _, sk := range skipped {
		fmt.Printf("skipped %s/%s: %s\n", sk.PluginID, sk.Route, sk.Reason)
	}
	return nil
}
