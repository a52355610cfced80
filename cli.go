package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newRootCommand(args []string) *cobra.Command {
	root := &cobra.Command{
		Use:           "tkx",
		Short:         "Interactive tracker ticket browser",
		Version:       currentVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBrowser()
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(
		newInitCommand(),
		newTicketsCommand(),
		newTicketCommand(),
		newCreateCommand(),
		newUpdateCommand(),
		newSummaryCommand(),
		newStaleCommand(),
		newProjectsCommand(),
		newMatchCommand(),
		newCompletionCommand(),
	)

	if len(args) > 1 {
		root.SetArgs(args[1:])
	}
	return root
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Configure tracker access interactively",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit()
		},
	}
}

func newTicketsCommand() *cobra.Command {
	var status string
	var priority string
	var project string
	var date string
	var mine bool
	var all bool

	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List tickets (active project filter applies unless overridden)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if strings.TrimSpace(date) != "" {
				return runTicketsByDate(date)
			}
			return runTickets(status, priority, project, mine, all)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (e.g. todo, in_progress)")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority (e.g. high, critical)")
	cmd.Flags().StringVar(&project, "project", "", "Filter by project name (bypasses matching)")
	cmd.Flags().StringVar(&date, "date", "", "Only tickets touched on an ISO date (e.g. 2026-08-30)")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only tickets assigned to the configured user")
	cmd.Flags().BoolVar(&all, "all", false, "Ignore the matched project filter")
	return cmd
}

func newTicketCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ticket <id>",
		Short: "Show a single ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, cmdArgs []string) error {
			return runTicketDetail(cmdArgs[0])
		},
	}
}

func newCreateCommand() *cobra.Command {
	var title string
	var description string
	var priority string
	var project string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a ticket (project defaults to the matched one)",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runCreate(title, description, priority, project)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Ticket title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Ticket description")
	cmd.Flags().StringVar(&priority, "priority", "", "Ticket priority")
	cmd.Flags().StringVar(&project, "project", "", "Project name (bypasses matching)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newUpdateCommand() *cobra.Command {
	var status string
	var priority string
	var title string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update ticket fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, cmdArgs []string) error {
			return runUpdate(cmdArgs[0], status, priority, title)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&priority, "priority", "", "New priority")
	cmd.Flags().StringVar(&title, "title", "", "New title")
	return cmd
}

func newSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Ticket counts by status",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSummary()
		},
	}
}

func newStaleCommand() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stale",
		Short: "Tickets with no recent activity",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStale(days)
		},
	}
	cmd.Flags().IntVar(&days, "days", 3, "Days without activity to consider stale")
	return cmd
}

func newProjectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects, marking the matched one",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runProjects()
		},
	}
}

func newMatchCommand() *cobra.Command {
	var clearCache bool
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Resolve the current repo to a project",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMatch(clearCache)
		},
	}
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Forget the cached match for this repo first")
	return cmd
}

func newSession() (Config, *TrackerClient, *FilterState, *Resolver, error) {
	exists, err := ConfigExists()
	if err != nil {
		return Config{}, nil, nil, nil, err
	}
	if !exists {
		return Config{}, nil, nil, nil, errNotConfigured
	}
	cfg, err := LoadConfig()
	if err != nil {
		return Config{}, nil, nil, nil, err
	}
	client, err := NewTrackerClient(cfg, nil)
	if err != nil {
		return Config{}, nil, nil, nil, err
	}
	filter := NewFilterState()
	resolver := NewResolver(client, filter, cfg.AIMatchEnabled())
	return cfg, client, filter, resolver, nil
}

func runBrowser() error {
	cfg, client, filter, resolver, err := newSession()
	if err != nil {
		return err
	}
	p := tea.NewProgram(newBrowserModel(cfg, client, resolver, filter))
	_, err = p.Run()
	return err
}

func runTickets(status string, priority string, project string, mine bool, all bool) error {
	_, client, filter, resolver, err := newSession()
	if err != nil {
		return err
	}
	ctx := context.Background()

	project = strings.TrimSpace(project)
	switch {
	case project != "":
		filter.Set(project)
	case all:
		// No filter: the full listing was asked for explicitly.
	default:
		resolver.Resolve(ctx)
	}

	q := TicketQuery{Status: status, Priority: priority, Mine: mine}
	if name, ok := filter.Get(); ok {
		q.Project = name
	}
	tickets, err := client.Tickets(ctx, q)
	if err != nil {
		return err
	}
	printTickets(tickets, filter)
	return nil
}

func runTicketsByDate(date string) error {
	_, client, filter, _, err := newSession()
	if err != nil {
		return err
	}
	tickets, err := client.TicketsByDate(context.Background(), date)
	if err != nil {
		return err
	}
	printTickets(tickets, filter)
	return nil
}

func runTicketDetail(id string) error {
	_, client, _, _, err := newSession()
	if err != nil {
		return err
	}
	ticket, err := client.Ticket(context.Background(), id)
	if err != nil {
		return err
	}
	printTicketDetail(ticket)
	return nil
}

func runCreate(title string, description string, priority string, project string) error {
	_, client, filter, resolver, err := newSession()
	if err != nil {
		return err
	}
	ctx := context.Background()

	project = strings.TrimSpace(project)
	if project == "" {
		resolver.Resolve(ctx)
		project, _ = filter.Get()
	}

	ticket, err := client.CreateTicket(ctx, TicketDraft{
		Title:       title,
		Description: description,
		Priority:    priority,
		Project:     project,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created %s: %s\n", ticket.ID, ticket.Title)
	return nil
}

func runUpdate(id string, status string, priority string, title string) error {
	_, client, _, _, err := newSession()
	if err != nil {
		return err
	}
	fields := map[string]string{}
	if strings.TrimSpace(status) != "" {
		fields["status"] = strings.TrimSpace(status)
	}
	if strings.TrimSpace(priority) != "" {
		fields["priority"] = strings.TrimSpace(priority)
	}
	if strings.TrimSpace(title) != "" {
		fields["title"] = strings.TrimSpace(title)
	}
	if len(fields) == 0 {
		return errors.New("nothing to update: pass --status, --priority or --title")
	}
	ticket, err := client.UpdateTicket(context.Background(), id, fields)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s: %s\n", ticket.ID, ticket.Status)
	return nil
}

func runSummary() error {
	_, client, _, _, err := newSession()
	if err != nil {
		return err
	}
	summary, err := client.Summary(context.Background())
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}

func runStale(days int) error {
	_, client, filter, _, err := newSession()
	if err != nil {
		return err
	}
	tickets, err := client.StaleTickets(context.Background(), days)
	if err != nil {
		return err
	}
	printTickets(tickets, filter)
	return nil
}

func runProjects() error {
	_, client, filter, resolver, err := newSession()
	if err != nil {
		return err
	}
	ctx := context.Background()
	resolver.Resolve(ctx)
	projects, err := client.Projects(ctx)
	if err != nil {
		return err
	}
	printProjects(projects, filter)
	return nil
}

func runMatch(clearCache bool) error {
	_, _, _, resolver, err := newSession()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if clearCache {
		ws := detectWorkspaceFn(ctx)
		if strings.TrimSpace(ws.RepoName) != "" {
			if err := clearMatchCache(ws.RepoName); err != nil {
				return err
			}
		}
	}

	outcome := resolver.Resolve(ctx)
	switch outcome.Status {
	case ResolutionMatched:
		fmt.Printf("matched %q -> %s (%s)\n", outcome.Workspace.RepoName, outcome.Project.Name, outcome.Tier)
	case ResolutionDegraded:
		fmt.Printf("no match for %q: %s\n", outcome.Workspace.RepoName, outcome.Reason)
	default:
		fmt.Printf("no match for %q\n", outcome.Workspace.RepoName)
	}
	return nil
}
