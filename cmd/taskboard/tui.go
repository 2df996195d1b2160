package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/app"
	"github.com/nhle/taskboard/internal/seed"
	"github.com/nhle/taskboard/internal/session"
)

func runTUI(ctx context.Context, opts *globalOptions, demo bool) error {
	rt, err := openBoard(opts, tuiLogPath)
	if err != nil {
		return err
	}
	defer rt.Close()

	if demo {
		if err := seedIfEmpty(ctx, rt); err != nil {
			return err
		}
	}

	m := app.New(app.Deps{
		Tasks:       session.NewTasks(rt.tasks),
		Categories:  session.NewCategories(rt.categories),
		TaskService: rt.tasks,
		Templates:   rt.templates,
		Logger:      rt.logger,
		Backend:     rt.cfg.Backend,
		DefaultSort: defaultSort(rt.cfg.Display.DefaultSort),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// seedIfEmpty loads the demo data set into a board with no tasks.
func seedIfEmpty(ctx context.Context, rt *board) error {
	if len(rt.tasks.GetAll(ctx)) > 0 {
		return nil
	}
	doc, err := seed.Demo()
	if err != nil {
		return err
	}
	sum := seed.Apply(ctx, doc, seedServices(rt), time.Now())
	rt.logger.Info("loaded demo data", "tasks", sum.Tasks, "categories", sum.Categories)
	return nil
}

func seedServices(rt *board) seed.Services {
	return seed.Services{
		Categories: rt.categories,
		Tasks:      rt.tasks,
		Templates:  rt.templates,
	}
}
