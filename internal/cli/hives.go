package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beehive-tools/hivecli/internal/controller"
	"github.com/beehive-tools/hivecli/internal/models"
	"github.com/beehive-tools/hivecli/internal/store"
	"github.com/beehive-tools/hivecli/internal/tui/common"
	"github.com/spf13/cobra"
)

// ErrBlankName is returned by add when the name is empty after trimming.
var ErrBlankName = errors.New("hive name must not be blank")

func newListCommand(env *Env) *cobra.Command {
	var pending, completed bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List hives",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if pending && completed {
				return fmt.Errorf("--pending and --completed are mutually exclusive")
			}

			s, err := env.open()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ctrl.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("list hives: %w", err)
			}

			hives := s.ctrl.Hives()
			switch {
			case pending:
				hives = s.ctrl.Pending()
			case completed:
				hives = s.ctrl.Completed()
			}

			out := cmd.OutOrStdout()
			for _, h := range hives {
				printHive(out, h)
			}
			printSummary(out, s.ctrl)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pending, "pending", false, "Only show hives that are not completed")
	cmd.Flags().BoolVar(&completed, "completed", false, "Only show completed hives")
	return cmd
}

func newAddCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name...>",
		Short: "Create a hive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.open()
			if err != nil {
				return err
			}
			defer s.Close()

			s.ctrl.SetNewName(strings.Join(args, " "))
			fut := s.ctrl.CreateHive(cmd.Context())
			if fut == nil {
				return ErrBlankName
			}

			hive, err := fut.Wait(cmd.Context())
			if err != nil {
				return fmt.Errorf("create hive: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", common.SuccessTextStyle.Render("Created"), describe(hive))

			if err := s.ctrl.Refresh(cmd.Context()); err == nil {
				printSummary(out, s.ctrl)
			}
			return nil
		},
	}
}

func newCompleteCommand(env *Env, use string, completed bool) *cobra.Command {
	short := "Mark a hive as completed"
	if !completed {
		short = "Mark a hive as not completed"
	}

	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.open()
			if err != nil {
				return err
			}
			defer s.Close()

			hive, err := findHive(cmd.Context(), s.ctrl, args[0])
			if err != nil {
				return err
			}

			fut, err := s.ctrl.SetCompleted(cmd.Context(), hive.ClientID, completed)
			if err != nil {
				return err
			}
			saved, err := fut.Wait(cmd.Context())
			if err != nil {
				return fmt.Errorf("save hive %s: %w", hive.ID, err)
			}

			out := cmd.OutOrStdout()
			printHive(out, saved)
			printSummary(out, s.ctrl)
			return nil
		},
	}
}

func newRemoveCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a hive",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.open()
			if err != nil {
				return err
			}
			defer s.Close()

			hive, err := findHive(cmd.Context(), s.ctrl, args[0])
			if err != nil {
				return err
			}

			if _, err := s.ctrl.Delete(cmd.Context(), hive.ClientID).Wait(cmd.Context()); err != nil {
				return fmt.Errorf("delete hive %s: %w", hive.ID, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", common.WarningTextStyle.Render("Deleted"), describe(hive))
			printSummary(out, s.ctrl)
			return nil
		},
	}
}

// findHive loads the collection and looks a hive up by server id.
func findHive(ctx context.Context, ctrl *controller.HivesController, id string) (models.Hive, error) {
	if err := ctrl.Refresh(ctx); err != nil {
		return models.Hive{}, fmt.Errorf("list hives: %w", err)
	}
	if h, ok := ctrl.FindByID(id); ok {
		return h, nil
	}
	return models.Hive{}, fmt.Errorf("hive %s: %w", id, store.ErrRecordNotFound)
}

func describe(h models.Hive) string {
	return fmt.Sprintf("%s (%s)", h.Name, h.ID)
}

func printHive(w io.Writer, h models.Hive) {
	name := h.Name
	if h.IsCompleted {
		name = common.CompletedTextStyle.Render(name)
	}
	line := fmt.Sprintf("%s %-4s %s", common.StatusBox(h.IsCompleted), h.ID, name)
	if h.Description != "" {
		line += "  " + common.MutedTextStyle.Render(h.Description)
	}
	fmt.Fprintln(w, line)
}

func printSummary(w io.Writer, ctrl *controller.HivesController) {
	line := fmt.Sprintf("%d %s left", ctrl.Remaining(), ctrl.Inflection())
	fmt.Fprintln(w, common.MutedTextStyle.Render(line))
}
